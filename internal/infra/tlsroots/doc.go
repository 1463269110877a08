// Package tlsroots builds client TLS configurations for backend
// connections: trusted roots from the system pool plus optional PEM CA
// files, and an optional client certificate for mutual TLS.
package tlsroots
