// Package shutdown ties a command's context to process signals.
//
// The first SIGINT or SIGTERM cancels the context so that in-flight store
// operations return and the backend session is closed. A second signal
// exits immediately.
package shutdown
