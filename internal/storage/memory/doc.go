// Package memory provides the in-memory token record backend.
//
// Records live in a sharded concurrent map keyed by user ID and are copied
// on the way in and out, so callers never share state with the backend.
// Data lives as long as the Store value; releasing a store session does not
// drop it.
package memory
