// Package storage holds the durable token-record backends and the record
// codec they share.
//
// Records are written as versioned frames (see EncodeRecord). The Badger
// backend lives in this package; SQL and Redis backends live in the
// sqlstore and redisstore subpackages, and the in-memory reference backend
// in memory. Every backend satisfies service.Backend and is exercised by
// the storagetest conformance suite.
package storage
