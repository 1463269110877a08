// Package cmap provides a string-keyed map split across independently
// locked shards.
//
// Keys are routed to a shard with hash/maphash. Reads take the shard's read
// lock and writes its write lock, so operations on different shards never
// contend. Count and Clear visit shards one at a time and are not a
// snapshot of the whole map.
package cmap
