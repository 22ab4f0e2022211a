// Package filecache tracks which source files have already been
// processed so repeated runs are incremental. Each record pairs a
// (mtime_ns, size) fingerprint with the produced destination and,
// when known, the sport/season/episode that owns the mapping.
//
// The cache is an in-process map under single-writer discipline. It is
// loaded from and flushed to a SQLite store explicitly; the dirty flag
// reflects unpersisted mutation at all times so the caller's flush
// decision is correct. Invalidation is scoped: a metadata change evicts
// only the records its sport/season/episode ownership covers, while
// legacy records without ownership are evicted by any change at all.
package filecache
