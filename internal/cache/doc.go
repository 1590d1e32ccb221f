// Package cache provides the in-memory memoization used by the market
// service: a generic TTL cache with hit/miss statistics, and a file watcher
// that reports when the local dataset source changes so cached results can
// be dropped.
package cache
