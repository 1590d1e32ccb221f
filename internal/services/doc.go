// Package services implements the business logic layer of the market suite.
// It sits between the HTTP handlers and CLI commands on one side and the
// pure data processing functions on the other.
//
// # Market Service
//
// MarketService owns the dataset lifecycle:
//
//	1. Resolve the source (upload, local file, URL)
//	2. Read it with the loader and clean it into a canonical table
//	3. Memoize the dataset per source identity and each view per
//	   (source identity, operation, parameters)
//	4. Invalidate both caches on reload, or when the local file changes
//
// Loading never panics or returns a bare error. It returns a LoadResult
// tagged ok, no_data, not_found, malformed or missing_columns, so callers
// can react to each case. A dataset with missing columns is still usable.
//
// Views (Macro, Benchmark, DeepDive, YoY, Summary) take a domain.ViewParams
// and fill its defaults. A YoY request with fewer than two years is not an
// error: the result carries the insufficient_selection status, and selected
// years that hold no rows carry no_data.
//
// # Error Handling
//
// Failures are returned as *errors.AppError values from the internal/errors
// package, which the HTTP layer maps onto RFC 7807 problem details:
//
//	- VALIDATION for bad selections (deep dive without a brand)
//	- NOT_FOUND for unknown brands and missing sources
//	- NO_DATA when no source is configured
//	- PARSING for unreadable sources
//	- STORAGE for failed exports
//
// # Testing
//
// Services are tested against real files in t.TempDir() and an httptest
// server for URL sources; handlers mock the services with testify/mock.
package services
