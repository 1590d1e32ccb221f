// Package loader resolves where the import dataset comes from and reads it
// into an untyped gota DataFrame.
//
// A Source is resolved in a fixed order: an uploaded file, then the local
// path when it exists, then the remote URL. Parquet, xlsx and delimited text
// files are supported; the format is taken from the file extension and, when
// that is inconclusive, from the leading bytes.
//
// Reading never interprets cell values beyond what the file format itself
// declares. Parquet numeric columns and xlsx columns that hold only numbers
// become float columns; everything else is text. Normalization and cleaning
// are the job of the dataprocessing package.
//
// Failures are reported as *errors.AppError values wrapping one of the
// sentinels ErrNoSource, ErrSourceNotFound or ErrMalformedSource so callers
// can tell "nothing configured" from "missing file" from "not a table".
package loader
