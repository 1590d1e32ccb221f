// Package dataprocessing turns a raw vehicle-import table into a canonical,
// immutable Table and computes every analytical view from it.
//
// # Architecture
//
// The package is organized into five stages:
//
// 1. Normalizer: canonical column names through a fixed alias table
// 2. Cleaner: text, brand, numeric and date coercion plus unit metrics
// 3. Window: Full Year or Year-To-Date projection anchored on the max observed date
// 4. Aggregation: monthly rollups, top-N share and year-over-year tables
// 5. Statistics: executive summary, unit value benchmarks and a linear forecast
//
// # Usage
//
//	table, maxDate := dataprocessing.Clean(raw)
//	view := dataprocessing.ApplyView(table, maxDate, domain.ViewYTD)
//	share := dataprocessing.TopShare(view, domain.DimensionBrand, 10)
//	yoy := dataprocessing.YoY(table, view, domain.DimensionBrand, []int{2023, 2024})
//	if yoy == nil {
//	    // fewer than two years selected or nothing to compare
//	}
//
// # Data Flow
//
//	gota DataFrame → Normalize → CheckRequired → Clean → Table → ApplyView → Monthly / TopShare / YoY / Summarize
//
// # Error Handling
//
// Nothing in this package returns an error for bad cell values. Unparseable
// numbers become 0, unparseable dates drop the row, negative quantities drop
// the row and division by a zero quantity yields 0. Missing required columns
// are reported through Table.Missing. Structural failures (a file that is not
// a table) belong to the loader.
//
// # Numeric Coercion
//
// Text numbers are read with a single deterministic separator rule, see
// ParseNumber. Values such as "12.345" are inherently ambiguous and are read
// as 12345; typed numeric cells never go through that rule.
package dataprocessing
