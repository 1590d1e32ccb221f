package dataprocessing

import "github.com/franfh599/dashboard-autos/pkg/contracts/domain"

// Canonical column names.
const (
	ColDate             = "DATE"
	ColYear             = "YEAR"
	ColMonthNumber      = "MONTH_NUMBER"
	ColMonth            = "MONTH"
	ColBrand            = "BRAND"
	ColModel            = "MODEL"
	ColImporter         = "IMPORTER"
	ColFuelType         = "FUEL_TYPE"
	ColBodyStyle        = "BODY_STYLE"
	ColQuantity         = "QUANTITY"
	ColCustomsValue     = "CUSTOMS_VALUE"
	ColFreightValue     = "FREIGHT_VALUE"
	ColUnitCustomsValue = "UNIT_CUSTOMS_VALUE"
	ColUnitFreightValue = "UNIT_FREIGHT_VALUE"
)

// CanonicalColumns lists every canonical column in output order.
var CanonicalColumns = []string{
	ColDate,
	ColYear,
	ColMonthNumber,
	ColMonth,
	ColBrand,
	ColModel,
	ColImporter,
	ColFuelType,
	ColBodyStyle,
	ColQuantity,
	ColCustomsValue,
	ColFreightValue,
	ColUnitCustomsValue,
	ColUnitFreightValue,
}

// RequiredColumns must be present for the dataset to be fully usable.
var RequiredColumns = []string{ColQuantity, ColCustomsValue, ColDate, ColBrand}

// textColumns are upper-cased and trimmed by the cleaner.
var textColumns = []string{ColBrand, ColModel, ColImporter, ColFuelType, ColBodyStyle, ColMonth}

// derivedColumns always exist on a cleaned table.
var derivedColumns = []string{ColDate, ColYear, ColMonthNumber, ColMonth, ColUnitCustomsValue, ColUnitFreightValue}

// ColumnForDimension maps a grouping dimension to its column.
func ColumnForDimension(d domain.Dimension) string {
	return string(d)
}

func isCanonical(name string) bool {
	for _, c := range CanonicalColumns {
		if c == name {
			return true
		}
	}
	return false
}
