package exporter

import (
	"time"

	"github.com/franfh599/dashboard-autos/internal/dataprocessing"
	"github.com/franfh599/dashboard-autos/pkg/contracts/domain"
)

func sampleTable() *dataprocessing.Table {
	records := []domain.ImportRecord{
		{
			Date:             time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Year:             2024,
			MonthNumber:      3,
			MonthName:        "MARZO",
			Brand:            "TOYOTA",
			Quantity:         2,
			CustomsValue:     30000.5,
			UnitCustomsValue: 15000.25,
		},
		{
			Date:             time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			Year:             2024,
			MonthNumber:      4,
			MonthName:        "ABRIL",
			Brand:            "KIA, MOTORS",
			Quantity:         1,
			CustomsValue:     18000,
			UnitCustomsValue: 18000,
		},
	}
	return dataprocessing.NewTable(records,
		dataprocessing.ColBrand, dataprocessing.ColQuantity, dataprocessing.ColCustomsValue)
}

var sampleHeaders = []string{
	"DATE", "YEAR", "MONTH_NUMBER", "MONTH", "BRAND", "QUANTITY",
	"CUSTOMS_VALUE", "UNIT_CUSTOMS_VALUE", "UNIT_FREIGHT_VALUE",
}
