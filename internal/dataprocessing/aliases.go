package dataprocessing

// columnAliases maps source header spellings to canonical columns. Keys are
// matched after whitespace collapsing, upper-casing and accent folding, with
// underscores and spaces treated alike, so "AÑO", "ANO" and "año" share an entry.
var columnAliases = map[string]string{
	// date
	"FECHA":               ColDate,
	"FECHA NUMERACION":    ColDate,
	"FECHA DE NUMERACION": ColDate,
	"DATE":                ColDate,

	// year
	"AÑO":  ColYear,
	"ANIO": ColYear,
	"YEAR": ColYear,

	// month number
	"MES NUM":      ColMonthNumber,
	"MES NUMERO":   ColMonthNumber,
	"NUM MES":      ColMonthNumber,
	"MONTH NUMBER": ColMonthNumber,
	"MONTH NUM":    ColMonthNumber,

	// month name
	"MES":   ColMonth,
	"MONTH": ColMonth,

	// text dimensions
	"MARCA":            ColBrand,
	"BRAND":            ColBrand,
	"MAKE":             ColBrand,
	"MODELO":           ColModel,
	"MODEL":            ColModel,
	"EMPRESA":          ColImporter,
	"IMPORTADOR":       ColImporter,
	"IMPORTER":         ColImporter,
	"COMBUSTIBLE":      ColFuelType,
	"TIPO COMBUSTIBLE": ColFuelType,
	"FUEL":             ColFuelType,
	"FUEL TYPE":        ColFuelType,
	"CARROCERIA":       ColBodyStyle,
	"CARROCERÍA":       ColBodyStyle,
	"BODY STYLE":       ColBodyStyle,
	"BODY":             ColBodyStyle,

	// numbers
	"CANTIDAD":           ColQuantity,
	"UNIDADES":           ColQuantity,
	"QUANTITY":           ColQuantity,
	"QTY":                ColQuantity,
	"VALOR US$ CIF":      ColCustomsValue,
	"VALOR CIF":          ColCustomsValue,
	"VALOR CIF US$":      ColCustomsValue,
	"CIF":                ColCustomsValue,
	"CIF US$":            ColCustomsValue,
	"CUSTOMS VALUE":      ColCustomsValue,
	"FLETE":              ColFreightValue,
	"FLETE US$":          ColFreightValue,
	"VALOR FLETE":        ColFreightValue,
	"FREIGHT":            ColFreightValue,
	"FREIGHT VALUE":      ColFreightValue,
	"CIF UNITARIO":       ColUnitCustomsValue,
	"UNIT CUSTOMS VALUE": ColUnitCustomsValue,
	"FLETE UNITARIO":     ColUnitFreightValue,
	"UNIT FREIGHT VALUE": ColUnitFreightValue,
}

// brandAliases collapses known brand spellings onto one canonical name.
// Exact match only. No value of this map may itself be a key mapping
// elsewhere, which keeps the correction idempotent.
var brandAliases = map[string]string{
	"M.G.":             "MG",
	"M.G":              "MG",
	"M G":              "MG",
	"MORRIS GARAGES":   "MG",
	"MG MOTOR":         "MG",
	"MERCEDES BENZ":    "MERCEDES-BENZ",
	"MERCEDES":         "MERCEDES-BENZ",
	"MERCEDEZ BENZ":    "MERCEDES-BENZ",
	"VW":               "VOLKSWAGEN",
	"VOLKSWAGEN AG":    "VOLKSWAGEN",
	"GWM":              "GREAT WALL",
	"GREAT WALL MOTOR": "GREAT WALL",
	"GREATWALL":        "GREAT WALL",
	"BYD AUTO":         "BYD",
	"LAND-ROVER":       "LAND ROVER",
	"LANDROVER":        "LAND ROVER",
	"SSANG YONG":       "SSANGYONG",
	"SSANG-YONG":       "SSANGYONG",
	"DONG FENG":        "DONGFENG",
	"ROLLS ROYCE":      "ROLLS-ROYCE",
	"ALFA-ROMEO":       "ALFA ROMEO",
	"CITROËN":          "CITROEN",
	"CHEVROLET GM":     "CHEVROLET",
	"GM CHEVROLET":     "CHEVROLET",
	"HYUNDAY":          "HYUNDAI",
	"TOYOTA MOTOR":     "TOYOTA",
	"KIA MOTORS":       "KIA",
	"CHANGAN AUTO":     "CHANGAN",
	"CHANG AN":         "CHANGAN",
	"JAC MOTORS":       "JAC",
	"DFSK GLORY":       "DFSK",
}

// CanonicalBrand applies the brand alias table to an already upper-cased,
// trimmed value.
func CanonicalBrand(brand string) string {
	if canonical, ok := brandAliases[brand]; ok {
		return canonical
	}
	return brand
}
