package vin

// manufacturers maps world manufacturer identifier prefixes to a make.
// Lookups prefer the longest matching prefix.
var manufacturers = map[string]string{
	"WBA": "BMW",
	"WBS": "BMW",
	"WBY": "BMW",
	"WDB": "Mercedes-Benz",
	"WDC": "Mercedes-Benz",
	"WDD": "Mercedes-Benz",
	"W1K": "Mercedes-Benz",
	"WAU": "Audi",
	"WUA": "Audi",
	"WVW": "Volkswagen",
	"WV1": "Volkswagen",
	"WV2": "Volkswagen",
	"WP0": "Porsche",
	"VF1": "Renault",
	"VF3": "Peugeot",
	"VF7": "Citroën",
	"JT":  "Toyota",
	"JHM": "Honda",
	"1HG": "Honda",
	"JN1": "Nissan",
	"KMH": "Hyundai",
	"KNA": "Kia",
	"KND": "Kia",
	"YV":  "Volvo",
	"SAJ": "Jaguar",
	"ZFF": "Ferrari",
	"ZHW": "Lamborghini",
	"ZFA": "Fiat",
	"ZAR": "Alfa Romeo",
	"ZLA": "Lancia",
	"5YJ": "Tesla",
	"1FA": "Ford",
	"1FT": "Ford",
}

// InferMake returns the manufacturer for a VIN prefix, or "" when unknown.
func InferMake(v string) string {
	for n := 3; n >= 2; n-- {
		if len(v) < n {
			continue
		}
		if name, ok := manufacturers[v[:n]]; ok {
			return name
		}
	}
	return ""
}

// FillMake keeps an explicit upstream make and only falls back to inference.
func FillMake(explicit, v string) string {
	if explicit != "" {
		return explicit
	}
	return InferMake(v)
}
