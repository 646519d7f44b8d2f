package synonym

import "strings"

var countries = map[string]string{
	"AR": "Argentina",
	"BO": "Bolivia",
	"BR": "Brazil",
	"CL": "Chile",
	"CO": "Colombia",
	"CR": "Costa Rica",
	"CU": "Cuba",
	"DO": "Dominican Republic",
	"EC": "Ecuador",
	"ES": "Spain",
	"GB": "United Kingdom",
	"GT": "Guatemala",
	"HN": "Honduras",
	"MX": "Mexico",
	"NI": "Nicaragua",
	"PA": "Panama",
	"PE": "Peru",
	"PR": "Puerto Rico",
	"PY": "Paraguay",
	"SV": "El Salvador",
	"US": "United States",
	"UY": "Uruguay",
	"VE": "Venezuela",
}

// CountryName maps an ISO 3166 alpha-2 code to its English name. Unknown
// codes come back unchanged.
func CountryName(code string) string {
	if name, ok := countries[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// LanguageFor guesses the dominant language of a region code.
func LanguageFor(code string) string {
	switch strings.ToUpper(code) {
	case "BR":
		return "pt"
	case "US", "GB":
		return "en"
	default:
		return "es"
	}
}

func newRegion(code string) *Region {
	return &Region{
		Code:     code,
		Country:  CountryName(code),
		Language: LanguageFor(code),
	}
}
