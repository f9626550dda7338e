package history

import "strings"

// Placeholders applied at save time for fields nobody filled in.
const (
	UnknownMake  = "Unknown"
	UnknownModel = "Unknown"
	UnknownYear  = "N/A"
)

// Record is one saved vehicle. Records are never edited after creation.
type Record struct {
	VIN      string `json:"vin"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     string `json:"year"`
	Location string `json:"location"`
	Remarks  string `json:"remarks,omitempty"`
	Date     string `json:"fullDate"`
	Time     string `json:"timestamp"`
}

// WithPlaceholders returns a copy with empty make/model/year defaulted and
// free text flattened to a single line.
func (r Record) WithPlaceholders() Record {
	r.Make = orDefault(r.Make, UnknownMake)
	r.Model = orDefault(r.Model, UnknownModel)
	r.Year = orDefault(r.Year, UnknownYear)
	r.Remarks = strings.Join(strings.Fields(r.Remarks), " ")
	return r
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
