// Package model defines the core data structures for the billable application.
package model

// MonthlyRecord is one calendar month of hours, earnings and payments.
type MonthlyRecord struct {
	Period         Period  `json:"month"`
	HoursWorked    float64 `json:"hours"`
	AmountEarned   float64 `json:"amount"`
	AmountReceived float64 `json:"received"`
	Notes          string  `json:"notes"`
}

// Pending is the amount earned but not yet received.
func (r MonthlyRecord) Pending() float64 {
	return r.AmountEarned - r.AmountReceived
}

// Field names an extracted figure.
type Field string

// Extracted fields.
const (
	FieldHours    Field = "hours"
	FieldEarned   Field = "earned"
	FieldReceived Field = "received"
)

// ExtractionResult holds the figures recovered from one document.
// A field that no rule matched is 0 and absent from Matched.
type ExtractionResult struct {
	Matched        map[Field]bool `json:"matched"`
	Excerpt        string         `json:"excerpt,omitempty"`
	HoursWorked    float64        `json:"hours"`
	AmountEarned   float64        `json:"amount"`
	AmountReceived float64        `json:"received"`
}

// IsMatched reports whether any rule produced a value for f.
func (r ExtractionResult) IsMatched(f Field) bool {
	return r.Matched[f]
}
