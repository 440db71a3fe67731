package model

import "time"

// ExtractionRun records one document extraction for auditing.
type ExtractionRun struct {
	ExtractedAt time.Time
	ID          string
	Source      string
	Result      ExtractionResult
	Period      Period
}
