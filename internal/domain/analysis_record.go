package domain

import "time"

// AnalysisRecord is a stored report in the analysis history.
type AnalysisRecord struct {
	ID               string
	PostURL          string
	Fingerprint      string
	AIPowered        bool
	Model            string
	OverallScore     int
	ProcessingTimeMs int64
	Report           []byte
	CreatedAt        time.Time
}
