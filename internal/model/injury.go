package model

import "time"

// InjuryReport is a weekly injury designation, independent of the source
// it was read from.
type InjuryReport struct {
	Season         int
	Week           int
	Team           string
	Position       string
	GSISID         string
	FullName       string
	ReportStatus   string
	PracticeStatus string
	DateModified   time.Time
	Source         string
}
