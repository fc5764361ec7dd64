package domain

import "time"

// EventSpec is one entry of the historical event catalog: a calendar event
// whose market reaction the study compares against.
type EventSpec struct {
	Name        string
	Date        time.Time // calendar date of the market reaction
	Description string
}
