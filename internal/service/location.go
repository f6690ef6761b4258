package service

import (
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// DefaultTimezone is used when no zone is configured.
const DefaultTimezone = "Africa/Cairo"

// LoadLocation resolves name, falling back to a fixed UTC+2 zone when the name
// is unknown.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("UTC+2", 2*60*60)
	}
	return loc
}
