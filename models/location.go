package models

import (
	"encoding/json"
	"strings"
)

// Location is the parsed form of a session's location column, which may
// hold either a structured JSON object or an opaque freeform string.
// Parsing happens once here; consumers never re-parse the raw value.
type Location struct {
	Structured bool
	City       string
	Address    string
	Freeform   string
}

type structuredLocation struct {
	City    string `json:"city"`
	Address string `json:"address"`
}

// ParseLocation resolves the raw location value into its tagged variant.
func ParseLocation(raw string) Location {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var sl structuredLocation
		if err := json.Unmarshal([]byte(trimmed), &sl); err == nil {
			return Location{
				Structured: true,
				City:       strings.TrimSpace(sl.City),
				Address:    strings.TrimSpace(sl.Address),
			}
		}
	}
	return Location{Freeform: trimmed}
}

// CityName returns the resolvable city, or "" when the location is
// freeform or carries no city. Callers skip records with "" rather than
// guessing.
func (l Location) CityName() string {
	if l.Structured {
		return l.City
	}
	return ""
}

// CityEquals reports a case-insensitive city match; unresolvable on
// either side is never a match.
func (l Location) CityEquals(city string) bool {
	own := l.CityName()
	if own == "" || strings.TrimSpace(city) == "" {
		return false
	}
	return strings.EqualFold(own, strings.TrimSpace(city))
}
