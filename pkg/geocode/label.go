package geocode

import "strings"

// Option is a suggestion shaped for a selection menu.
type Option struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label derives a short display label from a suggestion's address.
//
// The primary name is the first of suburb, village, town and city that is
// present. A suburb is qualified by its city; any other primary is qualified
// by the state when both city and state are known. Without any address
// component the first two segments of the display name are used.
func Label(s Suggestion) string {
	a := s.Address

	primary, fromSuburb := "", false
	switch {
	case a.Suburb != "":
		primary, fromSuburb = a.Suburb, true
	case a.Village != "":
		primary = a.Village
	case a.Town != "":
		primary = a.Town
	case a.City != "":
		primary = a.City
	}

	if primary == "" {
		return leadingSegments(s.DisplayName, 2)
	}

	switch {
	case fromSuburb && a.City != "":
		return primary + ", " + a.City
	case !fromSuburb && a.City != "" && a.State != "":
		return primary + ", " + a.State
	}
	return primary
}

// Format pairs the label with the suggestion's coordinates.
func Format(s Suggestion) Option {
	return Option{Label: Label(s), Latitude: s.Latitude, Longitude: s.Longitude}
}

// FormatAll formats every suggestion, preserving order.
func FormatAll(suggestions []Suggestion) []Option {
	opts := make([]Option, 0, len(suggestions))
	for _, s := range suggestions {
		opts = append(opts, Format(s))
	}
	return opts
}

// leadingSegments joins the first n non-empty comma-separated parts of s.
func leadingSegments(s string, n int) string {
	parts := make([]string, 0, n)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts = append(parts, p)
		if len(parts) == n {
			break
		}
	}
	if len(parts) == 0 {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
		return s
	}
	return strings.Join(parts, ", ")
}
