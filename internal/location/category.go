// Package location classifies free-form catalog location strings into display
// buckets (local metro sub-areas, other domestic cities, international) and
// groups collections of them for selection menus.
package location

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Category is the display bucket a location belongs to.
type Category int

const (
	// LocalZone covers the primary metro: its name, known sub-areas and
	// standalone satellite townships.
	LocalZone Category = iota + 1
	// Domestic covers home-country locations outside the metro. It is the
	// fallback for anything no other rule claims.
	Domestic
	// International covers locations matched by a foreign country or city pattern.
	International
)

// Categories lists every category in display order.
var Categories = []Category{LocalZone, Domestic, International}

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case LocalZone:
		return "local_zone"
	case Domestic:
		return "domestic"
	case International:
		return "international"
	default:
		return "unknown"
	}
}

// ParseCategory converts a wire name into a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local_zone", "local-zone", "local":
		return LocalZone, nil
	case "domestic":
		return Domestic, nil
	case "international":
		return International, nil
	default:
		return 0, eris.Errorf("location: unknown category %q (valid: local_zone, domestic, international)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if c < LocalZone || c > International {
		return nil, eris.Errorf("location: invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
