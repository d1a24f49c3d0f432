package location

import "sort"

// Grouped holds locations partitioned by category, each bucket sorted.
type Grouped struct {
	LocalZone     []string `json:"local_zone" yaml:"local_zone"`
	Domestic      []string `json:"domestic" yaml:"domestic"`
	International []string `json:"international" yaml:"international"`
}

// Len returns the number of locations across all buckets.
func (g Grouped) Len() int {
	return len(g.LocalZone) + len(g.Domestic) + len(g.International)
}

// Bucket returns the locations for category c.
func (g Grouped) Bucket(c Category) []string {
	switch c {
	case LocalZone:
		return g.LocalZone
	case Domestic:
		return g.Domestic
	case International:
		return g.International
	default:
		return nil
	}
}

// Group classifies each location independently and returns the three buckets,
// each sorted ascending over the original strings. Duplicates are kept.
func (c *Classifier) Group(locations []string) Grouped {
	g := Grouped{
		LocalZone:     []string{},
		Domestic:      []string{},
		International: []string{},
	}
	for _, loc := range locations {
		switch c.Classify(loc) {
		case LocalZone:
			g.LocalZone = append(g.LocalZone, loc)
		case International:
			g.International = append(g.International, loc)
		default:
			g.Domestic = append(g.Domestic, loc)
		}
	}
	sort.Strings(g.LocalZone)
	sort.Strings(g.Domestic)
	sort.Strings(g.International)
	return g
}

// Group groups locations with the default classifier.
func Group(locations []string) Grouped {
	return Default().Group(locations)
}
