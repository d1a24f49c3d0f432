package location

import (
	"strings"
	"sync"
)

// Rule names reported by Explain.
const (
	RuleInternational = "international"
	RuleExplicitLocal = "explicit_local"
	RuleGazetteer     = "gazetteer"
	RuleDefault       = "default"
)

// Decision is the outcome of classifying one location.
type Decision struct {
	Category Category `json:"category"`
	Rule     string   `json:"rule"`
	Evidence string   `json:"evidence,omitempty"`
}

// rule is one step of the ordered classification. match receives the
// normalized location and returns the gazetteer entry that fired.
type rule struct {
	name     string
	category Category
	match    func(g *Gazetteer, loc string) (string, bool)
}

// rules run in order; the first match wins. International must precede the
// gazetteer so a short area name inside a foreign city never claims it. The
// default rule is last and unconditional.
var rules = []rule{
	{name: RuleInternational, category: International, match: matchInternational},
	{name: RuleExplicitLocal, category: LocalZone, match: matchExplicitLocal},
	{name: RuleGazetteer, category: LocalZone, match: matchGazetteer},
	{name: RuleDefault, category: Domestic, match: matchAlways},
}

func matchInternational(g *Gazetteer, loc string) (string, bool) {
	for _, p := range g.International {
		if strings.Contains(loc, p) {
			return p, true
		}
	}
	return "", false
}

func matchExplicitLocal(g *Gazetteer, loc string) (string, bool) {
	if strings.Contains(loc, g.Metro) {
		return g.Metro, true
	}
	for _, e := range g.Exceptions {
		if loc == e {
			return e, true
		}
	}
	return "", false
}

// matchGazetteer matches in both directions so "Pune - East Zone", "East Zone,
// Pune" and a bare "East Zone" classify alike. A blank location would be
// contained by every area, so it never matches.
func matchGazetteer(g *Gazetteer, loc string) (string, bool) {
	if loc == "" {
		return "", false
	}
	for _, a := range g.Areas {
		if strings.Contains(loc, a) || strings.Contains(a, loc) {
			return a, true
		}
	}
	return "", false
}

func matchAlways(_ *Gazetteer, _ string) (string, bool) { return "", true }

// Classifier maps location strings to categories using a Gazetteer.
// It is safe for concurrent use.
type Classifier struct {
	gazetteer *Gazetteer
}

// NewClassifier creates a Classifier. A nil gazetteer uses the embedded default.
func NewClassifier(g *Gazetteer) *Classifier {
	if g == nil {
		g = DefaultGazetteer()
	}
	return &Classifier{gazetteer: g}
}

// Classify returns the category for location. It accepts any string.
func (c *Classifier) Classify(location string) Category {
	return c.Explain(location).Category
}

// Explain classifies location and reports which rule decided it.
func (c *Classifier) Explain(location string) Decision {
	loc := normalize(location)
	for _, r := range rules {
		if evidence, ok := r.match(c.gazetteer, loc); ok {
			return Decision{Category: r.category, Rule: r.name, Evidence: evidence}
		}
	}
	// Unreachable: the default rule always matches.
	return Decision{Category: Domestic, Rule: RuleDefault}
}

var (
	defaultOnce       sync.Once
	defaultClassifier *Classifier
)

// Default returns a shared Classifier backed by the embedded gazetteer.
func Default() *Classifier {
	defaultOnce.Do(func() {
		defaultClassifier = NewClassifier(nil)
	})
	return defaultClassifier
}

// Classify classifies location with the default classifier.
func Classify(location string) Category {
	return Default().Classify(location)
}
