package location

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed gazetteer.yaml
var defaultGazetteerYAML []byte

// Gazetteer is the static evidence the classifier matches against. Entries
// are case-folded on load and never change afterwards.
type Gazetteer struct {
	Metro         string   `yaml:"metro"`
	Exceptions    []string `yaml:"exceptions"`
	Areas         []string `yaml:"areas"`
	International []string `yaml:"international"`
}

// DefaultGazetteer returns the embedded Pune gazetteer.
func DefaultGazetteer() *Gazetteer {
	g, err := ParseGazetteer(defaultGazetteerYAML)
	if err != nil {
		panic(eris.Wrap(err, "location: embedded gazetteer"))
	}
	return g
}

// LoadGazetteer reads a gazetteer YAML file.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "location: read gazetteer %s", path)
	}
	g, err := ParseGazetteer(data)
	if err != nil {
		return nil, eris.Wrapf(err, "location: gazetteer %s", path)
	}
	return g, nil
}

// ParseGazetteer decodes gazetteer YAML and normalizes every entry.
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var g Gazetteer
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, eris.Wrap(err, "location: parse gazetteer")
	}

	g.Metro = normalize(g.Metro)
	if g.Metro == "" {
		return nil, eris.New("location: gazetteer metro is required")
	}
	g.Exceptions = normalizeAll(g.Exceptions)
	g.Areas = normalizeAll(g.Areas)
	g.International = normalizeAll(g.International)
	return &g, nil
}

// normalize case-folds s and trims surrounding whitespace.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// normalizeAll normalizes entries, dropping blanks.
func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
