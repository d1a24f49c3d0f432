package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/placefinder/internal/location"
)

var (
	groupStdin  bool
	groupFormat string
)

var groupCmd = &cobra.Command{
	Use:   "group [locations...]",
	Short: "Group locations into local_zone, domestic and international buckets",
	Long:  "Groups the given locations, or one location per line from stdin with --stdin. With neither, reads every distinct location from the configured catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := initClassifier(cfg.Location)
		if err != nil {
			return err
		}

		var locations []string
		switch {
		case groupStdin:
			locations, err = readLines(cmd.InOrStdin())
		case len(args) > 0:
			locations = args
		default:
			locations, err = catalogLocations(cmd)
		}
		if err != nil {
			return err
		}

		return writeGrouped(cmd.OutOrStdout(), groupFormat, c.Group(locations))
	},
}

func catalogLocations(cmd *cobra.Command) ([]string, error) {
	if err := cfg.Validate("catalog"); err != nil {
		return nil, err
	}
	src, err := initCatalog(cmd.Context(), cfg.Catalog)
	if err != nil {
		return nil, err
	}
	defer src.Close() //nolint:errcheck
	return src.Locations(cmd.Context())
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read stdin")
	}
	return lines, nil
}

func writeGrouped(w io.Writer, format string, g location.Grouped) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "text":
		for _, cat := range location.Categories {
			bucket := g.Bucket(cat)
			fmt.Fprintf(w, "%s (%d)\n", cat, len(bucket))
			for _, loc := range bucket {
				fmt.Fprintf(w, "  %s\n", loc)
			}
		}
		return nil
	default:
		return eris.Errorf("unknown format %q", format)
	}
}

func init() {
	groupCmd.Flags().BoolVar(&groupStdin, "stdin", false, "read one location per line from stdin")
	groupCmd.Flags().StringVar(&groupFormat, "format", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(groupCmd)
}
