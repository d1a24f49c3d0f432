package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/placefinder/internal/location"
)

var (
	classifyExplain bool
	classifyJSON    bool
)

type classified struct {
	Location string `json:"location"`
	location.Decision
}

var classifyCmd = &cobra.Command{
	Use:   "classify <location...>",
	Short: "Classify locations as local_zone, domestic or international",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("classify"); err != nil {
			return err
		}
		c, err := initClassifier(cfg.Location)
		if err != nil {
			return err
		}
		return writeClassified(cmd.OutOrStdout(), classifyAll(c, args))
	},
}

// classifyAll explains every location, keeping input order.
func classifyAll(c *location.Classifier, locations []string) []classified {
	out := make([]classified, len(locations))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, loc := range locations {
		g.Go(func() error {
			out[i] = classified{Location: loc, Decision: c.Explain(loc)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func writeClassified(w io.Writer, results []classified) error {
	if classifyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range results {
		if classifyExplain {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Location, r.Category, r.Rule, r.Evidence)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", r.Location, r.Category)
		}
	}
	return tw.Flush()
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyExplain, "explain", false, "show the deciding rule and matched entry")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(classifyCmd)
}
