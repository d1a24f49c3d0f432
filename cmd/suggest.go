package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/placefinder/pkg/geocode"
)

var suggestJSON bool

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Look up place suggestions for a partial location",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("suggest"); err != nil {
			return err
		}
		gc, closeGeocoder, err := initGeocoder(cmd.Context(), cfg.Geocode)
		if err != nil {
			return err
		}
		defer closeGeocoder()
		return runSuggest(cmd, gc, strings.Join(args, " "))
	},
}

func runSuggest(cmd *cobra.Command, gc geocode.Client, query string) error {
	results, err := gc.Suggest(cmd.Context(), query)
	if err != nil {
		return err
	}
	opts := geocode.FormatAll(results)

	out := cmd.OutOrStdout()
	if suggestJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if opts == nil {
			opts = []geocode.Option{}
		}
		return enc.Encode(opts)
	}
	if len(opts) == 0 {
		fmt.Fprintln(out, "no results")
		return nil
	}
	for i, o := range opts {
		fmt.Fprintf(out, "%d. %s (%.5f, %.5f)\n", i, o.Label, o.Latitude, o.Longitude)
	}
	return nil
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)
}
