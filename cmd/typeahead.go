package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/placefinder/internal/typeahead"
	"github.com/sells-group/placefinder/pkg/geocode"
)

var (
	typeaheadWidth  float64
	typeaheadHeight float64
)

var typeaheadCmd = &cobra.Command{
	Use:   "typeahead",
	Short: "Drive a location input interactively from stdin",
	Long: `Each line typed is committed as the input text. Commands:
  :state          show the suggestion panel
  :select N       pick suggestion N
  :click X Y      press at X,Y (outside the input closes the panel)
  :focus          reopen the panel
  :quit           exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("suggest"); err != nil {
			return err
		}

		gc, closeGeocoder, err := initGeocoder(cmd.Context(), cfg.Geocode)
		if err != nil {
			return err
		}
		defer closeGeocoder()

		out := cmd.OutOrStdout()
		f := typeahead.New(gc,
			typeahead.WithDelay(cfg.Typeahead.Delay()),
			typeahead.WithMinLength(cfg.Typeahead.MinLength),
			typeahead.WithOnChange(func(text string, coords *geocode.Coordinates) {
				if coords != nil {
					fmt.Fprintf(out, "value: %q (%.5f, %.5f)\n", text, coords.Latitude, coords.Longitude)
				}
			}),
		)
		defer f.Close()

		bus := typeahead.NewPointerBus()
		if err := f.Attach(bus, typeahead.NewBounds(0, 0, typeaheadWidth, typeaheadHeight)); err != nil {
			return err
		}
		return runTypeahead(cmd.Context(), cmd.InOrStdin(), out, f, bus)
	},
}

// runTypeahead reads lines from in until EOF, :quit or ctx ends.
func runTypeahead(ctx context.Context, in io.Reader, out io.Writer, f *typeahead.Fetcher, bus *typeahead.PointerBus) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := sc.Text()
		if !strings.HasPrefix(line, ":") {
			f.Input(line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit":
			return nil
		case ":state":
			printState(out, f.State())
		case ":focus":
			f.Focus()
		case ":select":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: :select N")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintln(out, "usage: :select N")
				continue
			}
			if _, err := f.Select(n); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case ":click":
			x, y, err := parsePoint(fields[1:])
			if err != nil {
				fmt.Fprintln(out, "usage: :click X Y")
				continue
			}
			bus.Publish(typeahead.PointerEvent{X: x, Y: y})
		default:
			fmt.Fprintf(out, "unknown command %s\n", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return eris.Wrap(err, "read stdin")
	}
	return nil
}

func parsePoint(args []string) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, eris.New("want two coordinates")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, eris.Wrap(err, "parse x")
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, eris.Wrap(err, "parse y")
	}
	return x, y, nil
}

func printState(w io.Writer, st typeahead.State) {
	fmt.Fprintf(w, "query: %q\n", st.Query)
	switch {
	case st.Loading:
		fmt.Fprintln(w, "loading...")
	case !st.Open:
		fmt.Fprintln(w, "panel closed")
	case st.NoResults:
		fmt.Fprintln(w, "no results")
	default:
		for i, o := range st.Options {
			fmt.Fprintf(w, "  %d. %s\n", i, o.Label)
		}
	}
}

func init() {
	typeaheadCmd.Flags().Float64Var(&typeaheadWidth, "width", 400, "input component width")
	typeaheadCmd.Flags().Float64Var(&typeaheadHeight, "height", 300, "input component height")
	rootCmd.AddCommand(typeaheadCmd)
}
