package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/sqlite-seq/bsearch"
	"github.com/viant/sqlite-seq/sequence"
)

const (
	modeAny    = "any"
	modeFirst  = "first"
	modeLast   = "last"
	modeInsert = "insert"
)

func newSearchCommand() *cobra.Command {
	var (
		values string
		target int
		mode   string
	)
	c := &cobra.Command{
		Use:   "search",
		Short: "Search an inline sorted sequence",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if !c.Flags().Changed("target") {
				return fmt.Errorf("--target is required")
			}
			seq, err := parseValues(values)
			if err != nil {
				return err
			}
			var pos int
			switch mode {
			case modeAny:
				pos = bsearch.Search(seq, target)
			case modeFirst:
				pos = bsearch.FirstOccurrence(seq, target)
			case modeLast:
				pos = bsearch.LastOccurrence(seq, target)
			case modeInsert:
				pos = bsearch.InsertPosition(seq, target)
			default:
				return fmt.Errorf("unsupported mode %q", mode)
			}
			fmt.Fprintln(c.OutOrStdout(), pos)
			return nil
		},
	}
	c.Flags().StringVar(&values, "values", "", "comma-separated ascending integers")
	c.Flags().IntVar(&target, "target", 0, "value to search for")
	c.Flags().StringVar(&mode, "mode", modeAny, "any, first, last or insert")
	return c
}

// parseValues parses a comma-separated ascending integer list; an empty
// string is the empty sequence.
func parseValues(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", p)
		}
		out = append(out, v)
	}
	if err := sequence.CheckSorted(out); err != nil {
		return nil, err
	}
	return out, nil
}
