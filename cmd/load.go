package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/sqlite-seq/sequtil"
)

func newLoadCommand(opts *rootOptions) *cobra.Command {
	var values string
	c := &cobra.Command{
		Use:   "load",
		Short: "Upsert values into the configured dataset with ids v<i>",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			nums, err := parseUnordered(values)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts.configPath, c.Flags())
			if err != nil {
				return err
			}
			db, ix, err := openIndex(cfg, opts.logger())
			if err != nil {
				return err
			}
			defer db.Close()
			entries := make([]sequtil.Entry, len(nums))
			for i, v := range nums {
				entries[i] = sequtil.Entry{ID: "v" + strconv.Itoa(i), Value: v}
			}
			if err := ix.UpsertValues(c.Context(), entries); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "loaded %d\n", len(entries))
			return nil
		},
	}
	c.Flags().StringVar(&values, "values", "", "comma-separated integers")
	dbFlags(c)
	return c
}

// parseUnordered parses a comma-separated integer list in any order; the
// index sorts the stored values itself.
func parseUnordered(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("--values is required")
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
	return out, nil
}
