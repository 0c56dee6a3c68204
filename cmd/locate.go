package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLocateCommand(opts *rootOptions) *cobra.Command {
	var target int
	c := &cobra.Command{
		Use:   "locate",
		Short: "Locate a value in the configured dataset",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if !c.Flags().Changed("target") {
				return fmt.Errorf("--target is required")
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
			m, ok, err := ix.Locate(c.Context(), target)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.OutOrStdout(), "not found")
				return nil
			}
			fmt.Fprintf(c.OutOrStdout(), "%s %d\n", m.ID, m.Position)
			return nil
		},
	}
	c.Flags().IntVar(&target, "target", 0, "value to locate")
	dbFlags(c)
	return c
}
