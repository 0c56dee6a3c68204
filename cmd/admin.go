package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/sqlite-seq/engine"
	"github.com/viant/sqlite-seq/seqadmin"
	"github.com/viant/sqlite-seq/seqsync"
	"github.com/viant/sqlite-seq/sequtil"
)

func newReindexCommand(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild and persist sorted indexes for every dataset of the table",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts.configPath, c.Flags())
			if err != nil {
				return err
			}
			db, _, err := openIndex(cfg, opts.logger())
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := seqadmin.Reindex(c.Context(), db, sequtil.ShadowTableName(cfg.Table))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "reindexed:%d\n", n)
			return nil
		},
	}
	dbFlags(c)
	return c
}

func newSyncCommand(opts *rootOptions) *cobra.Command {
	var (
		upstream  string
		batchSize int
	)
	c := &cobra.Command{
		Use:   "sync",
		Short: "Replay the upstream change log into the configured dataset",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if upstream == "" {
				return fmt.Errorf("--upstream is required")
			}
			cfg, err := loadConfig(opts.configPath, c.Flags())
			if err != nil {
				return err
			}
			log := opts.logger()
			db, _, err := openIndex(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()
			up, err := engine.Open(upstream)
			if err != nil {
				return err
			}
			defer up.Close()
			shadow := sequtil.ShadowTableName(cfg.Table)
			if err := seqsync.Install(c.Context(), up, shadow); err != nil {
				return err
			}
			state, err := seqsync.Sync(c.Context(), up, db, seqsync.Config{
				DatasetID:   cfg.Dataset,
				ShadowTable: shadow,
				BatchSize:   batchSize,
			})
			if err != nil {
				return err
			}
			log.Debug("synced", "dataset", state.DatasetID, "scn", state.LastSCN)
			fmt.Fprintf(c.OutOrStdout(), "scn:%d\n", state.LastSCN)
			return nil
		},
	}
	c.Flags().StringVar(&upstream, "upstream", "", "upstream SQLite database path")
	c.Flags().IntVar(&batchSize, "batch-size", 0, "log entries per batch")
	dbFlags(c)
	return c
}
