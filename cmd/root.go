package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the seqsearch command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "seqsearch",
		Short:         "Binary search over sorted integer sequences",
		Long:          "seqsearch searches sorted integer sequences given inline or stored in a SQLite seq virtual table.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(
		newSearchCommand(),
		newLocateCommand(opts),
		newLoadCommand(opts),
		newReindexCommand(opts),
		newSyncCommand(opts),
	)
	return root
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// dbFlags registers the flags that override Config fields.
func dbFlags(c *cobra.Command) {
	c.Flags().String("dsn", "", "SQLite database path")
	c.Flags().String("table", "", "seq virtual table name")
	c.Flags().String("dataset", "", "dataset id")
	c.Flags().String("index", "", "index kind: auto, brute or sorted")
	c.Flags().Int("busy-timeout", 0, "busy timeout in milliseconds")
}
