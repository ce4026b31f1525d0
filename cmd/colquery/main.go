package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dot5enko/colquery/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "colquery",
		Short:         "Evaluate predicates over a generated column table",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to a yaml/json/toml config file")
	flags.Int("rows", 100_000, "rows to generate")
	flags.Uint64("seed", 1, "seed of the generated data")
	flags.Int("page-rows", storage.DefaultPageRows, "rows per page")
	flags.String("codec", "lz4", "string heap codec: none, lz4 or zstd")
	flags.StringSlice("indexed", []string{"host"}, "columns with a search index")
	flags.Int("workers", 4, "goroutines used by --parallel")
	flags.String("log-level", "info", "debug, info, warn or error")

	root.AddCommand(
		newGenerateCmd(&cfgPath),
		newQueryCmd(&cfgPath),
		newDescribeCmd(&cfgPath),
	)
	return root
}

func setup(cmd *cobra.Command, cfgPath string) (Config, error) {
	cfg, err := loadConfig(cfgPath, cmd.Flags())
	if err != nil {
		return cfg, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()})))
	slog.Debug("config", "value", fmt.Sprintf("%+v", cfg))
	return cfg, nil
}
