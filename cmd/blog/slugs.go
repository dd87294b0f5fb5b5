package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finitefield.org/hanko-blog/internal/platform/observability"
)

func newSlugsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slugs",
		Short: "Print every known post slug, one per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger, err := observability.NewStderrLogger()
			if err != nil {
				return fmt.Errorf("initialise logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			cfg, err := opts.load(ctx)
			if err != nil {
				return err
			}
			fetcher, err := newFetcher(cfg.WordPress, logger.Named("wordpress"))
			if err != nil {
				return err
			}
			for _, slug := range fetcher.FetchAllSlugs(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), slug)
			}
			return nil
		},
	}
}
