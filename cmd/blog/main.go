package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/platform/config"
	"finitefield.org/hanko-blog/internal/wordpress"
)

type rootOptions struct {
	configFile string
	envFile    string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "blog",
		Short: "Serve a blog backed by a headless WordPress GraphQL endpoint",
		Long: `blog renders posts and categories from a WordPress GraphQL endpoint.

Available subcommands:
  serve - Run the HTTP server (pages, JSON routes, filter assets)
  slugs - Print every known post slug
  posts - List posts from a running server, optionally by category`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (or set BLOG_CONFIG_FILE)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with local overrides; empty disables")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newSlugsCmd(opts))
	root.AddCommand(newPostsCmd())
	return root
}

func (o *rootOptions) load(ctx context.Context) (config.Config, error) {
	loadOpts := []config.Option{config.WithEnvFile(o.envFile)}
	if strings.TrimSpace(o.configFile) != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configFile))
	}
	cfg, err := config.Load(ctx, loadOpts...)
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg config.WordPressConfig, logger *zap.Logger) (*wordpress.Fetcher, error) {
	client, err := wordpress.NewClient(cfg.APIURL,
		wordpress.WithTimeout(cfg.Timeout),
		wordpress.WithBearerToken(cfg.AuthToken),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise wordpress client: %w", err)
	}
	return wordpress.NewFetcher(client,
		wordpress.WithLogger(logger),
		wordpress.WithDefaultLimit(cfg.PostLimit),
	), nil
}
