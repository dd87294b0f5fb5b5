package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/api"
	"finitefield.org/hanko-blog/internal/blog"
	"finitefield.org/hanko-blog/internal/httpserver"
	"finitefield.org/hanko-blog/internal/platform/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	startedAt := time.Now().UTC()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("blog")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := opts.load(ctx)
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(cfg.WordPress, logger.Named("wordpress"))
	if err != nil {
		return err
	}
	pages, err := blog.NewPages(fetcher,
		blog.WithSiteName(cfg.Pages.SiteName),
		blog.WithLanguage(cfg.Pages.Language),
		blog.WithRevalidate(cfg.Pages.Revalidate),
		blog.WithLogger(logger.Named("pages")),
		blog.WithAPIPath(httpserver.APIPrefix+"/posts"),
	)
	if err != nil {
		return err
	}
	content := api.NewContentHandlers(fetcher,
		api.WithMaxAge(cfg.Pages.Revalidate),
		api.WithLogger(logger.Named("api")),
	)

	health := httpserver.NewHealthHandlers(
		httpserver.WithHealthBuildInfo(buildInfoFromEnv(startedAt)),
		httpserver.WithHealthChecks(httpserver.DependencyCheck{
			Name:    "wordpress",
			Timeout: cfg.WordPress.Timeout,
			Check: func(ctx context.Context) error {
				_, err := fetcher.FetchAllCategories(ctx)
				return err
			},
		}),
	)
	router := httpserver.NewRouter(
		httpserver.WithLogger(logger.Named("http")),
		httpserver.WithHealthHandlers(health),
		httpserver.WithAPIRoutes(content.Routes),
		httpserver.WithPageRoutes(pages.Routes),
		httpserver.WithAssets(blog.Assets()),
		httpserver.WithMiddlewares(middleware.StripSlashes),
	)

	if cfg.Pages.Prerender {
		go func() {
			if _, err := pages.Prerender(ctx); err != nil {
				logger.Warn("prerender failed; pages render on first request", zap.Error(err))
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.String("wordpress", cfg.WordPress.APIURL))
	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("blog listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

func buildInfoFromEnv(started time.Time) httpserver.BuildInfo {
	version := strings.TrimSpace(os.Getenv("BLOG_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("BLOG_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	return httpserver.BuildInfo{Version: version, CommitSHA: commit, StartedAt: started}
}
