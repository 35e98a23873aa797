// cmd/configserver/main.go
//
// Process entry point.
//
// Boot order
// ----------
//
//  1. Start the daily rotating logger (tees to console in a TTY).
//
//  2. Load and validate startup configuration (--config, SCS_ env
//     overrides, vault: references).
//
//  3. Build the environment registry and the basic-auth credentials.
//
//  4. Sync every git mirror once, concurrently; any failure aborts
//     startup.
//
//  5. Start one background refresh loop per environment.
//
//  6. Serve the protocol routes under the base path, with /metrics
//     mounted outside both the base path and authentication.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/martinmares/simple-config-server/internal/config"
	"github.com/martinmares/simple-config-server/internal/environment"
	"github.com/martinmares/simple-config-server/internal/gitrepo"
	"github.com/martinmares/simple-config-server/internal/logger"
	"github.com/martinmares/simple-config-server/internal/server"
	"github.com/martinmares/simple-config-server/internal/template"
)

// version is stamped by the build via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:          "configserver",
		Short:        "Git-backed, template-aware configuration server",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to configuration file (YAML)")
	return cmd
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func run(cfgPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootDir, _ := os.Getwd()
	log, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("loading configuration", "file", cfgPath)
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	reg, err := environment.Build(cfg, log)
	if err != nil {
		return err
	}

	auth, err := server.LoadAuth(ctx, log)
	if err != nil {
		return err
	}

	// Initial mirror sync, fatal on any failure.
	g, gctx := errgroup.WithContext(ctx)
	for _, env := range reg.All() {
		g.Go(func() error {
			if err := env.Backend.Sync(gctx, env.Git); err != nil {
				return fmt.Errorf("environment %s: initial sync: %w", env.Name, err)
			}
			log.Infow("mirror ready",
				"environment", env.Name, "repo", env.Git.RepoURL,
				"branch", env.Git.Branch, "workdir", env.Git.Workdir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorw("startup sync failed", "err", err)
		return err
	}

	for _, env := range reg.All() {
		go gitrepo.NewRefresher(env.Name, env.Git, env.Backend, log).Run(ctx)
	}

	srv := server.New(reg, template.New(), auth, cfg.HTTP.BasePath, log)

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", srv.Router())

	httpSrv := server.NewHTTPServer(cfg.HTTP.BindAddr, mux)
	log.Infow("listening",
		"addr", cfg.HTTP.BindAddr,
		"base_path", server.NormalizeBasePath(cfg.HTTP.BasePath),
		"environments", len(reg.All()))

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
