package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	blog "github.com/goliatone/go-blog"
)

// ServeCmd serves the site until the process is interrupted.
type ServeCmd struct {
	Addr            string        `help:"Listen address, overrides HTTP_ADDR"`
	Migrate         bool          `help:"Create the schema before serving"`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" help:"Grace period for in-flight requests" default:"15s"`
}

func (s *ServeCmd) Run(ctx context.Context, root *CLI) error {
	module, err := root.Module(ctx)
	if err != nil {
		return err
	}
	defer module.Close()

	if s.Migrate {
		if err := module.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	handler, err := module.Handler()
	if err != nil {
		return err
	}
	addr := module.Container().Config.HTTP.Addr
	if s.Addr != "" {
		addr = s.Addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := module.Container().LoggerProvider().GetLogger("blog.cmd")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.server.listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("http.server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// SeedCmd runs the seeding command once and prints its result.
type SeedCmd struct {
	SkipBlog bool `name:"skip-blog" help:"Leave stored posts untouched"`
	SkipDocs bool `name:"skip-docs" help:"Skip the documentation snapshot"`
	DryRun   bool `name:"dry-run" help:"Validate posts and resolve refs without writing"`
	Migrate  bool `help:"Create the schema before seeding" default:"true" negatable:""`
}

func (s *SeedCmd) Run(ctx context.Context, root *CLI) error {
	module, err := root.Module(ctx)
	if err != nil {
		return err
	}
	defer module.Close()

	if s.Migrate && !s.DryRun {
		if err := module.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	result, err := module.Seed(ctx, blog.SeedOptions{
		SkipBlog: s.SkipBlog,
		SkipDocs: s.SkipDocs,
		DryRun:   s.DryRun,
	})
	if err != nil {
		return err
	}
	return printResult(os.Stdout, result)
}

func printResult(w io.Writer, result *blog.SeedResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// MigrateCmd creates the posts and docs tables.
type MigrateCmd struct{}

func (MigrateCmd) Run(ctx context.Context, root *CLI) error {
	module, err := root.Module(ctx)
	if err != nil {
		return err
	}
	defer module.Close()
	return module.Migrate(ctx)
}
