package seedcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/seed"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	seedOperation     = "seed.run"
	seedBlogOperation = "seed.blog"
	seedDocsOperation = "seed.docs"
)

// Seeder is the subset of *seed.Seeder the handlers drive.
type Seeder interface {
	Run(ctx context.Context, opts seed.RunOptions) (*seed.Result, error)
	SeedBlog(ctx context.Context, opts seed.BlogOptions) (*seed.BlogResult, error)
	SeedDocs(ctx context.Context, opts seed.DocsOptions) (*seed.DocsResult, error)
}

var (
	_ command.Commander[SeedCommand]     = (*SeedHandler)(nil)
	_ command.Commander[SeedBlogCommand] = (*SeedBlogHandler)(nil)
	_ command.Commander[SeedDocsCommand] = (*SeedDocsHandler)(nil)
)

// SeedHandler runs both seeding halves.
type SeedHandler struct {
	inner *commands.Handler[SeedCommand]
	last  *seed.Result
}

func NewSeedHandler(seeder Seeder, logger interfaces.Logger, opts ...commands.HandlerOption[SeedCommand]) *SeedHandler {
	logger = logging.Ensure(logger)
	h := &SeedHandler{}
	exec := func(ctx context.Context, msg SeedCommand) error {
		result, err := seeder.Run(ctx, seed.RunOptions{
			SkipBlog: msg.SkipBlog,
			SkipDocs: msg.SkipDocs,
			DryRun:   msg.DryRun,
		})
		h.last = result
		if err != nil {
			return err
		}
		logResult(logger, result, msg.DryRun)
		return nil
	}

	handlerOpts := []commands.HandlerOption[SeedCommand]{
		commands.WithLogger[SeedCommand](logger),
		commands.WithOperation[SeedCommand](seedOperation),
		commands.WithMessageFields(func(msg SeedCommand) map[string]any {
			return map[string]any{
				"skip_blog": msg.SkipBlog,
				"skip_docs": msg.SkipDocs,
				"dry_run":   msg.DryRun,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SeedCommand](logger)),
		commands.WithErrorClassifier[SeedCommand](classifySeedError),
	}
	h.inner = commands.NewHandler(exec, append(handlerOpts, opts...)...)
	return h
}

// Execute satisfies command.Commander[SeedCommand].
func (h *SeedHandler) Execute(ctx context.Context, msg SeedCommand) error {
	return h.inner.Execute(ctx, msg)
}

// Result returns the outcome of the last execution, nil before the first.
func (h *SeedHandler) Result() *seed.Result {
	return h.last
}

// SeedBlogHandler seeds posts only.
type SeedBlogHandler struct {
	inner *commands.Handler[SeedBlogCommand]
}

func NewSeedBlogHandler(seeder Seeder, logger interfaces.Logger, opts ...commands.HandlerOption[SeedBlogCommand]) *SeedBlogHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg SeedBlogCommand) error {
		result, err := seeder.SeedBlog(ctx, seed.BlogOptions{DryRun: msg.DryRun})
		if err != nil {
			return err
		}
		logResult(logger, &seed.Result{Blog: result}, msg.DryRun)
		return nil
	}
	handlerOpts := []commands.HandlerOption[SeedBlogCommand]{
		commands.WithLogger[SeedBlogCommand](logger),
		commands.WithOperation[SeedBlogCommand](seedBlogOperation),
		commands.WithMessageFields(func(msg SeedBlogCommand) map[string]any {
			return map[string]any{"dry_run": msg.DryRun}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SeedBlogCommand](logger)),
		commands.WithErrorClassifier[SeedBlogCommand](classifySeedError),
	}
	return &SeedBlogHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *SeedBlogHandler) Execute(ctx context.Context, msg SeedBlogCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SeedDocsHandler snapshots documentation only.
type SeedDocsHandler struct {
	inner *commands.Handler[SeedDocsCommand]
}

func NewSeedDocsHandler(seeder Seeder, logger interfaces.Logger, opts ...commands.HandlerOption[SeedDocsCommand]) *SeedDocsHandler {
	logger = logging.Ensure(logger)
	exec := func(ctx context.Context, msg SeedDocsCommand) error {
		result, err := seeder.SeedDocs(ctx, seed.DocsOptions{DryRun: msg.DryRun})
		if err != nil {
			return err
		}
		logResult(logger, &seed.Result{Docs: result}, msg.DryRun)
		return nil
	}
	handlerOpts := []commands.HandlerOption[SeedDocsCommand]{
		commands.WithLogger[SeedDocsCommand](logger),
		commands.WithOperation[SeedDocsCommand](seedDocsOperation),
		commands.WithMessageFields(func(msg SeedDocsCommand) map[string]any {
			return map[string]any{"dry_run": msg.DryRun}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SeedDocsCommand](logger)),
		commands.WithErrorClassifier[SeedDocsCommand](classifySeedError),
	}
	return &SeedDocsHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *SeedDocsHandler) Execute(ctx context.Context, msg SeedDocsCommand) error {
	return h.inner.Execute(ctx, msg)
}

func logResult(logger interfaces.Logger, result *seed.Result, dryRun bool) {
	if result == nil {
		return
	}
	fields := map[string]any{"dry_run": dryRun}
	if result.Blog != nil {
		fields["posts_deleted"] = result.Blog.Deleted
		fields["posts_created"] = len(result.Blog.Created)
	}
	if result.Docs != nil {
		fields["docs_latest"] = result.Docs.Latest
		fields["docs_refs"] = len(result.Docs.Refs)
	}
	logging.WithFields(logger, fields).Info("seed.command.completed")
}
