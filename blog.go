package blog

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/uptrace/bun"

	seedcmd "github.com/goliatone/go-blog/internal/commands/seed"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/seed"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// PostService exports the post read contract.
type PostService = posts.Service

// Listing exports the listing projection served by the blog page.
type Listing = posts.Listing

// Post exports the stored post model.
type Post = posts.Post

// SeedOptions selects which halves a seed run executes.
type SeedOptions = seed.RunOptions

// SeedResult reports what a seed run did.
type SeedResult = seed.Result

// Option customises module wiring.
type Option = di.Option

// WithDB uses db instead of opening the configured storage.
func WithDB(db *bun.DB) Option {
	return di.WithBunDB(db)
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

// WithHTTPClient sets the client used to reach the GitHub API.
func WithHTTPClient(client *http.Client) Option {
	return di.WithHTTPClient(client)
}

// WithPostsFS reads markdown posts from fsys.
func WithPostsFS(fsys fs.FS) Option {
	return di.WithPostsFS(fsys)
}

// Module is the top level blog runtime.
type Module struct {
	container *di.Container
}

// New builds a module from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Migrate creates the database schema.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Posts returns the post read service.
func (m *Module) Posts() PostService {
	return m.container.PostService()
}

// Seed replaces stored posts and snapshots documentation through the seed
// command handler.
func (m *Module) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	if opts.SkipBlog && opts.SkipDocs {
		return nil, errors.New("blog: nothing to seed")
	}
	if !opts.SkipDocs && !opts.DryRun {
		if err := m.container.Config.ValidateDocs(); err != nil {
			return nil, err
		}
	}
	handler := m.container.SeedHandler()
	err := handler.Execute(ctx, seedcmd.SeedCommand{
		SkipBlog: opts.SkipBlog,
		SkipDocs: opts.SkipDocs,
		DryRun:   opts.DryRun,
	})
	return handler.Result(), err
}

// Handler returns the HTTP handler serving the blog pages.
func (m *Module) Handler() (http.Handler, error) {
	site, err := m.container.Site()
	if err != nil {
		return nil, err
	}
	return site.Handler(), nil
}

// Close releases resources opened by New.
func (m *Module) Close() error {
	return m.container.Close()
}
