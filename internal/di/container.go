package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/internal/commands"
	seedcmd "github.com/goliatone/go-blog/internal/commands/seed"
	"github.com/goliatone/go-blog/internal/docs"
	bloghttp "github.com/goliatone/go-blog/internal/http"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/releases"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/seed"
	"github.com/goliatone/go-blog/internal/storage"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Container wires the blog services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	bunDB          *bun.DB
	ownsDB         bool
	httpClient     *http.Client
	postsFS        fs.FS
	registry       *prom.Registry

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	parser   interfaces.MarkdownParser
	postRepo posts.Repository
	postSvc  posts.Service
	releases *releases.Client
	docsSvc  *docs.Service
	seeder   *seed.Seeder
	metrics  *bloghttp.Metrics
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB uses db instead of opening the configured storage. The caller
// keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider resolved from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithHTTPClient overrides the client used to call the GitHub API.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithCache overrides the cache used for post lookups.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithPostsRepository replaces the bun backed post repository. Without a
// database the documentation service stays unset.
func WithPostsRepository(repo posts.Repository) Option {
	return func(c *Container) {
		c.postRepo = repo
	}
}

// WithPostsFS reads posts from fsys instead of the configured directory.
func WithPostsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.postsFS = fsys
	}
}

// WithMetricsRegistry registers HTTP metrics on reg.
func WithMetricsRegistry(reg *prom.Registry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// NewContainer validates cfg and builds every service. Storage is opened
// only when neither a database nor a post repository was injected.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	if err := c.configureCacheDefaults(); err != nil {
		_ = c.closeOwned()
		return nil, err
	}
	c.configureServices()
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := gologger.Resolve(c.Config.Logging.Provider, gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB != nil || c.postRepo != nil {
		return nil
	}
	db, err := storage.Open(ctx, c.Config.Storage)
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if c.cacheService != nil {
		if c.keySerializer == nil {
			c.keySerializer = repocache.NewDefaultKeySerializer()
		}
		return nil
	}
	if !c.Config.Cache.Enabled {
		return nil
	}
	cacheCfg := repocache.DefaultConfig()
	if c.Config.Cache.TTL > 0 {
		cacheCfg.TTL = c.Config.Cache.TTL
	}
	service, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		return fmt.Errorf("di: cache service: %w", err)
	}
	c.cacheService = service
	c.keySerializer = repocache.NewDefaultKeySerializer()
	return nil
}

func (c *Container) configureServices() {
	cfg := c.Config
	c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
		Extensions: cfg.Blog.Markdown.Extensions,
		HardWraps:  cfg.Blog.Markdown.HardWraps,
		SafeMode:   cfg.Blog.Markdown.SafeMode,
	})

	if c.postRepo == nil && c.bunDB != nil {
		c.postRepo = posts.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}
	c.postSvc = posts.NewService(c.postRepo, posts.WithLogger(logging.PostsLogger(c.loggerProvider)))

	httpClient := c.httpClient
	if httpClient == nil && cfg.Docs.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Docs.Timeout}
	}
	c.releases = releases.NewClient(
		releases.WithBaseURL(cfg.Docs.APIBaseURL),
		releases.WithToken(cfg.Docs.Token),
		releases.WithHTTPClient(httpClient),
		releases.WithLogger(logging.ReleasesLogger(c.loggerProvider)),
	)

	if c.bunDB != nil {
		c.docsSvc = docs.NewService(c.bunDB, c.releases, cfg.Docs.Repo,
			docs.WithParser(c.parser),
			docs.WithDocsPath(cfg.Docs.DocsPath),
			docs.WithLogger(logging.DocsLogger(c.loggerProvider)),
		)
	}

	postsFS := c.postsFS
	if postsFS == nil && strings.TrimSpace(cfg.Blog.PostsDir) != "" {
		postsFS = os.DirFS(cfg.Blog.PostsDir)
	}
	seedOpts := []seed.Option{
		seed.WithPostsRepository(c.postRepo),
		seed.WithReleaseSource(c.releases),
		seed.WithRepository(cfg.Docs.Repo, cfg.Docs.LatestBranch),
		seed.WithParser(c.parser),
		seed.WithConcurrency(cfg.Blog.Concurrency),
		seed.WithPattern(cfg.Blog.Pattern),
		seed.WithLogger(logging.SeedLogger(c.loggerProvider)),
	}
	if c.docsSvc != nil {
		seedOpts = append(seedOpts, seed.WithDocSaver(c.docsSvc))
	}
	c.seeder = seed.NewSeeder(postsFS, seedOpts...)

	if cfg.HTTP.Metrics {
		c.metrics = bloghttp.NewMetrics(c.registry)
	}
}

// LoggerProvider returns the provider every module logger derives from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB returns the bun database, nil when only a repository was injected.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

func (c *Container) PostRepository() posts.Repository {
	return c.postRepo
}

func (c *Container) PostService() posts.Service {
	return c.postSvc
}

func (c *Container) ReleaseClient() *releases.Client {
	return c.releases
}

// DocsService is nil when no database is available.
func (c *Container) DocsService() *docs.Service {
	return c.docsSvc
}

func (c *Container) Seeder() *seed.Seeder {
	return c.seeder
}

// Metrics is nil when metrics are disabled.
func (c *Container) Metrics() *bloghttp.Metrics {
	return c.metrics
}

// Migrate creates the storage schema.
func (c *Container) Migrate(ctx context.Context) error {
	if c.bunDB == nil {
		return errors.New("di: migrate requires a database")
	}
	return storage.Migrate(ctx, c.bunDB)
}

// SeedHandler returns the go-command handler running both seeding halves.
func (c *Container) SeedHandler(opts ...commands.HandlerOption[seedcmd.SeedCommand]) *seedcmd.SeedHandler {
	return seedcmd.NewSeedHandler(c.seeder, commands.CommandLogger(c.loggerProvider, "seed"), opts...)
}

// Site builds the page handlers.
func (c *Container) Site() (*bloghttp.Site, error) {
	opts := []bloghttp.SiteOption{
		bloghttp.WithBlogConfig(c.Config.Blog, c.Config.HTTP),
		bloghttp.WithPostService(c.postSvc),
		bloghttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.docsSvc != nil {
		opts = append(opts, bloghttp.WithDocReader(c.docsSvc, c.Config.Docs.LatestBranch))
	}
	if c.metrics != nil {
		opts = append(opts, bloghttp.WithMetrics(c.metrics))
	}
	return bloghttp.NewSite(opts...)
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	return c.closeOwned()
}

func (c *Container) closeOwned() error {
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}
