package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// DefaultCacheControl is the policy applied to listing responses.
const DefaultCacheControl = "max-age=300, stale-while-revalidate=604800"

var ErrDocsRepoRequired = errors.New("blog config: REPO is required to seed documentation")
var ErrDocsBranchRequired = errors.New("blog config: REPO_LATEST_BRANCH is required to seed documentation")
var ErrInvalidConfig = errors.New("blog config: invalid configuration")

// Config aggregates every runtime knob of the blog site and its seeder.
type Config struct {
	Blog    BlogConfig
	Docs    DocsConfig
	Storage StorageConfig
	Cache   CacheConfig
	HTTP    HTTPConfig
	Logging LoggingConfig
}

// BlogConfig describes where posts live and how the listing page is framed.
type BlogConfig struct {
	PostsDir         string
	Pattern          string
	CacheControl     string
	Title            string
	Description      string
	BaseURL          string
	NewsletterAction string
	Concurrency      int
	Markdown         MarkdownConfig
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// DocsConfig targets the GitHub repository whose docs are snapshotted.
type DocsConfig struct {
	Repo         string
	LatestBranch string
	APIBaseURL   string
	Token        string
	DocsPath     string
	Timeout      time.Duration
	Concurrency  int
}

type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig toggles the go-repository-cache layer in front of post lookups.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type HTTPConfig struct {
	Addr     string
	BasePath string
	Metrics  bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns settings suitable for local development.
func DefaultConfig() Config {
	return Config{
		Blog: BlogConfig{
			PostsDir:     "data/posts",
			Pattern:      "*.md",
			CacheControl: DefaultCacheControl,
			Title:        "Blog",
			Description:  "Thoughts, tutorials, community posts, and other news.",
			Concurrency:  4,
			Markdown: MarkdownConfig{
				Extensions: []string{"gfm", "footnote"},
			},
		},
		Docs: DocsConfig{
			APIBaseURL:  "https://api.github.com",
			DocsPath:    "docs",
			Timeout:     30 * time.Second,
			Concurrency: 4,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:blog.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Minute,
		},
		HTTP: HTTPConfig{
			Addr:     ":3000",
			BasePath: "/blog",
			Metrics:  true,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate checks the configuration needed by every command. Documentation
// specific requirements are checked separately by ValidateDocs.
func (cfg Config) Validate() error {
	err := validation.Errors{
		"blog": validation.ValidateStruct(&cfg.Blog,
			validation.Field(&cfg.Blog.PostsDir, validation.Required),
			validation.Field(&cfg.Blog.Pattern, validation.Required),
			validation.Field(&cfg.Blog.Concurrency, validation.Min(0)),
		),
		"storage": validation.ValidateStruct(&cfg.Storage,
			validation.Field(&cfg.Storage.Driver, validation.Required, validation.In("sqlite", "sqlite3", "postgres", "pg")),
			validation.Field(&cfg.Storage.DSN, validation.Required),
		),
		"http": validation.ValidateStruct(&cfg.HTTP,
			validation.Field(&cfg.HTTP.BasePath, validation.By(absolutePath)),
		),
		"logging": validation.ValidateStruct(&cfg.Logging,
			validation.Field(&cfg.Logging.Provider, validation.In("gologger", "none")),
			validation.Field(&cfg.Logging.Level, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal")),
			validation.Field(&cfg.Logging.Format, validation.In("json", "console", "pretty")),
		),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateDocs checks the settings required to snapshot documentation.
func (cfg Config) ValidateDocs() error {
	if strings.TrimSpace(cfg.Docs.Repo) == "" {
		return ErrDocsRepoRequired
	}
	if strings.TrimSpace(cfg.Docs.LatestBranch) == "" {
		return ErrDocsBranchRequired
	}
	return nil
}

func absolutePath(value any) error {
	path, _ := value.(string)
	if path != "" && !strings.HasPrefix(path, "/") {
		return validation.NewError("validation_base_path", "must start with /")
	}
	return nil
}

// LookupFunc reads a single environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables on cfg. A nil lookup reads the
// process environment.
func (cfg *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}

	if v, ok := get("REPO"); ok {
		cfg.Docs.Repo = v
	}
	if v, ok := get("REPO_LATEST_BRANCH"); ok {
		cfg.Docs.LatestBranch = v
	}
	if v, ok := get("GITHUB_TOKEN"); ok {
		cfg.Docs.Token = v
	}
	if v, ok := get("GITHUB_API_URL"); ok {
		cfg.Docs.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := get("DATABASE_URL"); ok {
		cfg.Storage.DSN = v
		if strings.HasPrefix(v, "postgres://") || strings.HasPrefix(v, "postgresql://") {
			cfg.Storage.Driver = "postgres"
		}
	}
	if v, ok := get("BLOG_POSTS_DIR"); ok {
		cfg.Blog.PostsDir = v
	}
	if v, ok := get("BLOG_BASE_URL"); ok {
		cfg.Blog.BaseURL = v
	}
	if v, ok := get("PORT"); ok {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: PORT %q is not a number", ErrInvalidConfig, v)
		}
		cfg.HTTP.Addr = ":" + v
	}
	if v, ok := get("HTTP_ADDR"); ok {
		cfg.HTTP.Addr = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.Logging.Format = strings.ToLower(v)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
