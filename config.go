package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrDocsRepoRequired   = runtimeconfig.ErrDocsRepoRequired
	ErrDocsBranchRequired = runtimeconfig.ErrDocsBranchRequired
	ErrInvalidConfig      = runtimeconfig.ErrInvalidConfig
)

// DefaultCacheControl is the Cache-Control policy of the listing page.
const DefaultCacheControl = runtimeconfig.DefaultCacheControl

type (
	Config         = runtimeconfig.Config
	BlogConfig     = runtimeconfig.BlogConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	DocsConfig     = runtimeconfig.DocsConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	HTTPConfig     = runtimeconfig.HTTPConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	LookupFunc     = runtimeconfig.LookupFunc
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig returns the defaults overlaid with the given .env files and
// the process environment.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := runtimeconfig.LoadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.ApplyEnv(nil); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
