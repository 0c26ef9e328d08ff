package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	blog "github.com/goliatone/go-blog"
)

// CLI holds the global flags shared by every command.
type CLI struct {
	EnvFile   []string `name:"env-file" help:"Dotenv files loaded before the process environment" type:"path"`
	LogLevel  string   `name:"log-level" help:"Override LOG_LEVEL"`
	LogFormat string   `name:"log-format" help:"Override LOG_FORMAT (json, console or pretty)"`
	Verbose   bool     `short:"v" help:"Shorthand for --log-level=debug"`

	Serve   ServeCmd   `cmd:"" help:"Serve the blog and documentation pages"`
	Seed    SeedCmd    `cmd:"" help:"Replace stored posts and snapshot release docs"`
	Migrate MigrateCmd `cmd:"" help:"Create the database schema"`
}

// Config loads the runtime configuration and applies the logging flags.
func (c *CLI) Config() (blog.Config, error) {
	cfg, err := blog.LoadConfig(c.EnvFile...)
	if err != nil {
		return blog.Config{}, fmt.Errorf("load config: %w", err)
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.Verbose {
		cfg.Logging.Level = "debug"
	}
	if c.LogFormat != "" {
		cfg.Logging.Format = c.LogFormat
	}
	return cfg, nil
}

// Module builds a blog module from the loaded configuration.
func (c *CLI) Module(ctx context.Context) (*blog.Module, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	module, err := blog.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}
	return module, nil
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("blog"),
		kong.Description("Markdown blog and release documentation server."),
		kong.UsageOnError(),
	}
	return kong.New(cli, append(base, opts...)...)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "blog %s: %v\n", kctx.Command(), err)
		os.Exit(1)
	}
}
