package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-slug"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/docs"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/releases"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrPostsRepositoryRequired = errors.New("seed: posts repository is required")
	ErrReleaseSourceRequired   = errors.New("seed: release source is required")
	ErrDocSaverRequired        = errors.New("seed: docs service is required")
	ErrRepoRequired            = errors.New("seed: REPO is not defined")
	ErrLatestBranchRequired    = errors.New("seed: REPO_LATEST_BRANCH is not defined")
)

const defaultConcurrency = 4

// ReleaseSource lists the releases of a GitHub repository.
type ReleaseSource interface {
	ListReleases(ctx context.Context, repo string) ([]releases.Release, error)
}

// DocSaver persists a documentation snapshot for a git ref.
type DocSaver interface {
	Save(ctx context.Context, ref, releaseNotes string) (*docs.Snapshot, error)
}

// Seeder loads blog posts from markdown and snapshots documentation.
type Seeder struct {
	loader       *markdown.Loader
	parser       interfaces.MarkdownParser
	posts        posts.Repository
	releases     ReleaseSource
	docs         DocSaver
	repo         string
	latestBranch string
	concurrency  int
	pattern      string
	logger       interfaces.Logger
}

// Option configures a Seeder.
type Option func(*Seeder)

func WithPostsRepository(repo posts.Repository) Option {
	return func(s *Seeder) {
		s.posts = repo
	}
}

func WithReleaseSource(source ReleaseSource) Option {
	return func(s *Seeder) {
		s.releases = source
	}
}

func WithDocSaver(saver DocSaver) Option {
	return func(s *Seeder) {
		s.docs = saver
	}
}

// WithRepository names the GitHub repository and the branch snapshotted as
// the latest documentation.
func WithRepository(repo, latestBranch string) Option {
	return func(s *Seeder) {
		s.repo = strings.TrimSpace(repo)
		s.latestBranch = strings.TrimSpace(latestBranch)
	}
}

func WithParser(parser interfaces.MarkdownParser) Option {
	return func(s *Seeder) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithConcurrency bounds parallel post inserts and snapshot saves.
func WithConcurrency(limit int) Option {
	return func(s *Seeder) {
		if limit > 0 {
			s.concurrency = limit
		}
	}
}

// WithPattern overrides the "*.md" file filter.
func WithPattern(pattern string) Option {
	return func(s *Seeder) {
		if strings.TrimSpace(pattern) != "" {
			s.pattern = pattern
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSeeder builds a seeder reading posts from the top level of postsFS.
func NewSeeder(postsFS fs.FS, opts ...Option) *Seeder {
	s := &Seeder{
		parser:      markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		concurrency: defaultConcurrency,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if postsFS != nil {
		s.loader = markdown.NewLoader(postsFS, markdown.LoaderConfig{Pattern: s.pattern})
	}
	return s
}

// LoadPost reads, validates and renders the post stored in "<slug>.md".
// A missing file yields markdown.ErrNotFound.
func (s *Seeder) LoadPost(ctx context.Context, postSlug string) (*posts.Post, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("%w: %q", markdown.ErrNotFound, postSlug)
	}
	doc, err := s.loader.Load(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	return s.parse(doc)
}

// LoadPosts reads every post, newest first. The first invalid post aborts
// the load.
func (s *Seeder) LoadPosts(ctx context.Context) ([]*posts.Post, error) {
	if s.loader == nil {
		return []*posts.Post{}, nil
	}
	documents, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*posts.Post, 0, len(documents))
	for _, doc := range documents {
		post, err := s.parse(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	posts.SortByDateDesc(out)
	return out, nil
}

func (s *Seeder) parse(doc *interfaces.Document) (*posts.Post, error) {
	if !slug.IsValid(doc.Slug) {
		suggestion, _ := slug.Normalize(doc.Slug)
		s.logger.Warn("seed.blog.slug_not_url_safe", "slug", doc.Slug, "suggested", suggestion)
	}
	return posts.ParseDocument(doc, s.parser)
}

// BlogOptions tunes SeedBlog.
type BlogOptions struct {
	// DryRun loads and validates posts without touching storage.
	DryRun bool
}

// BlogResult reports what SeedBlog did.
type BlogResult struct {
	Deleted int
	Created []string
	DryRun  bool
}

// SeedBlog replaces the stored posts with the ones on disk. Every post is
// validated before existing rows are deleted, so a bad file leaves storage
// untouched.
func (s *Seeder) SeedBlog(ctx context.Context, opts BlogOptions) (*BlogResult, error) {
	if s.posts == nil && !opts.DryRun {
		return nil, ErrPostsRepositoryRequired
	}

	loaded, err := s.LoadPosts(ctx)
	if err != nil {
		return nil, err
	}
	result := &BlogResult{DryRun: opts.DryRun, Created: make([]string, 0, len(loaded))}
	if opts.DryRun {
		for _, post := range loaded {
			result.Created = append(result.Created, post.Slug)
		}
		s.logger.Info("seed.blog.dry_run", "posts", len(loaded))
		return result, nil
	}

	s.logger.Info("seed.blog.deleting")
	deleted, err := s.posts.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed: delete old posts: %w", err)
	}
	result.Deleted = deleted
	s.logger.Info("seed.blog.deleted", "count", deleted)

	created := make([]string, len(loaded))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, post := range loaded {
		group.Go(func() error {
			logger := logging.WithPostContext(s.logger, post.Slug, "", "create")
			logger.Debug("seed.blog.post_adding")
			if _, err := s.posts.Create(groupCtx, post); err != nil {
				return fmt.Errorf("seed: add post %s: %w", post.Slug, err)
			}
			logger.Info("seed.blog.post_created")
			created[i] = post.Slug
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	result.Created = created
	return result, nil
}

// DocsOptions tunes SeedDocs.
type DocsOptions struct {
	// DryRun resolves the refs to snapshot without downloading them.
	DryRun bool
}

// DocsResult lists the refs snapshotted, release refs first.
type DocsResult struct {
	Latest string
	Refs   []string
	DryRun bool
}

// SeedDocs snapshots the docs of every release at or above the latest
// version, then the latest branch with empty release notes.
func (s *Seeder) SeedDocs(ctx context.Context, opts DocsOptions) (*DocsResult, error) {
	if s.latestBranch == "" {
		return nil, ErrLatestBranchRequired
	}
	if s.repo == "" {
		return nil, ErrRepoRequired
	}
	if s.releases == nil {
		return nil, ErrReleaseSourceRequired
	}
	if s.docs == nil && !opts.DryRun {
		return nil, ErrDocSaverRequired
	}

	list, err := s.releases.ListReleases(ctx, s.repo)
	if err != nil {
		return nil, fmt.Errorf("seed: list releases: %w", err)
	}
	latest, err := releases.LatestVersion(list)
	if err != nil {
		return nil, err
	}
	s.logger.Info("seed.docs.latest_release", "version", latest.String())

	selected := releases.ReleasesSince(list, latest)
	result := &DocsResult{Latest: latest.String(), DryRun: opts.DryRun}
	for _, release := range selected {
		result.Refs = append(result.Refs, release.Ref())
	}
	result.Refs = append(result.Refs, s.latestBranch)
	if opts.DryRun {
		return result, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, release := range selected {
		group.Go(func() error {
			snapshot, err := s.docs.Save(groupCtx, release.Ref(), release.Body)
			if err != nil {
				return fmt.Errorf("seed: save docs %s: %w", release.Ref(), err)
			}
			s.logger.Info("seed.docs.saved", "ref", snapshot.Ref, "docs", snapshot.Saved)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	snapshot, err := s.docs.Save(ctx, s.latestBranch, "")
	if err != nil {
		return nil, fmt.Errorf("seed: save docs %s: %w", s.latestBranch, err)
	}
	s.logger.Info("seed.docs.saved", "ref", snapshot.Ref, "docs", snapshot.Saved)
	return result, nil
}

// RunOptions selects which halves Run executes.
type RunOptions struct {
	SkipBlog bool
	SkipDocs bool
	DryRun   bool
}

// Result aggregates Run outcomes. Skipped halves stay nil.
type Result struct {
	Blog *BlogResult
	Docs *DocsResult
}

// Run seeds posts and docs concurrently and returns the first error.
func (s *Seeder) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	result := &Result{}
	group, groupCtx := errgroup.WithContext(ctx)
	if !opts.SkipBlog {
		group.Go(func() error {
			blog, err := s.SeedBlog(groupCtx, BlogOptions{DryRun: opts.DryRun})
			result.Blog = blog
			return err
		})
	}
	if !opts.SkipDocs {
		group.Go(func() error {
			docsResult, err := s.SeedDocs(groupCtx, DocsOptions{DryRun: opts.DryRun})
			result.Docs = docsResult
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
