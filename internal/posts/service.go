package posts

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Service exposes read access to published posts.
type Service interface {
	Listings(ctx context.Context) ([]Listing, error)
	Get(ctx context.Context, slug string) (*Post, error)
}

// ServiceOption configures the post service.
type ServiceOption func(*service)

// WithLogger overrides the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDrafts makes Listings include draft posts, e.g. for previews.
func WithDrafts(enabled bool) ServiceOption {
	return func(s *service) {
		s.includeDrafts = enabled
	}
}

type service struct {
	repo          Repository
	logger        interfaces.Logger
	includeDrafts bool
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Listings(ctx context.Context) ([]Listing, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNeeded
	}
	records, err := s.repo.List(ctx, ListOptions{IncludeDrafts: s.includeDrafts})
	if err != nil {
		s.logger.Error("posts.listings.failed", "error", err)
		return nil, err
	}
	SortByDateDesc(records)
	listings := lo.Map(records, func(p *Post, _ int) Listing { return ToListing(p) })
	s.logger.Debug("posts.listings.loaded", "count", len(listings))
	return listings, nil
}

func (s *service) Get(ctx context.Context, slug string) (*Post, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNeeded
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.Draft && !s.includeDrafts {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return post, nil
}
