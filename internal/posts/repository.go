package posts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists posts and their authors.
type Repository interface {
	// DeleteAll removes every post and author link. Authors are kept.
	DeleteAll(ctx context.Context) (int, error)
	// Create inserts post and connects or creates each author by name.
	Create(ctx context.Context, post *Post) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, opts ListOptions) ([]*Post, error)
}

// ListOptions filters List results. Results are always date descending.
type ListOptions struct {
	IncludeDrafts bool
	FeaturedOnly  bool
	Limit         int
	Offset        int
}

const maxListLimit = 1000

func (o ListOptions) limit() int {
	if o.Limit <= 0 || o.Limit > maxListLimit {
		return maxListLimit
	}
	return o.Limit
}

// NewPostRepository builds the generic repository for posts keyed by slug.
func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}

// NewAuthorRepository builds the generic repository for authors keyed by name.
func NewAuthorRepository(db *bun.DB) repository.Repository[*Author] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Author]{
		NewRecord: func() *Author { return &Author{} },
		GetID: func(a *Author) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Author, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(a *Author) string {
			return a.Name
		},
	})
}

// CreateSchema creates the post, author and link tables when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*Author)(nil),
		(*Post)(nil),
		(*PostAuthor)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_blog_posts_date ON blog_posts(date)",
		"CREATE INDEX IF NOT EXISTS idx_blog_post_authors_author ON blog_post_authors(author_id)",
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
