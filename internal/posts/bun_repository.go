package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/internal/identity"
)

// BunRepository stores posts with bun. Slug lookups go through an optional
// go-repository-cache layer; listings always hit the database.
type BunRepository struct {
	db      *bun.DB
	posts   repository.Repository[*Post]
	lookups repository.Repository[*Post]
	authors repository.Repository[*Author]
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache enables caching of slug lookups when both
// cacheService and keySerializer are provided.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := NewPostRepository(db)
	lookups := base
	if cacheService != nil && keySerializer != nil {
		lookups = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunRepository{
		db:      db,
		posts:   base,
		lookups: lookups,
		authors: NewAuthorRepository(db),
	}
}

func (r *BunRepository) DeleteAll(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, errors.New("posts repository: database not configured")
	}
	var deleted int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PostAuthor)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("delete post authors: %w", err)
		}
		result, err := tx.NewDelete().
			Model((*Post)(nil)).
			Where("1 = 1").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete posts: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (r *BunRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	if r.db == nil {
		return nil, errors.New("posts repository: database not configured")
	}
	if post == nil || strings.TrimSpace(post.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if len(post.Authors) == 0 {
		return nil, ErrAuthorsRequired
	}

	record := clonePost(post)
	if record.ID == uuid.Nil {
		record.ID = identity.PostUUID(record.Slug)
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert post %s: %w", record.Slug, err)
		}

		links := make([]*PostAuthor, 0, len(record.Authors))
		seen := map[uuid.UUID]struct{}{}
		for i, author := range record.Authors {
			stored, err := connectOrCreateAuthor(ctx, tx, author)
			if err != nil {
				return err
			}
			record.Authors[i] = stored
			if _, dup := seen[stored.ID]; dup {
				continue
			}
			seen[stored.ID] = struct{}{}
			links = append(links, &PostAuthor{PostID: record.ID, AuthorID: stored.ID, Position: i})
		}

		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("insert post authors %s: %w", record.Slug, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// connectOrCreateAuthor inserts the author unless the name exists and
// returns the stored row. The insert is a no-op on conflict so concurrent
// posts sharing an author do not fail.
func connectOrCreateAuthor(ctx context.Context, tx bun.Tx, author *Author) (*Author, error) {
	if author == nil || strings.TrimSpace(author.Name) == "" {
		return nil, ErrAuthorNameNeeded
	}
	candidate := *author
	candidate.Name = strings.TrimSpace(candidate.Name)
	if candidate.ID == uuid.Nil {
		candidate.ID = identity.AuthorUUID(candidate.Name)
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}

	if _, err := tx.NewInsert().
		Model(&candidate).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert author %s: %w", candidate.Name, err)
	}

	stored := new(Author)
	if err := tx.NewSelect().
		Model(stored).
		Where("?TableAlias.name = ?", candidate.Name).
		Limit(1).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("load author %s: %w", candidate.Name, err)
	}
	return stored, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrSlugRequired
	}
	result, err := r.lookups.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "post", slug)
	}
	// Cached records are shared; never attach authors to them in place.
	post := clonePost(result)
	if err := r.attachAuthors(ctx, []*Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *BunRepository) List(ctx context.Context, opts ListOptions) ([]*Post, error) {
	records, _, err := r.posts.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if !opts.IncludeDrafts {
				q = q.Where("?TableAlias.draft = ?", false)
			}
			if opts.FeaturedOnly {
				q = q.Where("?TableAlias.featured = ?", true)
			}
			return q.OrderExpr("?TableAlias.date DESC").OrderExpr("?TableAlias.slug ASC")
		}),
		repository.SelectPaginate(opts.limit(), max(opts.Offset, 0)),
	)
	if err != nil {
		return nil, fmt.Errorf("post repository error: %w", err)
	}
	if err := r.attachAuthors(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Authors returns every stored author ordered by name.
func (r *BunRepository) Authors(ctx context.Context) ([]*Author, error) {
	records, _, err := r.authors.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.name ASC")
		}),
		repository.SelectPaginate(maxListLimit, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("author repository error: %w", err)
	}
	return records, nil
}

func (r *BunRepository) attachAuthors(ctx context.Context, records []*Post) error {
	if len(records) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Post, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	for _, post := range records {
		if post == nil {
			continue
		}
		post.Authors = []*Author{}
		byID[post.ID] = post
		ids = append(ids, post.ID)
	}

	var links []*PostAuthor
	if err := r.db.NewSelect().
		Model(&links).
		Relation("Author").
		Where("?TableAlias.post_id IN (?)", bun.In(ids)).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx); err != nil {
		return fmt.Errorf("load post authors: %w", err)
	}
	for _, link := range links {
		if post, ok := byID[link.PostID]; ok && link.Author != nil {
			post.Authors = append(post.Authors, link.Author)
		}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
