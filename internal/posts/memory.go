package posts

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog/internal/identity"
)

// MemoryRepository keeps posts in process. It backs tests and dry runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	posts   map[string]*Post
	authors map[string]*Author
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:   make(map[string]*Post),
		authors: make(map[string]*Author),
	}
}

func (m *MemoryRepository) DeleteAll(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.posts)
	m.posts = make(map[string]*Post)
	return count, nil
}

func (m *MemoryRepository) Create(_ context.Context, post *Post) (*Post, error) {
	if post == nil || strings.TrimSpace(post.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if len(post.Authors) == 0 {
		return nil, ErrAuthorsRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.posts[post.Slug]; exists {
		return nil, &DuplicateSlugError{Slug: post.Slug}
	}

	record := clonePost(post)
	if record.ID == uuid.Nil {
		record.ID = identity.PostUUID(record.Slug)
	}
	for i, author := range record.Authors {
		if author == nil || strings.TrimSpace(author.Name) == "" {
			return nil, ErrAuthorNameNeeded
		}
		name := strings.TrimSpace(author.Name)
		stored, ok := m.authors[name]
		if !ok {
			created := *author
			created.Name = name
			if created.ID == uuid.Nil {
				created.ID = identity.AuthorUUID(name)
			}
			stored = &created
			m.authors[name] = stored
		}
		a := *stored
		record.Authors[i] = &a
	}

	m.posts[record.Slug] = record
	return clonePost(record), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrSlugRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	post, ok := m.posts[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(post), nil
}

func (m *MemoryRepository) List(_ context.Context, opts ListOptions) ([]*Post, error) {
	m.mu.RLock()
	out := make([]*Post, 0, len(m.posts))
	for _, post := range m.posts {
		if post.Draft && !opts.IncludeDrafts {
			continue
		}
		if opts.FeaturedOnly && !post.Featured {
			continue
		}
		out = append(out, clonePost(post))
	}
	m.mu.RUnlock()

	SortByDateDesc(out)

	offset := max(opts.Offset, 0)
	if offset >= len(out) {
		return []*Post{}, nil
	}
	out = out[offset:]
	if limit := opts.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Authors returns the stored authors ordered by name.
func (m *MemoryRepository) Authors(context.Context) ([]*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Author, 0, len(m.authors))
	for _, author := range m.authors {
		a := *author
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SortByDateDesc orders posts newest first; equal dates fall back to slug.
func SortByDateDesc(records []*Post) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].Slug < records[j].Slug
	})
}
