package docs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrRefRequired  = errors.New("docs: ref is required")
	ErrRepoRequired = errors.New("docs: repository is required")
)

// NotFoundError reports a missing ref or page.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Downloader fetches a gzipped repository tarball at a ref.
type Downloader interface {
	DownloadTarball(ctx context.Context, repo, ref string) (io.ReadCloser, error)
}

// Service snapshots repository documentation into the database.
type Service struct {
	db       *bun.DB
	refs     repository.Repository[*GitRef]
	docs     repository.Repository[*Doc]
	source   Downloader
	parser   interfaces.MarkdownParser
	repo     string
	docsPath string
	logger   interfaces.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithParser(parser interfaces.MarkdownParser) Option {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithDocsPath sets the repository directory holding documentation.
func WithDocsPath(dir string) Option {
	return func(s *Service) {
		if trimmed := strings.Trim(strings.TrimSpace(dir), "/"); trimmed != "" {
			s.docsPath = trimmed
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(db *bun.DB, source Downloader, repo string, opts ...Option) *Service {
	s := &Service{
		db:       db,
		refs:     NewGitRefRepository(db),
		docs:     NewDocRepository(db),
		source:   source,
		parser:   markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		repo:     strings.TrimSpace(repo),
		docsPath: "docs",
		logger:   logging.NoOp(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Save downloads the repository at ref, renders every markdown page under the
// docs directory and stores them with the rendered release notes. Pages of
// ref that disappeared from the tarball are removed.
func (s *Service) Save(ctx context.Context, ref, releaseNotes string) (*Snapshot, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrRefRequired
	}
	if s.repo == "" || s.source == nil {
		return nil, ErrRepoRequired
	}
	logger := logging.WithFields(s.logger, map[string]any{"ref": ref})

	body, err := s.source.DownloadTarball(ctx, s.repo, ref)
	if err != nil {
		return nil, fmt.Errorf("docs: download %s: %w", ref, err)
	}
	documents, err := ExtractMarkdown(body, s.docsPath)
	body.Close()
	if err != nil {
		return nil, err
	}

	notes, err := s.parser.Parse([]byte(releaseNotes))
	if err != nil {
		return nil, fmt.Errorf("docs: render release notes for %s: %w", ref, err)
	}

	now := s.now()
	records := make([]*Doc, 0, len(documents))
	for _, document := range documents {
		record, err := s.buildDoc(ref, document, now)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	gitRef := &GitRef{
		ID:           identity.GitRefUUID(ref),
		Ref:          ref,
		ReleaseNotes: string(notes),
		DocCount:     len(records),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	snapshot := &Snapshot{Ref: ref, Saved: len(records)}
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(gitRef).
			On("CONFLICT (ref) DO UPDATE").
			Set("release_notes = EXCLUDED.release_notes").
			Set("doc_count = EXCLUDED.doc_count").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert git ref %s: %w", ref, err)
		}

		for _, record := range records {
			if _, err := tx.NewInsert().
				Model(record).
				On("CONFLICT (ref, filename) DO UPDATE").
				Set("slug = EXCLUDED.slug").
				Set("title = EXCLUDED.title").
				Set("description = EXCLUDED.description").
				Set("sort_order = EXCLUDED.sort_order").
				Set("hidden = EXCLUDED.hidden").
				Set("toc = EXCLUDED.toc").
				Set("html = EXCLUDED.html").
				Set("md = EXCLUDED.md").
				Set("checksum = EXCLUDED.checksum").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert doc %s@%s: %w", record.Filename, ref, err)
			}
		}

		stale := tx.NewDelete().Model((*Doc)(nil)).Where("?TableAlias.ref = ?", ref)
		if len(records) > 0 {
			filenames := make([]string, 0, len(records))
			for _, record := range records {
				filenames = append(filenames, record.Filename)
			}
			stale = stale.Where("?TableAlias.filename NOT IN (?)", bun.In(filenames))
		}
		result, err := stale.Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete stale docs %s: %w", ref, err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}
		snapshot.Removed = int(removed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("docs.snapshot.saved", "saved", snapshot.Saved, "removed", snapshot.Removed)
	return snapshot, nil
}

func (s *Service) buildDoc(ref string, document *interfaces.Document, now time.Time) (*Doc, error) {
	var fm FrontMatter
	body, err := markdown.DecodeFrontMatter(document.Source, &fm)
	if err != nil {
		return nil, fmt.Errorf("docs: %s@%s: %w", document.Path, ref, err)
	}
	if err := fm.Validate(); err != nil {
		return nil, fmt.Errorf("docs: %s@%s: %w", document.Path, ref, err)
	}
	html, err := s.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("docs: render %s@%s: %w", document.Path, ref, err)
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = TitleFromFilename(document.Path)
	}
	return &Doc{
		ID:          identity.DocUUID(ref, document.Path),
		Ref:         ref,
		Filename:    document.Path,
		Slug:        document.Slug,
		Title:       title,
		Description: strings.TrimSpace(fm.Description),
		Order:       fm.Order,
		Hidden:      fm.Hidden,
		TOC:         fm.TOC == nil || *fm.TOC,
		HTML:        string(html),
		Markdown:    string(body),
		Checksum:    hex.EncodeToString(document.Checksum),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetRef returns the stored snapshot metadata for ref.
func (s *Service) GetRef(ctx context.Context, ref string) (*GitRef, error) {
	record, err := s.refs.GetByIdentifier(ctx, ref)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &NotFoundError{Resource: "git ref", Key: ref}
		}
		return nil, err
	}
	return record, nil
}

// List returns the visible pages of ref ordered by their order field, then
// by filename.
func (s *Service) List(ctx context.Context, ref string) ([]*Doc, error) {
	records, _, err := s.docs.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.ref = ?", ref).Where("?TableAlias.hidden = ?", false)
		}),
		repository.SelectPaginate(5000, 0),
	)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := records[i].Order, records[j].Order
		switch {
		case oi != nil && oj != nil && *oi != *oj:
			return *oi < *oj
		case oi != nil && oj == nil:
			return true
		case oi == nil && oj != nil:
			return false
		}
		return records[i].Filename < records[j].Filename
	})
	return records, nil
}

// Get returns the page of ref with slug.
func (s *Service) Get(ctx context.Context, ref, slug string) (*Doc, error) {
	records, _, err := s.docs.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.ref = ?", ref).
				Where("?TableAlias.slug = ?", slug).
				OrderExpr("?TableAlias.filename ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "doc", Key: ref + ":" + slug}
	}
	return records[0], nil
}
