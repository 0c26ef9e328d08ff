package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrNotFound reports a slug without a matching markdown file.
var ErrNotFound = errors.New("markdown: document not found")

// LoaderConfig configures file discovery.
type LoaderConfig struct {
	// Pattern filters file names, defaults to "*.md".
	Pattern string
}

// Loader reads markdown documents from the top level of a filesystem.
// Sub-directories are ignored.
type Loader struct {
	fs      fs.FS
	pattern string
}

func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{fs: filesystem, pattern: pattern}
}

// List returns the file names matching the loader pattern, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(l.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("markdown loader list: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := path.Match(l.pattern, entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadAll reads every listed file.
func (l *Loader) LoadAll(ctx context.Context) ([]*interfaces.Document, error) {
	names, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]*interfaces.Document, 0, len(names))
	for _, name := range names {
		doc, err := l.LoadFile(ctx, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Load reads the document for slug. Slugs that would escape the root, and
// slugs without a file, yield ErrNotFound.
func (l *Loader) Load(ctx context.Context, slug string) (*interfaces.Document, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return l.LoadFile(ctx, slug+".md")
}

// LoadFile reads a single file relative to the loader root.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}
	return BuildDocument(name, data, info.ModTime()), nil
}
