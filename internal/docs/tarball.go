package docs

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const maxDocSize = 8 << 20

// ExtractMarkdown reads a gzipped GitHub tarball and returns the markdown
// files found under docsPath. GitHub prefixes every entry with a
// "<owner>-<repo>-<sha>/" directory which is dropped. Document paths are
// relative to docsPath. Slugs are unique; see preferDoc for collisions.
func ExtractMarkdown(r io.Reader, docsPath string) ([]*interfaces.Document, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("docs: open gzip: %w", err)
	}
	defer gz.Close()

	prefix := strings.Trim(path.Clean("/"+docsPath), "/")
	if prefix != "" {
		prefix += "/"
	}

	var out []*interfaces.Document
	seen := map[string]int{}
	reader := tar.NewReader(gz)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docs: read tarball: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := stripRoot(header.Name)
		if name == "" || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".md") {
			continue
		}
		if header.Size > maxDocSize {
			return nil, fmt.Errorf("docs: %s exceeds %d bytes", name, maxDocSize)
		}

		data, err := io.ReadAll(io.LimitReader(reader, maxDocSize))
		if err != nil {
			return nil, fmt.Errorf("docs: read %s: %w", name, err)
		}
		relative := strings.TrimPrefix(name, prefix)
		doc := markdown.BuildDocument(relative, data, header.ModTime)
		doc.Slug = DocSlug(relative)
		if at, ok := seen[doc.Slug]; ok {
			if preferDoc(doc.Path, out[at].Path) {
				out[at] = doc
			}
			continue
		}
		seen[doc.Slug] = len(out)
		out = append(out, doc)
	}
	return out, nil
}

// preferDoc decides which of two files sharing a slug is kept: a directory
// index ("guides/index.md") beats a sibling file ("guides.md"), otherwise
// the lexically smaller path wins. The result does not depend on tar order.
func preferDoc(candidate, current string) bool {
	candidateIndex, currentIndex := isIndexDoc(candidate), isIndexDoc(current)
	if candidateIndex != currentIndex {
		return candidateIndex
	}
	return candidate < current
}

func isIndexDoc(filename string) bool {
	return path.Base(filename) == "index.md"
}

func stripRoot(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if idx := strings.Index(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return ""
}

// DocSlug drops the ".md" extension and collapses "index" files onto their
// directory, so "guides/index.md" becomes "guides".
func DocSlug(filename string) string {
	slug := strings.TrimSuffix(filename, ".md")
	if slug == "index" {
		return slug
	}
	return strings.TrimSuffix(slug, "/index")
}

// TitleFromFilename derives a readable title, e.g. "data-writes.md" becomes
// "Data writes".
func TitleFromFilename(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), ".md")
	if base == "index" {
		if dir := path.Base(path.Dir(filename)); dir != "." && dir != "/" {
			base = dir
		}
	}
	base = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	if base == "" {
		return ""
	}
	return strings.ToUpper(base[:1]) + base[1:]
}
