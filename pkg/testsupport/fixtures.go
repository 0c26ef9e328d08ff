package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PostFixture describes a markdown post written by WritePosts.
type PostFixture struct {
	Title    string
	Summary  string
	Date     string
	Featured bool
	Draft    bool
	Authors  []string
	Body     string
}

// Markdown renders the fixture as a post file with YAML front matter.
func (p PostFixture) Markdown() string {
	var b strings.Builder
	b.WriteString("---\n")
	if p.Title != "" {
		fmt.Fprintf(&b, "title: %q\n", p.Title)
	}
	summary := p.Summary
	if summary == "" {
		summary = "Summary of " + p.Title
	}
	fmt.Fprintf(&b, "summary: %q\n", summary)
	date := p.Date
	if date == "" {
		date = "2022-01-01"
	}
	fmt.Fprintf(&b, "date: %s\n", date)
	b.WriteString("image: /blog-images/headers/cover.jpg\n")
	b.WriteString("imageAlt: Cover image\n")
	if p.Featured {
		b.WriteString("featured: true\n")
	}
	if p.Draft {
		b.WriteString("draft: true\n")
	}
	authors := p.Authors
	if len(authors) == 0 {
		authors = []string{"Ryan Florence"}
	}
	b.WriteString("authors:\n")
	for _, name := range authors {
		fmt.Fprintf(&b, "  - name: %s\n    title: Co-Founder\n    avatar: /authors/%s.png\n", name, strings.ReplaceAll(strings.ToLower(name), " ", "-"))
	}
	b.WriteString("---\n\n")
	body := p.Body
	if body == "" {
		body = "# " + p.Title + "\n\nHello from the blog.\n"
	}
	b.WriteString(body)
	return b.String()
}

// WritePosts writes files into a new temp directory and returns its path.
// String values are written verbatim, PostFixture values are rendered.
func WritePosts(tb testing.TB, files map[string]any) string {
	tb.Helper()
	dir := tb.TempDir()
	for name, content := range files {
		var data string
		switch typed := content.(type) {
		case string:
			data = typed
		case PostFixture:
			data = typed.Markdown()
		default:
			tb.Fatalf("unsupported fixture type %T for %s", content, name)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}
