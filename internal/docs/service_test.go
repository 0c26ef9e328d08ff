package docs_test

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/goliatone/go-blog/internal/docs"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

type fakeSource struct {
	mu       sync.Mutex
	archives map[string][]byte
	requests []string
}

func (f *fakeSource) DownloadTarball(_ context.Context, repo, ref string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, repo+"#"+ref)
	data, ok := f.archives[ref]
	if !ok {
		return nil, errors.New("unknown ref " + ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: "repo-sha/" + name, Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content))}); err != nil {
			t.Fatalf("header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	_ = tw.Close()
	_ = gz.Close()
	return buf.Bytes()
}

func newService(t *testing.T, source *fakeSource) *docs.Service {
	t.Helper()
	db := testsupport.NewBunDB(t)
	if err := docs.CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return docs.NewService(db, source, "remix-run/remix")
}

func TestServiceSaveStoresSnapshot(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{archives: map[string][]byte{
		"refs/tags/v1.6.0": tarball(t, map[string]string{
			"docs/guides/routing.md":  "---\ntitle: Routing\ndescription: Nested routes\norder: 2\n---\n# Routing\n",
			"docs/api/conventions.md": "---\ntoc: false\norder: 1\n---\n# Conventions\n",
			"docs/other/hidden.md":    "---\nhidden: true\n---\nsecret",
		}),
	}}
	svc := newService(t, source)

	snapshot, err := svc.Save(ctx, "refs/tags/v1.6.0", "**Big** release")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snapshot.Saved != 3 || snapshot.Removed != 0 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if len(source.requests) != 1 || source.requests[0] != "remix-run/remix#refs/tags/v1.6.0" {
		t.Fatalf("unexpected downloads %v", source.requests)
	}

	ref, err := svc.GetRef(ctx, "refs/tags/v1.6.0")
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	if !strings.Contains(ref.ReleaseNotes, "<strong>Big</strong>") || ref.DocCount != 3 {
		t.Fatalf("unexpected ref %+v", ref)
	}

	list, err := svc.List(ctx, "refs/tags/v1.6.0")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "api/conventions" || list[1].Slug != "guides/routing" {
		t.Fatalf("unexpected visible docs %+v", list)
	}
	if list[0].TOC || list[0].Title != "Conventions" {
		t.Fatalf("expected toc disabled and derived title, got %+v", list[0])
	}
	if list[1].Description != "Nested routes" || list[1].Title != "Routing" {
		t.Fatalf("unexpected routing doc %+v", list[1])
	}

	doc, err := svc.Get(ctx, "refs/tags/v1.6.0", "guides/routing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(doc.HTML, `<h1 id="routing">Routing</h1>`) {
		t.Fatalf("unexpected html %q", doc.HTML)
	}
}

func TestServiceSaveReplacesStaleDocs(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{archives: map[string][]byte{
		"main": tarball(t, map[string]string{
			"docs/a.md": "# A",
			"docs/b.md": "# B",
		}),
	}}
	svc := newService(t, source)

	if _, err := svc.Save(ctx, "main", ""); err != nil {
		t.Fatalf("first save: %v", err)
	}

	source.archives["main"] = tarball(t, map[string]string{
		"docs/a.md": "---\ntitle: A again\n---\n# A",
	})
	snapshot, err := svc.Save(ctx, "main", "")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if snapshot.Saved != 1 || snapshot.Removed != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	list, err := svc.List(ctx, "main")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Title != "A again" {
		t.Fatalf("expected updated doc only, got %+v", list)
	}
}

func TestServiceSaveValidation(t *testing.T) {
	svc := newService(t, &fakeSource{archives: map[string][]byte{}})
	if _, err := svc.Save(context.Background(), " ", ""); !errors.Is(err, docs.ErrRefRequired) {
		t.Fatalf("expected ErrRefRequired, got %v", err)
	}
	if _, err := svc.Save(context.Background(), "missing", ""); err == nil {
		t.Fatal("expected download error")
	}
	var notFound *docs.NotFoundError
	if _, err := svc.GetRef(context.Background(), "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestServiceSaveKeepsDottedRefsApart(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{archives: map[string][]byte{
		"refs/tags/v1.2.10": tarball(t, map[string]string{"docs/index.md": "# Old"}),
		"refs/tags/v1.21.0": tarball(t, map[string]string{"docs/index.md": "# New"}),
	}}
	svc := newService(t, source)

	for _, ref := range []string{"refs/tags/v1.2.10", "refs/tags/v1.21.0"} {
		if _, err := svc.Save(ctx, ref, ""); err != nil {
			t.Fatalf("Save %s: %v", ref, err)
		}
	}
	for ref, want := range map[string]string{"refs/tags/v1.2.10": "Old", "refs/tags/v1.21.0": "New"} {
		doc, err := svc.Get(ctx, ref, "index")
		if err != nil {
			t.Fatalf("Get %s: %v", ref, err)
		}
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %s docs for %s, got %q", want, ref, doc.HTML)
		}
	}
}
