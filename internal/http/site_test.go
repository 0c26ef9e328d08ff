package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/docs"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

func seedPosts(t *testing.T, records ...*posts.Post) posts.Service {
	t.Helper()
	repo := posts.NewMemoryRepository()
	for _, record := range records {
		if len(record.Authors) == 0 {
			record.Authors = []*posts.Author{{Name: "Ryan Florence", Title: "Co-Founder", Avatar: "/ryan.png"}}
		}
		if _, err := repo.Create(context.Background(), record); err != nil {
			t.Fatalf("seed post %s: %v", record.Slug, err)
		}
	}
	return posts.NewService(repo)
}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func newTestSite(t *testing.T, service posts.Service, opts ...SiteOption) http.Handler {
	t.Helper()
	opts = append([]SiteOption{WithPostService(service)}, opts...)
	site, err := NewSite(opts...)
	if err != nil {
		t.Fatalf("new site: %v", err)
	}
	return site.Handler()
}

func doRequest(t *testing.T, handler http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func samplePosts() []*posts.Post {
	return []*posts.Post{
		{Slug: "remix-v1", Title: "Remix v1", Summary: "The first release", Date: day("2021-11-22"), Featured: true, HTML: "<p>v1</p>"},
		{Slug: "data-flow", Title: "Data Flow", Summary: "Loaders and actions", Date: day("2022-03-10"), Featured: true, HTML: "<h1>Flow</h1>"},
		{Slug: "remix-vs-next", Title: "Remix vs Next", Summary: "A comparison", Date: day("2022-01-18"), HTML: "<p>vs</p>"},
		{Slug: "secret", Title: "Secret Draft", Summary: "Not yet", Date: day("2023-01-01"), Draft: true, HTML: "<p>draft</p>"},
	}
}

func TestListingRendersLatestGridAndFeatured(t *testing.T) {
	handler := newTestSite(t, seedPosts(t, samplePosts()...))

	rec := doRequest(t, handler, "/blog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != runtimeconfig.DefaultCacheControl {
		t.Fatalf("expected cache control %q, got %q", runtimeconfig.DefaultCacheControl, got)
	}
	body := rec.Body.String()

	latest := strings.Index(body, "Data Flow")
	grid := strings.Index(body, "Remix vs Next")
	if latest < 0 || grid < 0 || latest > grid {
		t.Fatalf("expected latest post before the grid, body: %s", body)
	}
	if strings.Contains(body, "Secret Draft") {
		t.Fatal("expected drafts to be hidden")
	}
	if !strings.Contains(body, "Featured Articles") {
		t.Fatal("expected featured sidebar")
	}
	if got := strings.Count(body, "featured-link"); got != 2 {
		t.Fatalf("expected 2 featured links, got %d", got)
	}
	if got := strings.Count(body, `<hr class="my-4">`); got != 1 {
		t.Fatalf("expected 1 separator between featured posts, got %d", got)
	}
	if !strings.Contains(body, "March 10, 2022") {
		t.Fatal("expected display date for latest post")
	}
	if !strings.Contains(body, "newsletter-text") {
		t.Fatal("expected newsletter block")
	}
}

func TestListingWithoutFeaturedPostsOmitsSidebar(t *testing.T) {
	handler := newTestSite(t, seedPosts(t,
		&posts.Post{Slug: "only", Title: "Only Post", Summary: "s", Date: day("2022-01-01")},
	))

	rec := doRequest(t, handler, "/blog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Featured Articles") {
		t.Fatal("expected featured sidebar to be omitted")
	}
}

func TestListingEmptyStillRenders(t *testing.T) {
	handler := newTestSite(t, seedPosts(t))
	rec := doRequest(t, handler, "/blog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty listing, got %d", rec.Code)
	}
}

func TestListingJSONVariants(t *testing.T) {
	handler := newTestSite(t, seedPosts(t, samplePosts()...))

	cases := []struct {
		name    string
		target  string
		headers map[string]string
	}{
		{name: "query", target: "/blog?format=json"},
		{name: "accept", target: "/blog", headers: map[string]string{"Accept": "application/json"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, handler, tc.target, tc.headers)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if rec.Header().Get("Cache-Control") != runtimeconfig.DefaultCacheControl {
				t.Fatalf("expected cache control on JSON response")
			}
			var payload struct {
				Posts []posts.Listing `json:"posts"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(payload.Posts) != 3 {
				t.Fatalf("expected 3 published posts, got %d", len(payload.Posts))
			}
			if payload.Posts[0].Slug != "data-flow" || payload.Posts[0].DateDisplay != "March 10, 2022" {
				t.Fatalf("unexpected first listing %+v", payload.Posts[0])
			}
		})
	}
}

func TestPostPage(t *testing.T) {
	handler := newTestSite(t, seedPosts(t, samplePosts()...))

	rec := doRequest(t, handler, "/blog/data-flow", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Flow</h1>") {
		t.Fatalf("expected rendered post HTML, got %s", body)
	}
	if !strings.Contains(body, "Ryan Florence") {
		t.Fatal("expected author name")
	}

	for _, target := range []string{"/blog/missing", "/blog/secret"} {
		rec := doRequest(t, handler, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Not Found") {
			t.Fatalf("%s: expected not found page", target)
		}
	}
}

func TestCustomBasePath(t *testing.T) {
	handler := newTestSite(t, seedPosts(t, samplePosts()...),
		WithBlogConfig(runtimeconfig.BlogConfig{CacheControl: "no-store", Title: "News"}, runtimeconfig.HTTPConfig{BasePath: "/news"}),
	)

	rec := doRequest(t, handler, "/news", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected configured cache control, got %q", rec.Header().Get("Cache-Control"))
	}
	if doRequest(t, handler, "/blog", nil).Code != http.StatusNotFound {
		t.Fatal("expected default path to be unmounted")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := NewMetrics(nil)
	handler := newTestSite(t, seedPosts(t, samplePosts()...), WithMetrics(metrics))

	rec := doRequest(t, handler, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}

	doRequest(t, handler, "/blog", nil)
	doRequest(t, handler, "/blog/missing", nil)

	families, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "blog_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			counts[labels["route"]+":"+labels["code"]] += metric.GetCounter().GetValue()
		}
	}
	if counts["listing:200"] != 1 || counts["post:404"] != 1 {
		t.Fatalf("unexpected request counters %v", counts)
	}

	rec = doRequest(t, handler, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "blog_http_requests_total") {
		t.Fatalf("expected metrics exposition, got %d", rec.Code)
	}
}

type stubDocs struct {
	pages map[string][]*docs.Doc
}

func (s stubDocs) List(_ context.Context, ref string) ([]*docs.Doc, error) {
	return s.pages[ref], nil
}

func (s stubDocs) Get(_ context.Context, ref, slug string) (*docs.Doc, error) {
	for _, doc := range s.pages[ref] {
		if doc.Slug == slug {
			return doc, nil
		}
	}
	return nil, &docs.NotFoundError{Resource: "doc", Key: ref + ":" + slug}
}

func TestDocPages(t *testing.T) {
	reader := stubDocs{pages: map[string][]*docs.Doc{
		"main": {
			{Ref: "main", Slug: "index", Title: "Overview", HTML: "<p>main overview</p>"},
			{Ref: "main", Slug: "guides/routing", Title: "Routing", HTML: "<p>routes</p>"},
		},
		"refs/tags/remix@1.6.0": {
			{Ref: "refs/tags/remix@1.6.0", Slug: "index", Title: "Overview", HTML: "<p>tagged overview</p>"},
		},
	}}
	handler := newTestSite(t, seedPosts(t), WithDocReader(reader, "main"))

	rec := doRequest(t, handler, "/docs/guides/routing", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<p>routes</p>") {
		t.Fatalf("expected routing page, got %d", rec.Code)
	}

	rec = doRequest(t, handler, "/docs/?ref=refs/tags/remix@1.6.0", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "tagged overview") {
		t.Fatalf("expected tagged index page, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, "/docs/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: &posts.NotFoundError{Resource: "post", Key: "x"}, status: http.StatusNotFound},
		{err: fmt.Errorf("wrapped: %w", &docs.NotFoundError{Resource: "doc", Key: "x"}), status: http.StatusNotFound},
		{err: fmt.Errorf("load: %w", markdown.ErrNotFound), status: http.StatusNotFound},
		{err: posts.ErrSlugRequired, status: http.StatusBadRequest},
		{err: &posts.FrontMatterError{Slug: "x", Cause: errors.New("title required")}, status: http.StatusUnprocessableEntity},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
		{err: nil, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := mapError(tc.err)
		if status != tc.status {
			t.Fatalf("mapError(%v): expected %d, got %d", tc.err, tc.status, status)
		}
	}
}

func TestLinks(t *testing.T) {
	links, err := NewLinks("", "/blog")
	if err != nil {
		t.Fatalf("new links: %v", err)
	}
	if got := links.Post("remix-v1"); !strings.HasSuffix(got, "/blog/remix-v1") {
		t.Fatalf("unexpected post link %q", got)
	}
	if got := links.Index(); !strings.HasSuffix(got, "/blog") {
		t.Fatalf("unexpected index link %q", got)
	}
}

func TestNewSiteRequiresPostService(t *testing.T) {
	if _, err := NewSite(); err == nil {
		t.Fatal("expected error without post service")
	}
}

func TestPostErrorsAsJSON(t *testing.T) {
	handler := newTestSite(t, seedPosts(t, samplePosts()...))

	rec := doRequest(t, handler, "/blog/missing?format=json", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
	var payload errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload.Error != "not_found" {
		t.Fatalf("expected not_found code, got %+v", payload)
	}
}
