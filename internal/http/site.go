package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/docs"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DocReader is the read side of the documentation service.
type DocReader interface {
	List(ctx context.Context, ref string) ([]*docs.Doc, error)
	Get(ctx context.Context, ref, slug string) (*docs.Doc, error)
}

// Site renders the blog listing, post pages and documentation pages.
type Site struct {
	basePath         string
	baseURL          string
	cacheControl     string
	title            string
	description      string
	newsletterAction string
	docsRef          string
	posts            posts.Service
	docs             DocReader
	metrics          *Metrics
	logger           interfaces.Logger
	now              func() time.Time

	links     *Links
	templates *template.Template
}

// SiteOption mutates the Site configuration.
type SiteOption func(*Site)

// WithBlogConfig applies page metadata, the base path and the cache policy.
func WithBlogConfig(cfg runtimeconfig.BlogConfig, httpCfg runtimeconfig.HTTPConfig) SiteOption {
	return func(s *Site) {
		if trimmed := strings.TrimSpace(httpCfg.BasePath); trimmed != "" {
			s.basePath = trimmed
		}
		if trimmed := strings.TrimSpace(cfg.CacheControl); trimmed != "" {
			s.cacheControl = trimmed
		}
		if trimmed := strings.TrimSpace(cfg.Title); trimmed != "" {
			s.title = trimmed
		}
		if trimmed := strings.TrimSpace(cfg.Description); trimmed != "" {
			s.description = trimmed
		}
		if trimmed := strings.TrimSpace(cfg.NewsletterAction); trimmed != "" {
			s.newsletterAction = trimmed
		}
		s.baseURL = strings.TrimSpace(cfg.BaseURL)
	}
}

// WithBasePath overrides the listing path (defaults to "/blog").
func WithBasePath(path string) SiteOption {
	return func(s *Site) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			s.basePath = trimmed
		}
	}
}

// WithPostService wires the post read service.
func WithPostService(service posts.Service) SiteOption {
	return func(s *Site) {
		s.posts = service
	}
}

// WithDocReader wires documentation pages, served for ref unless a request
// names another one.
func WithDocReader(reader DocReader, defaultRef string) SiteOption {
	return func(s *Site) {
		s.docs = reader
		s.docsRef = strings.TrimSpace(defaultRef)
	}
}

// WithMetrics enables request instrumentation and the /metrics route.
func WithMetrics(metrics *Metrics) SiteOption {
	return func(s *Site) {
		s.metrics = metrics
	}
}

func WithLogger(logger interfaces.Logger) SiteOption {
	return func(s *Site) {
		s.logger = logging.Ensure(logger)
	}
}

// WithClock overrides the clock used for the footer year.
func WithClock(now func() time.Time) SiteOption {
	return func(s *Site) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSite builds the page handlers. It fails when the templates or the
// link routes cannot be prepared.
func NewSite(opts ...SiteOption) (*Site, error) {
	s := &Site{
		basePath:         "/blog",
		cacheControl:     runtimeconfig.DefaultCacheControl,
		title:            "Blog",
		newsletterAction: "/_actions/newsletter",
		logger:           logging.NoOp(),
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.posts == nil {
		return nil, errors.New("http: post service is required")
	}

	links, err := NewLinks(s.baseURL, s.basePath)
	if err != nil {
		return nil, err
	}
	s.links = links

	tmpl, err := parseTemplates(links)
	if err != nil {
		return nil, err
	}
	s.templates = tmpl
	return s, nil
}

// Links exposes the URL builder used by the templates.
func (s *Site) Links() *Links {
	return s.links
}

// Register attaches the page routes to mux.
func (s *Site) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if s == nil {
		return fmt.Errorf("http: site is nil")
	}

	base := joinPath(s.basePath, "")
	mux.HandleFunc("GET "+base, s.metrics.instrument("listing", s.handleListing))
	mux.HandleFunc("GET "+joinPath(base, "{slug}"), s.metrics.instrument("post", s.handlePost))
	if s.docs != nil {
		mux.HandleFunc("GET /docs/{slug...}", s.metrics.instrument("doc", s.handleDoc))
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return nil
}

// Handler returns a mux with every route registered.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	_ = s.Register(mux)
	return mux
}

type pageData struct {
	Title            string
	SiteTitle        string
	Description      string
	Canonical        string
	Index            string
	NewsletterAction string
	Year             int
	Message          string

	Page posts.ListingPage
	Post *postView
	Doc  *docView
	Nav  []navItem
}

type postView struct {
	Title       string
	DateDisplay string
	Image       string
	ImageAlt    string
	Authors     []posts.ListingAuthor
	HTML        template.HTML
}

type docView struct {
	Title string
	HTML  template.HTML
}

type navItem struct {
	Title string
	URL   string
}

type listingResponse struct {
	Posts []posts.Listing `json:"posts"`
}

func (s *Site) page(title, canonical string) pageData {
	fullTitle := s.title
	if title != "" && title != s.title {
		fullTitle = title + " | " + s.title
	}
	return pageData{
		Title:            fullTitle,
		SiteTitle:        s.title,
		Description:      s.description,
		Canonical:        canonical,
		Index:            s.links.Index(),
		NewsletterAction: s.newsletterAction,
		Year:             s.now().Year(),
	}
}

func (s *Site) handleListing(w http.ResponseWriter, r *http.Request) {
	listings, err := s.posts.Listings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", s.cacheControl)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, listingResponse{Posts: listings})
		return
	}

	data := s.page(s.title, s.links.Index())
	data.Page = posts.BuildListingPage(listings)
	s.render(w, http.StatusOK, "listing", data)
}

func (s *Site) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	post, err := s.posts.Get(r.Context(), slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	listing := posts.ToListing(post)
	data := s.page(post.Title, s.links.Post(post.Slug))
	data.Description = post.Summary
	data.Post = &postView{
		Title:       post.Title,
		DateDisplay: listing.DateDisplay,
		Image:       post.Image,
		ImageAlt:    post.ImageAlt,
		Authors:     listing.Authors,
		HTML:        template.HTML(post.HTML),
	}
	w.Header().Set("Cache-Control", s.cacheControl)
	s.render(w, http.StatusOK, "post", data)
}

func (s *Site) handleDoc(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		ref = s.docsRef
	}
	if ref == "" {
		s.fail(w, r, docs.ErrRefRequired)
		return
	}
	slug := strings.Trim(r.PathValue("slug"), "/")
	if slug == "" {
		slug = "index"
	}

	doc, err := s.docs.Get(r.Context(), ref, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pages, err := s.docs.List(r.Context(), ref)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pinned := ""
	if ref != s.docsRef {
		pinned = ref
	}
	data := s.page(doc.Title, s.links.Doc(doc.Slug, pinned))
	data.Description = doc.Description
	data.Doc = &docView{Title: doc.Title, HTML: template.HTML(doc.HTML)}
	for _, page := range pages {
		data.Nav = append(data.Nav, navItem{Title: page.Title, URL: s.links.Doc(page.Slug, pinned)})
	}
	w.Header().Set("Cache-Control", s.cacheControl)
	s.render(w, http.StatusOK, "doc", data)
}

func (s *Site) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// fail renders the 404 page for missing content and a JSON error otherwise.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("http.request.rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	if status == http.StatusNotFound && !wantsJSON(r) {
		data := s.page("Not Found", "")
		data.Message = payload.Message
		s.render(w, status, "not_found", data)
		return
	}
	writeJSON(w, status, payload)
}
