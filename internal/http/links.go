package http

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	linkGroup     = "blog"
	routeIndex    = "index"
	routePost     = "post"
	routeDoc      = "doc"
	slugParameter = "slug"
)

// Links builds absolute or root relative URLs for blog pages.
type Links struct {
	group *urlkit.Group
}

// NewLinks registers the page routes under basePath. An empty baseURL
// yields root relative links.
func NewLinks(baseURL, basePath string) (*Links, error) {
	base := joinPath(basePath, "")
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    linkGroup,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths: map[string]string{
					routeIndex: base,
					routePost:  joinPath(base, ":"+slugParameter),
					routeDoc:   "/docs/:" + slugParameter,
				},
			},
		},
	})

	var (
		group *urlkit.Group
		err   error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("http: link group %q: %v", linkGroup, rec)
			}
		}()
		group = manager.Group(linkGroup)
	}()
	if err != nil {
		return nil, err
	}
	return &Links{group: group}, nil
}

// Index returns the listing URL.
func (l *Links) Index() string {
	return l.build(routeIndex, "", "")
}

// Post returns the URL of the post with slug.
func (l *Links) Post(slug string) string {
	return l.build(routePost, slug, "")
}

// Doc returns the URL of a documentation page, pinned to ref when set.
func (l *Links) Doc(slug, ref string) string {
	return l.build(routeDoc, slug, ref)
}

func (l *Links) build(route, slug, ref string) (link string) {
	defer func() {
		if rec := recover(); rec != nil {
			link = ""
		}
	}()
	builder := l.group.Builder(route)
	if slug != "" {
		builder.WithParam(slugParameter, slug)
	}
	if ref != "" {
		builder.WithQuery("ref", ref)
	}
	built, err := builder.Build()
	if err != nil {
		return ""
	}
	return built
}
