package posts

import (
	"time"

	"github.com/samber/lo"
)

// DateDisplayLayout renders dates the way the listing shows them.
const DateDisplayLayout = "January 2, 2006"

// Listing is the summary of a post used by the listing page and its JSON
// variant.
type Listing struct {
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Date        time.Time       `json:"date"`
	DateDisplay string          `json:"dateDisplay"`
	Image       string          `json:"image"`
	ImageAlt    string          `json:"imageAlt"`
	Featured    bool            `json:"featured"`
	Authors     []ListingAuthor `json:"authors"`
}

type ListingAuthor struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Avatar string `json:"avatar"`
}

// ListingPage splits listings for rendering: the newest post is the hero,
// the rest form the grid and featured posts feed the sidebar.
type ListingPage struct {
	Latest   *Listing
	Posts    []Listing
	Featured []Listing
}

// ToListing projects a post into its listing summary.
func ToListing(post *Post) Listing {
	authors := lo.FilterMap(post.Authors, func(a *Author, _ int) (ListingAuthor, bool) {
		if a == nil {
			return ListingAuthor{}, false
		}
		return ListingAuthor{Name: a.Name, Title: a.Title, Avatar: a.Avatar}, true
	})
	return Listing{
		Slug:        post.Slug,
		Title:       post.Title,
		Summary:     post.Summary,
		Date:        post.Date,
		DateDisplay: post.Date.UTC().Format(DateDisplayLayout),
		Image:       post.Image,
		ImageAlt:    post.ImageAlt,
		Featured:    post.Featured,
		Authors:     authors,
	}
}

// BuildListingPage expects listings already ordered newest first. Featured
// keeps that order and may include the latest post.
func BuildListingPage(listings []Listing) ListingPage {
	page := ListingPage{
		Posts:    []Listing{},
		Featured: lo.Filter(listings, func(l Listing, _ int) bool { return l.Featured }),
	}
	if len(listings) == 0 {
		return page
	}
	latest := listings[0]
	page.Latest = &latest
	page.Posts = append(page.Posts, listings[1:]...)
	return page
}
