package posts

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// FrontMatter is the YAML header every post must carry.
type FrontMatter struct {
	Title    string              `yaml:"title"`
	Summary  string              `yaml:"summary"`
	Date     time.Time           `yaml:"date"`
	Draft    *bool               `yaml:"draft"`
	Featured *bool               `yaml:"featured"`
	Image    string              `yaml:"image"`
	ImageAlt string              `yaml:"imageAlt"`
	Authors  []AuthorFrontMatter `yaml:"authors"`
}

type AuthorFrontMatter struct {
	Name   string `yaml:"name"`
	Title  string `yaml:"title"`
	Avatar string `yaml:"avatar"`
}

// Validate checks the required fields. Boolean typing of draft and featured
// is enforced by the YAML decoder.
func (fm FrontMatter) Validate() error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required, notBlank),
		validation.Field(&fm.Summary, validation.Required, notBlank),
		validation.Field(&fm.Date, validation.Required),
		validation.Field(&fm.Image, validation.Required, notBlank),
		validation.Field(&fm.ImageAlt, validation.Required, notBlank),
		validation.Field(&fm.Authors, validation.Required),
	)
}

func (a AuthorFrontMatter) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, notBlank),
		validation.Field(&a.Title, validation.Required, notBlank),
		validation.Field(&a.Avatar, validation.Required, notBlank),
	)
}

// notBlank rejects whitespace-only strings, which validation.Required lets
// through.
var notBlank = validation.By(func(value any) error {
	if s, ok := value.(string); ok && s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

// ParseDocument decodes and validates the front matter of doc, renders its
// body and returns the resulting post. Errors are *FrontMatterError values
// naming the slug, except for rendering failures.
func ParseDocument(doc *interfaces.Document, parser interfaces.MarkdownParser) (*Post, error) {
	if doc == nil || strings.TrimSpace(doc.Slug) == "" {
		return nil, ErrSlugRequired
	}

	var fm FrontMatter
	body, err := markdown.DecodeFrontMatter(doc.Source, &fm)
	if err != nil {
		return nil, &FrontMatterError{Slug: doc.Slug, Cause: err}
	}
	if err := fm.Validate(); err != nil {
		return nil, &FrontMatterError{Slug: doc.Slug, Cause: err}
	}

	html, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", doc.Slug, err)
	}

	date := fm.Date.UTC()
	post := &Post{
		ID:        identity.PostUUID(doc.Slug),
		Slug:      doc.Slug,
		Title:     fm.Title,
		Summary:   fm.Summary,
		Date:      date,
		Image:     fm.Image,
		ImageAlt:  fm.ImageAlt,
		HTML:      string(html),
		Markdown:  string(body),
		Draft:     fm.Draft != nil && *fm.Draft,
		Featured:  fm.Featured != nil && *fm.Featured,
		CreatedAt: date,
		UpdatedAt: date,
		Authors:   make([]*Author, 0, len(fm.Authors)),
	}
	for _, author := range fm.Authors {
		post.Authors = append(post.Authors, &Author{
			ID:     identity.AuthorUUID(author.Name),
			Name:   strings.TrimSpace(author.Name),
			Title:  author.Title,
			Avatar: author.Avatar,
		})
	}
	return post, nil
}
