package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is a rendered blog post. The slug is the markdown file name without
// its extension.
type Post struct {
	bun.BaseModel `bun:"table:blog_posts,alias:p"`

	ID        uuid.UUID `bun:",pk,type:uuid"                 json:"id"`
	Slug      string    `bun:"slug,notnull,unique"           json:"slug"`
	Title     string    `bun:"title,notnull"                 json:"title"`
	Summary   string    `bun:"summary,notnull"               json:"summary"`
	Date      time.Time `bun:"date,notnull"                  json:"date"`
	Image     string    `bun:"image,notnull"                 json:"image"`
	ImageAlt  string    `bun:"image_alt,notnull"             json:"imageAlt"`
	HTML      string    `bun:"html,notnull"                  json:"html"`
	Markdown  string    `bun:"md,notnull"                    json:"md"`
	Draft     bool      `bun:"draft,notnull,default:false"   json:"draft"`
	Featured  bool      `bun:"featured,notnull,default:false" json:"featured"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Authors []*Author `bun:"-" json:"authors"`
}

// Author is shared across posts and identified by name.
type Author struct {
	bun.BaseModel `bun:"table:blog_authors,alias:a"`

	ID        uuid.UUID `bun:",pk,type:uuid"        json:"id"`
	Name      string    `bun:"name,notnull,unique"  json:"name"`
	Title     string    `bun:"title,notnull"        json:"title"`
	Avatar    string    `bun:"avatar,notnull"       json:"avatar"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// PostAuthor links a post to its authors. Position keeps front matter order.
type PostAuthor struct {
	bun.BaseModel `bun:"table:blog_post_authors,alias:pa"`

	PostID   uuid.UUID `bun:"post_id,pk,type:uuid"`
	AuthorID uuid.UUID `bun:"author_id,pk,type:uuid"`
	Position int       `bun:"position,notnull,default:0"`

	Author *Author `bun:"rel:belongs-to,join:author_id=id"`
}

// AuthorNames returns the author names in display order.
func (p *Post) AuthorNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Authors))
	for _, author := range p.Authors {
		if author != nil {
			names = append(names, author.Name)
		}
	}
	return names
}

func clonePost(p *Post) *Post {
	if p == nil {
		return nil
	}
	cloned := *p
	if p.Authors != nil {
		cloned.Authors = make([]*Author, 0, len(p.Authors))
		for _, author := range p.Authors {
			if author == nil {
				continue
			}
			a := *author
			cloned.Authors = append(cloned.Authors, &a)
		}
	}
	return &cloned
}
