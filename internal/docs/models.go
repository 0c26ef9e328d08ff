package docs

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GitRef is a documentation snapshot source: a release tag ref or a branch.
type GitRef struct {
	bun.BaseModel `bun:"table:doc_git_refs,alias:gr"`

	ID           uuid.UUID `bun:",pk,type:uuid"             json:"id"`
	Ref          string    `bun:"ref,notnull,unique"        json:"ref"`
	ReleaseNotes string    `bun:"release_notes,notnull"     json:"release_notes"`
	DocCount     int       `bun:"doc_count,notnull,default:0" json:"doc_count"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Doc is a rendered markdown page of a snapshot, unique per (ref, filename).
type Doc struct {
	bun.BaseModel `bun:"table:docs,alias:d"`

	ID          uuid.UUID `bun:",pk,type:uuid"            json:"id"`
	Ref         string    `bun:"ref,notnull"              json:"ref"`
	Filename    string    `bun:"filename,notnull"         json:"filename"`
	Slug        string    `bun:"slug,notnull"             json:"slug"`
	Title       string    `bun:"title,notnull"            json:"title"`
	Description string    `bun:"description,notnull"      json:"description"`
	Order       *int      `bun:"sort_order"               json:"order,omitempty"`
	Hidden      bool      `bun:"hidden,notnull,default:false" json:"hidden"`
	TOC         bool      `bun:"toc,notnull,default:true" json:"toc"`
	HTML        string    `bun:"html,notnull"             json:"html"`
	Markdown    string    `bun:"md,notnull"               json:"md"`
	Checksum    string    `bun:"checksum,notnull"         json:"checksum"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Snapshot summarises one Save call.
type Snapshot struct {
	Ref     string
	Saved   int
	Removed int
}
