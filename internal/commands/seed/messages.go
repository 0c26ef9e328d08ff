package seedcmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	seedMessageType     = "blog.seed.run"
	seedBlogMessageType = "blog.seed.blog"
	seedDocsMessageType = "blog.seed.docs"
)

// SeedCommand seeds posts and documentation in one run.
type SeedCommand struct {
	SkipBlog bool `json:"skip_blog,omitempty"`
	SkipDocs bool `json:"skip_docs,omitempty"`
	// DryRun loads and resolves everything without writing to storage.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (SeedCommand) Type() string { return seedMessageType }

// Validate rejects a run that skips both halves.
func (cmd SeedCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.SkipDocs, validation.By(func(any) error {
			if cmd.SkipBlog && cmd.SkipDocs {
				return validation.NewError("blog.seed.nothing_to_do", "skip_blog and skip_docs cannot both be set")
			}
			return nil
		})),
	)
}

// SeedBlogCommand replaces stored posts with the markdown files on disk.
type SeedBlogCommand struct {
	DryRun bool `json:"dry_run,omitempty"`
}

func (SeedBlogCommand) Type() string { return seedBlogMessageType }

func (SeedBlogCommand) Validate() error { return nil }

// SeedDocsCommand snapshots documentation for recent releases and the
// latest branch.
type SeedDocsCommand struct {
	DryRun bool `json:"dry_run,omitempty"`
}

func (SeedDocsCommand) Type() string { return seedDocsMessageType }

func (SeedDocsCommand) Validate() error { return nil }
