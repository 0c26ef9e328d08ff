package posts

import (
	"errors"
	"fmt"
)

var (
	ErrSlugRequired     = errors.New("posts: slug is required")
	ErrAuthorsRequired  = errors.New("posts: at least one author is required")
	ErrAuthorNameNeeded = errors.New("posts: author name is required")
	ErrRepositoryNeeded = errors.New("posts: repository is required")
)

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// FrontMatterError names the post whose front matter could not be decoded or
// failed validation.
type FrontMatterError struct {
	Slug  string
	Cause error
}

func (e *FrontMatterError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("invalid post frontmatter in %s", e.Slug)
	}
	return fmt.Sprintf("invalid post frontmatter in %s: %v", e.Slug, e.Cause)
}

func (e *FrontMatterError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// DuplicateSlugError reports a second post with an existing slug.
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("posts: slug %q already exists", e.Slug)
}
