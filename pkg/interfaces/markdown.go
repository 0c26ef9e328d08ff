package interfaces

import "time"

// MarkdownParser converts markdown source into HTML.
type MarkdownParser interface {
	// Parse renders markdown with the parser defaults.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions renders markdown using per-call overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions toggles goldmark features. Extension names are matched
// case-insensitively; unknown names are ignored.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// Document is a markdown file read from disk or from an archive. Front matter
// is decoded by callers into their own typed envelopes.
type Document struct {
	// Path is the slash separated path relative to the loader root.
	Path string
	// Slug is the base file name without its extension.
	Slug string
	// Source is the complete file content, front matter included.
	Source []byte
	// Checksum is the SHA-256 digest of Source.
	Checksum     []byte
	LastModified time.Time
}
