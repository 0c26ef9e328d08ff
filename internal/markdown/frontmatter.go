package markdown

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DecodeFrontMatter decodes the YAML front matter of source into target and
// returns the markdown body without delimiters. Sources without front matter
// leave target untouched and return the full source as body.
func DecodeFrontMatter(source []byte, target any) ([]byte, error) {
	body, err := frontmatter.Parse(bytes.NewReader(source), target)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return body, nil
}

// BuildDocument assembles an interfaces.Document from a slash separated path
// and raw content. The slug is the base name minus its ".md" suffix.
func BuildDocument(filePath string, source []byte, modified time.Time) *interfaces.Document {
	sum := sha256.Sum256(source)
	return &interfaces.Document{
		Path:         filePath,
		Slug:         SlugFromFilename(filePath),
		Source:       source,
		Checksum:     sum[:],
		LastModified: modified,
	}
}

// SlugFromFilename strips the directory and a trailing ".md" extension. The
// remaining name is not normalised.
func SlugFromFilename(filePath string) string {
	return strings.TrimSuffix(path.Base(filePath), ".md")
}
