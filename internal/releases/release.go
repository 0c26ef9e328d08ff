package releases

import "time"

// Release is the subset of a GitHub release the seeder reads.
type Release struct {
	TagName     string     `json:"tag_name"`
	Name        string     `json:"name"`
	Body        string     `json:"body"`
	Draft       bool       `json:"draft"`
	Prerelease  bool       `json:"prerelease"`
	PublishedAt *time.Time `json:"published_at"`
}

// Version returns the normalised tag, e.g. "1.6.0" for "remix@1.6.0".
func (r Release) Version() string {
	return NormalizeTag(r.TagName)
}

// Ref returns the git ref of the release tag.
func (r Release) Ref() string {
	return "refs/tags/" + r.TagName
}
