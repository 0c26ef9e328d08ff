package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
// Keys are hashed verbatim apart from surrounding whitespace: case and
// punctuation are significant, so "Hello" and "hello" or "v1.2.10" and
// "v1.21.0" map to different ids.
//
// Keys are namespaced by entity type so posts and authors never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(false))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PostUUID keys on the slug, which is the file name and therefore case sensitive.
func PostUUID(slug string) uuid.UUID {
	return UUID("go-blog:post:" + strings.TrimSpace(slug))
}

func AuthorUUID(name string) uuid.UUID {
	return UUID("go-blog:author:" + strings.TrimSpace(name))
}

func GitRefUUID(ref string) uuid.UUID {
	return UUID("go-blog:git_ref:" + strings.TrimSpace(ref))
}

func DocUUID(ref, filename string) uuid.UUID {
	return UUID("go-blog:doc:" + strings.TrimSpace(ref) + ":" + strings.TrimSpace(filename))
}
