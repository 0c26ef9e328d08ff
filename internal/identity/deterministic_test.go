package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsStable(t *testing.T) {
	first := PostUUID("hello-world")
	second := PostUUID(" hello-world ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected trimmed keys to match, got %s and %s", first, second)
	}
}

func TestUUIDNamespacesEntities(t *testing.T) {
	if PostUUID("remix") == AuthorUUID("remix") {
		t.Fatal("expected post and author ids to differ for the same key")
	}
	if DocUUID("main", "a.md") == DocUUID("v1", "a.md") {
		t.Fatal("expected doc ids to depend on the ref")
	}
	if GitRefUUID("main") == GitRefUUID("refs/tags/v1.0.0") {
		t.Fatal("expected distinct git ref ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("   ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
}

func TestUUIDKeepsCaseAndPunctuation(t *testing.T) {
	cases := []struct {
		name string
		a, b uuid.UUID
	}{
		{name: "slug case", a: PostUUID("Hello"), b: PostUUID("hello")},
		{name: "slug underscore", a: PostUUID("remix_v2"), b: PostUUID("remixv2")},
		{name: "author case", a: AuthorUUID("Ryan Florence"), b: AuthorUUID("ryan florence")},
		{name: "ref dots", a: GitRefUUID("refs/tags/v1.2.10"), b: GitRefUUID("refs/tags/v1.21.0")},
		{name: "ref at sign", a: GitRefUUID("refs/tags/remix@1.6.0"), b: GitRefUUID("refs/tags/remix1.6.0")},
		{name: "doc under dotted refs", a: DocUUID("refs/tags/v1.2.10", "index.md"), b: DocUUID("refs/tags/v1.21.0", "index.md")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.a == tc.b {
				t.Fatalf("expected distinct ids, both were %s", tc.a)
			}
		})
	}
}
