package posts

import (
	"context"
	"testing"
	"time"
)

func listing(slug string, featured bool) Listing {
	return Listing{Slug: slug, Title: slug, Featured: featured}
}

func TestBuildListingPageSplitsLatestAndFeatured(t *testing.T) {
	page := BuildListingPage([]Listing{
		listing("newest", true),
		listing("middle", false),
		listing("oldest", true),
	})

	if page.Latest == nil || page.Latest.Slug != "newest" {
		t.Fatalf("expected newest as latest, got %+v", page.Latest)
	}
	if len(page.Posts) != 2 || page.Posts[0].Slug != "middle" || page.Posts[1].Slug != "oldest" {
		t.Fatalf("unexpected grid %+v", page.Posts)
	}
	if len(page.Featured) != 2 || page.Featured[0].Slug != "newest" || page.Featured[1].Slug != "oldest" {
		t.Fatalf("expected featured in original order, got %+v", page.Featured)
	}
}

func TestBuildListingPageEmpty(t *testing.T) {
	page := BuildListingPage(nil)
	if page.Latest != nil || len(page.Posts) != 0 || len(page.Featured) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestToListingFormatsDate(t *testing.T) {
	post := &Post{
		Slug:    "remix-v1",
		Title:   "Remix v1",
		Date:    time.Date(2021, 11, 22, 0, 0, 0, 0, time.UTC),
		Authors: []*Author{{Name: "Ryan Florence", Title: "Co-Founder", Avatar: "/r.png"}, nil},
	}
	got := ToListing(post)
	if got.DateDisplay != "November 22, 2021" {
		t.Fatalf("unexpected date display %q", got.DateDisplay)
	}
	if len(got.Authors) != 1 || got.Authors[0].Name != "Ryan Florence" {
		t.Fatalf("unexpected authors %+v", got.Authors)
	}
}

func TestServiceListingsExcludesDrafts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	seed := []*Post{
		{Slug: "old", Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Slug: "new", Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), Featured: true},
		{Slug: "draft", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Draft: true},
	}
	for _, p := range seed {
		p.Authors = []*Author{{Name: "Kent C. Dodds"}}
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.Slug, err)
		}
	}

	svc := NewService(repo)
	listings, err := svc.Listings(ctx)
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(listings) != 2 || listings[0].Slug != "new" || listings[1].Slug != "old" {
		t.Fatalf("unexpected listings %+v", listings)
	}

	if _, err := svc.Get(ctx, "draft"); !IsNotFound(err) {
		t.Fatalf("expected drafts hidden from Get, got %v", err)
	}
	preview := NewService(repo, WithDrafts(true))
	if _, err := preview.Get(ctx, "draft"); err != nil {
		t.Fatalf("expected draft with previews enabled, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(ctx, " "); err != ErrSlugRequired {
		t.Fatalf("expected ErrSlugRequired, got %v", err)
	}
}

func TestMemoryRepositoryReusesAuthorsAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	author := func() []*Author { return []*Author{{Name: "Ryan Florence", Title: "Co-Founder"}} }

	first, err := repo.Create(ctx, &Post{Slug: "a", Authors: author()})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	second, err := repo.Create(ctx, &Post{Slug: "b", Authors: author()})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if first.Authors[0].ID != second.Authors[0].ID {
		t.Fatal("expected shared author id")
	}
	authors, _ := repo.Authors(ctx)
	if len(authors) != 1 {
		t.Fatalf("expected one author, got %d", len(authors))
	}
	if _, err := repo.Create(ctx, &Post{Slug: "a", Authors: author()}); err == nil {
		t.Fatal("expected duplicate slug error")
	}

	deleted, err := repo.DeleteAll(ctx)
	if err != nil || deleted != 2 {
		t.Fatalf("DeleteAll = %d, %v", deleted, err)
	}
	authors, _ = repo.Authors(ctx)
	if len(authors) != 1 {
		t.Fatal("expected authors to survive DeleteAll")
	}
}
