package seedcmd

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/releases"
	"github.com/goliatone/go-blog/internal/seed"
)

// Text codes of seed failures that callers can act on.
const (
	TextCodeDocsConfig  = "SEED_DOCS_CONFIG"
	TextCodeNotWired    = "SEED_NOT_WIRED"
	TextCodeInvalidPost = "SEED_INVALID_POST"
	TextCodeNoRelease   = "SEED_NO_RELEASE"
)

var classifySeedError = commands.FirstClass(
	commands.ClassifyAs(commands.ErrorClass{
		Category: goerrors.CategoryBadInput,
		TextCode: TextCodeDocsConfig,
		Message:  "documentation seeding is not configured",
	}, seed.ErrRepoRequired, seed.ErrLatestBranchRequired),
	commands.ClassifyAs(commands.ErrorClass{
		Category: goerrors.CategoryInternal,
		TextCode: TextCodeNotWired,
		Message:  "seeder is missing a dependency",
	}, seed.ErrPostsRepositoryRequired, seed.ErrReleaseSourceRequired, seed.ErrDocSaverRequired),
	commands.ClassifyAs(commands.ErrorClass{
		Category: goerrors.CategoryNotFound,
		TextCode: TextCodeNoRelease,
		Message:  "no release has a semantic version tag",
	}, releases.ErrNoLatestRelease),
	func(err error) (commands.ErrorClass, bool) {
		var fmErr *posts.FrontMatterError
		if !errors.As(err, &fmErr) {
			return commands.ErrorClass{}, false
		}
		return commands.ErrorClass{
			Category: goerrors.CategoryValidation,
			TextCode: TextCodeInvalidPost,
			Message:  "invalid post " + fmErr.Slug,
		}, true
	},
)
