package docs

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewGitRefRepository(db *bun.DB) repository.Repository[*GitRef] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*GitRef]{
		NewRecord: func() *GitRef { return &GitRef{} },
		GetID: func(r *GitRef) uuid.UUID {
			return r.ID
		},
		SetID: func(r *GitRef, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "ref"
		},
		GetIdentifierValue: func(r *GitRef) string {
			return r.Ref
		},
	})
}

func NewDocRepository(db *bun.DB) repository.Repository[*Doc] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Doc]{
		NewRecord: func() *Doc { return &Doc{} },
		GetID: func(d *Doc) uuid.UUID {
			return d.ID
		},
		SetID: func(d *Doc, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(d *Doc) string {
			return d.ID.String()
		},
	})
}

// CreateSchema creates the snapshot tables and the (ref, filename) unique
// index used by upserts.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range []any{(*GitRef)(nil), (*Doc)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	if _, err := db.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS idx_docs_ref_filename_unique ON docs(ref, filename)"); err != nil {
		return fmt.Errorf("create index idx_docs_ref_filename_unique: %w", err)
	}
	return nil
}
