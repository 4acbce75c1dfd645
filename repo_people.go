package biopass

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// People is the person/credential store. Lookups load the employment record,
// role and registration unit the auth flows gate on.
type People interface {
	GetByEmail(ctx context.Context, email string) (*Person, error)
	GetByID(ctx context.Context, id int64) (*Person, error)
	Create(ctx context.Context, record *Person) (*Person, error)
	UpdateCredential(ctx context.Context, id int64, passwordHash string, resetAt time.Time) error
	UpdateCredentialTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string, resetAt time.Time) error
}

type people struct {
	db *bun.DB
}

func NewPeopleRepository(db *bun.DB) People {
	return &people{db: db}
}

func (r *people) GetByEmail(ctx context.Context, email string) (*Person, error) {
	return r.getBy(ctx, "?TableAlias.email = ?", email)
}

func (r *people) GetByID(ctx context.Context, id int64) (*Person, error) {
	return r.getBy(ctx, "?TableAlias.id = ?", id)
}

func (r *people) getBy(ctx context.Context, where string, value any) (*Person, error) {
	record := &Person{}

	err := r.db.NewSelect().
		Model(record).
		Relation("Employee").
		Relation("Employee.Role").
		Relation("RegistrationUnit").
		Where(where, value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("person not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound).
				WithMetadata(map[string]any{"lookup": value})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch person")
	}

	return record, nil
}

func (r *people) Create(ctx context.Context, record *Person) (*Person, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create person").
			WithCode(goerrors.CodeConflict).
			WithTextCode(TextCodeDuplicateRecord)
	}
	return record, nil
}

func (r *people) UpdateCredential(ctx context.Context, id int64, passwordHash string, resetAt time.Time) error {
	return r.UpdateCredentialTx(ctx, r.db, id, passwordHash, resetAt)
}

// UpdateCredentialTx swaps the primary hash, clears the temporary password
// and stamps password_reset_at in one statement, so a credential write can
// never leave the temporary password behind.
func (r *people) UpdateCredentialTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string, resetAt time.Time) error {
	res, err := tx.NewUpdate().
		Model((*Person)(nil)).
		Set("system_access_hash = ?", passwordHash).
		Set("temporary_password = NULL").
		Set("password_reset_at = ?", resetAt).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update person credential")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerrors.New("person not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound).
			WithMetadata(map[string]any{"id": id})
	}

	return nil
}
