package biopass

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ResetTokens stores password reset codes. Codes are append-only: redeeming
// one flips Used, nothing is ever deleted.
type ResetTokens interface {
	Create(ctx context.Context, record *ResetToken) (*ResetToken, error)
	FirstRedeemable(ctx context.Context, personID int64, token string, now time.Time) (*ResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
	MarkUsedTx(ctx context.Context, tx bun.IDB, id int64) error
}

type resetTokens struct {
	db *bun.DB
}

func NewResetTokensRepository(db *bun.DB) ResetTokens {
	return &resetTokens{db: db}
}

func (r *resetTokens) Create(ctx context.Context, record *ResetToken) (*ResetToken, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not persist reset token")
	}
	return record, nil
}

// FirstRedeemable returns the oldest token for the person that matches the
// literal code, is unused and unexpired. Oldest-first matches how the
// platform has always resolved concurrent reset requests.
func (r *resetTokens) FirstRedeemable(ctx context.Context, personID int64, token string, now time.Time) (*ResetToken, error) {
	record := &ResetToken{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.person_id = ?", personID).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.used = ?", false).
		Where("?TableAlias.expiration > ?", now).
		Order("id ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("reset token not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	return record, nil
}

func (r *resetTokens) MarkUsed(ctx context.Context, id int64) error {
	return r.MarkUsedTx(ctx, r.db, id)
}

func (r *resetTokens) MarkUsedTx(ctx context.Context, tx bun.IDB, id int64) error {
	res, err := tx.NewUpdate().
		Model((*ResetToken)(nil)).
		Set("used = ?", true).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark reset token used")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerrors.New("reset token not found", goerrors.CategoryNotFound).
			WithCode(goerrors.CodeNotFound).
			WithMetadata(map[string]any{"id": id})
	}

	return nil
}
