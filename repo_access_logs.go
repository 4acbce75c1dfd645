package biopass

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AccessLogs is the web access-log store: one open entry per login, closed
// once at logout.
type AccessLogs interface {
	Create(ctx context.Context, record *AccessLogEntry) (*AccessLogEntry, error)
	OpenEntry(ctx context.Context, id int64) (*AccessLogEntry, error)
	Close(ctx context.Context, id int64, logoutTime time.Time, durationMinutes int64) error
}

type accessLogs struct {
	db *bun.DB
}

func NewAccessLogsRepository(db *bun.DB) AccessLogs {
	return &accessLogs{db: db}
}

func (r *accessLogs) Create(ctx context.Context, record *AccessLogEntry) (*AccessLogEntry, error) {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create access log entry")
	}
	return record, nil
}

// OpenEntry fetches an entry-type record that has not been closed yet.
// Already-closed and exit records report not-found, which logout treats as
// a successful no-op.
func (r *accessLogs) OpenEntry(ctx context.Context, id int64) (*AccessLogEntry, error) {
	record := &AccessLogEntry{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.event_type = ?", EventEntry).
		Where("?TableAlias.logout_time IS NULL").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, goerrors.New("open access log entry not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound).
				WithMetadata(map[string]any{"id": id})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch access log entry")
	}

	return record, nil
}

func (r *accessLogs) Close(ctx context.Context, id int64, logoutTime time.Time, durationMinutes int64) error {
	_, err := r.db.NewUpdate().
		Model((*AccessLogEntry)(nil)).
		Set("logout_time = ?", logoutTime).
		Set("session_duration_minutes = ?", durationMinutes).
		Where("id = ?", id).
		Where("logout_time IS NULL").
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to close access log entry")
	}

	return nil
}
