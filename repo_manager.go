package biopass

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories behind one injected handle.
// Components receive it through their constructors; there is no package
// level database client.
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	People() People
	ResetTokens() ResetTokens
	AccessLogs() AccessLogs
}

type mngr struct {
	db          *bun.DB
	people      People
	resetTokens ResetTokens
	accessLogs  AccessLogs
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:          db,
		people:      NewPeopleRepository(db),
		resetTokens: NewResetTokensRepository(db),
		accessLogs:  NewAccessLogsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.people == nil {
		return errors.New("repository people should be initialized")
	}

	if m.resetTokens == nil {
		return errors.New("repository resetTokens should be initialized")
	}

	if m.accessLogs == nil {
		return errors.New("repository accessLogs should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) People() People {
	return m.people
}

func (m mngr) ResetTokens() ResetTokens {
	return m.resetTokens
}

func (m mngr) AccessLogs() AccessLogs {
	return m.accessLogs
}
