package biopass_test

import (
	"context"
	"database/sql"
	"time"

	biopass "github.com/biopass/go-biopass"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockPeople implements biopass.People
type MockPeople struct {
	mock.Mock
}

func (m *MockPeople) GetByEmail(ctx context.Context, email string) (*biopass.Person, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.Person), args.Error(1)
}

func (m *MockPeople) GetByID(ctx context.Context, id int64) (*biopass.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.Person), args.Error(1)
}

func (m *MockPeople) Create(ctx context.Context, record *biopass.Person) (*biopass.Person, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.Person), args.Error(1)
}

func (m *MockPeople) UpdateCredential(ctx context.Context, id int64, passwordHash string, resetAt time.Time) error {
	args := m.Called(ctx, id, passwordHash, resetAt)
	return args.Error(0)
}

func (m *MockPeople) UpdateCredentialTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string, resetAt time.Time) error {
	args := m.Called(ctx, tx, id, passwordHash, resetAt)
	return args.Error(0)
}

// MockResetTokens implements biopass.ResetTokens
type MockResetTokens struct {
	mock.Mock
}

func (m *MockResetTokens) Create(ctx context.Context, record *biopass.ResetToken) (*biopass.ResetToken, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.ResetToken), args.Error(1)
}

func (m *MockResetTokens) FirstRedeemable(ctx context.Context, personID int64, token string, now time.Time) (*biopass.ResetToken, error) {
	args := m.Called(ctx, personID, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.ResetToken), args.Error(1)
}

func (m *MockResetTokens) MarkUsed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResetTokens) MarkUsedTx(ctx context.Context, tx bun.IDB, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockAccessLogs implements biopass.AccessLogs
type MockAccessLogs struct {
	mock.Mock
}

func (m *MockAccessLogs) Create(ctx context.Context, record *biopass.AccessLogEntry) (*biopass.AccessLogEntry, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.AccessLogEntry), args.Error(1)
}

func (m *MockAccessLogs) OpenEntry(ctx context.Context, id int64) (*biopass.AccessLogEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*biopass.AccessLogEntry), args.Error(1)
}

func (m *MockAccessLogs) Close(ctx context.Context, id int64, logoutTime time.Time, durationMinutes int64) error {
	args := m.Called(ctx, id, logoutTime, durationMinutes)
	return args.Error(0)
}

// MockRepositoryManager implements biopass.RepositoryManager. RunInTx invokes
// the callback with a zero bun.Tx so handlers exercise their transactional
// path against the Tx mocks above.
type MockRepositoryManager struct {
	mock.Mock
	people      *MockPeople
	resetTokens *MockResetTokens
	accessLogs  *MockAccessLogs

	TxErr error
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		people:      &MockPeople{},
		resetTokens: &MockResetTokens{},
		accessLogs:  &MockAccessLogs{},
	}
}

func (m *MockRepositoryManager) Validate() error { return nil }

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	if m.TxErr != nil {
		return m.TxErr
	}
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) People() biopass.People { return m.people }

func (m *MockRepositoryManager) ResetTokens() biopass.ResetTokens { return m.resetTokens }

func (m *MockRepositoryManager) AccessLogs() biopass.AccessLogs { return m.accessLogs }

// MockMailer implements biopass.Mailer
type MockMailer struct {
	mock.Mock
	Sent []biopass.Email
}

func (m *MockMailer) Send(ctx context.Context, msg biopass.Email) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		m.Sent = append(m.Sent, msg)
	}
	return args.Error(0)
}

// testLogger discards everything.
type testLogger struct{}

func (testLogger) Debug(format string, args ...any) {}
func (testLogger) Info(format string, args ...any)  {}
func (testLogger) Warn(format string, args ...any)  {}
func (testLogger) Error(format string, args ...any) {}
