package biopass_test

import (
	"context"
	"testing"
	"time"

	biopass "github.com/biopass/go-biopass"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogout(t *testing.T) {
	ctx := context.Background()
	loginAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("closes the entry with floored minutes", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		now := loginAt.Add(2*time.Minute + 5*time.Second)

		repo.accessLogs.On("OpenEntry", ctx, int64(77)).
			Return(&biopass.AccessLogEntry{ID: 77, LoginTime: loginAt}, nil)
		repo.accessLogs.On("Close", ctx, int64(77), now, int64(2)).Return(nil)

		recorder := biopass.NewSessionRecorder(repo).
			WithLogger(testLogger{}).
			WithNowFunc(func() time.Time { return now })

		res, err := recorder.Logout(ctx, 77)
		require.NoError(t, err)
		assert.Equal(t, "Logout recorded", res.Message)
		assert.Equal(t, now, res.Timestamp)

		repo.accessLogs.AssertExpectations(t)
	})

	t.Run("sub-minute session records zero minutes", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		now := loginAt.Add(45 * time.Second)

		repo.accessLogs.On("OpenEntry", ctx, int64(78)).
			Return(&biopass.AccessLogEntry{ID: 78, LoginTime: loginAt}, nil)
		repo.accessLogs.On("Close", ctx, int64(78), now, int64(0)).Return(nil)

		recorder := biopass.NewSessionRecorder(repo).
			WithLogger(testLogger{}).
			WithNowFunc(func() time.Time { return now })

		_, err := recorder.Logout(ctx, 78)
		assert.NoError(t, err)
		repo.accessLogs.AssertExpectations(t)
	})

	t.Run("zero id is a no-op success", func(t *testing.T) {
		repo := NewMockRepositoryManager()

		recorder := biopass.NewSessionRecorder(repo).WithLogger(testLogger{})

		res, err := recorder.Logout(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "Logout recorded", res.Message)

		repo.accessLogs.AssertNotCalled(t, "OpenEntry", ctx, int64(0))
	})

	t.Run("missing or already closed entry is a no-op success", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		repo.accessLogs.On("OpenEntry", ctx, int64(404)).
			Return(nil, notFoundErr("open access log entry not found"))

		recorder := biopass.NewSessionRecorder(repo).WithLogger(testLogger{})

		_, err := recorder.Logout(ctx, 404)
		assert.NoError(t, err)

		repo.accessLogs.AssertNotCalled(t, "Close", ctx, int64(404))
	})

	t.Run("store failure on lookup", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		repo.accessLogs.On("OpenEntry", ctx, int64(77)).
			Return(nil, goerrors.New("db down", goerrors.CategoryInternal))

		recorder := biopass.NewSessionRecorder(repo).WithLogger(testLogger{})

		_, err := recorder.Logout(ctx, 77)
		assert.ErrorIs(t, err, biopass.ErrLogoutFailed)
	})

	t.Run("store failure on close", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		repo.accessLogs.On("OpenEntry", ctx, int64(77)).
			Return(&biopass.AccessLogEntry{ID: 77, LoginTime: loginAt}, nil)
		repo.accessLogs.On("Close", ctx, int64(77), mock.Anything, mock.Anything).
			Return(goerrors.New("db down", goerrors.CategoryInternal))

		recorder := biopass.NewSessionRecorder(repo).WithLogger(testLogger{})

		_, err := recorder.Logout(ctx, 77)
		assert.ErrorIs(t, err, biopass.ErrLogoutFailed)
	})
}
