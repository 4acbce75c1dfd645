package biopass

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type LogoutResult struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionRecorder closes the access-log entry opened at login, recording
// the session duration. It does not revoke the session token: tokens are
// stateless and simply run out their 8 hour validity.
type SessionRecorder struct {
	repo   RepositoryManager
	logger Logger
	nowFn  func() time.Time
}

func NewSessionRecorder(repo RepositoryManager) *SessionRecorder {
	return &SessionRecorder{
		repo:   repo,
		logger: defLogger{},
		nowFn:  time.Now,
	}
}

// WithLogger overrides the logger used by the recorder.
func (r *SessionRecorder) WithLogger(logger Logger) *SessionRecorder {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithNowFunc overrides the clock used for logout timestamps.
func (r *SessionRecorder) WithNowFunc(nowFn func() time.Time) *SessionRecorder {
	r.nowFn = defaultNow(nowFn)
	return r
}

// Logout closes the entry identified by accessLogID. A zero id, a missing
// entry and an already-closed entry all succeed without touching anything:
// logout never fails merely because there is nothing to close.
func (r *SessionRecorder) Logout(ctx context.Context, accessLogID int64) (*LogoutResult, error) {
	now := r.nowFn()

	result := &LogoutResult{
		Message:   "Logout recorded",
		Timestamp: now,
	}

	if accessLogID == 0 {
		return result, nil
	}

	entry, err := r.repo.AccessLogs().OpenEntry(ctx, accessLogID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return result, nil
		}
		r.logger.Error("logout entry lookup failed for entry %d: %s", accessLogID, err)
		return nil, ErrLogoutFailed
	}

	durationMinutes := int64(now.Sub(entry.LoginTime) / time.Minute)

	if err := r.repo.AccessLogs().Close(ctx, accessLogID, now, durationMinutes); err != nil {
		r.logger.Error("logout close failed for entry %d: %s", accessLogID, err)
		return nil, ErrLogoutFailed
	}

	return result, nil
}
