package biopass

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ChangePasswordMessage struct {
	PersonID        int64  `json:"person_id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (m ChangePasswordMessage) Type() string { return "auth.password_change" }

type ChangePasswordResult struct {
	Message string `json:"message"`
}

// ChangePasswordHandler is the authenticated password change: verify the
// current credential, then write the new one. A single record is touched so
// no transaction is needed.
type ChangePasswordHandler struct {
	repo   RepositoryManager
	logger Logger
	nowFn  func() time.Time
}

// NewChangePasswordHandler creates a handler with sane defaults.
func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:   repo,
		logger: defLogger{},
		nowFn:  time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithNowFunc overrides the clock used for the reset timestamp.
func (h *ChangePasswordHandler) WithNowFunc(nowFn func() time.Time) *ChangePasswordHandler {
	h.nowFn = defaultNow(nowFn)
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) (*ChangePasswordResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) (*ChangePasswordResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	person, err := h.repo.People().GetByID(ctx, event.PersonID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve person for password change")
	}

	if err := VerifyCredential(event.CurrentPassword, person.SystemAccessHash, person.TemporaryPassword); err != nil {
		if goerrors.Is(err, ErrNoPasswordSet) {
			return nil, err
		}
		return nil, ErrWrongCurrentPassword
	}

	if err := ValidatePasswordStrength(event.NewPassword); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(event.NewPassword)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	if err := h.repo.People().UpdateCredential(ctx, person.ID, passwordHash, h.nowFn()); err != nil {
		return nil, err
	}

	h.logger.Info("password changed for person %d", person.ID)

	return &ChangePasswordResult{
		Message: "Password changed successfully",
	}, nil
}
