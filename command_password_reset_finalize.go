package biopass

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type ResetPasswordMessage struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"new_password"`
}

func (m ResetPasswordMessage) Type() string { return "auth.password_reset" }

type ResetPasswordResult struct {
	Message string `json:"message"`
}

// ResetPasswordHandler redeems a reset code: it swaps the credential and
// burns the code in a single transaction.
type ResetPasswordHandler struct {
	repo   RepositoryManager
	logger Logger
	nowFn  func() time.Time
}

// NewResetPasswordHandler creates a handler with sane defaults.
func NewResetPasswordHandler(repo RepositoryManager) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:   repo,
		logger: defLogger{},
		nowFn:  time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ResetPasswordHandler) WithLogger(logger Logger) *ResetPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithNowFunc overrides the clock used for expiry checks and the reset
// timestamp.
func (h *ResetPasswordHandler) WithNowFunc(nowFn func() time.Time) *ResetPasswordHandler {
	h.nowFn = defaultNow(nowFn)
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) (*ResetPasswordResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) (*ResetPasswordResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	now := h.nowFn()

	person, err := h.repo.People().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve person for password reset")
	}

	if !SystemAccessAllowed(person.Type) {
		return nil, ErrTypeNotAllowed
	}

	token, err := h.repo.ResetTokens().FirstRedeemable(ctx, person.ID, event.Token, now)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidResetToken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if err := ValidatePasswordStrength(event.Password); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(event.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	// Credential swap and token burn commit together or not at all; a code
	// must never stay redeemable after the password it set.
	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.People().UpdateCredentialTx(ctx, tx, person.ID, passwordHash, now); err != nil {
			return err
		}
		return h.repo.ResetTokens().MarkUsedTx(ctx, tx, token.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	h.logger.Info("password reset finalized for person %d (token %d)", person.ID, token.ID)

	return &ResetPasswordResult{
		Message: "Password reset successfully, you can now log in with your new password",
	}, nil
}
