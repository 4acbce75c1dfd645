package biopass

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ForgotPasswordMessage struct {
	Email string `json:"email"`
}

func (m ForgotPasswordMessage) Type() string { return "auth.password_forgot" }

type ForgotPasswordResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// ForgotPasswordHandler generates a reset code, persists it and mails it to
// the account's registered address.
type ForgotPasswordHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
	nowFn  func() time.Time
	codeFn func() (string, error)
}

// NewForgotPasswordHandler creates a handler with sane defaults.
func NewForgotPasswordHandler(repo RepositoryManager, mailer Mailer) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		repo:   repo,
		mailer: mailer,
		logger: defLogger{},
		nowFn:  time.Now,
		codeFn: GenerateResetCode,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ForgotPasswordHandler) WithLogger(logger Logger) *ForgotPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithNowFunc overrides the clock used for token expiry.
func (h *ForgotPasswordHandler) WithNowFunc(nowFn func() time.Time) *ForgotPasswordHandler {
	h.nowFn = defaultNow(nowFn)
	return h
}

// WithCodeFunc overrides reset-code generation, used by tests for a
// deterministic code.
func (h *ForgotPasswordHandler) WithCodeFunc(codeFn func() (string, error)) *ForgotPasswordHandler {
	if codeFn != nil {
		h.codeFn = codeFn
	}
	return h
}

func (h *ForgotPasswordHandler) Execute(ctx context.Context, event ForgotPasswordMessage) (*ForgotPasswordResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ForgotPasswordHandler) execute(ctx context.Context, event ForgotPasswordMessage) (*ForgotPasswordResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

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

	code, err := h.codeFn()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset code")
	}

	if _, err := h.repo.ResetTokens().Create(ctx, &ResetToken{
		PersonID:   person.ID,
		Token:      code,
		Expiration: h.nowFn().Add(ResetTokenTTL),
		Used:       false,
	}); err != nil {
		return nil, err
	}

	// The token outlives a failed send on purpose: the user can retry the
	// request and redeem either code.
	if err := h.mailer.Send(ctx, BuildResetEmail(person.Email, person.FullName, code)); err != nil {
		h.logger.Error("reset email delivery failed for person %d: %s", person.ID, err)
		return nil, ErrEmailSendFailed
	}

	return &ForgotPasswordResult{
		Message: "A reset code was sent to your email",
		Email:   person.Email,
	}, nil
}

// GenerateResetCode draws a uniform 6-digit code in [100000, 999999].
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return (n.Add(n, big.NewInt(100000))).String(), nil
}
