package biopass

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LoginResult is what a successful login hands back to the boundary layer.
// AccessLogID is 0 when the audit write failed; login still succeeds.
type LoginResult struct {
	Token                  string
	Person                 *Person
	RequiresPasswordChange bool
	AccessLogID            int64
}

// Auther runs the login flow against the person/credential store.
type Auther struct {
	repo         RepositoryManager
	tokenService *TokenService
	logger       Logger
	nowFn        func() time.Time
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, cfg Config) *Auther {
	return &Auther{
		repo:         repo,
		tokenService: NewTokenService(cfg, defLogger{}),
		logger:       defLogger{},
		nowFn:        time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNowFunc overrides the clock used for access-log timestamps.
func (s *Auther) WithNowFunc(nowFn func() time.Time) *Auther {
	s.nowFn = defaultNow(nowFn)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokenService
}

// Login authenticates email+password and opens a web access-log entry.
// Checks run in a fixed order and the first failing one is the error
// surfaced: lookup, type allow-list, employee active flag, credential.
func (s *Auther) Login(ctx context.Context, email, password, deviceLabel string) (*LoginResult, error) {
	person, err := s.repo.People().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.logger.Debug("login lookup miss for %s", email)
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve person for login")
	}

	if err := EnsureSystemAccess(person); err != nil {
		s.logger.Warn("login blocked for person %d: %s", person.ID, err)
		return nil, err
	}

	if err := VerifyCredential(password, person.SystemAccessHash, person.TemporaryPassword); err != nil {
		s.logger.Debug("login credential failure for person %d", person.ID)
		return nil, err
	}

	token, err := s.tokenService.Generate(person.ID)
	if err != nil {
		return nil, err
	}

	accessLogID := s.recordAccess(ctx, person, deviceLabel)

	usedTemporary := person.TemporaryPassword != "" &&
		MatchesTemporaryPassword(password, person.TemporaryPassword)

	return &LoginResult{
		Token:                  token,
		Person:                 person,
		RequiresPasswordChange: person.PasswordResetAt == nil || usedTemporary,
		AccessLogID:            accessLogID,
	}, nil
}

// recordAccess opens the audit entry. Failures are swallowed: auditing must
// never block a valid login.
func (s *Auther) recordAccess(ctx context.Context, person *Person, deviceLabel string) int64 {
	entry, err := s.repo.AccessLogs().Create(ctx, &AccessLogEntry{
		PersonID:  person.ID,
		UnitID:    person.RegistrationUnitID,
		EventType: EventEntry,
		LoginTime: s.nowFn(),
	})

	if err != nil {
		s.logger.Warn("access log write failed for person %d (device %q): %s", person.ID, deviceLabel, err)
		return 0
	}

	return entry.ID
}

// EnsureSystemAccess applies the two authorization gates shared by login
// and the per-request auth gate: the person-type allow-list, then the
// employee active flag.
func EnsureSystemAccess(person *Person) error {
	if !SystemAccessAllowed(person.Type) {
		return ErrAccessRestricted
	}

	if person.Type == PersonEmployee && person.Employee != nil && !person.Employee.Active {
		return ErrAccountDisabled
	}

	return nil
}
