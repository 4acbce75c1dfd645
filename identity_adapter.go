package biopass

import (
	"context"

	"github.com/biopass/go-biopass/middleware/authgate"
	goerrors "github.com/goliatone/go-errors"
)

// PrincipalProvider resolves verified token subjects into request principals
// for the authorization gate. It re-applies the same account gating as login
// so a disabled or demoted account loses access mid session, not just at the
// next login.
type PrincipalProvider struct {
	repo   RepositoryManager
	logger Logger
}

// NewPrincipalProvider creates a PrincipalProvider backed by the given
// repository manager.
func NewPrincipalProvider(repo RepositoryManager, opts ...func(*PrincipalProvider)) *PrincipalProvider {
	p := &PrincipalProvider{
		repo:   repo,
		logger: defLogger{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithProviderLogger overrides the provider's logger.
func WithProviderLogger(logger Logger) func(*PrincipalProvider) {
	return func(p *PrincipalProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// ResolvePrincipal implements the authgate.Resolver interface.
func (p *PrincipalProvider) ResolvePrincipal(ctx context.Context, personID int64) (*authgate.Principal, error) {
	person, err := p.repo.People().GetByID(ctx, personID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, goerrors.New("token subject no longer exists", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode(TextCodeUnauthorized)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve principal")
	}

	if err := EnsureSystemAccess(person); err != nil {
		p.logger.Warn("principal %d rejected: %s", personID, err)
		return nil, err
	}

	return &authgate.Principal{
		ID:              person.ID,
		FullName:        person.FullName,
		Email:           person.Email,
		Type:            person.Type,
		UnitID:          person.RegistrationUnitID,
		PermissionLevel: person.PermissionLevel(),
	}, nil
}
