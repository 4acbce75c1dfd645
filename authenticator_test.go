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

func notFoundErr(msg string) error {
	return goerrors.New(msg, goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
}

func activePerson(t *testing.T, password string) *biopass.Person {
	t.Helper()

	hash, err := biopass.HashPassword(password)
	require.NoError(t, err)

	resetAt := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	return &biopass.Person{
		ID:                 10,
		FullName:           "Maria Souza",
		Email:              "maria@example.com",
		Type:               biopass.PersonEmployee,
		SystemAccessHash:   hash,
		PasswordResetAt:    &resetAt,
		RegistrationUnitID: 3,
		Employee: &biopass.Employee{
			ID:       4,
			PersonID: 10,
			Active:   true,
			Role:     &biopass.Role{ID: 1, Name: "admin", PermissionLevel: 5},
		},
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()

	t.Run("successful login", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")

		repo.people.On("GetByEmail", ctx, "maria@example.com").Return(person, nil)
		repo.accessLogs.On("Create", ctx, mock.AnythingOfType("*biopass.AccessLogEntry")).
			Return(&biopass.AccessLogEntry{ID: 77, PersonID: 10}, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		res, err := auther.Login(ctx, "maria@example.com", "Correct#Pass1", "front-desk")
		require.NoError(t, err)

		assert.NotEmpty(t, res.Token)
		assert.Equal(t, int64(77), res.AccessLogID)
		assert.False(t, res.RequiresPasswordChange)
		assert.Equal(t, person, res.Person)

		id, err := auther.TokenService().VerifyToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(10), id)

		repo.people.AssertExpectations(t)
		repo.accessLogs.AssertExpectations(t)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		repo.people.On("GetByEmail", ctx, "ghost@example.com").Return(nil, notFoundErr("person not found"))

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, "ghost@example.com", "whatever", "")
		assert.ErrorIs(t, err, biopass.ErrInvalidCredentials)
	})

	t.Run("person type outside allow-list", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.Type = biopass.PersonStudent

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, person.Email, "Correct#Pass1", "")
		assert.ErrorIs(t, err, biopass.ErrAccessRestricted)
	})

	t.Run("inactive employee", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.Employee.Active = false

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, person.Email, "Correct#Pass1", "")
		assert.ErrorIs(t, err, biopass.ErrAccountDisabled)
	})

	t.Run("inactive flag ignored for coordinators", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.Type = biopass.PersonCoordinator
		person.Employee.Active = false

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)
		repo.accessLogs.On("Create", ctx, mock.Anything).
			Return(&biopass.AccessLogEntry{ID: 5}, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, person.Email, "Correct#Pass1", "")
		assert.NoError(t, err)
	})

	t.Run("no credential configured", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.SystemAccessHash = ""
		person.TemporaryPassword = ""

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, person.Email, "anything", "")
		assert.ErrorIs(t, err, biopass.ErrNoPasswordSet)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		_, err := auther.Login(ctx, person.Email, "Wrong#Pass1", "")
		assert.ErrorIs(t, err, biopass.ErrInvalidCredentials)
	})

	t.Run("access log failure does not block login", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)
		repo.accessLogs.On("Create", ctx, mock.Anything).
			Return(nil, goerrors.New("db down", goerrors.CategoryInternal))

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		res, err := auther.Login(ctx, person.Email, "Correct#Pass1", "")
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.AccessLogID)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("temporary password forces change", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.TemporaryPassword = "Temp#Pass22"

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)
		repo.accessLogs.On("Create", ctx, mock.Anything).
			Return(&biopass.AccessLogEntry{ID: 8}, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		res, err := auther.Login(ctx, person.Email, "Temp#Pass22", "")
		require.NoError(t, err)
		assert.True(t, res.RequiresPasswordChange)
	})

	t.Run("never reset password forces change", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.PasswordResetAt = nil

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)
		repo.accessLogs.On("Create", ctx, mock.Anything).
			Return(&biopass.AccessLogEntry{ID: 9}, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		res, err := auther.Login(ctx, person.Email, "Correct#Pass1", "")
		require.NoError(t, err)
		assert.True(t, res.RequiresPasswordChange)
	})

	t.Run("primary password with temporary set does not force change", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		person := activePerson(t, "Correct#Pass1")
		person.TemporaryPassword = "Temp#Pass22"

		repo.people.On("GetByEmail", ctx, person.Email).Return(person, nil)
		repo.accessLogs.On("Create", ctx, mock.Anything).
			Return(&biopass.AccessLogEntry{ID: 11}, nil)

		auther := biopass.NewAuthenticator(repo, cfg).WithLogger(testLogger{})

		res, err := auther.Login(ctx, person.Email, "Correct#Pass1", "")
		require.NoError(t, err)
		assert.False(t, res.RequiresPasswordChange)
	})
}

func TestEnsureSystemAccess(t *testing.T) {
	tests := []struct {
		name    string
		person  *biopass.Person
		wantErr error
	}{
		{
			name:   "employee with active record",
			person: &biopass.Person{Type: biopass.PersonEmployee, Employee: &biopass.Employee{Active: true}},
		},
		{
			name:   "coordinator",
			person: &biopass.Person{Type: biopass.PersonCoordinator},
		},
		{
			name:   "inspector",
			person: &biopass.Person{Type: biopass.PersonInspector},
		},
		{
			name:   "employee with no employment record",
			person: &biopass.Person{Type: biopass.PersonEmployee},
		},
		{
			name:    "student",
			person:  &biopass.Person{Type: biopass.PersonStudent},
			wantErr: biopass.ErrAccessRestricted,
		},
		{
			name:    "visitor",
			person:  &biopass.Person{Type: biopass.PersonVisitor},
			wantErr: biopass.ErrAccessRestricted,
		},
		{
			name:    "inactive employee",
			person:  &biopass.Person{Type: biopass.PersonEmployee, Employee: &biopass.Employee{Active: false}},
			wantErr: biopass.ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := biopass.EnsureSystemAccess(tt.person)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
