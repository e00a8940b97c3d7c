package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/auth"
	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository for service tests.
type fakeUserRepo struct {
	users           map[string]*models.User // keyed by uuid
	lastLoginStamps []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) CreateUser(user *models.User, disciplineIDs []int64) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.UUID = "uuid-" + user.Email
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	for _, id := range disciplineIDs {
		user.Disciplines = append(user.Disciplines, models.Discipline{ID: id})
	}
	f.users[user.UUID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetUserByUUID(userUUID string) (*models.User, error) {
	user, ok := f.users[userUUID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) ListUsers(filter repository.UserListFilter) ([]*models.User, int, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) UpdateLastLogin(userUUID string) error {
	f.lastLoginStamps = append(f.lastLoginStamps, userUUID)
	return nil
}

func (f *fakeUserRepo) UpdatePassword(userUUID, passwordHash string) error {
	user, ok := f.users[userUUID]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) SetActive(userUUID string, active bool) error {
	user, ok := f.users[userUUID]
	if !ok {
		return sql.ErrNoRows
	}
	user.IsActive = active
	return nil
}

func newTestService(repo repository.UserRepository) (AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager([]byte("access"), []byte("refresh"), time.Hour, 24*time.Hour)
	return NewAuthService(repo, tokens, zap.NewNop()), tokens
}

func adminPrincipal() *models.Principal {
	return &models.Principal{UUID: "admin-uuid", Email: "admin@validador.com", Role: models.RoleAdmin}
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Name: "Seeded", Email: email, PasswordHash: hash, Role: models.RoleUser}
	require.NoError(t, repo.CreateUser(user, []int64{1}))
	user.IsActive = active
	return user
}

func TestRegister_NonAdminForbidden(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())

	for _, role := range []string{models.RoleUser, models.RoleEditor, models.RoleReviewer} {
		_, err := svc.Register(RegisterInput{
			Name: "Maria", Email: "maria@validador.com", Password: "MinhaSenh@123",
		}, &models.Principal{UUID: "u", Role: role})
		assert.ErrorIs(t, err, ErrAdminOnly, "role %s must not register users", role)
	}
}

func TestRegister_TokenRoleMatchesStoredRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestService(repo)

	result, err := svc.Register(RegisterInput{
		Name:          "Maria Silva",
		Email:         "Maria.Silva@Validador.com",
		Password:      "MinhaSenh@123",
		DisciplineIDs: []int64{1, 2},
	}, adminPrincipal())
	require.NoError(t, err)

	// Email is stored lower-cased.
	assert.Equal(t, "maria.silva@validador.com", result.User.Email)
	assert.Len(t, result.User.Disciplines, 2)

	claims, err := tokens.VerifyAccess(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.UUID, claims.Subject)
	assert.Equal(t, result.User.Role, claims.Role)

	// Registration stamps the first login.
	assert.Contains(t, repo.lastLoginStamps, result.User.UUID)
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seedUser(t, repo, "maria@validador.com", "whatever123", true)

	_, err := svc.Register(RegisterInput{
		Name: "Maria Again", Email: "maria@validador.com", Password: "MinhaSenh@123",
	}, adminPrincipal())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seedUser(t, repo, "joao@validador.com", "joao-password", true)

	_, unknownErr := svc.Login("nobody@validador.com", "whatever")
	_, wrongPassErr := svc.Login("joao@validador.com", "not-the-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	// Same sentinel for both: the caller cannot tell "no such account"
	// apart from "bad password".
	assert.Equal(t, unknownErr, wrongPassErr)
}

func TestLogin_InactiveAccountRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seedUser(t, repo, "inactive@validador.com", "some-password", false)

	_, err := svc.Login("inactive@validador.com", "some-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestService(repo)
	seeded := seedUser(t, repo, "joao@validador.com", "joao-password", true)

	result, err := svc.Login("Joao@Validador.com", "joao-password")
	require.NoError(t, err)
	assert.Equal(t, seeded.UUID, result.User.UUID)

	claims, err := tokens.VerifyAccess(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.UUID, claims.Subject)
	assert.Contains(t, repo.lastLoginStamps, seeded.UUID)
}

func TestRefresh_RotationWithoutReuseDetection(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seedUser(t, repo, "joao@validador.com", "joao-password", true)

	result, err := svc.Login("joao@validador.com", "joao-password")
	require.NoError(t, err)

	first, err := svc.Refresh(result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AccessToken)

	// There is no reuse detection: the already-used refresh token stays
	// valid until its own expiry and mints a second pair.
	second, err := svc.Refresh(result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, second.AccessToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seedUser(t, repo, "joao@validador.com", "joao-password", true)

	result, err := svc.Login("joao@validador.com", "joao-password")
	require.NoError(t, err)

	_, err = svc.Refresh(result.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_InactiveOrMissingSubject(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seeded := seedUser(t, repo, "joao@validador.com", "joao-password", true)

	result, err := svc.Login("joao@validador.com", "joao-password")
	require.NoError(t, err)

	// Deactivation takes effect on the next refresh even though the token
	// itself is still structurally valid.
	require.NoError(t, repo.SetActive(seeded.UUID, false))
	_, err = svc.Refresh(result.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	delete(repo.users, seeded.UUID)
	_, err = svc.Refresh(result.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _ := newTestService(newFakeUserRepo())

	_, err := svc.Refresh("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAdminChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestService(repo)
	seeded := seedUser(t, repo, "joao@validador.com", "old-password", true)

	err := svc.AdminChangePassword(seeded.UUID, "new-password-123", &models.Principal{UUID: "u", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrAdminOnly)

	err = svc.AdminChangePassword("missing-uuid", "new-password-123", adminPrincipal())
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = svc.AdminChangePassword(seeded.UUID, "new-password-123", adminPrincipal())
	require.NoError(t, err)

	// The old password no longer verifies; the new one does.
	assert.False(t, auth.VerifyPassword(seeded.PasswordHash, "old-password"))
	assert.True(t, auth.VerifyPassword(seeded.PasswordHash, "new-password-123"))
}
