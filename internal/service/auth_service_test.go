package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civiclens/civiclens-api/internal/models"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
)

type mockAuthRepo struct {
	users        map[string]*models.User
	tokens       map[string]*models.RefreshToken
	lastLogins   map[string]time.Time
	revokedAll   []string
	revokedByID  []string
	createdUsers int
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:      make(map[string]*models.User),
		tokens:     make(map[string]*models.RefreshToken),
		lastLogins: make(map[string]time.Time),
	}
}

func (m *mockAuthRepo) addUser(user models.User) {
	cp := user
	m.users[user.ID] = &cp
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	for _, user := range m.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.createdUsers++
	m.addUser(*user)
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogins[id] = ts
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.tokens[token]; ok {
		cp := *stored
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedByID = append(m.revokedByID, id)
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "civiclens-test",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "resident",
		Email:    "Resident@Example.com",
		Password: "sekret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "resident", info.Username)
	assert.Equal(t, "resident@example.com", info.Email)
	assert.Equal(t, 1, repo.createdUsers)
}

func TestAuthServiceRegisterDuplicate(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{ID: "u1", Username: "resident", Email: "resident@example.com"})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "resident",
		Email:    "other@example.com",
		Password: "sekret1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginByUsername(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "sekret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "u1", res.User.ID)
	assert.Contains(t, repo.lastLogins, "u1")
}

func TestAuthServiceLoginFallsBackToEmail(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident@example.com", Password: "sekret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: false,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "sekret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true, IsStaff: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "sekret1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.True(t, claims.IsStaff)

	principal := claims.Principal()
	assert.Equal(t, "resident", principal.Username)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotates(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "sekret1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
}

func TestAuthServiceRefreshRejectsRevoked(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "sekret1"})
	require.NoError(t, err)
	repo.tokens[login.RefreshToken].Revoked = true

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(models.User{
		ID: "u1", Username: "resident", Email: "resident@example.com",
		PasswordHash: hashPassword(t, "sekret1"), Active: true,
	})
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "resident", Password: "sekret1"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), &models.Principal{UserID: "someone-else"}, login.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
