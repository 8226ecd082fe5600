package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthgrid/hospital-api/internal/config"
	"github.com/healthgrid/hospital-api/internal/domain"
	"github.com/healthgrid/hospital-api/pkg/auth"
)

type memUserRepo struct {
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (r *memUserRepo) UpdateLoginAttempt(_ context.Context, id uuid.UUID, success bool) error {
	for _, u := range r.byEmail {
		if u.ID != id {
			continue
		}
		if success {
			u.FailedLoginCount = 0
			u.LockedUntil = nil
		} else {
			u.FailedLoginCount++
			if u.FailedLoginCount >= 5 {
				until := time.Now().Add(15 * time.Minute)
				u.LockedUntil = &until
			}
		}
	}
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()

	users := newMemUserRepo()
	jwtManager := auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-at-least-32-bytes-long!!",
		Issuer:          "hospital-api-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	auditSvc := NewAuditService(&memAuditRepo{}, zap.NewNop(), testCollector)
	t.Cleanup(auditSvc.Shutdown)

	return NewAuthService(users, jwtManager, auditSvc, zap.NewNop()), users
}

const testPassword = "correct horse battery staple"

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.RegisterPatient(ctx, "  Ana.Lopez@Example.COM ", testPassword, "Ana Lopez", "555-0101")
	require.NoError(t, err)
	assert.Equal(t, "ana.lopez@example.com", u.Email, "email is normalized")
	assert.Equal(t, domain.RolePatient, u.Role)
	assert.NotEqual(t, testPassword, u.PasswordHash)

	pair, err := svc.Login(ctx, "ana.lopez@example.com", testPassword, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.Login(ctx, "ana.lopez@example.com", "wrong password!", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", testPassword, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, users := newAuthFixture(t)

	_, err := svc.RegisterPatient(context.Background(), "bob@example.com", "short", "Bob", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, users.byEmail)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterPatient(ctx, "dup@example.com", testPassword, "First", "")
	require.NoError(t, err)

	_, err = svc.RegisterPatient(ctx, "dup@example.com", testPassword, "Second", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginLockout(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterPatient(ctx, "lock@example.com", testPassword, "Lock Me", "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = svc.Login(ctx, "lock@example.com", "wrong password!", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Even the correct password is refused while the lock holds.
	_, err = svc.Login(ctx, "lock@example.com", testPassword, "")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.RegisterPatient(ctx, "gone@example.com", testPassword, "Former Patient", "")
	require.NoError(t, err)
	users.byEmail[u.Email].IsActive = false

	_, err = svc.Login(ctx, "gone@example.com", testPassword, "")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshToken(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.RegisterPatient(ctx, "refresh@example.com", testPassword, "Refresher", "")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "refresh@example.com", testPassword, "")
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// An access token is not accepted in place of a refresh token.
	_, err = svc.RefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Deactivation invalidates outstanding refresh tokens.
	users.byEmail[u.Email].IsActive = false
	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.RegisterPatient(ctx, "change@example.com", testPassword, "Changer", "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, "wrong password!", "a brand new passphrase")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, u.ID, testPassword, "tiny")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, testPassword, "a brand new passphrase"))
	stored := users.byEmail[u.Email]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("a brand new passphrase")))
}
