package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezakmal/insightify/internal/cache"
	"github.com/rezakmal/insightify/internal/validator"
)

func newAuthService(t *testing.T, repo *memoryRepo, secret string, ttl time.Duration) AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewAuthService(repo, testLogger(), validator.New(), cache.NewTokenBlacklist(client), secret, ttl)
}

func signup(t *testing.T, svc AuthService, email string) *AuthResponse {
	t.Helper()
	resp, err := svc.Signup(context.Background(), &SignupRequest{
		DisplayName: "Test User",
		Email:       email,
		Password:    "hunter22",
	})
	require.NoError(t, err)
	return resp
}

func TestSignupIssuesVerifiableToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)

	resp := signup(t, svc, "student@example.com")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, resp.User.ID, resp.UserID)

	user, err := svc.Verify(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, user.ID)
	assert.Equal(t, "student@example.com", user.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)

	signup(t, svc, "student@example.com")
	_, err := svc.Signup(context.Background(), &SignupRequest{
		DisplayName: "Someone Else",
		Email:       "student@example.com",
		Password:    "hunter22",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)

	_, err := svc.Signup(context.Background(), &SignupRequest{
		DisplayName: "Test",
		Email:       "not-an-email",
		Password:    "short",
	})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Len(t, validationErrs, 2)
}

func TestLogin(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)
	ctx := context.Background()

	signup(t, svc, "student@example.com")

	resp, err := svc.Login(ctx, &LoginRequest{Email: "student@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, &LoginRequest{Email: "student@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyFailureTaxonomy(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)
	ctx := context.Background()

	resp := signup(t, svc, "student@example.com")

	_, err := svc.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = svc.Verify(ctx, "definitely.not.ajwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	// Same user store, different signing key
	other := newAuthService(t, repo, "other-secret", time.Hour)
	otherToken, err := other.Issue(ctx, resp.UserID)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, otherToken)
	assert.ErrorIs(t, err, ErrBadSignature)

	// Token for a subject that does not exist
	ghostToken, err := svc.Issue(ctx, "ghost-user")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, ghostToken)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestVerifyExpiredToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", -time.Minute)

	resp, err := svc.Signup(context.Background(), &SignupRequest{
		DisplayName: "Test User",
		Email:       "student@example.com",
		Password:    "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), resp.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRequiresActiveSession(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)
	ctx := context.Background()

	resp := signup(t, svc, "student@example.com")
	require.NoError(t, repo.Session().Delete(ctx, nil, resp.UserID))

	_, err := svc.Verify(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestRevoke(t *testing.T) {
	repo := newMemoryRepo()
	svc := newAuthService(t, repo, "secret", time.Hour)
	ctx := context.Background()

	resp := signup(t, svc, "student@example.com")

	require.NoError(t, svc.Revoke(ctx, resp.Token, resp.UserID))

	// Revocation wins over the missing session in the failure ordering
	_, err := svc.Verify(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Logging out twice fails: the session is already gone
	err = svc.Revoke(ctx, resp.Token, resp.UserID)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
