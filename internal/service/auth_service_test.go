package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planchais/chantiers-backend/internal/repository"
)

type countingLimiter struct {
	hits map[string]int64
	err  error
}

func (l *countingLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.hits[key]++
	return l.hits[key], nil
}

func TestAuthService_RegisterLoginRefresh(t *testing.T) {
	repos := repository.NewRepositories()
	auth := NewAuthService(testConfig(), repos.UserRepo, repos.TeamMemberRepo, nil)
	ctx := context.Background()

	user, access, refresh, err := auth.Register(ctx, "admin", "secret123", false)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, "secret123", user.Password)

	_, _, _, err = auth.Register(ctx, "admin", "another1", true)
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, _, err = auth.Register(ctx, "", "x", true)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")

	_, _, _, err = auth.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, access, refresh, err = auth.Login(ctx, "admin", "secret123")
	require.NoError(t, err)

	p, err := auth.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.Subject)
	assert.Equal(t, "user", p.Role)
	assert.Equal(t, "admin", p.Name)
	assert.False(t, p.ReadOnly())

	newAccess, newRefresh, err := auth.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEqual(t, refresh, newRefresh)

	_, _, err = auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh tokens are single use")

	require.NoError(t, auth.Logout(ctx, newRefresh))
	_, _, err = auth.RefreshToken(ctx, newRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RegistrationClosedAfterFirstUser(t *testing.T) {
	repos := repository.NewRepositories()
	auth := NewAuthService(testConfig(), repos.UserRepo, repos.TeamMemberRepo, nil)
	ctx := context.Background()

	_, _, _, err := auth.Register(ctx, "admin", "secret123", false)
	require.NoError(t, err)

	_, _, _, err = auth.Register(ctx, "stranger", "secret123", false)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, _, err = auth.Register(ctx, "colleague", "secret123", true)
	assert.NoError(t, err)

	open := testConfig()
	open.AllowRegistration = true
	_, _, _, err = NewAuthService(open, repos.UserRepo, repos.TeamMemberRepo, nil).Register(ctx, "visitor", "secret123", false)
	assert.NoError(t, err)
}

// racingUserRepo removes the token between lookup and delete, as a
// concurrent refresh with the same token would.
type racingUserRepo struct {
	repository.UserRepository
}

func (r racingUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	_ = r.UserRepository.DeleteRefreshToken(ctx, token)
	return r.UserRepository.DeleteRefreshToken(ctx, token)
}

func TestAuthService_RefreshTokenRotatesOnce(t *testing.T) {
	repos := repository.NewRepositories()
	ctx := context.Background()
	_, _, refresh, err := NewAuthService(testConfig(), repos.UserRepo, repos.TeamMemberRepo, nil).Register(ctx, "admin", "secret123", false)
	require.NoError(t, err)

	auth := NewAuthService(testConfig(), racingUserRepo{repos.UserRepo}, repos.TeamMemberRepo, nil)
	_, _, err = auth.RefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	repos := repository.NewRepositories()
	auth := NewAuthService(testConfig(), repos.UserRepo, repos.TeamMemberRepo, nil)

	_, err := auth.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := testConfig()
	other.JWTSecret = "other"
	foreign := NewAuthService(other, repos.UserRepo, repos.TeamMemberRepo, nil)
	_, access, _, err := foreign.Register(context.Background(), "bob", "secret123", false)
	require.NoError(t, err)
	_, err = auth.ValidateToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_TeamLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.member(t, "Alice", "ALICE-42")
	bob := f.member(t, "Bob", "BOB-7")
	_, err := f.svc.TeamMember.Update(ctx, bob.ID, TeamMemberFields{Status: str("inactive")})
	require.NoError(t, err)

	limiter := &countingLimiter{hits: map[string]int64{}}
	auth := NewAuthService(testConfig(), f.repos.UserRepo, f.repos.TeamMemberRepo, limiter)

	member, token, err := auth.TeamLogin(ctx, " ALICE-42 ", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, member.ID)

	subject, role, err := auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, subject)
	assert.Equal(t, "team", role)

	_, _, err = auth.TeamLogin(ctx, "BOB-7", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "inactive members cannot log in")

	_, _, err = auth.TeamLogin(ctx, "nope", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.TeamLogin(ctx, "ALICE-42", "10.0.0.1")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, _, err = auth.TeamLogin(ctx, "ALICE-42", "10.0.0.2")
	assert.NoError(t, err)
}

func TestAuthService_TeamLoginLimiterDown(t *testing.T) {
	f := newFixture(t)
	f.member(t, "Alice", "A1")
	limiter := &countingLimiter{err: errors.New("redis down")}
	auth := NewAuthService(testConfig(), f.repos.UserRepo, f.repos.TeamMemberRepo, limiter)

	_, _, err := auth.TeamLogin(context.Background(), "A1", "10.0.0.1")
	assert.NoError(t, err)
}

func TestAuthService_PurgeExpiredTokens(t *testing.T) {
	repos := repository.NewRepositories()
	auth := NewAuthService(testConfig(), repos.UserRepo, repos.TeamMemberRepo, nil)
	ctx := context.Background()
	_, _, _, err := auth.Register(ctx, "admin", "secret123", false)
	require.NoError(t, err)

	n, err := auth.PurgeExpiredTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = auth.PurgeExpiredTokens(ctx, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
