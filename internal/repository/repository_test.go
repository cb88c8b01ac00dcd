package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "team_members_login_code_key"}, ErrDuplicate},
		{"foreign key violation", &pgconn.PgError{Code: "23503", ConstraintName: "chantiers_client_id_fkey"}, ErrForeignKey},
		{"malformed uuid reference", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, ErrForeignKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.err), tt.want)
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
	assert.NoError(t, translateError(nil))
}

func TestInMemoryDeleteRefreshTokenOnce(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user := &User{Username: "admin", Password: "hash"}
	require.NoError(t, repos.UserRepo.Create(ctx, user))
	require.NoError(t, repos.UserRepo.SaveRefreshToken(ctx, &RefreshToken{Token: "rt-1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	require.NoError(t, repos.UserRepo.DeleteRefreshToken(ctx, "rt-1"))
	assert.ErrorIs(t, repos.UserRepo.DeleteRefreshToken(ctx, "rt-1"), ErrNotFound)

	n, err := repos.UserRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
