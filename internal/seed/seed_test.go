package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planchais/chantiers-backend/internal/repository"
)

func TestSeedDataIsIdempotent(t *testing.T) {
	repos := repository.NewRepositories()
	ctx := context.Background()

	require.NoError(t, SeedData(ctx, repos, "admin123"))
	require.NoError(t, SeedData(ctx, repos, "admin123"))

	clients, err := repos.ClientRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	chantiers, err := repos.ChantierRepo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, chantiers, 3)

	assignments, err := repos.AssignmentRepo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, assignments, 4)

	admin, err := repos.UserRepo.FindByUsername(ctx, AdminUsername)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.NotEqual(t, "admin123", admin.Password)
}
