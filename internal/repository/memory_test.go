package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClientWithChantier(t *testing.T, repos *Repositories) (*Client, *Chantier) {
	t.Helper()
	ctx := context.Background()
	client := &Client{Name: "Martin", Phone: "0600000000"}
	require.NoError(t, repos.ClientRepo.Create(ctx, client))
	chantier := &Chantier{Name: "Piscine", ClientID: client.ID, StartDate: "2024-03-01", Duration: "2 semaines", Status: "planned"}
	require.NoError(t, repos.ChantierRepo.Create(ctx, chantier))
	return client, chantier
}

func TestInMemoryClientDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	client, chantier := seedClientWithChantier(t, repos)

	member := &TeamMember{Name: "Paul", Role: "Maçon", Email: "paul@example.com", Status: "active", LoginCode: "P001"}
	require.NoError(t, repos.TeamMemberRepo.Create(ctx, member))
	require.NoError(t, repos.AssignmentRepo.Create(ctx, &Assignment{ChantierID: chantier.ID, TeamMemberID: member.ID}))

	require.NoError(t, repos.ClientRepo.Delete(ctx, client.ID))

	got, err := repos.ChantierRepo.FindByID(ctx, chantier.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assignments, err := repos.AssignmentRepo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, assignments)

	// the member itself survives
	m, err := repos.TeamMemberRepo.FindByID(ctx, member.ID)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestInMemoryDeleteMissingReturnsNotFound(t *testing.T) {
	repos := NewRepositories()
	assert.ErrorIs(t, repos.ClientRepo.Delete(context.Background(), "nope"), ErrNotFound)
	assert.ErrorIs(t, repos.ChantierRepo.Delete(context.Background(), "nope"), ErrNotFound)
	assert.ErrorIs(t, repos.AssignmentRepo.Delete(context.Background(), "nope"), ErrNotFound)
}

func TestInMemoryAssignmentUniquePair(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	_, chantier := seedClientWithChantier(t, repos)
	member := &TeamMember{Name: "Paul", Role: "Maçon", Email: "paul@example.com", Status: "active", LoginCode: "P001"}
	require.NoError(t, repos.TeamMemberRepo.Create(ctx, member))

	require.NoError(t, repos.AssignmentRepo.Create(ctx, &Assignment{ChantierID: chantier.ID, TeamMemberID: member.ID}))
	err := repos.AssignmentRepo.Create(ctx, &Assignment{ChantierID: chantier.ID, TeamMemberID: member.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	list, err := repos.AssignmentRepo.FindByChantierID(ctx, chantier.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Member)
	assert.Equal(t, "Paul", list[0].Member.Name)
}

func TestInMemoryAssignmentForeignKeys(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	_, chantier := seedClientWithChantier(t, repos)

	err := repos.AssignmentRepo.Create(ctx, &Assignment{ChantierID: chantier.ID, TeamMemberID: "ghost"})
	assert.ErrorIs(t, err, ErrForeignKey)

	err = repos.ChantierRepo.Create(ctx, &Chantier{Name: "x", ClientID: "ghost"})
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestInMemoryLoginCodeUnique(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	a := &TeamMember{Name: "A", Role: "r", Email: "a@example.com", Status: "active", LoginCode: "CODE1"}
	b := &TeamMember{Name: "B", Role: "r", Email: "b@example.com", Status: "active", LoginCode: "CODE2"}
	require.NoError(t, repos.TeamMemberRepo.Create(ctx, a))
	require.NoError(t, repos.TeamMemberRepo.Create(ctx, b))

	b.LoginCode = "CODE1"
	assert.ErrorIs(t, repos.TeamMemberRepo.Update(ctx, b), ErrDuplicate)

	stored, err := repos.TeamMemberRepo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "CODE2", stored.LoginCode)
}

func TestInMemoryChantierJoinsClientName(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	client, chantier := seedClientWithChantier(t, repos)

	got, err := repos.ChantierRepo.FindByID(ctx, chantier.ID)
	require.NoError(t, err)
	assert.Equal(t, "Martin", got.ClientName)
	assert.Equal(t, []string{}, got.Images)

	client.Name = "Martin SARL"
	require.NoError(t, repos.ClientRepo.Update(ctx, client))
	all, err := repos.ChantierRepo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Martin SARL", all[0].ClientName)
}

func TestInMemoryListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repos.ClientRepo.Create(ctx, &Client{Name: name, Phone: "1"}))
	}
	list, err := repos.ClientRepo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "c", list[2].Name)
}

func TestInMemoryExpiredRefreshTokens(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	user := &User{Username: "admin", Password: "hash"}
	require.NoError(t, repos.UserRepo.Create(ctx, user))

	now := time.Now()
	require.NoError(t, repos.UserRepo.SaveRefreshToken(ctx, &RefreshToken{Token: "old", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repos.UserRepo.SaveRefreshToken(ctx, &RefreshToken{Token: "new", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}))

	n, err := repos.UserRepo.DeleteExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rt, err := repos.UserRepo.FindRefreshToken(ctx, "new")
	require.NoError(t, err)
	assert.NotNil(t, rt)
}

func TestImagesCodec(t *testing.T) {
	assert.Equal(t, "[]", encodeImages(nil))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, decodeImages(`["a.jpg","b.jpg"]`))
	assert.Equal(t, []string{}, decodeImages("not json"))
	assert.Equal(t, []string{}, decodeImages(""))
}
