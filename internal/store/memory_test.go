package store

import (
	"context"
	"testing"
	"time"

	"commitsonic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCommitsAreInsertedOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first := models.Commit{ID: "a1", RepoID: "owner/repo", CIStatus: models.CIStatusUnknown}
	require.NoError(t, m.CreateCommits(ctx, []models.Commit{first}))

	require.NoError(t, m.UpdateCIStatus(ctx, "owner/repo", "a1", models.CIStatusPass, models.MusicalParams{Scale: models.ScaleMajor}))

	// redelivery must not reset the CI status
	require.NoError(t, m.CreateCommits(ctx, []models.Commit{first}))

	got, ok := m.Commit("owner/repo", "a1")
	require.True(t, ok)
	assert.Equal(t, models.CIStatusPass, got.CIStatus)
	assert.Equal(t, models.ScaleMajor, got.MusicalParams.Scale)
	assert.Equal(t, 1, m.CommitCount())
}

func TestMemoryRecentCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.CreateCommits(ctx, []models.Commit{
		{ID: "old", RepoID: "owner/repo", Timestamp: base},
		{ID: "new", RepoID: "owner/repo", Timestamp: base.Add(time.Hour)},
		{ID: "other", RepoID: "owner/other", Timestamp: base},
	}))

	commits, err := m.RecentCommits(ctx, "owner/repo", 1)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "new", commits[0].ID)
}

func TestMemoryRepoRegistry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetRepoByFullName(ctx, "owner/repo")
	assert.ErrorIs(t, err, ErrRepositoryNotFound)

	repo := &models.Repository{FullName: "owner/repo", Owner: "owner", Name: "repo", WebhookSecret: "s"}
	require.NoError(t, m.CreateRepo(ctx, repo))
	assert.ErrorIs(t, m.CreateRepo(ctx, repo), ErrDuplicate)

	repo.WebhookID = 99
	require.NoError(t, m.UpdateRepo(ctx, repo))

	got, err := m.GetRepoByFullName(ctx, "owner/repo")
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.WebhookID)
	assert.Equal(t, "s", got.WebhookSecret)

	assert.ErrorIs(t, m.UpdateRepo(ctx, &models.Repository{FullName: "owner/none"}), ErrRepositoryNotFound)
	assert.ErrorIs(t, m.CreateRepo(ctx, &models.Repository{}), ErrInvalidInput)
}

func TestMemoryListeners(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateListener(ctx, &models.Listener{Username: "ada", Password: "hash"}))
	assert.ErrorIs(t, m.CreateListener(ctx, &models.Listener{Username: "ada", Password: "hash"}), ErrDuplicate)
	assert.ErrorIs(t, m.CreateListener(ctx, &models.Listener{Username: "bob"}), ErrInvalidInput)

	l, err := m.GetListener(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "hash", l.Password)

	_, err = m.GetListener(ctx, "bob")
	assert.ErrorIs(t, err, ErrListenerNotFound)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "cassandra")
	assert.ErrorIs(t, err, ErrUnknownDriver)

	s, err := Open(context.Background(), DriverMemory)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}
