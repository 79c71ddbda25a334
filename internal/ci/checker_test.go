package ci

import (
	"context"
	"errors"
	"testing"
	"time"

	"commitsonic/internal/models"
	"commitsonic/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStatuses struct {
	mock.Mock
}

func (m *mockStatuses) CombinedState(ctx context.Context, owner, name, ref string) (string, error) {
	args := m.Called(ctx, owner, name, ref)
	return args.String(0), args.Error(1)
}

func TestMapState(t *testing.T) {
	tests := []struct {
		state string
		want  models.CIStatus
	}{
		{state: "success", want: models.CIStatusPass},
		{state: "failure", want: models.CIStatusFail},
		{state: "error", want: models.CIStatusFail},
		{state: "pending", want: models.CIStatusPending},
		{state: "", want: models.CIStatusUnknown},
		{state: "weird", want: models.CIStatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapState(tt.state), tt.state)
	}
}

func TestCheckerUpdatesStatus(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	commits := []models.Commit{
		{ID: "a1", RepoID: "owner/repo", CIStatus: models.CIStatusUnknown},
		{ID: "a2", RepoID: "owner/repo", CIStatus: models.CIStatusUnknown},
	}
	require.NoError(t, s.CreateCommits(ctx, commits))

	statuses := new(mockStatuses)
	statuses.On("CombinedState", mock.Anything, "owner", "repo", "a1").Return("success", nil)
	statuses.On("CombinedState", mock.Anything, "owner", "repo", "a2").Return("", errors.New("rate limited"))

	checker := NewChecker(statuses, s, time.Millisecond)
	checker.Schedule("owner/repo", commits)

	require.Eventually(t, func() bool {
		c, _ := s.Commit("owner/repo", "a1")
		return c.CIStatus == models.CIStatusPass
	}, 2*time.Second, 10*time.Millisecond)

	checker.Close()

	a1, _ := s.Commit("owner/repo", "a1")
	assert.Equal(t, models.ScaleMajor, a1.MusicalParams.Scale)

	a2, _ := s.Commit("owner/repo", "a2")
	assert.Equal(t, models.CIStatusUnknown, a2.CIStatus)

	statuses.AssertExpectations(t)
}

func TestCheckerCloseCancelsPending(t *testing.T) {
	statuses := new(mockStatuses)
	checker := NewChecker(statuses, store.NewMemory(), time.Hour)

	checker.Schedule("owner/repo", []models.Commit{{ID: "a1", RepoID: "owner/repo"}})

	done := make(chan struct{})
	go func() {
		checker.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the pending check")
	}

	// scheduling after Close is ignored
	checker.Schedule("owner/repo", []models.Commit{{ID: "a2", RepoID: "owner/repo"}})
	statuses.AssertNotCalled(t, "CombinedState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
