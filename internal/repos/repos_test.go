package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"commitsonic/internal/env"
	"commitsonic/internal/errmsg"
	"commitsonic/internal/ghub"
	"commitsonic/internal/models"
	"commitsonic/internal/store"
	"commitsonic/test/helpers"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const callbackURL = "https://sonic.example/api/webhooks/github"

type mockHooks struct {
	mock.Mock
}

func (m *mockHooks) CreatePushHook(ctx context.Context, owner, name, callbackURL, secret string) (int64, error) {
	args := m.Called(ctx, owner, name, callbackURL, secret)
	return args.Get(0).(int64), args.Error(1)
}

type fixture struct {
	app   *fiber.App
	store *store.Memory
	hooks *mockHooks
	token string
}

func newFixture(t *testing.T, withHooks bool) *fixture {
	t.Helper()

	env.JWT_SECRET = []byte("repos-test-secret")

	f := &fixture{
		store: store.NewMemory(),
		hooks: new(mockHooks),
		token: (&models.Listener{Username: "ada"}).GenToken(),
	}

	deps := Deps{
		Registry:    f.store,
		Commits:     f.store,
		CallbackURL: callbackURL,
	}
	if withHooks {
		deps.Hooks = f.hooks
	}

	f.app = fiber.New()
	Routes(f.app.Group("/api"), deps)
	return f
}

func hexSecret() any {
	return mock.MatchedBy(func(secret string) bool {
		if len(secret) != 64 {
			return false
		}
		for _, r := range secret {
			if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
				return false
			}
		}
		return true
	})
}

func TestRegister(t *testing.T) {
	f := newFixture(t, true)
	f.hooks.On("CreatePushHook", mock.Anything, "owner", "repo", callbackURL, hexSecret()).Return(int64(99), nil)

	body, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos",
		[]byte(`{"owner": "owner", "name": "repo"}`), &f.token)
	require.Equal(t, http.StatusCreated, status, string(body))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "owner/repo", resp["fullName"])
	assert.Equal(t, float64(99), resp["webhookId"])
	assert.NotContains(t, resp, "webhookSecret")

	repo, err := f.store.GetRepoByFullName(context.Background(), "owner/repo")
	require.NoError(t, err)
	assert.Equal(t, int64(99), repo.WebhookID)

	secret := f.hooks.Calls[0].Arguments.String(4)
	assert.Equal(t, secret, repo.WebhookSecret)

	f.hooks.AssertExpectations(t)
}

func TestRegisterConflicts(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.store.CreateRepo(context.Background(), &models.Repository{
		FullName:      "owner/repo",
		Owner:         "owner",
		Name:          "repo",
		WebhookSecret: "old",
		WebhookID:     5,
	}))

	body, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos",
		[]byte(`{"owner": "owner", "name": "repo"}`), &f.token)
	helpers.ResponseErrorCheck(t, errmsg.RepoAlreadyRegistered, body, status)

	f.hooks.AssertNotCalled(t, "CreatePushHook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterRetriesIncompleteRegistration(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.store.CreateRepo(context.Background(), &models.Repository{
		FullName:      "owner/repo",
		Owner:         "owner",
		Name:          "repo",
		WebhookSecret: "stale",
	}))
	f.hooks.On("CreatePushHook", mock.Anything, "owner", "repo", callbackURL, hexSecret()).Return(int64(12), nil)

	_, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos",
		[]byte(`{"owner": "owner", "name": "repo"}`), &f.token)
	require.Equal(t, http.StatusCreated, status)

	repo, err := f.store.GetRepoByFullName(context.Background(), "owner/repo")
	require.NoError(t, err)
	assert.Equal(t, int64(12), repo.WebhookID)
	assert.NotEqual(t, "stale", repo.WebhookSecret)
}

func TestRegisterGitHubErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errmsg.StatusError
	}{
		{
			name:     "permission",
			err:      fmt.Errorf("%w: Not Found", ghub.ErrPermission),
			expected: errmsg.RepoPermissionDenied,
		},
		{
			name:     "hook exists",
			err:      fmt.Errorf("%w: Validation Failed", ghub.ErrHookExists),
			expected: errmsg.RepoAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.hooks.On("CreatePushHook", mock.Anything, "owner", "repo", callbackURL, mock.Anything).Return(int64(0), tt.err)

			body, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos",
				[]byte(`{"owner": "owner", "name": "repo"}`), &f.token)
			helpers.ResponseErrorCheck(t, tt.expected, body, status)
		})
	}
}

func TestRegisterUpstreamFailure(t *testing.T) {
	f := newFixture(t, true)
	f.hooks.On("CreatePushHook", mock.Anything, "owner", "repo", callbackURL, mock.Anything).Return(int64(0), errors.New("connection reset"))

	body, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos",
		[]byte(`{"owner": "owner", "name": "repo"}`), &f.token)
	helpers.ResponseErrorCheck(t, errmsg.UpstreamError(errors.New("connection reset")), body, status)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, true)

	tests := []struct {
		name  string
		body  string
		token *string
		want  errmsg.StatusError
	}{
		{name: "no token", body: `{"owner": "o", "name": "n"}`, want: errmsg.ListenerNoToken},
		{name: "bad json", body: `{"owner":`, token: &f.token, want: errmsg.RepoInvalidRequest},
		{name: "missing name", body: `{"owner": "o"}`, token: &f.token, want: errmsg.RepoInvalidRequest},
		{name: "slash in name", body: `{"owner": "o", "name": "a/b"}`, token: &f.token, want: errmsg.RepoInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos", []byte(tt.body), tt.token)
			helpers.ResponseErrorCheck(t, tt.want, body, status)
		})
	}
}

func TestRegisterWithoutGitHub(t *testing.T) {
	f := newFixture(t, false)

	body, status := helpers.RequestRunner(t, f.app, http.MethodPost, "/api/repos",
		[]byte(`{"owner": "owner", "name": "repo"}`), &f.token)
	helpers.ResponseErrorCheck(t, errmsg.RepoGitHubNotConfigured, body, status)
}

func TestGetRepoAndCommits(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.store.CreateRepo(ctx, &models.Repository{
		FullName:      "owner/repo",
		Owner:         "owner",
		Name:          "repo",
		WebhookSecret: "s",
		WebhookID:     3,
	}))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.CreateCommits(ctx, []models.Commit{
		{ID: "a1", RepoID: "owner/repo", Timestamp: base},
		{ID: "a2", RepoID: "owner/repo", Timestamp: base.Add(time.Hour)},
		{ID: "a3", RepoID: "owner/repo", Timestamp: base.Add(2 * time.Hour)},
	}))

	body, status := helpers.RequestRunner(t, f.app, http.MethodGet, "/api/repos/owner/repo", nil, &f.token)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"webhookId":3`)
	assert.NotContains(t, string(body), "webhookSecret")

	body, status = helpers.RequestRunner(t, f.app, http.MethodGet, "/api/repos/owner/repo/commits?limit=2", nil, &f.token)
	require.Equal(t, http.StatusOK, status)

	var commits []models.Commit
	require.NoError(t, json.Unmarshal(body, &commits))
	require.Len(t, commits, 2)
	assert.Equal(t, "a3", commits[0].ID)
	assert.Equal(t, "a2", commits[1].ID)

	body, status = helpers.RequestRunner(t, f.app, http.MethodGet, "/api/repos/owner/repo/commits?limit=zero", nil, &f.token)
	helpers.ResponseErrorCheck(t, errmsg.RepoInvalidLimit, body, status)

	body, status = helpers.RequestRunner(t, f.app, http.MethodGet, "/api/repos/owner/missing", nil, &f.token)
	helpers.ResponseErrorCheck(t, errmsg.RepoNotFound, body, status)
}
