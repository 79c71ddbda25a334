package internal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"commitsonic/internal/env"
	"commitsonic/internal/eventbus"
	"commitsonic/internal/listeners"
	"commitsonic/internal/models"
	"commitsonic/internal/store"
	"commitsonic/test/helpers"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) (*fiber.App, *store.Memory, *eventbus.Bus) {
	t.Helper()

	env.JWT_SECRET = []byte("app-test-secret")
	env.VERSION = "0.1.0"

	st := store.NewMemory()
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	return NewApp(Deps{Store: st, Bus: bus}), st, bus
}

func TestMetaRoutes(t *testing.T) {
	app, _, _ := newTestApp(t)

	body, status := helpers.RequestRunner(t, app, http.MethodGet, "/api/ping", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PONG", string(body))

	body, status = helpers.RequestRunner(t, app, http.MethodGet, "/api/version", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "v0.1.0", string(body))
}

func TestPushThenReadCommits(t *testing.T) {
	app, st, bus := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, st.CreateRepo(ctx, &models.Repository{
		FullName:      "Owner/Repo",
		Owner:         "Owner",
		Name:          "Repo",
		WebhookSecret: "shh",
		WebhookID:     1,
	}))
	_, err := listeners.Create(ctx, st, "ada", "analytical", bcrypt.MinCost)
	require.NoError(t, err)

	sub, err := bus.Subscribe("Owner/Repo", 4)
	require.NoError(t, err)
	defer sub.Close()

	payload := helpers.MustJSON(t, map[string]any{
		"ref":        "refs/heads/main",
		"repository": map[string]any{"full_name": "Owner/Repo"},
		"commits": []map[string]any{
			{
				"id":        "c0ffee",
				"message":   "add parser",
				"timestamp": "2024-05-05T10:00:00Z",
				"author":    map[string]string{"name": "Ada", "username": "ada"},
				"added":     []string{"parser.py", "lexer.py"},
			},
		},
	})
	_, status := helpers.WebhookRunner(t, app, "/api/webhooks/github", "push", payload, helpers.SignPayload("shh", payload))
	require.Equal(t, http.StatusOK, status)

	select {
	case batch := <-sub.Commits():
		require.Len(t, batch, 1)
		assert.Equal(t, "Python", batch[0].PrimaryLanguage)
	default:
		t.Fatal("subscriber did not receive the push")
	}

	body, status := helpers.RequestRunner(t, app, http.MethodPost, "/api/listeners/login",
		[]byte(`{"username": "ada", "password": "analytical"}`), nil)
	require.Equal(t, http.StatusOK, status)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &login))

	body, status = helpers.RequestRunner(t, app, http.MethodGet, "/api/repos/Owner/Repo/commits", nil, &login.Token)
	require.Equal(t, http.StatusOK, status)

	var commits []models.Commit
	require.NoError(t, json.Unmarshal(body, &commits))
	require.Len(t, commits, 1)
	assert.Equal(t, "c0ffee", commits[0].ID)
	assert.Equal(t, models.InstrumentAMSynth, commits[0].MusicalParams.Instrument)
}

func TestShutdownEndsLiveStreams(t *testing.T) {
	env.JWT_SECRET = []byte("app-test-secret")
	env.DRAIN_MODE = false

	bus := eventbus.New()
	srv := &Server{deps: Deps{Store: store.NewMemory(), Bus: bus}}
	srv.App = NewApp(srv.deps)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = srv.App.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	listener := &models.Listener{Username: "ada"}
	url := fmt.Sprintf("http://%s/api/stream?repo=owner/repo&token=%s", ln.Addr(), listener.GenToken())

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)
	require.Equal(t, 1, bus.ClientCount("owner/repo"))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, srv.Shutdown(ctx))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, bus.TotalClientCount())
}

func TestPreforkIsRejected(t *testing.T) {
	assert.ErrorIs(t, checkProcessModel(true), ErrPreforkUnsupported)
	assert.NoError(t, checkProcessModel(false))
}
