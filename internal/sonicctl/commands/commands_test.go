package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"commitsonic/internal/githubhooks"
	"commitsonic/internal/models"
	"commitsonic/internal/music"
	"commitsonic/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"motif", "params", "sign", "note", "version", "listener"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "", "motif", "ada", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestMotifFormats(t *testing.T) {
	want := music.GenerateAuthorMotif("octocat")

	out, err := execute(t, "", "motif", "octocat", "--format", "json")
	require.NoError(t, err)
	var got models.AuthorMotif
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want, got)

	out, err = execute(t, "", "motif", "octocat", "--format", "yaml")
	require.NoError(t, err)
	var gotYAML models.AuthorMotif
	require.NoError(t, yaml.Unmarshal([]byte(out), &gotYAML))
	assert.Equal(t, want.Color, gotYAML.Color)
	assert.Equal(t, want.RhythmPattern, gotYAML.RhythmPattern)

	out, err = execute(t, "", "motif", "octocat")
	require.NoError(t, err)
	assert.Contains(t, out, "color:  "+want.Color)
}

func TestParamsFromStdin(t *testing.T) {
	commit := `{
		"id": "abc123",
		"repoId": "owner/repo",
		"timestamp": "2024-03-01T23:00:00Z",
		"message": "Merge pull request #1",
		"stats": {"additions": 1, "deletions": 0, "filesChanged": 1},
		"languages": {"TypeScript": 1}
	}`

	out, err := execute(t, commit, "params", "--format", "json")
	require.NoError(t, err)

	var p models.MusicalParams
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, models.ScaleDorian, p.Scale)
	assert.Equal(t, 0.6, p.Effects.Reverb)
	assert.Equal(t, 0.4, p.Effects.Delay)
	assert.Equal(t, music.Instrument("TypeScript"), p.Instrument)
}

func TestParamsRejectsBadJSON(t *testing.T) {
	_, err := execute(t, "{", "params")
	assert.ErrorContains(t, err, "invalid commit JSON")
}

func TestSign(t *testing.T) {
	body := `{"zen":"Speak like a human."}`

	out, err := execute(t, body, "sign", "--secret", "s3cret")
	require.NoError(t, err)

	sig := strings.TrimSpace(out)
	assert.Equal(t, githubhooks.ComputeSignature("s3cret", []byte(body)), sig)
	assert.True(t, githubhooks.VerifySignature([]byte(body), sig, "s3cret"))

	_, err = execute(t, body, "sign")
	assert.ErrorContains(t, err, "--secret is required")
}

func TestNote(t *testing.T) {
	out, err := execute(t, "", "note", "C", "major", "2", "4")
	require.NoError(t, err)
	assert.Equal(t, "E4", strings.TrimSpace(out))

	_, err = execute(t, "", "note", "H", "major", "0", "4")
	assert.ErrorIs(t, err, music.ErrUnknownRoot)

	_, err = execute(t, "", "note", "C", "lydian", "0", "4")
	assert.ErrorIs(t, err, music.ErrUnknownScale)

	_, err = execute(t, "", "note", "C", "major", "x", "4")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/version", r.URL.Path)
		_, _ = w.Write([]byte("v0.1.0\n"))
	}))
	defer server.Close()

	out, err := execute(t, "", "version", "--host", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", strings.TrimSpace(out))
}

func TestListenerAdd(t *testing.T) {
	mem := store.NewMemory()

	original := openStore
	openStore = func(context.Context, string, string) (store.Store, error) {
		return mem, nil
	}
	t.Cleanup(func() { openStore = original })

	out, err := execute(t, "hunter2\n", "listener", "add", "ada", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"username": "ada", "created": true}`, out)

	l, err := mem.GetListener(context.Background(), "ada")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", l.Password)

	_, err = execute(t, "again\n", "listener", "add", "ada")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "", "listener", "add", "grace")
	assert.Error(t, err)
}
