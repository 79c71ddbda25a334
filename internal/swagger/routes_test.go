package swagger

import (
	"encoding/json"
	"net/http"
	"testing"

	"commitsonic/internal/env"
	"commitsonic/test/helpers"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocJSON(t *testing.T) {
	env.VERSION = "1.2.3"

	app := fiber.New()
	Register(app)

	body, status := helpers.RequestRunner(t, app, http.MethodGet, "/api/docs/doc.json", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "/api", doc["basePath"])
	assert.Equal(t, "1.2.3", doc["info"].(map[string]any)["version"])
	assert.Contains(t, doc["paths"], "/webhooks/github")
	assert.Contains(t, doc["paths"], "/stream")
}

func TestDocsUI(t *testing.T) {
	app := fiber.New()
	Register(app)

	body, status := helpers.RequestRunner(t, app, http.MethodGet, "/api/docs", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "/api/docs/doc.json")
}

func TestRenderDoc(t *testing.T) {
	out, err := renderDoc([]byte(`{"swagger": "2.0", "info": {"title": "t", "version": "0.0.0"}}`), "")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "0.0.0", doc["info"].(map[string]any)["version"])
	assert.Equal(t, "/api", doc["basePath"])

	out, err = renderDoc([]byte(`{"swagger": "2.0"}`), " 2.0.1 ")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "2.0.1", doc["info"].(map[string]any)["version"])

	_, err = renderDoc([]byte(`not json`), "1.0.0")
	assert.Error(t, err)
}
