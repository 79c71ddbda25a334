package helpers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"commitsonic/internal/errmsg"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

func RequestRunner(
	t *testing.T,
	app *fiber.App,
	method string,
	path string,
	sendBytes []byte,
	token *string,
	config ...fiber.TestConfig,
) (bodyBytes []byte, statusCode int) {
	t.Helper()

	req, err := http.NewRequest(
		method,
		path,
		bytes.NewBuffer(sendBytes),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	return run(t, app, req, config...)
}

// WebhookRunner posts body as a GitHub delivery of the given event. An empty
// signature leaves the X-Hub-Signature-256 header out.
func WebhookRunner(
	t *testing.T,
	app *fiber.App,
	path string,
	event string,
	body []byte,
	signature string,
) (bodyBytes []byte, statusCode int) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Delivery", "delivery-test")

	if event != "" {
		req.Header.Set("X-GitHub-Event", event)
	}
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}

	return run(t, app, req)
}

func run(t *testing.T, app *fiber.App, req *http.Request, config ...fiber.TestConfig) ([]byte, int) {
	t.Helper()

	config = append(config, fiber.TestConfig{Timeout: 30 * time.Second})

	res, err := app.Test(req, config[0])
	require.NoError(t, err)
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return bodyBytes, res.StatusCode
}

func ResponseErrorCheck(
	t *testing.T,
	serr errmsg.StatusError,
	bodyBytes []byte,
	statusCode int,
) {
	t.Helper()

	require.Equal(t, serr.StatusCode, statusCode)

	var body struct {
		Error string `json:"error"`
	}
	err := json.Unmarshal(bodyBytes, &body)
	require.NoError(t, err)

	require.Equal(t, serr.Message, body.Error)
}

// SignPayload renders the sha256= signature GitHub would send for body.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func MustJSON(t *testing.T, v any) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
