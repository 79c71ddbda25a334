package errmsg

import "net/http"

// Webhook StatusError values surfaced by the push handler.
var (
	WebhookEmptyBody         = NewStatusError(http.StatusBadRequest, "request body is empty")
	WebhookInvalidJSON       = NewStatusError(http.StatusBadRequest, "invalid JSON payload")
	WebhookMissingRepository = NewStatusError(http.StatusBadRequest, "payload is missing repository.full_name")
	WebhookEventMissing      = NewStatusError(http.StatusBadRequest, "missing X-GitHub-Event header")
	WebhookInvalidCommit     = NewStatusError(http.StatusBadRequest, "invalid commit in payload")
	WebhookRepoNotRegistered = NewStatusError(http.StatusUnauthorized, "repository is not registered")
	WebhookSignatureMissing  = NewStatusError(http.StatusUnauthorized, "missing X-Hub-Signature-256 header")
	WebhookSignatureInvalid  = NewStatusError(http.StatusUnauthorized, "invalid webhook signature")
)

type _WebhookInvalidJSON struct {
	Error string `json:"error" example:"invalid JSON payload"`
}

type _WebhookSignatureInvalid struct {
	Error string `json:"error" example:"invalid webhook signature"`
}
