package errmsg

import "net/http"

var (
	RepoInvalidRequest = NewStatusError(
		http.StatusBadRequest,
		"owner and name must be provided",
	)
	RepoNotFound = NewStatusError(
		http.StatusNotFound,
		"repository is not registered",
	)
	RepoAlreadyRegistered = NewStatusError(
		http.StatusConflict,
		"webhook already registered for this repository",
	)
	RepoPermissionDenied = NewStatusError(
		http.StatusForbidden,
		"insufficient permissions to manage webhooks on this repository",
	)
	RepoInvalidLimit = NewStatusError(
		http.StatusBadRequest,
		"limit must be a positive integer",
	)
	RepoGitHubNotConfigured = NewStatusError(
		http.StatusInternalServerError,
		"github token or public webhook url not configured",
	)
)

type _RepoAlreadyRegistered struct {
	Error string `json:"error" example:"webhook already registered for this repository"`
}

type _RepoPermissionDenied struct {
	Error string `json:"error" example:"insufficient permissions to manage webhooks on this repository"`
}
