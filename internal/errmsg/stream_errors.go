package errmsg

import "net/http"

var (
	StreamRepoMissing = NewStatusError(
		http.StatusBadRequest,
		"repo query parameter is required",
	)
	StreamRepoMalformed = NewStatusError(
		http.StatusBadRequest,
		"repo must look like owner/name",
	)
	StreamDraining = NewStatusError(
		http.StatusServiceUnavailable,
		"service is draining - please reconnect to active instance",
	)
	StreamUpgradeRequired = NewStatusError(
		http.StatusUpgradeRequired,
		"websocket upgrade required",
	)
	StreamClosed = NewStatusError(
		http.StatusServiceUnavailable,
		"stream is shutting down",
	)
)

type _StreamRepoMalformed struct {
	Error string `json:"error" example:"repo must look like owner/name"`
}

type _StreamUpgradeRequired struct {
	Error string `json:"error" example:"websocket upgrade required"`
}
