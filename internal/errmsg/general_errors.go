package errmsg

import "net/http"

func InternalServerError(err error) StatusError {
	return NewStatusError(
		http.StatusInternalServerError,
		"internal server error: "+err.Error(),
	)
}

// UpstreamError reports a failed call to a third-party API. The core never
// retries these; the caller decides.
func UpstreamError(err error) StatusError {
	return NewStatusError(
		http.StatusBadGateway,
		"upstream request failed: "+err.Error(),
	)
}

type _InternalServerError struct {
	Error string `json:"error" example:"internal server error: connection refused"`
}
