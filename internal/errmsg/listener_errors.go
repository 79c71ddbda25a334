package errmsg

import "net/http"

var (
	ListenerNotExists = NewStatusError(
		http.StatusNotFound,
		"listener does not exist",
	)
	ListenerNoToken = NewStatusError(
		http.StatusUnauthorized,
		"no token has been provided",
	)
	ListenerInvalidToken = NewStatusError(
		http.StatusUnauthorized,
		"token is invalid or expired",
	)
	ListenerWrongPassword = NewStatusError(
		http.StatusUnauthorized,
		"username or password is incorrect",
	)
	ListenerInvalidPayload = NewStatusError(
		http.StatusBadRequest,
		"username and password must be provided",
	)
)

type _ListenerNoToken struct {
	Error string `json:"error" example:"no token has been provided"`
}

type _ListenerWrongPassword struct {
	Error string `json:"error" example:"username or password is incorrect"`
}
