package errmsg

import "net/http"

var MotifLoginMissing = NewStatusError(
	http.StatusBadRequest,
	"login must be provided",
)
