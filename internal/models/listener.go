package models

import (
	"errors"
	"strings"
	"time"

	"commitsonic/internal/env"
	"commitsonic/internal/errmsg"
	"commitsonic/internal/utils"

	sj "github.com/brianvoe/sjwt"
	"github.com/gofiber/fiber/v3"
)

const ListenerLocal = "listener"

var ErrTokenInvalid = errors.New("token is invalid or expired")

// Listener is an account allowed to open live streams and register
// repositories. Password holds the bcrypt hash.
type Listener struct {
	Username  string    `json:"username" bson:"username" db:"username"`
	Password  string    `json:"-" bson:"password" db:"password"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
}

type listenerClaims struct {
	Username string `json:"username"`
}

func (l *Listener) GenToken() string {
	claims, _ := sj.ToClaims(listenerClaims{Username: l.Username})
	claims.SetExpiresAt(time.Now().Add(30 * 24 * time.Hour))

	return claims.Generate(env.JWT_SECRET)
}

func (l *Listener) ParseToken(token string) error {
	if !sj.Verify(token, env.JWT_SECRET) {
		return ErrTokenInvalid
	}

	claims, err := sj.Parse(token)
	if err != nil {
		return ErrTokenInvalid
	}
	if err := claims.Validate(); err != nil {
		return ErrTokenInvalid
	}

	var lc listenerClaims
	if err := claims.ToStruct(&lc); err != nil || lc.Username == "" {
		return ErrTokenInvalid
	}

	l.Username = lc.Username
	return nil
}

// ListenerAuthMiddleware requires an "Authorization: Bearer <token>" header.
func ListenerAuthMiddleware(c fiber.Ctx) error {
	return authenticate(c, bearerToken(c))
}

// ListenerStreamMiddleware also accepts ?token=<token>, since browsers cannot
// set headers on EventSource or WebSocket connections.
func ListenerStreamMiddleware(c fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		token = strings.TrimSpace(c.Query("token"))
	}
	return authenticate(c, token)
}

func bearerToken(c fiber.Ctx) string {
	authHeader := strings.TrimSpace(c.Get("Authorization"))
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}

	tokens := strings.Fields(authHeader)
	if len(tokens) != 2 {
		return ""
	}
	return tokens[1]
}

func authenticate(c fiber.Ctx, token string) error {
	if token == "" {
		return utils.StatusError(c, errmsg.ListenerNoToken)
	}

	var listener Listener
	if err := listener.ParseToken(token); err != nil {
		return utils.StatusError(c, errmsg.ListenerInvalidToken)
	}

	utils.SetLocals(c, ListenerLocal, listener)

	return c.Next()
}
