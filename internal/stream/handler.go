// Package stream serves live commit feeds for one repository over
// Server-Sent Events and WebSocket. Every connection owns an eventbus
// subscription from connect until it goes away.
package stream

import (
	"errors"
	"strings"
	"time"

	"commitsonic/internal/env"
	"commitsonic/internal/errmsg"
	"commitsonic/internal/eventbus"
	"commitsonic/internal/models"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
)

const (
	defaultHeartbeat = 15 * time.Second
	defaultBuffer    = 16
)

type Config struct {
	// Heartbeat is the interval between keep-alive frames. Failing to write
	// one is how a silent disconnect is noticed.
	Heartbeat time.Duration
	// Buffer is the number of undelivered batches a slow client may lag.
	Buffer int
	// Draining reports whether new connections should be turned away.
	Draining func() bool
}

type Handler struct {
	bus *eventbus.Bus
	cfg Config
}

func NewHandler(bus *eventbus.Bus, cfg Config) *Handler {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.Draining == nil {
		cfg.Draining = func() bool { return env.DRAIN_MODE }
	}
	return &Handler{bus: bus, cfg: cfg}
}

// repoParam validates ?repo=owner/name.
func repoParam(c fiber.Ctx) (string, error) {
	repo := strings.TrimSpace(c.Query("repo"))
	if repo == "" {
		return "", errmsg.StreamRepoMissing
	}
	if _, _, ok := models.SplitRepoName(repo); !ok {
		return "", errmsg.StreamRepoMalformed
	}
	return repo, nil
}

func (h *Handler) subscribe(repo string) (*eventbus.Subscription, error) {
	sub, err := h.bus.Subscribe(repo, h.cfg.Buffer)
	if errors.Is(err, eventbus.ErrBusClosed) {
		return nil, errmsg.StreamClosed
	}
	return sub, err
}

func listenerName(c fiber.Ctx) string {
	var listener models.Listener
	utils.GetLocals(c, models.ListenerLocal, &listener)
	return listener.Username
}

type requestCtxProvider interface {
	RequestCtx() *fasthttp.RequestCtx
}

// requestCtx exposes the underlying fasthttp context, needed to stream the
// body or hijack the connection.
func requestCtx(c fiber.Ctx) (*fasthttp.RequestCtx, bool) {
	provider, ok := any(c).(requestCtxProvider)
	if !ok {
		return nil, false
	}
	return provider.RequestCtx(), true
}
