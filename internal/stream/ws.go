package stream

import (
	"sync"
	"time"

	"commitsonic/internal/errmsg"
	"commitsonic/internal/events"
	"commitsonic/internal/logger"
	"commitsonic/internal/models"
	"commitsonic/internal/utils"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Upgrader upgrades stream requests to WebSocket connections. Browsers on
// any origin may connect; the listener token is the access check.
var Upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true
	},
}

// WebSocket godoc
// @Summary Stream live commits over WebSocket
// @Description Same feed as the SSE stream, framed as JSON text messages {"event": ..., "data": ...}.
// @Tags Stream
// @Security ListenerAuth
// @Param repo query string true "Repository as owner/name"
// @Param token query string false "Listener token"
// @Success 101 {string} string "switching protocols"
// @Failure 400 {object} errmsg._StreamRepoMalformed
// @Failure 401 {object} errmsg._ListenerNoToken
// @Failure 426 {object} errmsg._StreamUpgradeRequired
func (h *Handler) WebSocket(c fiber.Ctx) error {
	repo, err := repoParam(c)
	if err != nil {
		return utils.AnyError(c, err)
	}
	// In drain mode, reject new WebSocket connections with 503
	if h.cfg.Draining() {
		return utils.StatusError(c, errmsg.StreamDraining)
	}

	rctx, ok := requestCtx(c)
	if !ok {
		return fiber.ErrInternalServerError
	}
	if !websocket.FastHTTPIsWebSocketUpgrade(rctx) {
		return utils.StatusError(c, errmsg.StreamUpgradeRequired)
	}

	listener := listenerName(c)

	return Upgrader.Upgrade(rctx, func(conn *websocket.Conn) {
		defer conn.Close()

		sub, err := h.subscribe(repo)
		if err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			return
		}

		started := time.Now()
		events.Em.StreamConnected(listener, repo, "ws", sub.ID)
		defer func() {
			sub.Close()
			events.Em.StreamDisconnected(listener, repo, "ws", sub.ID, time.Since(started))
		}()

		closed := make(chan struct{})
		var once sync.Once
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					once.Do(func() { close(closed) })
					return
				}
			}
		}()

		if err := h.pumpWS(conn, repo, sub.Done(), sub.Commits(), closed); err != nil {
			logger.Debug("ws client went away",
				zap.String("repo", repo),
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
		}
	})
}

func (h *Handler) pumpWS(
	conn *websocket.Conn,
	repo string,
	done <-chan struct{},
	commits <-chan []models.Commit,
	closed <-chan struct{},
) error {
	if err := writeFrame(conn, connectedFrame(repo)); err != nil {
		return err
	}

	ticker := time.NewTicker(h.cfg.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"),
				time.Now().Add(writeWait))
			return nil
		case batch := <-commits:
			if err := writeFrame(conn, commitsFrame(batch)); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}
