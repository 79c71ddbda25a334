package stream

import (
	"bufio"
	"time"

	"commitsonic/internal/errmsg"
	"commitsonic/internal/eventbus"
	"commitsonic/internal/events"
	"commitsonic/internal/logger"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// SSE godoc
// @Summary Stream live commits
// @Description Opens a Server-Sent Events stream. The first event is `connected` with {repo}; every later `commits` event carries the batch of commits broadcast for the repository.
// @Tags Stream
// @Produce text/event-stream
// @Security ListenerAuth
// @Param repo query string true "Repository as owner/name"
// @Param token query string false "Listener token, for clients that cannot set headers"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} errmsg._StreamRepoMalformed
// @Failure 401 {object} errmsg._ListenerNoToken
// @Router /stream [get]
func (h *Handler) SSE(c fiber.Ctx) error {
	repo, err := repoParam(c)
	if err != nil {
		return utils.AnyError(c, err)
	}
	if h.cfg.Draining() {
		return utils.StatusError(c, errmsg.StreamDraining)
	}

	rctx, ok := requestCtx(c)
	if !ok {
		return fiber.ErrInternalServerError
	}

	sub, err := h.subscribe(repo)
	if err != nil {
		return utils.AnyError(c, err)
	}

	listener := listenerName(c)
	heartbeat := h.cfg.Heartbeat

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
	c.Status(fiber.StatusOK)

	rctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		started := time.Now()
		events.Em.StreamConnected(listener, repo, "sse", sub.ID)

		defer func() {
			sub.Close()
			events.Em.StreamDisconnected(listener, repo, "sse", sub.ID, time.Since(started))
		}()

		if err := pump(w, repo, sub, heartbeat); err != nil {
			logger.Debug("sse client went away",
				zap.String("repo", repo),
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
		}
	})

	return nil
}

// pump writes the connected frame, then every delivered batch, with a
// heartbeat in between. It returns nil when the subscription ends and the
// write error when the client disconnects.
func pump(w *bufio.Writer, repo string, sub *eventbus.Subscription, heartbeat time.Duration) error {
	if err := writeEvent(w, connectedFrame(repo)); err != nil {
		return err
	}

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-sub.Done():
			return nil
		case commits := <-sub.Commits():
			if err := writeEvent(w, commitsFrame(commits)); err != nil {
				return err
			}
		case <-ticker.C:
			if err := writeHeartbeat(w); err != nil {
				return err
			}
		}
	}
}
