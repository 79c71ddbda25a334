package githubhooks

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"commitsonic/internal/errmsg"
	"commitsonic/internal/eventbus"
	"commitsonic/internal/events"
	"commitsonic/internal/logger"
	"commitsonic/internal/models"
	"commitsonic/internal/relay"
	"commitsonic/internal/store"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// GitHub header keys and event names that drive webhook handling.
const (
	signatureHeader = "X-Hub-Signature-256"
	eventHeader     = "X-GitHub-Event"
	deliveryHeader  = "X-GitHub-Delivery"
	pingEvent       = "ping"
	pushEvent       = "push"
)

// CIScheduler picks up freshly stored commits for a later CI status lookup.
type CIScheduler interface {
	Schedule(repoFullName string, commits []models.Commit)
}

// Deps are the collaborators the webhook handler needs. Relay and CI are
// optional.
type Deps struct {
	Registry store.RepoRegistry
	Commits  store.CommitStore
	Bus      *eventbus.Bus
	Relay    relay.Relay
	CI       CIScheduler
}

// Handler ingests GitHub ping and push deliveries.
type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler {
	if deps.Relay == nil {
		deps.Relay = relay.Noop{}
	}
	return &Handler{deps: deps}
}

type webhookResponse struct {
	Message   string `json:"message"`
	Processed int    `json:"processed"`
}

// Receive godoc
// @Summary Receive a GitHub webhook
// @Description Verifies the delivery signature against the repository secret, then ingests push commits and broadcasts them to live listeners.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-GitHub-Event header string true "GitHub event name"
// @Param X-Hub-Signature-256 header string true "sha256= HMAC of the body"
// @Success 200 {object} webhookResponse
// @Failure 400 {object} errmsg._WebhookInvalidJSON
// @Failure 401 {object} errmsg._WebhookSignatureInvalid
// @Failure 500 {object} errmsg._InternalServerError
// @Router /webhooks/github [post]
func (h *Handler) Receive(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return utils.StatusError(c, errmsg.WebhookEmptyBody)
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return utils.StatusError(c, errmsg.WebhookInvalidJSON)
	}

	if payload.Repository == nil || strings.TrimSpace(payload.Repository.FullName) == "" {
		return utils.StatusError(c, errmsg.WebhookMissingRepository)
	}
	repoFullName := strings.TrimSpace(payload.Repository.FullName)

	eventType := strings.TrimSpace(c.Get(eventHeader))
	if eventType == "" {
		return utils.StatusError(c, errmsg.WebhookEventMissing)
	}

	ctx := context.Context(c)

	repo, err := h.deps.Registry.GetRepoByFullName(ctx, repoFullName)
	if err != nil {
		if errors.Is(err, store.ErrRepositoryNotFound) {
			return utils.StatusError(c, errmsg.WebhookRepoNotRegistered)
		}
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}
	if repo.WebhookSecret == "" {
		return utils.StatusError(c, errmsg.WebhookRepoNotRegistered)
	}

	signature := c.Get(signatureHeader)
	if signature == "" {
		return utils.StatusError(c, errmsg.WebhookSignatureMissing)
	}

	// Reject requests whose HMAC cannot be verified with the repository secret.
	if !VerifySignature(body, signature, repo.WebhookSecret) {
		return utils.StatusError(c, errmsg.WebhookSignatureInvalid)
	}

	deliveryID := strings.TrimSpace(c.Get(deliveryHeader))
	log := logger.WithContext(
		zap.String("repo", repoFullName),
		zap.String("event", eventType),
		zap.String("delivery", deliveryID),
	)

	switch eventType {
	case pingEvent:
		h.recordHookID(ctx, repo, payload.HookID)
		events.Em.GitHubPingReceived(deliveryID, repoFullName, payload.HookID)
		log.Info("webhook ping acknowledged", zap.Int64("hook_id", payload.HookID))

		return c.JSON(webhookResponse{Message: "pong"})
	case pushEvent:
	default:
		log.Debug("webhook event ignored")
		return c.JSON(webhookResponse{Message: "event " + eventType + " ignored"})
	}

	commits, err := processPushCommits(repoFullName, payload.Commits)
	if err != nil {
		log.Warn("rejecting push with invalid commit", zap.Error(err))
		return utils.StatusError(c, errmsg.WebhookInvalidCommit)
	}

	if len(commits) == 0 {
		return c.JSON(webhookResponse{Message: "no commits to process"})
	}

	if err := h.deps.Commits.CreateCommits(ctx, commits); err != nil {
		log.Error("failed to store commits", zap.Error(err))
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	delivered := h.deps.Bus.Broadcast(repoFullName, commits)

	if err := h.deps.Relay.Publish(ctx, repoFullName, commits); err != nil {
		log.Warn("relay publish failed", zap.Error(err))
	}

	if h.deps.CI != nil {
		h.deps.CI.Schedule(repoFullName, commits)
	}

	ids := make([]string, len(commits))
	for i, commit := range commits {
		ids[i] = commit.ID
	}
	events.Em.GitHubPushReceived(deliveryID, repoFullName, payload.Ref, ids)

	log.Info("push processed",
		zap.Int("commit_count", len(commits)),
		zap.Int("delivered", delivered))

	return c.JSON(webhookResponse{
		Message:   "processed push",
		Processed: len(commits),
	})
}

// recordHookID keeps the stored hook id in step with the one GitHub reports
// on ping. Failures are logged only; a ping never fails on bookkeeping.
func (h *Handler) recordHookID(ctx context.Context, repo *models.Repository, hookID int64) {
	if hookID == 0 || hookID == repo.WebhookID {
		return
	}

	updated := *repo
	updated.WebhookID = hookID
	updated.UpdatedAt = time.Now().UTC()

	if err := h.deps.Registry.UpdateRepo(ctx, &updated); err != nil {
		logger.Warn("failed to record webhook id",
			zap.String("repo", repo.FullName),
			zap.Int64("hook_id", hookID),
			zap.Error(err))
	}
}
