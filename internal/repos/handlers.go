package repos

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"commitsonic/internal/errmsg"
	"commitsonic/internal/events"
	"commitsonic/internal/ghub"
	"commitsonic/internal/logger"
	"commitsonic/internal/models"
	"commitsonic/internal/store"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const (
	defaultCommitLimit = 50
	maxCommitLimit     = 200
)

// HookCreator installs a push webhook on a GitHub repository.
type HookCreator interface {
	CreatePushHook(ctx context.Context, owner, name, callbackURL, secret string) (int64, error)
}

type Deps struct {
	Registry store.RepoRegistry
	Commits  store.CommitStore
	// Hooks is nil when no GitHub token is configured.
	Hooks HookCreator
	// CallbackURL is the public URL GitHub delivers to.
	CallbackURL string
}

type handler struct {
	deps Deps
}

type registerRequest struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// newSecret returns 32 random bytes hex encoded.
func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// register godoc
// @Summary Register a repository
// @Description Generates a webhook secret, installs a push webhook on GitHub and records the repository.
// @Tags Repositories
// @Accept json
// @Produce json
// @Security ListenerAuth
// @Param body body registerRequest true "Repository"
// @Success 201 {object} models.Repository
// @Failure 400 {object} errmsg._InternalServerError
// @Failure 403 {object} errmsg._RepoPermissionDenied
// @Failure 409 {object} errmsg._RepoAlreadyRegistered
// @Router /repos [post]
func (h *handler) register(c fiber.Ctx) error {
	var body registerRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return utils.StatusError(c, errmsg.RepoInvalidRequest)
	}

	owner := strings.TrimSpace(body.Owner)
	name := strings.TrimSpace(body.Name)
	fullName := models.FullRepoName(owner, name)
	if _, _, ok := models.SplitRepoName(fullName); !ok {
		return utils.StatusError(c, errmsg.RepoInvalidRequest)
	}

	if h.deps.Hooks == nil || h.deps.CallbackURL == "" {
		return utils.StatusError(c, errmsg.RepoGitHubNotConfigured)
	}

	ctx := context.Context(c)

	existing, err := h.deps.Registry.GetRepoByFullName(ctx, fullName)
	switch {
	case err == nil && existing.WebhookID != 0:
		return utils.StatusError(c, errmsg.RepoAlreadyRegistered)
	case err != nil && !errors.Is(err, store.ErrRepositoryNotFound):
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	secret, err := newSecret()
	if err != nil {
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	// The record goes in before the hook exists so GitHub's initial ping can
	// already be verified.
	repo := &models.Repository{
		FullName:      fullName,
		Owner:         owner,
		Name:          name,
		WebhookSecret: secret,
	}
	if existing != nil {
		err = h.deps.Registry.UpdateRepo(ctx, repo)
	} else {
		err = h.deps.Registry.CreateRepo(ctx, repo)
	}
	if errors.Is(err, store.ErrDuplicate) {
		return utils.StatusError(c, errmsg.RepoAlreadyRegistered)
	}
	if err != nil {
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	hookID, err := h.deps.Hooks.CreatePushHook(ctx, owner, name, h.deps.CallbackURL, secret)
	switch {
	case errors.Is(err, ghub.ErrPermission):
		return utils.StatusError(c, errmsg.RepoPermissionDenied)
	case errors.Is(err, ghub.ErrHookExists):
		return utils.StatusError(c, errmsg.RepoAlreadyRegistered)
	case err != nil:
		logger.Warn("github webhook creation failed", zap.String("repo", fullName), zap.Error(err))
		return utils.StatusError(c, errmsg.UpstreamError(err))
	}

	// Re-read so a ping that already recorded the id is not overwritten with
	// stale timestamps.
	if current, err := h.deps.Registry.GetRepoByFullName(ctx, fullName); err == nil {
		repo = current
	}
	repo.WebhookID = hookID
	repo.UpdatedAt = time.Now().UTC()
	if err := h.deps.Registry.UpdateRepo(ctx, repo); err != nil {
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	var listener models.Listener
	utils.GetLocals(c, models.ListenerLocal, &listener)
	events.Em.RepoRegistered(listener.Username, fullName, hookID)

	logger.Info("repository registered",
		zap.String("repo", fullName),
		zap.Int64("hook_id", hookID),
		zap.String("listener", listener.Username))

	return c.Status(fiber.StatusCreated).JSON(repo)
}

// get godoc
// @Summary Get a registered repository
// @Tags Repositories
// @Produce json
// @Security ListenerAuth
// @Param owner path string true "Owner"
// @Param name path string true "Name"
// @Success 200 {object} models.Repository
// @Failure 404 {object} errmsg._InternalServerError
// @Router /repos/{owner}/{name} [get]
func (h *handler) get(c fiber.Ctx) error {
	repo, serr := h.lookup(c)
	if serr != errmsg.EmptyStatusError {
		return utils.StatusError(c, serr)
	}
	return c.JSON(repo)
}

// commits godoc
// @Summary Recent commits of a repository
// @Description Newest first, with their musical parameters.
// @Tags Repositories
// @Produce json
// @Security ListenerAuth
// @Param owner path string true "Owner"
// @Param name path string true "Name"
// @Param limit query int false "Maximum number of commits (default 50, max 200)"
// @Success 200 {array} models.Commit
// @Router /repos/{owner}/{name}/commits [get]
func (h *handler) commits(c fiber.Ctx) error {
	repo, serr := h.lookup(c)
	if serr != errmsg.EmptyStatusError {
		return utils.StatusError(c, serr)
	}

	limit := defaultCommitLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return utils.StatusError(c, errmsg.RepoInvalidLimit)
		}
		limit = min(n, maxCommitLimit)
	}

	commits, err := h.deps.Commits.RecentCommits(c, repo.FullName, limit)
	if err != nil {
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}
	if commits == nil {
		commits = []models.Commit{}
	}
	return c.JSON(commits)
}

func (h *handler) lookup(c fiber.Ctx) (*models.Repository, errmsg.StatusError) {
	fullName := models.FullRepoName(c.Params("owner"), c.Params("name"))
	if _, _, ok := models.SplitRepoName(fullName); !ok {
		return nil, errmsg.RepoInvalidRequest
	}

	repo, err := h.deps.Registry.GetRepoByFullName(c, fullName)
	if errors.Is(err, store.ErrRepositoryNotFound) {
		return nil, errmsg.RepoNotFound
	}
	if err != nil {
		return nil, errmsg.InternalServerError(err)
	}
	return repo, errmsg.EmptyStatusError
}
