package listeners

import (
	"encoding/json"
	"errors"
	"strings"

	"commitsonic/internal/errmsg"
	"commitsonic/internal/events"
	"commitsonic/internal/models"
	"commitsonic/internal/store"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type handler struct {
	accounts store.ListenerStore
}

// login godoc
// @Summary Log in as a listener
// @Description Exchanges username and password for a bearer token accepted by the stream and repository endpoints.
// @Tags Listeners
// @Accept json
// @Produce json
// @Param body body credentials true "Listener credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errmsg._ListenerNoToken
// @Failure 401 {object} errmsg._ListenerWrongPassword
// @Router /listeners/login [post]
func (h *handler) login(c fiber.Ctx) error {
	var body credentials
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return utils.StatusError(c, errmsg.ListenerInvalidPayload)
	}

	body.Username = strings.TrimSpace(body.Username)
	body.Password = strings.TrimSpace(body.Password)
	if body.Username == "" || body.Password == "" {
		return utils.StatusError(c, errmsg.ListenerInvalidPayload)
	}

	listener, err := h.accounts.GetListener(c, body.Username)
	if err != nil {
		if errors.Is(err, store.ErrListenerNotFound) {
			// Same answer as a wrong password so usernames cannot be probed.
			return utils.StatusError(c, errmsg.ListenerWrongPassword)
		}
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	if bcrypt.CompareHashAndPassword(
		[]byte(listener.Password),
		[]byte(body.Password),
	) != nil {
		return utils.StatusError(c, errmsg.ListenerWrongPassword)
	}

	token := listener.GenToken()

	events.Em.ListenerLogin(listener.Username)

	return c.JSON(bson.M{
		"token":    token,
		"listener": listener,
	})
}

// me godoc
// @Summary Current listener
// @Tags Listeners
// @Produce json
// @Security ListenerAuth
// @Success 200 {object} models.Listener
// @Failure 401 {object} errmsg._ListenerNoToken
// @Router /listeners/me [get]
func (h *handler) me(c fiber.Ctx) error {
	var listener models.Listener
	utils.GetLocals(c, models.ListenerLocal, &listener)

	found, err := h.accounts.GetListener(c, listener.Username)
	if err != nil {
		if errors.Is(err, store.ErrListenerNotFound) {
			return utils.StatusError(c, errmsg.ListenerNotExists)
		}
		return utils.StatusError(c, errmsg.InternalServerError(err))
	}

	return c.JSON(found)
}
