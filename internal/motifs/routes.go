// Package motifs serves the per-author audio signatures.
package motifs

import (
	"strings"

	"commitsonic/internal/errmsg"
	"commitsonic/internal/music"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
)

func Routes(app fiber.Router) {
	app.Get("/motifs/:login", motifHandler)
}

// motifHandler godoc
// @Summary Author motif
// @Description Deterministic pan position, rhythm pattern and color for a GitHub login.
// @Tags Motifs
// @Produce json
// @Param login path string true "GitHub login"
// @Success 200 {object} models.AuthorMotif
// @Router /motifs/{login} [get]
func motifHandler(c fiber.Ctx) error {
	login := strings.TrimSpace(c.Params("login"))
	if login == "" {
		return utils.StatusError(c, errmsg.MotifLoginMissing)
	}

	return c.JSON(music.GenerateAuthorMotif(login))
}
