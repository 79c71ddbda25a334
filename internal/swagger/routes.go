package swagger

import (
	"encoding/json"
	"fmt"
	"strings"

	"commitsonic/internal/env"
	"commitsonic/internal/errmsg"
	"commitsonic/internal/utils"

	"github.com/gofiber/fiber/v3"
)

const (
	uiPath   = "/api/docs"
	docPath  = "/api/docs/doc.json"
	basePath = "/api"
	uiAssets = "https://unpkg.com/swagger-ui-dist@5"
)

// uiPage loads swagger-ui from the CDN. Tokens pasted into the authorize
// dialog get the Bearer scheme the listener middleware expects.
var uiPage = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>commitsonic API</title>
  <link rel="stylesheet" href="%[1]s/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="%[1]s/swagger-ui-bundle.js"></script>
  <script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%[2]s',
      dom_id: '#swagger-ui',
      persistAuthorization: true,
      requestInterceptor: (req) => {
        const token = req.headers && req.headers.Authorization;
        if (token && !token.startsWith('Bearer ')) {
          req.headers.Authorization = 'Bearer ' + token;
        }
        return req;
      },
    });
  };
  </script>
</body>
</html>`, uiAssets, docPath)

// Register serves the swagger UI and the embedded API description.
func Register(router fiber.Router) {
	if router == nil {
		return
	}

	router.Get(uiPath, func(c fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(uiPage)
	})

	router.Get(docPath, func(c fiber.Ctx) error {
		data, err := renderDoc(rawDoc, env.VERSION)
		if err != nil {
			return utils.StatusError(c, errmsg.InternalServerError(err))
		}

		c.Type("json", "utf-8")
		return c.Send(data)
	})
}

// renderDoc stamps the running version and the API base path into doc.
func renderDoc(doc []byte, version string) ([]byte, error) {
	var spec map[string]any
	if err := json.Unmarshal(doc, &spec); err != nil {
		return nil, fmt.Errorf("decode swagger doc: %w", err)
	}

	info, _ := spec["info"].(map[string]any)
	if info == nil {
		info = map[string]any{}
		spec["info"] = info
	}
	if v := strings.TrimSpace(version); v != "" {
		info["version"] = v
	}
	spec["basePath"] = basePath

	return json.MarshalIndent(spec, "", "  ")
}
