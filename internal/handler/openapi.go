package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/movie-watchlist/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OpenAPIHandler serves the API docs UI.
//
// The UI is a static page (openapi.html) that loads its JS from a CDN and
// reads openapi.json from the static folder.
type OpenAPIHandler struct {
	Handler
}

// NewOpenAPIHandler constructs an OpenAPIHandler with access to shared dependencies.
func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI reads <static_dir>/openapi.html and serves it as HTML.
//
// Cache-Control is "no-cache" so edits to the docs show up immediately.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	path := filepath.Join(h.server.Config.Server.StaticDir, "openapi.html")

	templateBytes, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read OpenAPI UI template")
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	return c.HTML(http.StatusOK, string(templateBytes))
}
