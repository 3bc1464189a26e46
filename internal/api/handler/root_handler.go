package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
)

// RootHandler serves the route list on GET /.
type RootHandler struct {
	routes func() []*echo.Route
}

func NewRootHandler(e *echo.Echo) *RootHandler {
	return &RootHandler{routes: e.Routes}
}

// Routes handles GET /.
//
// @Summary      List routes
// @Tags         diagnostics
// @Produce      json
// @Success      200  {array}  routeResponse
// @Router       / [get]
func (h *RootHandler) Routes(c echo.Context) error {
	routes := h.routes()
	out := make([]routeResponse, 0, len(routes))
	for _, r := range routes {
		if r.Method == echo.RouteNotFound {
			continue
		}
		out = append(out, routeResponse{Method: r.Method, Path: r.Path})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return c.JSON(http.StatusOK, out)
}
