package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/wayfarer/internal/enrich"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
)

type TravelInfoHandler struct {
	Search SearchClient
	Enrich *enrich.Pipeline
}

func (h *TravelInfoHandler) Register(g *echo.Group) {
	g.POST("/travel-info", h.collect)
}

// collect runs the planning searches for a destination and returns the
// enriched hits. An empty list means nothing was found and is not an error.
func (h *TravelInfoHandler) collect(c echo.Context) error {
	var body PlanRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	req, err := validatePlanRequest(body)
	if err != nil {
		return err
	}
	if !h.Search.Configured() {
		return errSearchNotConfigured
	}

	results := h.Enrich.Enrich(c.Request().Context(), req.Destination, req.Days, req.Preferences)
	return c.JSON(http.StatusOK, TravelInfoResponse{
		Success:    true,
		References: models.References(results),
		Results:    results,
	})
}
