package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/wayfarer/internal/failures"
	"github.com/mohammad-safakhou/wayfarer/internal/planner"
	"github.com/mohammad-safakhou/wayfarer/tools/web_search/models"
)

// planPath is the generate-plan route. Its failures render PlanResponse,
// which always carries an empty reference list.
const planPath = "/api/generate-plan"

type PlanHandler struct {
	Generator *planner.Generator
}

func (h *PlanHandler) Register(g *echo.Group) {
	g.POST("/generate-plan", h.generate)
}

// generate answers with a plan built from the request alone; no search runs.
func (h *PlanHandler) generate(c echo.Context) error {
	var body PlanRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	req, err := validatePlanRequest(body)
	if err != nil {
		return err
	}

	plan, err := h.Generator.Plan(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PlanResponse{Success: true, Plan: plan, References: []models.Reference{}})
}

func validatePlanRequest(body PlanRequest) (planner.PlanRequest, error) {
	if !body.Days.Present() {
		return planner.PlanRequest{}, failures.New(failures.Validation, "days is required")
	}
	destination := strings.TrimSpace(body.Destination)
	if destination == "" {
		return planner.PlanRequest{}, failures.New(failures.Validation, "destination is required")
	}
	days, ok := body.Days.Int()
	if !ok {
		return planner.PlanRequest{}, failures.New(failures.Validation, "days must be a whole number")
	}
	if days <= 0 {
		return planner.PlanRequest{}, failures.New(failures.Validation, "days must be a positive number")
	}
	return planner.PlanRequest{
		Days:        days,
		Destination: destination,
		Budget:      strings.TrimSpace(body.Budget),
		Preferences: strings.TrimSpace(body.Preferences),
	}, nil
}
