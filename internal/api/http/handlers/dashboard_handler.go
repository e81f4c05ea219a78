package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/service"
)

// DashboardHandler serves per-domain analytics snapshots.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Snapshot handles GET /domains/:domain/dashboard.
func (h *DashboardHandler) Snapshot(c *fiber.Ctx) error {
	d := domain.NetworkDomain(c.Params("domain"))
	if !d.Valid() {
		return fiber.NewError(http.StatusNotFound, "unknown network domain")
	}

	snapshot, err := h.dashboard.Snapshot(c.Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}
