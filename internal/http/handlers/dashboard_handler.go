package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stockflow/internal/log"
	"stockflow/internal/services"
)

type DashboardHandler struct {
	Dash *services.DashboardService
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.Dash.Stats()
	if err != nil {
		return fail(c, "dashboard.stats", err)
	}
	low, err := h.Dash.LowStockItems()
	if err != nil {
		return fail(c, "dashboard.stats", err)
	}
	return c.JSON(fiber.Map{"stats": stats, "low_stock_items": low})
}

// GET /
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	stats, err := h.Dash.Stats()
	if err != nil {
		applog.Error(c, "dashboard.page", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the dashboard"})
	}
	low, err := h.Dash.LowStockItems()
	if err != nil {
		applog.Error(c, "dashboard.page", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the dashboard"})
	}
	return render(c, "dashboard", fiber.Map{"Stats": stats, "LowStock": low})
}
