package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockflow/internal/domain"
	applog "stockflow/internal/log"
	"stockflow/internal/services"
	"stockflow/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// GET /api/v1/orders?status=...
func (h *OrderHandler) List(c *fiber.Ctx) error {
	status := domain.OrderStatus(c.Query("status"))
	out, err := h.Orders.List(status)
	if err != nil {
		return fail(c, "orders.list", err)
	}
	return c.JSON(out)
}

// POST /api/v1/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var body struct {
		CustomerName string                    `json:"customer_name"`
		Source       domain.OrderSource        `json:"source"`
		LineItems    []services.OrderLineInput `json:"line_items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	name, ok := validate.Name(body.CustomerName)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "customer_name"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "customer name must be 1-80 characters"})
	}
	o, err := h.Orders.Create(name, body.Source, body.LineItems)
	if err != nil {
		return fail(c, "orders.create", err)
	}
	applog.Audit(c, "orders.create", map[string]any{"order_id": o.ID, "status": o.Status, "items": len(o.Items)})
	return c.Status(fiber.StatusCreated).JSON(o)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.Get(id)
	if err != nil {
		return fail(c, "orders.get", err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) transition(c *fiber.Ctx, action string, fn func(string) (domain.OrderDetail, error)) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	o, err := fn(id)
	if err != nil {
		return fail(c, action, err)
	}
	applog.Audit(c, action, map[string]any{"order_id": id, "status": o.Status})
	return c.JSON(o)
}

// POST /api/v1/orders/:id/allocate
func (h *OrderHandler) Allocate(c *fiber.Ctx) error {
	return h.transition(c, "orders.allocate", h.Orders.Allocate)
}

// POST /api/v1/orders/:id/hold
func (h *OrderHandler) Hold(c *fiber.Ctx) error {
	return h.transition(c, "orders.hold", h.Orders.Hold)
}

// POST /api/v1/orders/:id/resume
func (h *OrderHandler) Resume(c *fiber.Ctx) error {
	return h.transition(c, "orders.resume", h.Orders.Resume)
}

// POST /api/v1/orders/:id/complete
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, "orders.complete", h.Orders.Complete)
}

// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, "orders.cancel", h.Orders.Cancel)
}
