package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stockflow/internal/log"
	"stockflow/internal/services"
	"stockflow/internal/validate"
)

type InventoryHandler struct {
	Ledger *services.LedgerService
}

// GET /api/v1/inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	products, err := h.Ledger.Overview()
	if err != nil {
		return fail(c, "inventory.list", err)
	}
	return c.JSON(products)
}

// GET /api/v1/inventory/:productID
func (h *InventoryHandler) Quantity(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("productID"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	qty, err := h.Ledger.GetQuantity(id)
	if err != nil {
		return fail(c, "inventory.quantity", err)
	}
	return c.JSON(fiber.Map{"product_id": id, "quantity": qty})
}

// POST /api/v1/inventory/adjust (admin)
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"product_id"`
		Delta     int    `json:"delta"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	id, ok := validate.ID(body.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	qty, err := h.Ledger.Adjust(id, body.Delta)
	if err != nil {
		return fail(c, "inventory.adjust", err)
	}
	applog.Audit(c, "inventory.adjust", map[string]any{"product_id": id, "delta": body.Delta, "quantity": qty})
	return c.JSON(fiber.Map{"product_id": id, "quantity": qty})
}

// POST /api/v1/inventory/reset (admin). Empty product_id zeroes everything.
func (h *InventoryHandler) Reset(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.ProductID != "" {
		if _, ok := validate.ID(body.ProductID); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
		}
	}
	if err := h.Ledger.Reset(body.ProductID); err != nil {
		return fail(c, "inventory.reset", err)
	}
	applog.Audit(c, "inventory.reset", map[string]any{"product_id": body.ProductID})
	return c.SendStatus(fiber.StatusNoContent)
}
