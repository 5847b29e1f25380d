package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockflow/internal/domain"
	applog "stockflow/internal/log"
	"stockflow/internal/services"
	"stockflow/internal/validate"
)

type ShipmentHandler struct {
	Ship *services.ShipmentService
}

// GET /api/v1/shipments
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	out, err := h.Ship.List()
	if err != nil {
		return fail(c, "shipments.list", err)
	}
	return c.JSON(out)
}

// POST /api/v1/shipments
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	sh, err := h.Ship.Create(body.Name)
	if err != nil {
		return fail(c, "shipments.create", err)
	}
	applog.Audit(c, "shipments.create", map[string]any{"shipment_id": sh.ID, "name": sh.Name})
	return c.Status(fiber.StatusCreated).JSON(sh)
}

// GET /api/v1/shipments/:id
func (h *ShipmentHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}
	sh, err := h.Ship.Get(id)
	if err != nil {
		return fail(c, "shipments.get", err)
	}
	return c.JSON(sh)
}

// DELETE /api/v1/shipments/:id
func (h *ShipmentHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}
	if err := h.Ship.Delete(id); err != nil {
		return fail(c, "shipments.delete", err)
	}
	applog.Audit(c, "shipments.delete", map[string]any{"shipment_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/v1/shipments/:id/items
func (h *ShipmentHandler) AddItem(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}
	var line services.ShipmentLineInput
	if err := c.BodyParser(&line); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	sh, err := h.Ship.AddItem(id, line)
	if err != nil {
		return fail(c, "shipments.items.add", err)
	}
	applog.Audit(c, "shipments.items.add", map[string]any{"shipment_id": id, "product_id": line.ProductID, "qty": line.Qty})
	return c.JSON(sh)
}

// POST /api/v1/shipments/:id/items/batch
func (h *ShipmentHandler) AddItemsBatch(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}
	var body struct {
		Items []services.ShipmentLineInput `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	sh, err := h.Ship.AddItemsBatch(id, body.Items)
	if err != nil {
		return fail(c, "shipments.items.batch", err)
	}
	applog.Audit(c, "shipments.items.batch", map[string]any{"shipment_id": id, "count": len(body.Items)})
	return c.JSON(sh)
}

// PATCH /api/v1/shipments/items/:itemID
func (h *ShipmentHandler) UpdateItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("itemID"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid line item id"})
	}
	var body struct {
		Qty int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.Ship.UpdateItemQty(itemID, body.Qty); err != nil {
		return fail(c, "shipments.items.update", err)
	}
	applog.Audit(c, "shipments.items.update", map[string]any{"item_id": itemID, "qty": body.Qty})
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/v1/shipments/items/:itemID
func (h *ShipmentHandler) RemoveItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("itemID"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid line item id"})
	}
	if err := h.Ship.RemoveItem(itemID); err != nil {
		return fail(c, "shipments.items.remove", err)
	}
	applog.Audit(c, "shipments.items.remove", map[string]any{"item_id": itemID})
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/v1/shipments/:id/status
func (h *ShipmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}
	var body struct {
		Status domain.ShipmentStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	sh, err := h.Ship.AdvanceStatus(id, body.Status)
	if err != nil {
		return fail(c, "shipments.status", err)
	}
	applog.Audit(c, "shipments.status", map[string]any{"shipment_id": id, "status": body.Status})
	return c.JSON(sh)
}

// GET /api/v1/shipments/:id/invoice
func (h *ShipmentHandler) Invoice(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid shipment id"})
	}
	inv, err := h.Ship.Summarize(id)
	if err != nil {
		return fail(c, "shipments.invoice", err)
	}
	return c.JSON(inv)
}
