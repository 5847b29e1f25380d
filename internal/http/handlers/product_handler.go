package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "stockflow/internal/log"
	"stockflow/internal/services"
	"stockflow/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products?search=...
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("search"))
	limit := c.QueryInt("limit", 0)
	products, err := h.Catalog.Search(q, limit)
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, "products.get", err)
	}
	return c.JSON(p)
}

// POST /api/v1/products (admin)
func (h *ProductHandler) Register(c *fiber.Ctx) error {
	var body struct {
		SKU        string `json:"sku"`
		Name       string `json:"name"`
		OpeningQty int    `json:"opening_quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	sku, ok := validate.SKU(body.SKU)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "sku"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sku"})
	}
	name, ok := validate.Name(body.Name)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "name"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name must be 1-80 characters"})
	}
	p, err := h.Catalog.Register(sku, name, body.OpeningQty)
	if err != nil {
		return fail(c, "products.register", err)
	}
	applog.Audit(c, "products.register", map[string]any{"product_id": p.ID, "sku": p.SKU})
	return c.Status(fiber.StatusCreated).JSON(p)
}
