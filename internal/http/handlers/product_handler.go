package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

// List handles GET /api/v1/products with page/pageSize query params.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, err := h.Products.List(c.QueryInt("page", 1), c.QueryInt("pageSize", 10))
	if err != nil {
		return fail(c, "product.list", err)
	}
	return respondOK(c, "Products retrieved successfully", page)
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid product id"})
	}
	p, err := h.Products.Get(id)
	if err != nil {
		return fail(c, "product.get", err)
	}
	return respondOK(c, "Product retrieved successfully", p)
}

// ByName handles GET /api/v1/products/name/:name.
func (h *ProductHandler) ByName(c *fiber.Ctx) error {
	p, err := h.Products.GetByName(c.Params("name"))
	if err != nil {
		return fail(c, "product.by_name", err)
	}
	return respondOK(c, "Product retrieved successfully", p)
}

// Search handles GET /api/v1/products/search?q=&category=.
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q != "" {
		var valid bool
		if q, valid = validate.Q(q); !valid {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Search query is not valid"})
		}
	}
	items, err := h.Products.Search(q, c.Query("category"), c.QueryInt("page", 1), c.QueryInt("pageSize", 10))
	if err != nil {
		return fail(c, "product.search", err)
	}
	return respondOK(c, "Products retrieved successfully", items)
}

// ByCategory handles GET /api/v1/products/category/:id.
func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid category id"})
	}
	items, err := h.Products.ListByCategory(id)
	if err != nil {
		return fail(c, "product.by_category", err)
	}
	return respondOK(c, "Products retrieved successfully", items)
}

// Active handles GET /api/v1/products/active.
func (h *ProductHandler) Active(c *fiber.Ctx) error {
	items, err := h.Products.ListActive()
	if err != nil {
		return fail(c, "product.active", err)
	}
	return respondOK(c, "Products retrieved successfully", items)
}

// Availability handles GET /api/v1/products/:id/availability?qty=N; the
// answer is advisory, order creation re-checks transactionally.
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid product id"})
	}
	qty := c.QueryInt("qty", 1)
	if err := h.Products.CheckAvailability(id, qty); err != nil {
		return fail(c, "product.availability", err)
	}
	return respondOK(c, "Requested quantity is available", true)
}

// Create handles POST /api/v1/admin/products.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req services.CreateProduct
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}
	p, err := h.Products.Create(req)
	if err != nil {
		return fail(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return respondCreated(c, "Product created successfully", p)
}

// Update handles PUT /api/v1/admin/products/:id.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid product id"})
	}
	var req services.UpdateProduct
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}
	p, err := h.Products.Update(id, req)
	if err != nil {
		return fail(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return respondOK(c, "Product updated successfully", p)
}

// Delete handles DELETE /api/v1/admin/products/:id (soft delete).
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid product id"})
	}
	if err := h.Products.Delete(id); err != nil {
		return fail(c, "product.delete", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return respondOK(c, "Product deactivated successfully", true)
}

// HardDelete handles DELETE /api/v1/admin/products/:id/permanent.
func (h *ProductHandler) HardDelete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid product id"})
	}
	if err := h.Products.HardDelete(id); err != nil {
		return fail(c, "product.hard_delete", err)
	}
	applog.Audit(c, "product.hard_delete", map[string]any{"product_id": id})
	return respondOK(c, "Product permanently deleted", true)
}
