package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CategoryHandler struct {
	Categories *services.CategoryService
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	page, err := h.Categories.List(c.QueryInt("page", 1), c.QueryInt("pageSize", 10))
	if err != nil {
		return fail(c, "category.list", err)
	}
	return respondOK(c, "Categories retrieved successfully", page)
}

// Get handles GET /api/v1/categories/:id.
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid category id"})
	}
	cat, err := h.Categories.Get(id)
	if err != nil {
		return fail(c, "category.get", err)
	}
	return respondOK(c, "Category retrieved successfully", cat)
}

// ByName handles GET /api/v1/categories/name/:name.
func (h *CategoryHandler) ByName(c *fiber.Ctx) error {
	cat, err := h.Categories.GetByName(c.Params("name"))
	if err != nil {
		return fail(c, "category.by_name", err)
	}
	return respondOK(c, "Category retrieved successfully", cat)
}

// WithProducts handles GET /api/v1/categories/with-products.
func (h *CategoryHandler) WithProducts(c *fiber.Ctx) error {
	out, err := h.Categories.WithProducts()
	if err != nil {
		return fail(c, "category.with_products", err)
	}
	return respondOK(c, "Categories retrieved successfully", out)
}

// Create handles POST /api/v1/admin/categories.
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}
	cat, err := h.Categories.Create(req.Name, req.Description)
	if err != nil {
		return fail(c, "category.create", err)
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	return respondCreated(c, "Category created successfully", cat)
}

// Update handles PUT /api/v1/admin/categories/:id.
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid category id"})
	}
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}
	cat, err := h.Categories.Update(id, req.Name, req.Description)
	if err != nil {
		return fail(c, "category.update", err)
	}
	applog.Audit(c, "category.update", map[string]any{"category_id": id})
	return respondOK(c, "Category updated successfully", cat)
}

// Delete handles DELETE /api/v1/admin/categories/:id; refused while the
// category still has products.
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid category id"})
	}
	if err := h.Categories.Delete(id); err != nil {
		return fail(c, "category.delete", err)
	}
	applog.Audit(c, "category.delete", map[string]any{"category_id": id})
	return respondOK(c, "Category deleted successfully", true)
}
