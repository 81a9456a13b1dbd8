package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type createOrderRequest struct {
	Items []services.CartLine `json:"items"`
}

// Create handles POST /api/v1/orders for the logged-in user.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	u, okUser := currentUser(c)
	if !okUser {
		return c.Status(fiber.StatusUnauthorized).JSON(envelope{Success: false, Message: "Login required"})
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}

	order, err := h.Orders.Create(u.ID, req.Items)
	if err != nil {
		applog.Security(c, "order.create.fail", map[string]any{"user_id": u.ID, "error": err.Error()})
		return fail(c, "order.create", err)
	}

	applog.Audit(c, "order.create", map[string]any{
		"order_id":     order.ID,
		"order_number": order.Number,
		"total":        order.Total.String(),
		"items":        len(order.Items),
	})
	return respondCreated(c, "Order created successfully", order)
}

// Get handles GET /api/v1/orders/:ref where ref is an order id or an
// ORD-... number.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	u, okUser := currentUser(c)
	if !okUser {
		return c.Status(fiber.StatusUnauthorized).JSON(envelope{Success: false, Message: "Login required"})
	}

	ref := c.Params("ref")
	order, err := h.Orders.Get(u.ID, ref)
	if err != nil {
		return fail(c, "order.get", err)
	}
	return respondOK(c, "Order retrieved successfully", order)
}

// List handles GET /api/v1/orders: the user's order history, newest first.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	u, okUser := currentUser(c)
	if !okUser {
		return c.Status(fiber.StatusUnauthorized).JSON(envelope{Success: false, Message: "Login required"})
	}

	orders, err := h.Orders.ListUserOrders(u.ID)
	if err != nil {
		return fail(c, "order.list", err)
	}
	return respondOK(c, "Orders retrieved successfully", fiber.Map{
		"orders":     orders,
		"totalCount": len(orders),
	})
}

// Cancel handles POST /api/v1/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	u, okUser := currentUser(c)
	if !okUser {
		return c.Status(fiber.StatusUnauthorized).JSON(envelope{Success: false, Message: "Login required"})
	}

	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid order id"})
	}

	if err := h.Orders.Cancel(u.ID, id); err != nil {
		return fail(c, "order.cancel", err)
	}

	applog.Audit(c, "order.cancel", map[string]any{"order_id": id, "user_id": u.ID})
	return respondOK(c, "Order cancelled successfully and stock has been restored", true)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/v1/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Invalid order id"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}

	order, err := h.Orders.UpdateStatus(id, req.Status)
	if err != nil {
		return fail(c, "order.status.update", err)
	}

	applog.Audit(c, "order.status.update", map[string]any{"order_id": id, "status": req.Status})
	return respondOK(c, "Order status updated to "+req.Status, order)
}

// ListLatest handles GET /api/v1/admin/orders.
func (h *OrderHandler) ListLatest(c *fiber.Ctx) error {
	orders, err := h.Orders.Store.Orders.ListLatest(c.QueryInt("limit", 100))
	if err != nil {
		return fail(c, "order.admin.list", err)
	}
	return respondOK(c, "Orders retrieved successfully", fiber.Map{
		"orders":     orders,
		"totalCount": len(orders),
	})
}
