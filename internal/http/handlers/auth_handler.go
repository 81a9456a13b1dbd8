package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}
	u, err := h.Auth.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return respondCreated(c, "Account created successfully", u)
}

// Login handles POST /api/v1/auth/login and binds the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(envelope{Success: false, Message: "Request body is not valid JSON"})
	}
	sid := ensureSID(c)
	u, err := h.Auth.Login(sid, req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return fail(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID})
	return respondOK(c, "Logged in successfully", u)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(sid); err != nil {
			return fail(c, "auth.logout", err)
		}
	}
	return respondOK(c, "Logged out", true)
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Auth.Store.Users.List()
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return respondOK(c, "Users retrieved successfully", fiber.Map{
		"users":      users,
		"totalCount": len(users),
	})
}

// Me handles GET /api/v1/auth/me for the logged-in user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, okUser := currentUser(c)
	if !okUser {
		return c.Status(fiber.StatusUnauthorized).JSON(envelope{Success: false, Message: "Login required"})
	}
	return respondOK(c, "User retrieved successfully", u)
}
