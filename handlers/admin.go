package handlers

import (
	"party-snap-system/middleware"
	"party-snap-system/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Codes *services.AccessCodeService
}

// SetupAdminRoutes wires license code management. Admin role required.
func SetupAdminRoutes(app *fiber.App, codes *services.AccessCodeService) {
	h := &AdminHandler{Codes: codes}

	admin := app.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Post("/access-codes", h.GenerateAccessCode)
	admin.Get("/access-codes", h.ListAccessCodes)
}

func (h *AdminHandler) GenerateAccessCode(c *fiber.Ctx) error {
	type Req struct {
		Prefix string `json:"prefix"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	code, err := h.Codes.Generate(req.Prefix)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"code": code})
}

func (h *AdminHandler) ListAccessCodes(c *fiber.Ctx) error {
	infos, err := h.Codes.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(infos)
}
