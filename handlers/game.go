package handlers

import (
	"party-snap-system/services"

	"github.com/gofiber/fiber/v2"
)

type GameHandler struct {
	Game   *services.GameService
	Events *services.EventService
}

// SetupGameRoutes wires the guest-facing surface. Guests carry no login; the
// X-Device-ID header is an opaque key used only for idempotent re-join.
func SetupGameRoutes(app *fiber.App, game *services.GameService, events *services.EventService) {
	h := &GameHandler{Game: game, Events: events}

	app.Get("/join/:code", h.FindEventByCode)
	app.Post("/events/:id/participants", h.JoinEvent)
	app.Get("/participants/:id", h.GetParticipant)
	app.Get("/challenges/:id", h.GetChallenge)
	app.Get("/events/:id/challenges", h.ListChallenges)
	app.Get("/events/:id/leaderboard", h.Leaderboard)
	app.Get("/events/:id/gallery", h.Gallery)
	app.Post("/participants/:id/complete", h.CompleteChallenge)
}

func (h *GameHandler) FindEventByCode(c *fiber.Ctx) error {
	ev, reason, err := h.Game.FindEventByCode(c.Params("code"))
	if err != nil {
		return fail(c, err)
	}
	if ev == nil {
		return c.Status(404).JSON(fiber.Map{"reason": reason})
	}
	return c.JSON(fiber.Map{"event": ev})
}

func (h *GameHandler) JoinEvent(c *fiber.Ctx) error {
	type Req struct {
		Name string `json:"name"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	deviceKey := c.Get("X-Device-ID")
	if req.Name == "" || deviceKey == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and X-Device-ID header are required"})
	}
	p, err := h.Game.JoinEvent(c.Params("id"), req.Name, deviceKey)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(p)
}

func (h *GameHandler) GetParticipant(c *fiber.Ctx) error {
	p, err := h.Events.GetParticipant(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

func (h *GameHandler) GetChallenge(c *fiber.Ctx) error {
	ch, err := h.Events.GetChallenge(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ch)
}

func (h *GameHandler) ListChallenges(c *fiber.Ctx) error {
	challenges, err := h.Events.ChallengesForEvent(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(challenges)
}

func (h *GameHandler) Leaderboard(c *fiber.Ctx) error {
	participants, err := h.Game.Leaderboard(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(participants)
}

func (h *GameHandler) Gallery(c *fiber.Ctx) error {
	entries, err := h.Game.Gallery(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

// CompleteChallenge accepts a multipart form: challenge_id plus the photo.
// The photo is compressed client-side before it reaches us; oversized uploads
// are rejected here.
func (h *GameHandler) CompleteChallenge(c *fiber.Ctx) error {
	challengeID := c.FormValue("challenge_id")
	if challengeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "challenge_id is required"})
	}
	photo, err := c.FormFile("photo")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "photo is required"})
	}
	if photo.Size > 10*1024*1024 { // 10MB
		return c.Status(400).JSON(fiber.Map{"error": "photo too large (max 10MB)"})
	}

	file, err := photo.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "could not read photo"})
	}
	defer file.Close()

	sub, err := h.Game.CompleteChallenge(
		c.Context(), c.Params("id"), challengeID,
		photo.Filename, file, photo.Size, photo.Header.Get("Content-Type"),
	)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(sub)
}
