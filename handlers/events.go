package handlers

import (
	"time"

	"party-snap-system/middleware"
	"party-snap-system/models"
	"party-snap-system/services"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	Events *services.EventService
	Game   *services.GameService
}

// SetupEventRoutes wires the host-facing surface: event lifecycle, challenge
// pool management, global rounds, and moderation. Everything here requires a
// host token.
func SetupEventRoutes(app *fiber.App, events *services.EventService, game *services.GameService) {
	h := &EventHandler{Events: events, Game: game}

	secured := app.Group("/", middleware.HostAuthMiddleware)

	secured.Post("/events", h.CreateEvent)
	secured.Get("/events", h.ListEvents)
	secured.Get("/events/:id", h.GetEvent)
	secured.Delete("/events/:id", h.DeleteEvent)
	secured.Patch("/events/:id/status", h.UpdateEventStatus)
	secured.Post("/events/:id/global-challenge", h.StartGlobalChallenge)

	secured.Post("/events/:id/challenges", h.CreateChallenge)
	secured.Put("/challenges/:id", h.UpdateChallenge)
	secured.Delete("/challenges/:id", h.DeleteChallenge)

	secured.Post("/submissions/:id/reject", h.RejectSubmission)
	secured.Patch("/participants/:id/score", h.AdjustScore)
	secured.Delete("/participants/:id", h.KickParticipant)
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	type Req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
		TimerMode   string `json:"timer_mode"`
		StartTime   string `json:"start_time,omitempty"` // RFC3339
		EndTime     string `json:"end_time,omitempty"`
		AccessCode  string `json:"access_code"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Title == "" || req.AccessCode == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title and access_code are required"})
	}

	var startTime, endTime *time.Time
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
		}
		startTime = &t
	}
	if req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_time (use RFC3339)"})
		}
		endTime = &t
	}

	hostID, _ := c.Locals("host_id").(string)
	ev, err := h.Events.CreateEvent(services.CreateEventInput{
		HostID:      hostID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		TimerMode:   models.TimerMode(req.TimerMode),
		StartTime:   startTime,
		EndTime:     endTime,
		AccessCode:  req.AccessCode,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(ev)
}

func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.Events.ListEvents()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(events)
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	ev, err := h.Events.GetEvent(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ev)
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := h.Events.DeleteEvent(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "event deleted"})
}

func (h *EventHandler) UpdateEventStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := h.Events.SetEventStatus(c.Params("id"), models.EventStatus(req.Status)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "status updated"})
}

func (h *EventHandler) StartGlobalChallenge(c *fiber.Ctx) error {
	type Req struct {
		ChallengeID string `json:"challenge_id"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.ChallengeID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "challenge_id is required"})
	}
	if err := h.Game.StartGlobalChallenge(c.Params("id"), req.ChallengeID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "global challenge started"})
}

type challengeReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Points      int    `json:"points"`
	TimeLimit   int    `json:"time_limit"`
	IsSpecial   bool   `json:"is_special"`
}

func (r challengeReq) input() services.ChallengeInput {
	return services.ChallengeInput{
		Title:       r.Title,
		Description: r.Description,
		Difficulty:  models.ChallengeDifficulty(r.Difficulty),
		Points:      r.Points,
		TimeLimit:   r.TimeLimit,
		IsSpecial:   r.IsSpecial,
	}
}

func (h *EventHandler) CreateChallenge(c *fiber.Ctx) error {
	var req challengeReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	ch, err := h.Events.AddChallenge(c.Params("id"), req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(ch)
}

func (h *EventHandler) UpdateChallenge(c *fiber.Ctx) error {
	var req challengeReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	ch, err := h.Events.UpdateChallenge(c.Params("id"), req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ch)
}

func (h *EventHandler) DeleteChallenge(c *fiber.Ctx) error {
	if err := h.Events.DeleteChallenge(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "challenge deleted"})
}

func (h *EventHandler) RejectSubmission(c *fiber.Ctx) error {
	sub, err := h.Game.RejectSubmission(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "submission rejected", "submission": sub})
}

func (h *EventHandler) AdjustScore(c *fiber.Ctx) error {
	type Req struct {
		Delta int64 `json:"delta"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := h.Game.AdjustScore(c.Params("id"), req.Delta); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "score adjusted"})
}

func (h *EventHandler) KickParticipant(c *fiber.Ctx) error {
	if err := h.Events.KickParticipant(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "participant removed"})
}
