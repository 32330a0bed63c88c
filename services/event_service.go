package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"party-snap-system/models"
	"party-snap-system/store"
	"party-snap-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// EventService covers the host-side lifecycle: license-gated event creation,
// challenge pool management, status transitions, and moderation deletes.
type EventService struct {
	Store store.Store
	Now   func() time.Time

	// BypassPrefix lets access codes with this prefix skip the "known issued
	// code" check — a removable testing escape hatch, off when empty.
	// Bypassed codes are still consumed exactly once.
	BypassPrefix string
}

func NewEventService(st store.Store) *EventService {
	return &EventService{Store: st, Now: time.Now}
}

type CreateEventInput struct {
	HostID      string
	Title       string
	Description string
	Type        string
	TimerMode   models.TimerMode
	StartTime   *time.Time
	EndTime     *time.Time
	AccessCode  string
}

type ChallengeInput struct {
	Title       string
	Description string
	Difficulty  models.ChallengeDifficulty
	Points      int
	TimeLimit   int
	IsSpecial   bool
}

func (in ChallengeInput) validate() error {
	switch in.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, in.Difficulty)
	}
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if in.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidArgument)
	}
	if in.TimeLimit <= 0 {
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidArgument)
	}
	return nil
}

// CreateEvent creates a host event behind the one-time license gate. Code
// consumption and event creation are atomic: no code is marked used without an
// event, and no event exists whose code was not consumed.
func (s *EventService) CreateEvent(in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if in.AccessCode == "" {
		return nil, store.ErrCodeInvalid
	}
	switch in.TimerMode {
	case models.TimerModeIndividual, models.TimerModeGlobal:
	case "":
		in.TimerMode = models.TimerModeIndividual
	default:
		return nil, fmt.Errorf("%w: unknown timer mode %q", ErrInvalidArgument, in.TimerMode)
	}

	if s.BypassPrefix != "" && strings.HasPrefix(strings.ToUpper(in.AccessCode), s.BypassPrefix) {
		// Issue the bypass code on the fly so the normal single-use
		// consumption path still applies.
		if _, err := s.Store.GetAccessCode(in.AccessCode); errors.Is(err, store.ErrNotFound) {
			ac := &models.AccessCode{ID: uuid.NewString(), Code: strings.ToUpper(in.AccessCode)}
			if err := s.Store.CreateAccessCode(ac); err != nil && !errors.Is(err, store.ErrConflict) {
				return nil, err
			}
		}
	}

	// Events with a future start window begin pending; the lifecycle
	// scheduler flips them active once the window opens.
	status := models.EventStatusActive
	if in.StartTime != nil && in.StartTime.After(s.Now()) {
		status = models.EventStatusPending
	}

	ev := &models.Event{
		ID:          uuid.NewString(),
		HostID:      in.HostID,
		Title:       in.Title,
		Slug:        slug.Make(in.Title),
		Description: in.Description,
		Type:        in.Type,
		TimerMode:   in.TimerMode,
		Status:      status,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}

	// Join codes are unique across events; regenerate on the rare collision.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		ev.JoinCode = utils.NewJoinCode()
		err = s.Store.CreateEventWithCode(ev, in.AccessCode)
		if !errors.Is(err, store.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventService) GetEvent(id string) (*models.Event, error) {
	return s.Store.GetEvent(id)
}

func (s *EventService) ListEvents() ([]models.Event, error) {
	return s.Store.ListEvents()
}

func (s *EventService) SetEventStatus(id string, status models.EventStatus) error {
	switch status {
	case models.EventStatusPending, models.EventStatusActive, models.EventStatusCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	return s.Store.SetEventStatus(id, status)
}

// DeleteEvent removes the event and everything it owns, and frees the license
// binding.
func (s *EventService) DeleteEvent(id string) error {
	return s.Store.DeleteEvent(id)
}

func (s *EventService) AddChallenge(eventID string, in ChallengeInput) (*models.Challenge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.Store.GetEvent(eventID); err != nil {
		return nil, err
	}
	ch := &models.Challenge{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Points:      in.Points,
		TimeLimit:   in.TimeLimit,
		IsSpecial:   in.IsSpecial,
	}
	if err := s.Store.CreateChallenge(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// UpdateChallenge edits the pool definition. Past submissions keep their
// frozen points_awarded snapshots; edits are never retroactive.
func (s *EventService) UpdateChallenge(challengeID string, in ChallengeInput) (*models.Challenge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ch, err := s.Store.GetChallenge(challengeID)
	if err != nil {
		return nil, err
	}
	ch.Title = in.Title
	ch.Description = in.Description
	ch.Difficulty = in.Difficulty
	ch.Points = in.Points
	ch.TimeLimit = in.TimeLimit
	ch.IsSpecial = in.IsSpecial
	if err := s.Store.UpdateChallenge(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *EventService) DeleteChallenge(challengeID string) error {
	return s.Store.DeleteChallenge(challengeID)
}

func (s *EventService) GetChallenge(challengeID string) (*models.Challenge, error) {
	return s.Store.GetChallenge(challengeID)
}

func (s *EventService) ChallengesForEvent(eventID string) ([]models.Challenge, error) {
	return s.Store.ChallengesForEvent(eventID)
}

func (s *EventService) GetParticipant(id string) (*models.Participant, error) {
	return s.Store.GetParticipant(id)
}

// KickParticipant removes a guest and their submissions.
func (s *EventService) KickParticipant(participantID string) error {
	return s.Store.DeleteParticipant(participantID)
}
