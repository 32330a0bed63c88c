package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"party-snap-system/models"
	"party-snap-system/store"
)

func TestCreateEventConsumesCodeOnce(t *testing.T) {
	env := newTestEnv(t)
	code, err := env.codes.Generate("EVT")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(code, "EVT-") {
		t.Fatalf("code = %q, want EVT- prefix", code)
	}

	ev, err := env.events.CreateEvent(CreateEventInput{
		Title: "Launch Party", TimerMode: models.TimerModeIndividual, AccessCode: code,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.JoinCode == "" || ev.Slug != "launch-party" {
		t.Fatalf("event = %+v, want join code and slug", ev)
	}

	// Same code again: rejected, and no second event appears.
	_, err = env.events.CreateEvent(CreateEventInput{
		Title: "Copycat", TimerMode: models.TimerModeIndividual, AccessCode: code,
	})
	if !errors.Is(err, store.ErrCodeUsed) {
		t.Fatalf("err = %v, want ErrCodeUsed", err)
	}
	events, _ := env.events.ListEvents()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	infos, err := env.codes.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].EventID != ev.ID || infos[0].EventTitle != "Launch Party" {
		t.Fatalf("ledger = %+v, want binding to %s", infos, ev.ID)
	}
}

func TestCreateEventUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.events.CreateEvent(CreateEventInput{
		Title: "No License", TimerMode: models.TimerModeIndividual, AccessCode: "EVT-NOPE42",
	})
	if !errors.Is(err, store.ErrCodeInvalid) {
		t.Fatalf("err = %v, want ErrCodeInvalid", err)
	}
	events, _ := env.events.ListEvents()
	if len(events) != 0 {
		t.Fatal("no event may exist without a consumed code")
	}
}

func TestBypassPrefix(t *testing.T) {
	env := newTestEnv(t)

	// Off by default: an unissued code stays invalid.
	if _, err := env.events.CreateEvent(CreateEventInput{
		Title: "Nope", TimerMode: models.TimerModeIndividual, AccessCode: "ADMIN-FREE1",
	}); !errors.Is(err, store.ErrCodeInvalid) {
		t.Fatalf("err = %v, want ErrCodeInvalid with bypass disabled", err)
	}

	env.events.BypassPrefix = "ADMIN"
	if _, err := env.events.CreateEvent(CreateEventInput{
		Title: "Staff Demo", TimerMode: models.TimerModeIndividual, AccessCode: "admin-free1",
	}); err != nil {
		t.Fatalf("CreateEvent with bypass code: %v", err)
	}

	// Bypassed codes are still single-use.
	if _, err := env.events.CreateEvent(CreateEventInput{
		Title: "Second Demo", TimerMode: models.TimerModeIndividual, AccessCode: "ADMIN-FREE1",
	}); !errors.Is(err, store.ErrCodeUsed) {
		t.Fatalf("err = %v, want ErrCodeUsed on bypass reuse", err)
	}
}

func TestDeleteEventCascadesAndFreesCode(t *testing.T) {
	env := newTestEnv(t)
	code, _ := env.codes.Generate("EVT")
	ev, err := env.events.CreateEvent(CreateEventInput{
		Title: "Short Lived", TimerMode: models.TimerModeIndividual, AccessCode: code,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	ch := env.addChallenge(t, ev.ID, "Selfie", 10, 60)
	p := env.join(t, ev.ID, "Ana", "dev-1")
	env.complete(t, p.ID, ch.ID)

	if err := env.events.DeleteEvent(ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if _, err := env.events.GetEvent(ev.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("event err = %v, want ErrNotFound", err)
	}
	if _, err := env.events.GetChallenge(ch.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("challenge err = %v, want ErrNotFound", err)
	}
	if _, err := env.events.GetParticipant(p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("participant err = %v, want ErrNotFound", err)
	}

	// The code binding is cleared, so the license is reusable.
	if _, err := env.events.CreateEvent(CreateEventInput{
		Title: "Second Try", TimerMode: models.TimerModeIndividual, AccessCode: code,
	}); err != nil {
		t.Fatalf("CreateEvent after delete: %v", err)
	}
}

func TestChallengeValidation(t *testing.T) {
	env := newTestEnv(t)
	ev := env.createEvent(t, models.TimerModeIndividual)

	cases := []ChallengeInput{
		{Title: "", Difficulty: models.DifficultyEasy, Points: 10, TimeLimit: 60},
		{Title: "T", Difficulty: "brutal", Points: 10, TimeLimit: 60},
		{Title: "T", Difficulty: models.DifficultyEasy, Points: 0, TimeLimit: 60},
		{Title: "T", Difficulty: models.DifficultyEasy, Points: 10, TimeLimit: -1},
	}
	for i, in := range cases {
		if _, err := env.events.AddChallenge(ev.ID, in); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("case %d: err = %v, want ErrInvalidArgument", i, err)
		}
	}

	if _, err := env.events.AddChallenge("missing-event", ChallengeInput{
		Title: "T", Difficulty: models.DifficultyEasy, Points: 10, TimeLimit: 60,
	}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateChallengeNotRetroactive(t *testing.T) {
	env := newTestEnv(t)
	ev := env.createEvent(t, models.TimerModeIndividual)
	ch := env.addChallenge(t, ev.ID, "Selfie", 10, 60)
	p := env.join(t, ev.ID, "Ana", "dev-1")
	sub := env.complete(t, p.ID, ch.ID)

	if _, err := env.events.UpdateChallenge(ch.ID, ChallengeInput{
		Title: "Selfie deluxe", Difficulty: models.DifficultyHard, Points: 50, TimeLimit: 30,
	}); err != nil {
		t.Fatalf("UpdateChallenge: %v", err)
	}

	// The snapshot on the submission and the credited total are unchanged.
	got, err := env.store.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.PointsAwarded != 10 {
		t.Fatalf("points_awarded = %d, want snapshot 10", got.PointsAwarded)
	}
	if env.participant(t, p.ID).TotalPoints != 10 {
		t.Fatal("editing a challenge must not re-price past submissions")
	}

	updated, _ := env.events.GetChallenge(ch.ID)
	if updated.Points != 50 || updated.Title != "Selfie deluxe" {
		t.Fatalf("challenge = %+v, want the edit applied", updated)
	}
}

func TestSetEventStatus(t *testing.T) {
	env := newTestEnv(t)
	ev := env.createEvent(t, models.TimerModeIndividual)

	if err := env.events.SetEventStatus(ev.ID, models.EventStatusCompleted); err != nil {
		t.Fatalf("SetEventStatus: %v", err)
	}
	got, _ := env.events.GetEvent(ev.ID)
	if got.Status != models.EventStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}

	if err := env.events.SetEventStatus(ev.ID, "archived"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if err := env.events.SetEventStatus("missing", models.EventStatusActive); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestKickParticipantRemovesSubmissions(t *testing.T) {
	env := newTestEnv(t)
	ev := env.createEvent(t, models.TimerModeIndividual)
	ch := env.addChallenge(t, ev.ID, "Selfie", 10, 60)
	p := env.join(t, ev.ID, "Ana", "dev-1")
	env.complete(t, p.ID, ch.ID)

	if err := env.events.KickParticipant(p.ID); err != nil {
		t.Fatalf("KickParticipant: %v", err)
	}
	if _, err := env.events.GetParticipant(p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	gallery, _ := env.game.Gallery(ev.ID)
	if len(gallery) != 0 {
		t.Fatal("a kicked participant's submissions must leave the gallery")
	}

	// The device can join fresh afterwards.
	p2 := env.join(t, ev.ID, "Ana", "dev-1")
	if p2.ID == p.ID {
		t.Fatal("re-join after kick should produce a new participant")
	}
	if p2.TotalPoints != 0 {
		t.Fatal("re-join after kick starts from zero")
	}
}

// collidingStore fails event creation with ErrConflict a fixed number of
// times, recording every join code attempted.
type collidingStore struct {
	*store.Memory
	rejects   int
	attempted []string
}

func (s *collidingStore) CreateEventWithCode(ev *models.Event, accessCode string) error {
	s.attempted = append(s.attempted, ev.JoinCode)
	if s.rejects > 0 {
		s.rejects--
		return store.ErrConflict
	}
	return s.Memory.CreateEventWithCode(ev, accessCode)
}

func TestCreateEventRegeneratesJoinCodeOnCollision(t *testing.T) {
	st := &collidingStore{Memory: store.NewMemory(), rejects: 2}
	events := NewEventService(st)
	codes := NewAccessCodeService(st)

	code, err := codes.Generate("EVT")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ev, err := events.CreateEvent(CreateEventInput{
		Title: "Crowded Night", TimerMode: models.TimerModeIndividual, AccessCode: code,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if len(st.attempted) != 3 {
		t.Fatalf("attempted %d join codes, want 3", len(st.attempted))
	}
	if st.attempted[0] == st.attempted[1] || st.attempted[1] == st.attempted[2] {
		t.Fatalf("retries must use fresh join codes, got %v", st.attempted)
	}
	if ev.JoinCode != st.attempted[2] {
		t.Fatalf("event carries join code %s, want the accepted %s", ev.JoinCode, st.attempted[2])
	}

	// Persistent collisions eventually surface.
	st.rejects = 3
	code2, _ := codes.Generate("EVT")
	if _, err := events.CreateEvent(CreateEventInput{
		Title: "Never Lands", TimerMode: models.TimerModeIndividual, AccessCode: code2,
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict after exhausted retries", err)
	}
}

func TestCreateEventFutureStartIsPending(t *testing.T) {
	env := newTestEnv(t)

	future := env.now.Add(2 * time.Hour)
	code, _ := env.codes.Generate("EVT")
	ev, err := env.events.CreateEvent(CreateEventInput{
		Title: "Tonight Later", TimerMode: models.TimerModeIndividual,
		AccessCode: code, StartTime: &future,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.Status != models.EventStatusPending {
		t.Fatalf("status = %s, want pending for a future start", ev.Status)
	}

	past := env.now.Add(-time.Hour)
	code2, _ := env.codes.Generate("EVT")
	started, err := env.events.CreateEvent(CreateEventInput{
		Title: "Already On", TimerMode: models.TimerModeIndividual,
		AccessCode: code2, StartTime: &past,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if started.Status != models.EventStatusActive {
		t.Fatalf("status = %s, want active for an open window", started.Status)
	}
}

func TestLifecycleSweep(t *testing.T) {
	env := newTestEnv(t)

	start := env.now.Add(time.Hour)
	end := env.now.Add(2 * time.Hour)
	code, _ := env.codes.Generate("EVT")
	ev, err := env.events.CreateEvent(CreateEventInput{
		Title: "Evening Do", TimerMode: models.TimerModeIndividual,
		AccessCode: code, StartTime: &start, EndTime: &end,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	// Before the window opens, nothing moves.
	env.events.sweepLifecycle()
	got, _ := env.events.GetEvent(ev.ID)
	if got.Status != models.EventStatusPending {
		t.Fatalf("status = %s, want still pending", got.Status)
	}

	env.advance(time.Hour)
	env.events.sweepLifecycle()
	got, _ = env.events.GetEvent(ev.ID)
	if got.Status != models.EventStatusActive {
		t.Fatalf("status = %s, want active after start", got.Status)
	}

	env.advance(2 * time.Hour)
	env.events.sweepLifecycle()
	got, _ = env.events.GetEvent(ev.ID)
	if got.Status != models.EventStatusCompleted {
		t.Fatalf("status = %s, want completed after end", got.Status)
	}
}

func TestAccessCodeGenerateUnique(t *testing.T) {
	env := newTestEnv(t)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := env.codes.Generate("PARTY")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %s", code)
		}
		seen[code] = true
	}
	infos, _ := env.codes.List()
	if len(infos) != 20 {
		t.Fatalf("ledger has %d codes, want 20", len(infos))
	}
}
