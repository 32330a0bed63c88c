package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"party-snap-system/models"
	"party-snap-system/store"

	"github.com/google/uuid"
)

// Join lookup outcomes for FindEventByCode.
const (
	ReasonNotFound      = "not_found"
	ReasonNotYetStarted = "not_yet_started"
	ReasonEnded         = "ended"
)

var avatarEmojis = []string{"🥳", "😎", "🤩", "🎉", "📸", "✨"}

// GameService is the engagement engine: challenge assignment, submission
// processing, score moderation, and the guest-facing reads. All state lives in
// the Store; the service itself is stateless and safe for concurrent use.
type GameService struct {
	Store store.Store
	Media MediaStore
	Now   func() time.Time
}

func NewGameService(st store.Store, media MediaStore) *GameService {
	return &GameService{Store: st, Media: media, Now: time.Now}
}

// AssignNext picks the participant's next challenge: uniform random over the
// event's pool minus the challenges this participant already has a
// non-rejected submission for. An empty eligible set clears the assignment —
// the terminal "all done" state. The write is compare-and-swap guarded so two
// near-simultaneous completions cannot double-assign; on a lost race the whole
// selection is recomputed.
func (s *GameService) AssignNext(participantID string) error {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, err := s.Store.GetParticipant(participantID)
		if err != nil {
			return err
		}
		ev, err := s.Store.GetEvent(p.EventID)
		if err != nil {
			return err
		}

		// Global-mode participants follow the event's shared challenge; the
		// individual fields stay cleared.
		if ev.TimerMode == models.TimerModeGlobal {
			err = s.Store.SetAssignment(p.ID, p.CurrentChallengeID, nil, nil, nil)
			if errors.Is(err, store.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}

		eligible, err := s.eligibleChallenges(p)
		if err != nil {
			return err
		}

		if len(eligible) == 0 {
			err = s.Store.SetAssignment(p.ID, p.CurrentChallengeID, nil, nil, nil)
			if errors.Is(err, store.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}

		pick := eligible[rand.Intn(len(eligible))]
		now := s.Now()
		expires := now.Add(time.Duration(pick.TimeLimit) * time.Second)
		err = s.Store.SetAssignment(p.ID, p.CurrentChallengeID, &pick.ID, &now, &expires)
		if errors.Is(err, store.ErrConflict) {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (s *GameService) eligibleChallenges(p *models.Participant) ([]models.Challenge, error) {
	done, err := s.Store.CompletedChallengeIDs(p.ID)
	if err != nil {
		return nil, err
	}
	doneSet := make(map[string]bool, len(done))
	for _, id := range done {
		doneSet[id] = true
	}

	pool, err := s.Store.ChallengesForEvent(p.EventID)
	if err != nil {
		return nil, err
	}
	eligible := pool[:0]
	for _, ch := range pool {
		if !doneSet[ch.ID] {
			eligible = append(eligible, ch)
		}
	}
	return eligible, nil
}

// StartGlobalChallenge puts the whole event on the given challenge. The write
// unconditionally replaces any in-progress global challenge — the host has
// full authority and two quick host calls are last-writer-wins. Global mode
// never auto-advances; the host calls this again for each round.
func (s *GameService) StartGlobalChallenge(eventID, challengeID string) error {
	ev, err := s.Store.GetEvent(eventID)
	if err != nil {
		return err
	}
	if ev.TimerMode != models.TimerModeGlobal {
		return fmt.Errorf("%w: event is not in global timer mode", ErrInvalidState)
	}
	ch, err := s.Store.GetChallenge(challengeID)
	if err != nil {
		return err
	}
	if ch.EventID != eventID {
		return fmt.Errorf("%w: challenge belongs to a different event", ErrInvalidState)
	}
	expires := s.Now().Add(time.Duration(ch.TimeLimit) * time.Second)
	return s.Store.SetGlobalChallenge(eventID, &challengeID, &expires)
}

// CompleteChallenge records a submission: upload the photo, snapshot points
// and elapsed time, credit the participant atomically, then rotate the
// assignment (individual mode). The upload happens before any state mutation,
// so a failed upload never leaves an orphaned credit. Late submissions are
// accepted — expiry is advisory and never rejects a completion.
//
// The submitted challenge is not required to equal the participant's current
// assignment; it only has to belong to the participant's event.
func (s *GameService) CompleteChallenge(ctx context.Context, participantID, challengeID, filename string, photo io.Reader, size int64, contentType string) (*models.Submission, error) {
	p, err := s.Store.GetParticipant(participantID)
	if err != nil {
		return nil, err
	}
	ch, err := s.Store.GetChallenge(challengeID)
	if err != nil {
		return nil, err
	}
	if ch.EventID != p.EventID {
		return nil, fmt.Errorf("%w: challenge belongs to a different event", ErrInvalidState)
	}
	ev, err := s.Store.GetEvent(p.EventID)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("events/%s/%s/%s%s", ev.Slug, participantID, uuid.NewString(), ext)
	mediaURL, err := s.Media.Upload(ctx, key, photo, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	now := s.Now()
	var elapsed int64
	if p.ChallengeAssignedAt != nil {
		elapsed = int64(now.Sub(*p.ChallengeAssignedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
	} else {
		// No personal assignment timestamp (global mode): charge the full
		// time limit.
		elapsed = int64(ch.TimeLimit)
	}

	sub := &models.Submission{
		ID:               uuid.NewString(),
		ParticipantID:    participantID,
		ChallengeID:      challengeID,
		MediaURL:         mediaURL,
		OriginalFilename: filename,
		CompressedSize:   size,
		PointsAwarded:    ch.Points,
		TimeTakenSeconds: elapsed,
		CompletedAt:      now,
		Status:           models.SubmissionValid,
	}
	if err := s.Store.CreateSubmissionWithCredit(sub); err != nil {
		return nil, err
	}

	if ev.TimerMode == models.TimerModeIndividual {
		if err := s.AssignNext(participantID); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// RejectSubmission soft-deletes a submission: the row stays for audit and its
// credit is reversed exactly. No re-assignment is triggered, but the rejected
// challenge counts as unconsumed again, so the next rotation may re-offer it.
func (s *GameService) RejectSubmission(submissionID string) (*models.Submission, error) {
	return s.Store.RejectSubmission(submissionID, s.Now())
}

// AdjustScore applies a manual host correction. Delta may be negative and
// totals are not clamped.
func (s *GameService) AdjustScore(participantID string, delta int64) error {
	return s.Store.AddScore(participantID, delta, 0)
}

// JoinEvent creates a participant, or returns the existing one unchanged when
// the same device re-joins. New individual-mode participants get their first
// challenge immediately.
func (s *GameService) JoinEvent(eventID, name, deviceKey string) (*models.Participant, error) {
	if name == "" || deviceKey == "" {
		return nil, fmt.Errorf("%w: name and device key are required", ErrInvalidArgument)
	}
	ev, err := s.Store.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.Store.FindParticipantByDevice(eventID, deviceKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p := &models.Participant{
		ID:          uuid.NewString(),
		EventID:     eventID,
		Name:        name,
		DeviceKey:   deviceKey,
		AvatarColor: fmt.Sprintf("#%06x", rand.Intn(0x1000000)),
		AvatarEmoji: avatarEmojis[rand.Intn(len(avatarEmojis))],
	}
	if err := s.Store.CreateParticipant(p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a duplicate-tap race; the winner's row is the answer.
			return s.Store.FindParticipantByDevice(eventID, deviceKey)
		}
		return nil, err
	}

	if ev.TimerMode == models.TimerModeIndividual {
		if err := s.AssignNext(p.ID); err != nil {
			return nil, err
		}
		return s.Store.GetParticipant(p.ID)
	}
	return p, nil
}

// FindEventByCode resolves a join code, reporting why a code cannot be used
// right now. The reason string is empty on success.
func (s *GameService) FindEventByCode(code string) (*models.Event, string, error) {
	ev, err := s.Store.FindEventByJoinCode(code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ReasonNotFound, nil
	}
	if err != nil {
		return nil, "", err
	}
	now := s.Now()
	if ev.StartTime != nil && now.Before(*ev.StartTime) {
		return nil, ReasonNotYetStarted, nil
	}
	if ev.EndTime != nil && now.After(*ev.EndTime) {
		return nil, ReasonEnded, nil
	}
	return ev, "", nil
}

// Leaderboard returns the event's participants in ranked order: points
// descending, total time ascending, id ascending for full ties.
func (s *GameService) Leaderboard(eventID string) ([]models.Participant, error) {
	return s.Store.ParticipantsForEvent(eventID)
}

// Gallery returns the event's valid submissions, newest first.
func (s *GameService) Gallery(eventID string) ([]models.GalleryEntry, error) {
	return s.Store.GalleryForEvent(eventID)
}
