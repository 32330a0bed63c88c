package store

import (
	"errors"
	"time"

	"party-snap-system/models"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals an optimistic-concurrency failure (compare-and-swap
	// mismatch or duplicate key). Callers re-read and retry.
	ErrConflict = errors.New("conflict")

	ErrCodeInvalid     = errors.New("access code is not a known issued code")
	ErrCodeUsed        = errors.New("access code already consumed by another event")
	ErrAlreadyRejected = errors.New("submission already rejected")
)

// Store is the persistence capability the engagement engine runs on. Both the
// Postgres implementation and the in-memory test double satisfy it. Every
// method is safe for concurrent use; score mutations are atomic increments,
// never read-modify-write.
type Store interface {
	// Events
	// CreateEventWithCode atomically consumes accessCode and creates the
	// event: no code is marked used without an event and no event exists
	// whose code was not consumed. Returns ErrCodeInvalid or ErrCodeUsed.
	// Join codes are unique across events; a collision returns ErrConflict
	// with the access code left unconsumed, and callers regenerate.
	CreateEventWithCode(event *models.Event, accessCode string) error
	GetEvent(id string) (*models.Event, error)
	FindEventByJoinCode(code string) (*models.Event, error)
	ListEvents() ([]models.Event, error)
	ListEventsByStatus(status models.EventStatus) ([]models.Event, error)
	SetEventStatus(id string, status models.EventStatus) error
	// SetGlobalChallenge overwrites the event's global challenge fields.
	// Last writer wins; nil clears them.
	SetGlobalChallenge(eventID string, challengeID *string, expiresAt *time.Time) error
	// DeleteEvent cascades to challenges, participants and their submissions,
	// and clears the consumed access-code binding.
	DeleteEvent(id string) error

	// Challenges
	CreateChallenge(ch *models.Challenge) error
	UpdateChallenge(ch *models.Challenge) error
	DeleteChallenge(id string) error
	GetChallenge(id string) (*models.Challenge, error)
	ChallengesForEvent(eventID string) ([]models.Challenge, error)

	// Participants
	// CreateParticipant returns ErrConflict when the (event, device) pair
	// already exists; callers re-fetch with FindParticipantByDevice.
	CreateParticipant(p *models.Participant) error
	GetParticipant(id string) (*models.Participant, error)
	FindParticipantByDevice(eventID, deviceKey string) (*models.Participant, error)
	// ParticipantsForEvent returns the ranked leaderboard order: total points
	// descending, total time ascending, then id ascending.
	ParticipantsForEvent(eventID string) ([]models.Participant, error)
	DeleteParticipant(id string) error
	// AddScore atomically adds the deltas to the participant's aggregates.
	// Deltas may be negative; totals are not clamped.
	AddScore(participantID string, points int64, seconds int64) error
	// SetAssignment updates the participant's current challenge, guarded by a
	// compare-and-swap on CurrentChallengeID: the write applies only if the
	// stored value still equals prev, otherwise ErrConflict.
	SetAssignment(participantID string, prev, next *string, assignedAt, expiresAt *time.Time) error

	// Submissions
	// CreateSubmissionWithCredit persists the submission and credits the
	// participant's aggregates in one transaction.
	CreateSubmissionWithCredit(sub *models.Submission) error
	// RejectSubmission marks the submission rejected and reverses its credit
	// in one transaction. Returns ErrAlreadyRejected if already rejected.
	RejectSubmission(id string, at time.Time) (*models.Submission, error)
	GetSubmission(id string) (*models.Submission, error)
	// CompletedChallengeIDs returns challenge ids of the participant's
	// non-rejected submissions.
	CompletedChallengeIDs(participantID string) ([]string, error)
	// GalleryForEvent returns valid submissions newest first, enriched with
	// participant and challenge display names.
	GalleryForEvent(eventID string) ([]models.GalleryEntry, error)

	// Access codes
	CreateAccessCode(ac *models.AccessCode) error
	GetAccessCode(code string) (*models.AccessCode, error)
	ListAccessCodes() ([]models.AccessCodeInfo, error)
}
