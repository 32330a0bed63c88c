package models

import (
	"time"
)

// Participant is a joined guest, identified per device per event. DeviceKey is
// an opaque caller-supplied key used only for idempotent re-join lookup — it is
// not an authentication mechanism.
type Participant struct {
	ID        string `json:"id" gorm:"primaryKey"`
	EventID   string `json:"event_id" gorm:"not null;index;uniqueIndex:idx_participants_event_device"`
	Name      string `json:"name" gorm:"not null"`
	DeviceKey string `json:"device_key" gorm:"not null;uniqueIndex:idx_participants_event_device"`

	// Running aggregates, mutated only through atomic increments.
	TotalPoints           int64 `json:"total_points" gorm:"default:0"`
	TotalTimeTakenSeconds int64 `json:"total_time_taken_seconds" gorm:"default:0"`

	AvatarColor string `json:"avatar_color"`
	AvatarEmoji string `json:"avatar_emoji"`

	// Individual timer mode: the challenge this participant is working on.
	// Nil means "all done" or, in global mode, "follow the event's global challenge".
	CurrentChallengeID  *string    `json:"current_challenge_id,omitempty"`
	ChallengeAssignedAt *time.Time `json:"challenge_assigned_at,omitempty"`
	ChallengeExpiresAt  *time.Time `json:"challenge_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
