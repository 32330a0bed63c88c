package models

import (
	"time"
)

type TimerMode string

const (
	TimerModeIndividual TimerMode = "individual"
	TimerModeGlobal     TimerMode = "global"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
)

// Event represents a single hosted party/game instance. It owns its challenge
// pool and participants; deleting an event cascades to both.
type Event struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	HostID      string      `json:"host_id" gorm:"index"`
	Title       string      `json:"title" gorm:"not null"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Type        string      `json:"type"` // wedding, baby_shower, birthday, other
	TimerMode   TimerMode   `json:"timer_mode" gorm:"type:varchar(16);default:'individual'"`
	JoinCode    string      `json:"join_code" gorm:"uniqueIndex;not null"`
	Status      EventStatus `json:"status" gorm:"type:varchar(16);default:'active'"`
	StartTime   *time.Time  `json:"start_time,omitempty"`
	EndTime     *time.Time  `json:"end_time,omitempty"`

	// Global timer mode only: the shared challenge every participant is on.
	CurrentGlobalChallengeID *string    `json:"current_global_challenge_id,omitempty"`
	GlobalChallengeExpiresAt *time.Time `json:"global_challenge_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Challenges   []Challenge   `json:"challenges,omitempty" gorm:"foreignKey:EventID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:EventID"`
}
