package models

import (
	"time"
)

// AccessCode is a one-time-use license credential required to create an event.
// EventID is set when the code is consumed; a nil EventID means the code is
// still available. Deleting the bound event clears the binding, which frees
// the code for reuse; the ledger row itself is never purged.
type AccessCode struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"`
	EventID   *string   `json:"event_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// AccessCodeInfo is the admin listing view: the code plus details of the event
// it was consumed by, if any.
type AccessCodeInfo struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
	EventID     string    `json:"event_id,omitempty"`
	EventTitle  string    `json:"event_title,omitempty"`
	EventStatus string    `json:"event_status,omitempty"`
}
