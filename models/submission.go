package models

import (
	"time"
)

type SubmissionStatus string

const (
	SubmissionValid    SubmissionStatus = "valid"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission records a challenge completion: the uploaded photo plus frozen
// scoring snapshots. Rejected submissions are never hard-deleted — they are
// marked rejected and excluded from galleries and totals, keeping the audit
// trail intact.
type Submission struct {
	ID               string           `json:"id" gorm:"primaryKey"`
	ParticipantID    string           `json:"participant_id" gorm:"not null;index"`
	ChallengeID      string           `json:"challenge_id" gorm:"not null;index"`
	MediaURL         string           `json:"media_url"`
	OriginalFilename string           `json:"original_filename"`
	CompressedSize   int64            `json:"compressed_size"` // bytes, as uploaded
	PointsAwarded    int              `json:"points_awarded"`     // snapshot of Challenge.Points
	TimeTakenSeconds int64            `json:"time_taken_seconds"` // snapshot of elapsed time
	CompletedAt      time.Time        `json:"completed_at"`
	Status           SubmissionStatus `json:"status" gorm:"type:varchar(16);default:'valid';index"`
	RejectedAt       *time.Time       `json:"rejected_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// GalleryEntry is a submission enriched with display names for the host's
// photo gallery. Populated by a join, not stored.
type GalleryEntry struct {
	Submission
	ParticipantName string `json:"participant_name"`
	ChallengeTitle  string `json:"challenge_title"`
}
