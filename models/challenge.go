package models

import (
	"time"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// Challenge is a single photo task. Points and time limit are snapshotted onto
// submissions at completion time, so later edits never rewrite past scores.
type Challenge struct {
	ID          string              `json:"id" gorm:"primaryKey"`
	EventID     string              `json:"event_id" gorm:"not null;index"`
	Title       string              `json:"title" gorm:"not null"`
	Description string              `json:"description"`
	Difficulty  ChallengeDifficulty `json:"difficulty" gorm:"type:varchar(16);default:'easy'"`
	Points      int                 `json:"points" gorm:"not null"`
	TimeLimit   int                 `json:"time_limit" gorm:"not null"` // seconds
	IsSpecial   bool                `json:"is_special" gorm:"default:false"`
	CreatedAt   time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}
