package store

import (
	"errors"
	"strings"
	"time"

	"party-snap-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres is the production Store backed by GORM/PostgreSQL.
type Postgres struct {
	DB *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{DB: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// --- Events ---

func (s *Postgres) CreateEventWithCode(event *models.Event, accessCode string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ac models.AccessCode
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("UPPER(code) = ?", strings.ToUpper(accessCode)).
			First(&ac).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCodeInvalid
			}
			return err
		}
		if ac.EventID != nil {
			return ErrCodeUsed
		}
		if err := tx.Omit("Challenges", "Participants").Create(event).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&ac).Update("event_id", event.ID).Error
	})
}

func (s *Postgres) GetEvent(id string) (*models.Event, error) {
	var ev models.Event
	if err := s.DB.First(&ev, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ev, nil
}

func (s *Postgres) FindEventByJoinCode(code string) (*models.Event, error) {
	var ev models.Event
	if err := s.DB.Where("UPPER(join_code) = ?", strings.ToUpper(code)).
		First(&ev).Error; err != nil {
		return nil, translate(err)
	}
	return &ev, nil
}

func (s *Postgres) ListEvents() ([]models.Event, error) {
	var events []models.Event
	if err := s.DB.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Postgres) ListEventsByStatus(status models.EventStatus) ([]models.Event, error) {
	var events []models.Event
	if err := s.DB.Where("status = ?", status).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Postgres) SetEventStatus(id string, status models.EventStatus) error {
	result := s.DB.Model(&models.Event{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) SetGlobalChallenge(eventID string, challengeID *string, expiresAt *time.Time) error {
	result := s.DB.Model(&models.Event{}).Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"current_global_challenge_id": challengeID,
			"global_challenge_expires_at": expiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteEvent(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		// Submissions reference participants, so they go first.
		if err := tx.Where("participant_id IN (?)",
			tx.Model(&models.Participant{}).Select("id").Where("event_id = ?", id),
		).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Challenge{}).Error; err != nil {
			return err
		}
		// Free the license binding so the admin ledger shows the code as
		// no longer attached to a live event.
		if err := tx.Model(&models.AccessCode{}).Where("event_id = ?", id).
			Update("event_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Challenges ---

func (s *Postgres) CreateChallenge(ch *models.Challenge) error {
	return translate(s.DB.Create(ch).Error)
}

func (s *Postgres) UpdateChallenge(ch *models.Challenge) error {
	result := s.DB.Model(&models.Challenge{}).Where("id = ?", ch.ID).
		Updates(map[string]interface{}{
			"title":       ch.Title,
			"description": ch.Description,
			"difficulty":  ch.Difficulty,
			"points":      ch.Points,
			"time_limit":  ch.TimeLimit,
			"is_special":  ch.IsSpecial,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteChallenge(id string) error {
	result := s.DB.Delete(&models.Challenge{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) GetChallenge(id string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.First(&ch, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &ch, nil
}

func (s *Postgres) ChallengesForEvent(eventID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := s.DB.Where("event_id = ?", eventID).
		Order("created_at ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

// --- Participants ---

func (s *Postgres) CreateParticipant(p *models.Participant) error {
	if err := s.DB.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *Postgres) GetParticipant(id string) (*models.Participant, error) {
	var p models.Participant
	if err := s.DB.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Postgres) FindParticipantByDevice(eventID, deviceKey string) (*models.Participant, error) {
	var p models.Participant
	if err := s.DB.Where("event_id = ? AND device_key = ?", eventID, deviceKey).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Postgres) ParticipantsForEvent(eventID string) ([]models.Participant, error) {
	var participants []models.Participant
	if err := s.DB.Where("event_id = ?", eventID).
		Order("total_points DESC, total_time_taken_seconds ASC, id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *Postgres) DeleteParticipant(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Participant{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Postgres) AddScore(participantID string, points int64, seconds int64) error {
	return s.addScore(s.DB, participantID, points, seconds)
}

func (s *Postgres) addScore(db *gorm.DB, participantID string, points int64, seconds int64) error {
	result := db.Model(&models.Participant{}).Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"total_points":             gorm.Expr("total_points + ?", points),
			"total_time_taken_seconds": gorm.Expr("total_time_taken_seconds + ?", seconds),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) SetAssignment(participantID string, prev, next *string, assignedAt, expiresAt *time.Time) error {
	result := s.DB.Model(&models.Participant{}).
		Where("id = ? AND current_challenge_id IS NOT DISTINCT FROM ?", participantID, prev).
		Updates(map[string]interface{}{
			"current_challenge_id":  next,
			"challenge_assigned_at": assignedAt,
			"challenge_expires_at":  expiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a lost CAS race from a missing participant.
		var count int64
		if err := s.DB.Model(&models.Participant{}).
			Where("id = ?", participantID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// --- Submissions ---

func (s *Postgres) CreateSubmissionWithCredit(sub *models.Submission) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return translate(err)
		}
		return s.addScore(tx, sub.ParticipantID, int64(sub.PointsAwarded), sub.TimeTakenSeconds)
	})
}

func (s *Postgres) RejectSubmission(id string, at time.Time) (*models.Submission, error) {
	var sub models.Submission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sub, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if sub.Status == models.SubmissionRejected {
			return ErrAlreadyRejected
		}
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":      models.SubmissionRejected,
			"rejected_at": at,
		}).Error; err != nil {
			return err
		}
		return s.addScore(tx, sub.ParticipantID, -int64(sub.PointsAwarded), -sub.TimeTakenSeconds)
	})
	if err != nil {
		return nil, err
	}
	sub.Status = models.SubmissionRejected
	sub.RejectedAt = &at
	return &sub, nil
}

func (s *Postgres) GetSubmission(id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.DB.First(&sub, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (s *Postgres) CompletedChallengeIDs(participantID string) ([]string, error) {
	var ids []string
	if err := s.DB.Model(&models.Submission{}).
		Where("participant_id = ? AND status <> ?", participantID, models.SubmissionRejected).
		Pluck("challenge_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Postgres) GalleryForEvent(eventID string) ([]models.GalleryEntry, error) {
	var entries []models.GalleryEntry
	query := `
        SELECT
            s.*,
            p.name AS participant_name,
            c.title AS challenge_title
        FROM submissions s
        JOIN participants p ON s.participant_id = p.id
        LEFT JOIN challenges c ON s.challenge_id = c.id
        WHERE p.event_id = ? AND s.status = 'valid'
        ORDER BY s.completed_at DESC
    `
	if err := s.DB.Raw(query, eventID).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// --- Access codes ---

func (s *Postgres) CreateAccessCode(ac *models.AccessCode) error {
	if err := s.DB.Create(ac).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *Postgres) GetAccessCode(code string) (*models.AccessCode, error) {
	var ac models.AccessCode
	if err := s.DB.Where("UPPER(code) = ?", strings.ToUpper(code)).
		First(&ac).Error; err != nil {
		return nil, translate(err)
	}
	return &ac, nil
}

func (s *Postgres) ListAccessCodes() ([]models.AccessCodeInfo, error) {
	var infos []models.AccessCodeInfo
	query := `
        SELECT
            ac.id,
            ac.code,
            ac.created_at,
            e.id AS event_id,
            e.title AS event_title,
            e.status AS event_status
        FROM access_codes ac
        LEFT JOIN events e ON ac.event_id = e.id
        ORDER BY ac.created_at DESC
    `
	if err := s.DB.Raw(query).Scan(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}
