package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"party-snap-system/models"
)

// Memory is an in-process Store used by tests and demo mode. A single mutex
// guards all maps; every mutation happens inside one critical section, which
// gives the same atomicity the Postgres implementation gets from transactions.
type Memory struct {
	mu sync.Mutex

	events       map[string]models.Event
	challenges   map[string]models.Challenge
	participants map[string]models.Participant
	submissions  map[string]models.Submission
	accessCodes  map[string]models.AccessCode // keyed by uppercased code
}

func NewMemory() *Memory {
	return &Memory{
		events:       make(map[string]models.Event),
		challenges:   make(map[string]models.Challenge),
		participants: make(map[string]models.Participant),
		submissions:  make(map[string]models.Submission),
		accessCodes:  make(map[string]models.AccessCode),
	}
}

// --- Events ---

func (m *Memory) CreateEventWithCode(event *models.Event, accessCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.accessCodes[strings.ToUpper(accessCode)]
	if !ok {
		return ErrCodeInvalid
	}
	if ac.EventID != nil {
		return ErrCodeUsed
	}
	for _, existing := range m.events {
		if strings.EqualFold(existing.JoinCode, event.JoinCode) {
			return ErrConflict
		}
	}
	ev := *event
	m.events[ev.ID] = ev
	id := ev.ID
	ac.EventID = &id
	m.accessCodes[strings.ToUpper(accessCode)] = ac
	return nil
}

func (m *Memory) GetEvent(id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ev, nil
}

func (m *Memory) FindEventByJoinCode(code string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if strings.EqualFold(ev.JoinCode, code) {
			ev := ev
			return &ev, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListEvents() ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]models.Event, 0, len(m.events))
	for _, ev := range m.events {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (m *Memory) ListEventsByStatus(status models.EventStatus) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []models.Event
	for _, ev := range m.events {
		if ev.Status == status {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (m *Memory) SetEventStatus(id string, status models.EventStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	ev.Status = status
	m.events[id] = ev
	return nil
}

func (m *Memory) SetGlobalChallenge(eventID string, challengeID *string, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return ErrNotFound
	}
	ev.CurrentGlobalChallengeID = challengeID
	ev.GlobalChallengeExpiresAt = expiresAt
	m.events[eventID] = ev
	return nil
}

func (m *Memory) DeleteEvent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	for pid, p := range m.participants {
		if p.EventID != id {
			continue
		}
		for sid, sub := range m.submissions {
			if sub.ParticipantID == pid {
				delete(m.submissions, sid)
			}
		}
		delete(m.participants, pid)
	}
	for cid, ch := range m.challenges {
		if ch.EventID == id {
			delete(m.challenges, cid)
		}
	}
	for code, ac := range m.accessCodes {
		if ac.EventID != nil && *ac.EventID == id {
			ac.EventID = nil
			m.accessCodes[code] = ac
		}
	}
	delete(m.events, id)
	return nil
}

// --- Challenges ---

func (m *Memory) CreateChallenge(ch *models.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges[ch.ID] = *ch
	return nil
}

func (m *Memory) UpdateChallenge(ch *models.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.challenges[ch.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = ch.Title
	existing.Description = ch.Description
	existing.Difficulty = ch.Difficulty
	existing.Points = ch.Points
	existing.TimeLimit = ch.TimeLimit
	existing.IsSpecial = ch.IsSpecial
	m.challenges[ch.ID] = existing
	return nil
}

func (m *Memory) DeleteChallenge(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.challenges[id]; !ok {
		return ErrNotFound
	}
	delete(m.challenges, id)
	return nil
}

func (m *Memory) GetChallenge(id string) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ch, nil
}

func (m *Memory) ChallengesForEvent(eventID string) ([]models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var challenges []models.Challenge
	for _, ch := range m.challenges {
		if ch.EventID == eventID {
			challenges = append(challenges, ch)
		}
	}
	sort.Slice(challenges, func(i, j int) bool {
		if challenges[i].CreatedAt.Equal(challenges[j].CreatedAt) {
			return challenges[i].ID < challenges[j].ID
		}
		return challenges[i].CreatedAt.Before(challenges[j].CreatedAt)
	})
	return challenges, nil
}

// --- Participants ---

func (m *Memory) CreateParticipant(p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.participants {
		if existing.EventID == p.EventID && existing.DeviceKey == p.DeviceKey {
			return ErrConflict
		}
	}
	m.participants[p.ID] = *p
	return nil
}

func (m *Memory) GetParticipant(id string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) FindParticipantByDevice(eventID, deviceKey string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.EventID == eventID && p.DeviceKey == deviceKey {
			p := p
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ParticipantsForEvent(eventID string) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var participants []models.Participant
	for _, p := range m.participants {
		if p.EventID == eventID {
			participants = append(participants, p)
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		a, b := participants[i], participants[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TotalTimeTakenSeconds != b.TotalTimeTakenSeconds {
			return a.TotalTimeTakenSeconds < b.TotalTimeTakenSeconds
		}
		return a.ID < b.ID
	})
	return participants, nil
}

func (m *Memory) DeleteParticipant(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.participants[id]; !ok {
		return ErrNotFound
	}
	for sid, sub := range m.submissions {
		if sub.ParticipantID == id {
			delete(m.submissions, sid)
		}
	}
	delete(m.participants, id)
	return nil
}

func (m *Memory) AddScore(participantID string, points int64, seconds int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addScoreLocked(participantID, points, seconds)
}

func (m *Memory) addScoreLocked(participantID string, points int64, seconds int64) error {
	p, ok := m.participants[participantID]
	if !ok {
		return ErrNotFound
	}
	p.TotalPoints += points
	p.TotalTimeTakenSeconds += seconds
	m.participants[participantID] = p
	return nil
}

func (m *Memory) SetAssignment(participantID string, prev, next *string, assignedAt, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantID]
	if !ok {
		return ErrNotFound
	}
	if !equalID(p.CurrentChallengeID, prev) {
		return ErrConflict
	}
	p.CurrentChallengeID = next
	p.ChallengeAssignedAt = assignedAt
	p.ChallengeExpiresAt = expiresAt
	m.participants[participantID] = p
	return nil
}

func equalID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// --- Submissions ---

func (m *Memory) CreateSubmissionWithCredit(sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.addScoreLocked(sub.ParticipantID, int64(sub.PointsAwarded), sub.TimeTakenSeconds); err != nil {
		return err
	}
	m.submissions[sub.ID] = *sub
	return nil
}

func (m *Memory) RejectSubmission(id string, at time.Time) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sub.Status == models.SubmissionRejected {
		return nil, ErrAlreadyRejected
	}
	if err := m.addScoreLocked(sub.ParticipantID, -int64(sub.PointsAwarded), -sub.TimeTakenSeconds); err != nil {
		return nil, err
	}
	sub.Status = models.SubmissionRejected
	sub.RejectedAt = &at
	m.submissions[id] = sub
	return &sub, nil
}

func (m *Memory) GetSubmission(id string) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (m *Memory) CompletedChallengeIDs(participantID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, sub := range m.submissions {
		if sub.ParticipantID == participantID && sub.Status != models.SubmissionRejected {
			ids = append(ids, sub.ChallengeID)
		}
	}
	return ids, nil
}

func (m *Memory) GalleryForEvent(eventID string) ([]models.GalleryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []models.GalleryEntry
	for _, sub := range m.submissions {
		if sub.Status != models.SubmissionValid {
			continue
		}
		p, ok := m.participants[sub.ParticipantID]
		if !ok || p.EventID != eventID {
			continue
		}
		entry := models.GalleryEntry{Submission: sub, ParticipantName: p.Name}
		if ch, ok := m.challenges[sub.ChallengeID]; ok {
			entry.ChallengeTitle = ch.Title
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompletedAt.Equal(entries[j].CompletedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CompletedAt.After(entries[j].CompletedAt)
	})
	return entries, nil
}

// --- Access codes ---

func (m *Memory) CreateAccessCode(ac *models.AccessCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToUpper(ac.Code)
	if _, ok := m.accessCodes[key]; ok {
		return ErrConflict
	}
	m.accessCodes[key] = *ac
	return nil
}

func (m *Memory) GetAccessCode(code string) (*models.AccessCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.accessCodes[strings.ToUpper(code)]
	if !ok {
		return nil, ErrNotFound
	}
	return &ac, nil
}

func (m *Memory) ListAccessCodes() ([]models.AccessCodeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]models.AccessCodeInfo, 0, len(m.accessCodes))
	for _, ac := range m.accessCodes {
		info := models.AccessCodeInfo{ID: ac.ID, Code: ac.Code, CreatedAt: ac.CreatedAt}
		if ac.EventID != nil {
			if ev, ok := m.events[*ac.EventID]; ok {
				info.EventID = ev.ID
				info.EventTitle = ev.Title
				info.EventStatus = string(ev.Status)
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].Code < infos[j].Code
		}
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}
