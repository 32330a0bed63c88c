// services/scheduler.go
package services

import (
	"log"
	"time"

	"party-snap-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler sweeps event statuses once a minute: pending events
// whose start window has opened go active, and active events past their end
// window complete. Expiry of challenge assignments is advisory and handled at
// read time, so the sweeper touches event status only.
func (s *EventService) StartLifecycleScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(s.sweepLifecycle),
	)
}

func (s *EventService) sweepLifecycle() {
	now := s.Now()

	pending, err := s.Store.ListEventsByStatus(models.EventStatusPending)
	if err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}
	for _, ev := range pending {
		if ev.StartTime != nil && !ev.StartTime.After(now) {
			if err := s.Store.SetEventStatus(ev.ID, models.EventStatusActive); err != nil {
				log.Printf("[Scheduler] Failed to activate event %s: %v", ev.ID, err)
			} else {
				log.Printf("✅ Auto-activated event: %s", ev.Title)
			}
		}
	}

	active, err := s.Store.ListEventsByStatus(models.EventStatusActive)
	if err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}
	for _, ev := range active {
		if ev.EndTime != nil && ev.EndTime.Before(now) {
			if err := s.Store.SetEventStatus(ev.ID, models.EventStatusCompleted); err != nil {
				log.Printf("[Scheduler] Failed to complete event %s: %v", ev.ID, err)
			} else {
				log.Printf("✅ Auto-completed event: %s", ev.Title)
			}
		}
	}
}
