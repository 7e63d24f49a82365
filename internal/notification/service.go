package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/preference"
	"github.com/i20tominaga/resident-app/internal/relevance"
)

// Service fans a staff broadcast about an event out to the residents of the
// event's building. Each resident's notification toggles decide whether the
// type is wanted at all, and their relevance threshold decides whether the
// event is pertinent enough to notify about. High-noise events additionally
// reach residents who opted into high-noise alerts regardless of threshold.
type Service struct {
	users   building.UserRepository
	prefs   preference.Store
	repo    Repository
	weights *relevance.Weights
}

// NewService creates a notification fan-out service. weights may be nil for
// the default scoring calibration.
func NewService(users building.UserRepository, prefs preference.Store, repo Repository, weights *relevance.Weights) *Service {
	return &Service{
		users:   users,
		prefs:   prefs,
		repo:    repo,
		weights: weights,
	}
}

// Broadcast creates one notification per eligible resident of the event's
// building and returns how many were created.
func (s *Service) Broadcast(ctx context.Context, ev *event.ConstructionEvent, typ Type, title, message string) (int, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("invalid notification type %q", typ)
	}

	residents, err := s.users.ListByBuilding(ctx, ev.BuildingID)
	if err != nil {
		return 0, fmt.Errorf("list building users: %w", err)
	}

	now := time.Now().UTC()
	created := 0
	for _, user := range residents {
		if user.Role != building.RoleResident {
			continue
		}

		prefs, err := s.prefs.Get(ctx, user.ID)
		if errors.Is(err, preference.ErrNotFound) {
			prefs = preference.DefaultPreferences(user.ID, user)
		} else if err != nil {
			// One bad preference read should not sink the whole broadcast.
			slog.WarnContext(ctx, "skipping resident, preference load failed",
				"user_id", user.ID, "error", err)
			continue
		}

		if !s.eligible(user, prefs, ev, typ) {
			continue
		}

		n := &Notification{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			EventID:   ev.ID,
			Title:     title,
			Message:   message,
			Type:      typ,
			CreatedAt: now,
		}
		if err := s.repo.Insert(ctx, n); err != nil {
			return created, fmt.Errorf("insert notification for %s: %w", user.ID, err)
		}
		created++
	}
	return created, nil
}

// eligible applies the resident's toggles and relevance threshold.
func (s *Service) eligible(user *building.User, prefs *preference.Preferences, ev *event.ConstructionEvent, typ Type) bool {
	settings := prefs.NotificationSettings
	wanted := false
	switch typ {
	case TypeEventUpdate:
		wanted = settings.EventUpdates
	case TypeNewEvent:
		wanted = settings.NewEvents
	case TypeEventCancelled, TypeScheduleChange:
		wanted = settings.ScheduleChanges
	}
	if !wanted {
		return false
	}

	if ev.NoiseLevel == event.NoiseHigh && settings.HighNoiseEvents {
		return true
	}

	profile := prefs.ScoringProfile(user)
	scores := relevance.CalculateScores(profile, []event.ConstructionEvent{*ev}, s.weights)
	return scores[0].Score >= prefs.MinRelevanceScore
}
