package relevance

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
)

// DefaultMinScore is the default relevance threshold for the personalized
// event subset.
const DefaultMinScore = 20

// floorProximityRange is the maximum absolute floor distance still
// considered "nearby".
const floorProximityRange = 2

// Reason strings, appended in rule order when the corresponding rule fires.
const (
	ReasonOwnFloor         = "this is a construction event on your floor."
	ReasonNearbyFloor      = "this is a construction event on a nearby floor."
	ReasonFacility         = "this relates to a facility you use."
	reasonTimeWindowFormat = "this is during your %s time window."
	ReasonHighNoise        = "high noise is expected."
	ReasonAccessRestricted = "this event restricts access."
	ReasonInProgress       = "this is currently in progress."
)

// Score estimates how pertinent one event is to one resident.
// It is a transient value object, recomputed on demand and never persisted.
type Score struct {
	EventID string   `json:"event_id"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// CalculateScores scores every event against the user's profile and returns
// one Score per input event, sorted descending by score. The sort is stable:
// events with equal scores keep their input order. Pass nil weights for the
// defaults.
func CalculateScores(user *building.User, events []event.ConstructionEvent, w *Weights) []Score {
	if w == nil {
		w = DefaultWeights()
	}

	scores := make([]Score, 0, len(events))
	for i := range events {
		scores = append(scores, scoreEvent(user, &events[i], w))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// scoreEvent applies the scoring rules in fixed order. Missing or malformed
// optional fields make the corresponding rule skip; the function never fails.
func scoreEvent(user *building.User, ev *event.ConstructionEvent, w *Weights) Score {
	score := 0
	var reasons []string

	// 1. Floor match. Exact match and proximity are mutually exclusive tiers.
	if user.FloorNumber != nil {
		if containsFloor(ev.AffectedFloors, *user.FloorNumber) {
			score += w.FloorExact
			reasons = append(reasons, ReasonOwnFloor)
		} else if FloorProximate(*user.FloorNumber, ev.AffectedFloors) {
			score += w.FloorNearby
			reasons = append(reasons, ReasonNearbyFloor)
		}
	}

	// 2. Facility interest overlap. Binary: does not scale with overlap size.
	if facilityOverlap(ev.AffectedFacilities, user.FacilitiesOfInterest) {
		score += w.Facility
		reasons = append(reasons, ReasonFacility)
	}

	// 3. Time-of-day preference overlap, first matching preference wins.
	if evStart, evEnd, ok := workingHours(ev); ok {
		for _, pref := range user.TimePreferences {
			if TimeOverlap(pref.StartHour, pref.EndHour, evStart, evEnd) {
				score += w.TimeOfDay
				reasons = append(reasons, fmt.Sprintf(reasonTimeWindowFormat, pref.Label))
				break
			}
		}
	}

	// 4. High expected noise.
	if ev.NoiseLevel == event.NoiseHigh {
		score += w.HighNoise
		reasons = append(reasons, ReasonHighNoise)
	}

	// 5. Access restriction.
	if ev.AccessRestrictions {
		score += w.AccessRestricted
		reasons = append(reasons, ReasonAccessRestricted)
	}

	// 6. In-progress boost.
	if ev.Status == event.StatusInProgress {
		score += w.InProgress
		reasons = append(reasons, ReasonInProgress)
	}

	return Score{EventID: ev.ID, Score: clampScore(score), Reasons: reasons}
}

// PersonalizedEvents returns the events whose relevance score for the user
// is at least minScore, sorted descending by score. Equal scores keep their
// relative input order.
func PersonalizedEvents(user *building.User, events []event.ConstructionEvent, minScore int, w *Weights) []event.ConstructionEvent {
	scores := CalculateScores(user, events, w)
	byID := make(map[string]int, len(scores))
	for _, s := range scores {
		byID[s.EventID] = s.Score
	}

	var kept []event.ConstructionEvent
	for _, ev := range events {
		if byID[ev.ID] >= minScore {
			kept = append(kept, ev)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return byID[kept[i].ID] > byID[kept[j].ID]
	})
	return kept
}

// FloorProximate reports whether at least one affected floor is within
// floorProximityRange of the user's floor. An empty affected-floor set is
// never proximate.
func FloorProximate(userFloor int, affectedFloors []int) bool {
	if len(affectedFloors) == 0 {
		return false
	}
	for _, floor := range affectedFloors {
		if abs(floor-userFloor) <= floorProximityRange {
			return true
		}
	}
	return false
}

// TimeOverlap reports whether the half-open hour ranges [aStart, aEnd) and
// [bStart, bEnd) overlap. Ranges crossing midnight are not supported; a
// degenerate range (start >= end) overlaps nothing.
func TimeOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aEnd > bStart && bEnd > aStart
}

// workingHours extracts the daily working-hour range of an event as integer
// hours. Both StartTime and EndTime must be present and parse to an hour in
// [0, 23]; otherwise the time rule is skipped.
func workingHours(ev *event.ConstructionEvent) (start, end int, ok bool) {
	start, ok = parseHour(ev.StartTime)
	if !ok {
		return 0, 0, false
	}
	end, ok = parseHour(ev.EndTime)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// parseHour extracts the hour component of an "HH:MM" string.
func parseHour(hhmm string) (int, bool) {
	hh, _, found := strings.Cut(hhmm, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func containsFloor(floors []int, floor int) bool {
	for _, f := range floors {
		if f == floor {
			return true
		}
	}
	return false
}

func facilityOverlap(affected, interests []string) bool {
	if len(affected) == 0 || len(interests) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(interests))
	for _, id := range interests {
		set[id] = struct{}{}
	}
	for _, id := range affected {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
