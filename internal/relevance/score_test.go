package relevance

import (
	"reflect"
	"testing"
	"time"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
)

func intPtr(n int) *int { return &n }

func testUser(floor *int) *building.User {
	return &building.User{
		ID:          "user-1",
		Role:        building.RoleResident,
		BuildingID:  "bldg-1",
		FloorNumber: floor,
	}
}

func testEvent(id string) event.ConstructionEvent {
	return event.ConstructionEvent{
		ID:         id,
		BuildingID: "bldg-1",
		Title:      "Elevator inspection",
		Type:       event.TypeInspection,
		Status:     event.StatusScheduled,
		StartDate:  time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC),
	}
}

// TestCalculateScores_OwnFloor covers the exact-floor tier: a single rule
// fires, contributing 40 points and one reason.
func TestCalculateScores_OwnFloor(t *testing.T) {
	user := testUser(intPtr(15))
	ev := testEvent("ev-1")
	ev.AffectedFloors = []int{15}

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	if scores[0].Score != 40 {
		t.Errorf("expected score 40, got %d", scores[0].Score)
	}
	if want := []string{ReasonOwnFloor}; !reflect.DeepEqual(scores[0].Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, scores[0].Reasons)
	}
}

// TestCalculateScores_NearbyFloorCombination covers the proximity tier
// stacked with the noise and in-progress rules: 20 + 10 + 15 = 45.
func TestCalculateScores_NearbyFloorCombination(t *testing.T) {
	user := testUser(intPtr(15))
	ev := testEvent("ev-1")
	ev.AffectedFloors = []int{16}
	ev.NoiseLevel = event.NoiseHigh
	ev.Status = event.StatusInProgress

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if scores[0].Score != 45 {
		t.Errorf("expected score 45, got %d", scores[0].Score)
	}
	want := []string{ReasonNearbyFloor, ReasonHighNoise, ReasonInProgress}
	if !reflect.DeepEqual(scores[0].Reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, scores[0].Reasons)
	}
}

// TestCalculateScores_FloorTiersMutuallyExclusive verifies an event touching
// both the resident's floor and a nearby floor contributes only the exact
// tier.
func TestCalculateScores_FloorTiersMutuallyExclusive(t *testing.T) {
	user := testUser(intPtr(10))
	ev := testEvent("ev-1")
	ev.AffectedFloors = []int{10, 11}

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if scores[0].Score != 40 {
		t.Errorf("expected only the exact tier (40), got %d", scores[0].Score)
	}
	if len(scores[0].Reasons) != 1 {
		t.Errorf("expected a single reason, got %v", scores[0].Reasons)
	}
}

// TestCalculateScores_TimeWindow covers the first-match-wins time rule with
// a [7,9) vs [8,10) half-open overlap.
func TestCalculateScores_TimeWindow(t *testing.T) {
	user := testUser(nil)
	user.TimePreferences = []building.TimePreference{
		{StartHour: 7, EndHour: 9, Label: "morning"},
		{StartHour: 8, EndHour: 11, Label: "late morning"},
	}
	ev := testEvent("ev-1")
	ev.StartTime = "08:00"
	ev.EndTime = "10:00"

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if scores[0].Score != 15 {
		t.Errorf("expected score 15, got %d", scores[0].Score)
	}
	want := []string{"this is during your morning time window."}
	if !reflect.DeepEqual(scores[0].Reasons, want) {
		t.Errorf("first matching preference should win, got %v", scores[0].Reasons)
	}
}

// TestCalculateScores_NeutralEventScoresZero verifies an event touching
// nothing the user cares about yields score 0 with no reasons.
func TestCalculateScores_NeutralEventScoresZero(t *testing.T) {
	user := testUser(intPtr(3))
	user.FacilitiesOfInterest = []string{"gym-1"}
	ev := testEvent("ev-1")
	ev.AffectedFloors = nil
	ev.AffectedFacilities = []string{"parking-1"}

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if scores[0].Score != 0 {
		t.Errorf("expected score 0, got %d", scores[0].Score)
	}
	if len(scores[0].Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", scores[0].Reasons)
	}
}

// TestCalculateScores_ClampedAt100 stacks every rule so the raw sum exceeds
// 100 and verifies the clamp.
func TestCalculateScores_ClampedAt100(t *testing.T) {
	user := testUser(intPtr(5))
	user.FacilitiesOfInterest = []string{"gym-1"}
	user.TimePreferences = []building.TimePreference{{StartHour: 8, EndHour: 18, Label: "daytime"}}

	ev := testEvent("ev-1")
	ev.AffectedFloors = []int{5}
	ev.AffectedFacilities = []string{"gym-1"}
	ev.StartTime = "09:00"
	ev.EndTime = "17:00"
	ev.NoiseLevel = event.NoiseHigh
	ev.AccessRestrictions = true
	ev.Status = event.StatusInProgress

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if scores[0].Score != 100 {
		t.Errorf("expected clamped score 100, got %d", scores[0].Score)
	}
	if len(scores[0].Reasons) != 6 {
		t.Errorf("expected all 6 rules to fire, got %v", scores[0].Reasons)
	}
}

// TestCalculateScores_SortStable verifies descending order with input order
// preserved for ties.
func TestCalculateScores_SortStable(t *testing.T) {
	user := testUser(intPtr(7))

	low1 := testEvent("low-1") // scores 0
	low2 := testEvent("low-2") // scores 0
	high := testEvent("high")  // scores 40
	high.AffectedFloors = []int{7}

	scores := CalculateScores(user, []event.ConstructionEvent{low1, low2, high}, nil)
	gotIDs := []string{scores[0].EventID, scores[1].EventID, scores[2].EventID}
	wantIDs := []string{"high", "low-1", "low-2"}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("expected order %v, got %v", wantIDs, gotIDs)
	}
}

// TestCalculateScores_Idempotent verifies two calls over identical inputs
// yield identical output.
func TestCalculateScores_Idempotent(t *testing.T) {
	user := testUser(intPtr(15))
	user.FacilitiesOfInterest = []string{"lobby-1"}
	events := []event.ConstructionEvent{testEvent("a"), testEvent("b")}
	events[0].AffectedFloors = []int{14}
	events[1].AffectedFacilities = []string{"lobby-1"}

	first := CalculateScores(user, events, nil)
	second := CalculateScores(user, events, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %v then %v", first, second)
	}
}

// TestCalculateScores_MalformedWorkingHours verifies unparsable or
// out-of-range hour strings skip the time rule instead of failing.
func TestCalculateScores_MalformedWorkingHours(t *testing.T) {
	tests := []struct {
		name      string
		startTime string
		endTime   string
	}{
		{"garbage start", "soon", "12:00"},
		{"garbage end", "09:00", "later"},
		{"missing colon", "0900", "1200"},
		{"hour out of range", "25:00", "27:00"},
		{"negative hour", "-1:00", "09:00"},
		{"only start present", "09:00", ""},
		{"both absent", "", ""},
	}

	user := testUser(nil)
	user.TimePreferences = []building.TimePreference{{StartHour: 0, EndHour: 24, Label: "any"}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testEvent("ev-1")
			ev.StartTime = tt.startTime
			ev.EndTime = tt.endTime

			scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
			if scores[0].Score != 0 {
				t.Errorf("expected time rule to skip, got score %d", scores[0].Score)
			}
		})
	}
}

// TestCalculateScores_NoFloorNumber verifies users without a fixed floor
// skip both floor tiers entirely.
func TestCalculateScores_NoFloorNumber(t *testing.T) {
	user := testUser(nil)
	ev := testEvent("ev-1")
	ev.AffectedFloors = []int{1, 2, 3}

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, nil)
	if scores[0].Score != 0 {
		t.Errorf("expected floor rules to skip, got score %d", scores[0].Score)
	}
}

// TestCalculateScores_ScoreRange property-checks the [0,100] invariant over
// a spread of events.
func TestCalculateScores_ScoreRange(t *testing.T) {
	user := testUser(intPtr(8))
	user.FacilitiesOfInterest = []string{"gym-1", "parking-1"}
	user.TimePreferences = []building.TimePreference{{StartHour: 6, EndHour: 22, Label: "waking hours"}}

	var events []event.ConstructionEvent
	for floor := 0; floor < 20; floor++ {
		ev := testEvent("ev")
		ev.AffectedFloors = []int{floor}
		ev.AffectedFacilities = []string{"gym-1"}
		ev.StartTime = "07:00"
		ev.EndTime = "19:00"
		ev.NoiseLevel = event.NoiseHigh
		ev.AccessRestrictions = true
		ev.Status = event.StatusInProgress
		events = append(events, ev)
	}

	for _, s := range CalculateScores(user, events, nil) {
		if s.Score < 0 || s.Score > 100 {
			t.Errorf("score out of range: %d", s.Score)
		}
	}
}

// TestCalculateScores_CalibratedWeights verifies a calibration override
// changes the contribution of a single rule.
func TestCalculateScores_CalibratedWeights(t *testing.T) {
	weights := MergeCalibration(DefaultWeights(), &Weights{FloorExact: 60})

	user := testUser(intPtr(4))
	ev := testEvent("ev-1")
	ev.AffectedFloors = []int{4}

	scores := CalculateScores(user, []event.ConstructionEvent{ev}, weights)
	if scores[0].Score != 60 {
		t.Errorf("expected calibrated score 60, got %d", scores[0].Score)
	}
}

func TestPersonalizedEvents_Threshold(t *testing.T) {
	user := testUser(intPtr(15))

	onFloor := testEvent("on-floor") // 40
	onFloor.AffectedFloors = []int{15}
	nearby := testEvent("nearby") // 20
	nearby.AffectedFloors = []int{17}
	unrelated := testEvent("unrelated") // 0

	events := []event.ConstructionEvent{unrelated, nearby, onFloor}
	kept := PersonalizedEvents(user, events, DefaultMinScore, nil)

	if len(kept) != 2 {
		t.Fatalf("expected 2 events above threshold, got %d", len(kept))
	}
	if kept[0].ID != "on-floor" || kept[1].ID != "nearby" {
		t.Errorf("expected [on-floor nearby], got [%s %s]", kept[0].ID, kept[1].ID)
	}
}

// TestPersonalizedEvents_StableTies verifies two retained events with equal
// scores keep their input order.
func TestPersonalizedEvents_StableTies(t *testing.T) {
	user := testUser(intPtr(15))

	first := testEvent("first") // 20
	first.AffectedFloors = []int{13}
	second := testEvent("second") // 20
	second.AffectedFloors = []int{17}

	kept := PersonalizedEvents(user, []event.ConstructionEvent{first, second}, 20, nil)
	if len(kept) != 2 {
		t.Fatalf("expected 2 events, got %d", len(kept))
	}
	if kept[0].ID != "first" || kept[1].ID != "second" {
		t.Errorf("equal scores must keep input order, got [%s %s]", kept[0].ID, kept[1].ID)
	}
}

func TestPersonalizedEvents_NeverBelowThreshold(t *testing.T) {
	user := testUser(intPtr(15))
	var events []event.ConstructionEvent
	for i, floors := range [][]int{{15}, {16}, {18}, {30}, nil} {
		ev := testEvent("ev-" + string(rune('a'+i)))
		ev.AffectedFloors = floors
		events = append(events, ev)
	}

	kept := PersonalizedEvents(user, events, 30, nil)
	scores := CalculateScores(user, events, nil)
	byID := make(map[string]int)
	for _, s := range scores {
		byID[s.EventID] = s.Score
	}
	for _, ev := range kept {
		if byID[ev.ID] < 30 {
			t.Errorf("event %s with score %d below threshold 30", ev.ID, byID[ev.ID])
		}
	}
}

func TestFloorProximate(t *testing.T) {
	tests := []struct {
		name      string
		userFloor int
		floors    []int
		want      bool
	}{
		{"empty set", 10, nil, false},
		{"exact floor", 10, []int{10}, true},
		{"two above", 10, []int{12}, true},
		{"two below", 10, []int{8}, true},
		{"three away", 10, []int{13}, false},
		{"one of many in range", 10, []int{1, 20, 11}, true},
		{"all out of range", 10, []int{1, 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloorProximate(tt.userFloor, tt.floors); got != tt.want {
				t.Errorf("FloorProximate(%d, %v) = %v, want %v", tt.userFloor, tt.floors, got, tt.want)
			}
		})
	}
}

func TestTimeOverlap(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd int
		want                           bool
	}{
		{"spec example 7-9 vs 8-10", 7, 9, 8, 10, true},
		{"touching endpoints", 7, 9, 9, 11, false},
		{"contained", 8, 10, 7, 12, true},
		{"disjoint", 6, 8, 9, 11, false},
		{"identical", 7, 9, 7, 9, true},
		{"symmetric", 8, 10, 7, 9, true},
		{"degenerate preference", 9, 9, 0, 24, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("TimeOverlap(%d,%d,%d,%d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}
