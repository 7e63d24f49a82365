package preference

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/i20tominaga/resident-app/internal/building"
)

func TestDefaultPreferences(t *testing.T) {
	user := &building.User{
		ID:                   "user-1",
		FacilitiesOfInterest: []string{"gym-1"},
		TimePreferences:      []building.TimePreference{{StartHour: 7, EndHour: 9, Label: "morning"}},
	}

	prefs := DefaultPreferences("user-1", user)
	if prefs.MinRelevanceScore != DefaultMinRelevanceScore {
		t.Errorf("expected default threshold %d, got %d", DefaultMinRelevanceScore, prefs.MinRelevanceScore)
	}
	if !prefs.NotificationSettings.EventUpdates || prefs.NotificationSettings.NewFAQ {
		t.Errorf("unexpected default toggles: %+v", prefs.NotificationSettings)
	}
	if !reflect.DeepEqual(prefs.FacilitiesOfInterest, user.FacilitiesOfInterest) {
		t.Errorf("facilities not seeded from profile: %v", prefs.FacilitiesOfInterest)
	}

	// Without a profile the interest lists start empty.
	bare := DefaultPreferences("user-2", nil)
	if len(bare.FacilitiesOfInterest) != 0 || len(bare.TimePreferences) != 0 {
		t.Errorf("expected empty interests without a profile: %+v", bare)
	}
}

func TestClampThreshold(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		if got := ClampThreshold(tt.in); got != tt.want {
			t.Errorf("ClampThreshold(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestScoringProfile(t *testing.T) {
	floor := 12
	user := &building.User{
		ID:                   "user-1",
		FloorNumber:          &floor,
		FacilitiesOfInterest: []string{"stale"},
	}
	prefs := &Preferences{
		UserID:               "user-1",
		FacilitiesOfInterest: []string{"gym-1", "parking-1"},
		TimePreferences:      []building.TimePreference{{StartHour: 19, EndHour: 22, Label: "evening"}},
	}

	profile := prefs.ScoringProfile(user)
	if profile.FloorNumber == nil || *profile.FloorNumber != 12 {
		t.Errorf("fixed profile facts must carry over, got %v", profile.FloorNumber)
	}
	if !reflect.DeepEqual(profile.FacilitiesOfInterest, prefs.FacilitiesOfInterest) {
		t.Errorf("stored interests must win over profile copy, got %v", profile.FacilitiesOfInterest)
	}
	if len(profile.TimePreferences) != 1 {
		t.Errorf("time preferences not overlaid: %v", profile.TimePreferences)
	}
}

func TestInMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if _, err := store.Get(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	prefs := DefaultPreferences("user-1", nil)
	prefs.MinRelevanceScore = 35
	if err := store.Set(ctx, prefs); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.MinRelevanceScore != 35 {
		t.Errorf("expected threshold 35, got %d", got.MinRelevanceScore)
	}

	// Mutating the returned value must not leak into the store.
	got.MinRelevanceScore = 90
	again, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.MinRelevanceScore != 35 {
		t.Errorf("store leaked a mutable reference, got %d", again.MinRelevanceScore)
	}
}
