package api

import (
	"net/http"
	"testing"

	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/preference"
)

func TestGetPreferencesDefaults(t *testing.T) {
	env := newTestEnv(t)
	resident := residentOnFloor("usr-res", 3)
	resident.FacilitiesOfInterest = []string{"gym", "parking"}
	env.addUser(t, resident, "correct-horse")

	rec := env.do(t, http.MethodGet, "/preferences", env.token(t, resident), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var prefs preference.Preferences
	decodeBody(t, rec, &prefs)
	if prefs.UserID != "usr-res" {
		t.Errorf("user_id = %q", prefs.UserID)
	}
	if prefs.MinRelevanceScore != preference.DefaultMinRelevanceScore {
		t.Errorf("min_relevance_score = %d, want default %d",
			prefs.MinRelevanceScore, preference.DefaultMinRelevanceScore)
	}
	if !prefs.NotificationSettings.NewEvents || !prefs.NotificationSettings.HighNoiseEvents {
		t.Errorf("notification settings = %+v, want event toggles on", prefs.NotificationSettings)
	}
	if len(prefs.FacilitiesOfInterest) != 2 {
		t.Errorf("facilities = %v, want profile facilities carried over", prefs.FacilitiesOfInterest)
	}
}

func TestUpdatePreferences(t *testing.T) {
	env := newTestEnv(t)
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")
	token := env.token(t, resident)

	req := UpdatePreferencesRequest{
		NotificationSettings: preference.NotificationSettings{
			EventUpdates:    true,
			NewEvents:       false,
			ScheduleChanges: true,
		},
		MinRelevanceScore:    55,
		FacilitiesOfInterest: []string{"elevator"},
		TimePreferences:      []building.TimePreference{{StartHour: 9, EndHour: 18}},
	}
	rec := env.do(t, http.MethodPut, "/preferences", token, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var saved preference.Preferences
	decodeBody(t, rec, &saved)
	if saved.MinRelevanceScore != 55 {
		t.Errorf("min_relevance_score = %d", saved.MinRelevanceScore)
	}
	if saved.NotificationSettings.NewEvents {
		t.Error("new_events should be off")
	}

	// A later GET returns the saved preferences, not the defaults.
	rec = env.do(t, http.MethodGet, "/preferences", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var loaded preference.Preferences
	decodeBody(t, rec, &loaded)
	if loaded.MinRelevanceScore != 55 || len(loaded.FacilitiesOfInterest) != 1 {
		t.Errorf("loaded = %+v, want saved preferences", loaded)
	}
}

func TestUpdatePreferencesClampsThreshold(t *testing.T) {
	env := newTestEnv(t)
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")
	token := env.token(t, resident)

	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative clamps to zero", -50, 0},
		{"above scale clamps to hundred", 500, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/preferences", token, UpdatePreferencesRequest{
				MinRelevanceScore: tt.in,
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
			}
			var saved preference.Preferences
			decodeBody(t, rec, &saved)
			if saved.MinRelevanceScore != tt.want {
				t.Errorf("min_relevance_score = %d, want %d", saved.MinRelevanceScore, tt.want)
			}
		})
	}
}

func TestUpdatePreferencesInvalidTimeRange(t *testing.T) {
	env := newTestEnv(t)
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")

	rec := env.do(t, http.MethodPut, "/preferences", env.token(t, resident), UpdatePreferencesRequest{
		TimePreferences: []building.TimePreference{{StartHour: 20, EndHour: 8}},
	})
	assertErrorResponse(t, rec, http.StatusBadRequest, ErrCodeValidation)
}
