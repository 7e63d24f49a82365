// Package preference provides durable per-user portal settings: notification
// toggles, tracked facilities and time windows, and the personal relevance
// threshold. The engine never reads these directly; callers fetch them and
// pass the values in.
package preference

import "github.com/i20tominaga/resident-app/internal/building"

// DefaultMinRelevanceScore is the threshold applied when a user has not
// tuned their own.
const DefaultMinRelevanceScore = 20

// NotificationSettings are the per-user broadcast toggles.
type NotificationSettings struct {
	EventUpdates    bool `json:"event_updates"`
	NewEvents       bool `json:"new_events"`
	ScheduleChanges bool `json:"schedule_changes"`
	HighNoiseEvents bool `json:"high_noise_events"`
	NewFAQ          bool `json:"new_faq"`
}

// Preferences holds one user's durable portal settings.
type Preferences struct {
	UserID               string                    `json:"user_id"`
	FacilitiesOfInterest []string                  `json:"facilities_of_interest"`
	TimePreferences      []building.TimePreference `json:"time_preferences"`
	NotificationSettings NotificationSettings      `json:"notification_settings"`
	// MinRelevanceScore is the 0-100 threshold for the personalized
	// event subset.
	MinRelevanceScore int `json:"min_relevance_score"`
}

// DefaultPreferences builds the initial settings for a user, seeding the
// facility and time-window interests from the profile when one is provided.
func DefaultPreferences(userID string, user *building.User) *Preferences {
	prefs := &Preferences{
		UserID: userID,
		NotificationSettings: NotificationSettings{
			EventUpdates:    true,
			NewEvents:       true,
			ScheduleChanges: true,
			HighNoiseEvents: true,
			NewFAQ:          false,
		},
		MinRelevanceScore: DefaultMinRelevanceScore,
	}
	if user != nil {
		prefs.FacilitiesOfInterest = append([]string(nil), user.FacilitiesOfInterest...)
		prefs.TimePreferences = append([]building.TimePreference(nil), user.TimePreferences...)
	}
	return prefs
}

// ClampThreshold bounds a relevance threshold to the 0-100 score scale.
func ClampThreshold(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoringProfile overlays the stored interests onto the user's fixed profile
// facts, yielding the profile the relevance engine should score against.
func (p *Preferences) ScoringProfile(user *building.User) *building.User {
	profile := *user
	profile.FacilitiesOfInterest = append([]string(nil), p.FacilitiesOfInterest...)
	profile.TimePreferences = append([]building.TimePreference(nil), p.TimePreferences...)
	return &profile
}
