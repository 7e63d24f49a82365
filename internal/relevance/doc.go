// Package relevance scores construction events against a resident's profile
// and derives the filtered event views shown on the dashboard.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := relevance.LoadCalibration("configs/relevance.calibration.json")
//	if err != nil {
//		slog.Warn("using default weights", "error", err)
//	}
//
//	// Score every event for a resident
//	scores := relevance.CalculateScores(user, events, weights)
//
//	// Derive the personalized subset above the resident's threshold
//	personal := relevance.PersonalizedEvents(user, events, prefs.MinRelevanceScore, weights)
//
//	// Live schedule views take an explicit reference time
//	now := time.Now()
//	ongoing := relevance.OngoingEvents(events, now)
//	upcoming := relevance.UpcomingEvents(events, now)
//	soon := relevance.EventsInNextDays(events, now, 7)
//
// Scoring:
//
// Each event is scored independently by summing fixed-weight rule
// contributions (floor match, facility interest, time-of-day overlap, noise,
// access restriction, in-progress boost), clamped to [0, 100]. Every rule
// that fires appends one human-readable reason, in rule order, so the UI can
// explain why an event was surfaced. All functions are pure and total:
// missing or malformed optional fields make a rule skip, never fail.
//
// Calibration:
//
// Rule weights can be tuned at deploy time via a JSON calibration file
// loaded at startup; non-zero values override the defaults. Passing nil
// weights to the scoring functions uses the defaults, which reproduce the
// portal's documented behavior exactly.
package relevance
