package relevance

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights defines the point contribution of each scoring rule.
// All values are integer points on the 0-100 relevance scale.
type Weights struct {
	FloorExact       int `json:"floor_exact"`       // Event affects the resident's own floor (default: 40)
	FloorNearby      int `json:"floor_nearby"`      // Event affects a floor within 2 of the resident's (default: 20)
	Facility         int `json:"facility"`          // Event touches a facility the resident uses (default: 30)
	TimeOfDay        int `json:"time_of_day"`       // Working hours overlap a preferred time window (default: 15)
	HighNoise        int `json:"high_noise"`        // High expected noise (default: 10)
	AccessRestricted int `json:"access_restricted"` // Event restricts access (default: 5)
	InProgress       int `json:"in_progress"`       // Event is currently in progress (default: 15)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight overrides
}

// DefaultWeights returns the default rule weights.
//
// The defaults favor physical proximity first (your floor dominates), then
// facility habits, then timing and nuisance signals:
//
//	floor exact 40 > facility 30 > floor nearby 20 > time-of-day 15 =
//	in-progress 15 > high noise 10 > access restricted 5
//
// The maximum reachable sum (nearby floor path) stays within the 0-100
// scale; the exact-floor path can exceed it and is clamped.
func DefaultWeights() *Weights {
	return &Weights{
		FloorExact:       40,
		FloorNearby:      20,
		Facility:         30,
		TimeOfDay:        15,
		HighNoise:        10,
		AccessRestricted: 5,
		InProgress:       15,
	}
}

// LoadCalibration loads rule weights from a JSON calibration file.
// Non-zero values in the file override the defaults, so partial
// configurations degrade gracefully. On any error the defaults are
// returned alongside the error so callers can keep running.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read relevance calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse relevance calibration, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights over base weights.
// Only non-zero override values are applied.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base
	if override.FloorExact != 0 {
		result.FloorExact = override.FloorExact
	}
	if override.FloorNearby != 0 {
		result.FloorNearby = override.FloorNearby
	}
	if override.Facility != 0 {
		result.Facility = override.Facility
	}
	if override.TimeOfDay != 0 {
		result.TimeOfDay = override.TimeOfDay
	}
	if override.HighNoise != 0 {
		result.HighNoise = override.HighNoise
	}
	if override.AccessRestricted != 0 {
		result.AccessRestricted = override.AccessRestricted
	}
	if override.InProgress != 0 {
		result.InProgress = override.InProgress
	}
	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	fields := []struct {
		name      string
		def, load int
	}{
		{"floor_exact", defaults.FloorExact, loaded.FloorExact},
		{"floor_nearby", defaults.FloorNearby, loaded.FloorNearby},
		{"facility", defaults.Facility, loaded.Facility},
		{"time_of_day", defaults.TimeOfDay, loaded.TimeOfDay},
		{"high_noise", defaults.HighNoise, loaded.HighNoise},
		{"access_restricted", defaults.AccessRestricted, loaded.AccessRestricted},
		{"in_progress", defaults.InProgress, loaded.InProgress},
	}
	for _, f := range fields {
		if f.load != f.def {
			overrides = append(overrides, fmt.Sprintf("%s: %d -> %d", f.name, f.def, f.load))
		}
	}

	if len(overrides) > 0 {
		slog.Info("loaded relevance calibration with overrides", "overrides", overrides)
	} else {
		slog.Info("loaded relevance calibration (using all defaults)")
	}
}
