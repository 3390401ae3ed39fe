// Package model holds the data shapes shared by the extractor, the matching
// engine and the transports around them.
package model

import (
	"regexp"
	"strings"
)

// Room is one bookable meeting room. The core treats it as read-only.
type Room struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Capacity       int      `json:"capacity" yaml:"capacity"`
	Features       []string `json:"features" yaml:"features"`
	AvailableSlots []string `json:"availableSlots" yaml:"availableSlots"`
}

// Constraints is what the extractor pulls out of a request text.
type Constraints struct {
	// Capacity is nil when no headcount was mentioned.
	Capacity *int `json:"capacity,omitempty"`
	// Time is an HH:MM string, empty when no time was mentioned.
	Time         string   `json:"time,omitempty"`
	Requirements []string `json:"requirements"`
}

func (c Constraints) HasCapacity() bool { return c.Capacity != nil }

func (c Constraints) HasTime() bool { return c.Time != "" }

// MatchType classifies a Result.
type MatchType string

const (
	MatchExact     MatchType = "EXACT"
	MatchHeuristic MatchType = "HEURISTIC"
	MatchNone      MatchType = "NONE"
)

// Alternative is a runner-up room with its own score.
type Alternative struct {
	Room          Room   `json:"room"`
	Score         int    `json:"score"`
	SuggestedSlot string `json:"suggestedSlot,omitempty"`
}

// Result is the outcome of matching one request against an inventory.
type Result struct {
	MatchType     MatchType     `json:"matchType"`
	Room          *Room         `json:"room,omitempty"`
	Score         *int          `json:"score,omitempty"`
	SuggestedSlot string        `json:"suggestedSlot,omitempty"`
	Explanation   string        `json:"explanation"`
	Alternatives  []Alternative `json:"alternatives,omitempty"`
}

var featureSeparators = regexp.MustCompile(`[\s_-]+`)

// CanonicalFeature folds a feature tag into its comparable form:
// "Conference Phone", "conference-phone" and "conference_phone" are all
// "conference_phone".
func CanonicalFeature(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	return strings.Trim(featureSeparators.ReplaceAllString(tag, "_"), "_")
}

// FeatureSet returns the canonical features of the room.
func (r Room) FeatureSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Features))
	for _, f := range r.Features {
		if c := CanonicalFeature(f); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

// HasFeatures reports whether the room offers every canonical tag in required.
func (r Room) HasFeatures(required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := r.FeatureSet()
	for _, f := range required {
		if _, ok := set[CanonicalFeature(f)]; !ok {
			return false
		}
	}
	return true
}
