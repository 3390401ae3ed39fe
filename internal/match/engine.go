// Package match ranks rooms against extracted constraints.
//
// Find is a pure function: it never mutates the inventory and keeps no state
// between calls. Its decision steps run in a fixed order and each can end the
// search early:
//
//	feature filter -> oversized fallback -> capacity filter -> scoring -> classification
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

// MaxAlternatives bounds the runner-ups attached to a result.
const MaxAlternatives = 3

type candidate struct {
	room  model.Room
	slots []int
}

// Find selects the best room for c out of rooms.
func Find(c model.Constraints, rooms []model.Room) model.Result {
	required := canonicalRequirements(c.Requirements)
	usable := sanitize(rooms)

	reqMinutes, hasTime := 0, false
	if c.HasTime() {
		reqMinutes, hasTime = model.ParseClock(c.Time)
	}
	if !hasTime {
		c.Time = ""
	}

	withFeatures := make([]candidate, 0, len(usable))
	for _, r := range usable {
		if r.room.HasFeatures(required) {
			withFeatures = append(withFeatures, r)
		}
	}
	if len(withFeatures) == 0 {
		return model.Result{MatchType: model.MatchNone, Explanation: missingFeatures(required, usable)}
	}

	largest := withFeatures[0]
	for _, r := range withFeatures[1:] {
		if r.room.Capacity > largest.room.Capacity {
			largest = r
		}
	}
	if c.HasCapacity() && *c.Capacity > largest.room.Capacity {
		return oversized(c, reqMinutes, largest)
	}

	fitting := withFeatures
	if c.HasCapacity() {
		fitting = make([]candidate, 0, len(withFeatures))
		for _, r := range withFeatures {
			if r.room.Capacity >= *c.Capacity {
				fitting = append(fitting, r)
			}
		}
	}
	if len(fitting) == 0 {
		return model.Result{
			MatchType:   model.MatchNone,
			Explanation: "No rooms meet your requested capacity with the selected features.",
		}
	}

	ranked := make([]scored, len(fitting))
	for i, r := range fitting {
		ranked[i] = score(c, reqMinutes, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	best := ranked[0]
	room := best.room
	bestScore := best.score
	result := model.Result{
		MatchType:     model.MatchHeuristic,
		Room:          &room,
		Score:         &bestScore,
		SuggestedSlot: best.slot,
	}
	if isExact(c, reqMinutes, best, required) {
		result.MatchType = model.MatchExact
		result.Explanation = "Exact match found: " + room.Name + at(c.Time) + "."
	} else {
		result.Explanation = fmt.Sprintf("Best scored room is %s with %d%% match%s.", room.Name, best.score, at(best.slot))
	}

	for _, alt := range ranked[1:min(len(ranked), MaxAlternatives+1)] {
		result.Alternatives = append(result.Alternatives, model.Alternative{
			Room:          alt.room,
			Score:         alt.score,
			SuggestedSlot: alt.slot,
		})
	}
	return result
}

// sanitize drops rooms with a non-positive capacity and parses each room's
// slots, skipping malformed ones, so a bad record cannot fail a match.
func sanitize(rooms []model.Room) []candidate {
	out := make([]candidate, 0, len(rooms))
	for _, r := range rooms {
		if r.Capacity <= 0 {
			continue
		}
		slots := make([]int, 0, len(r.AvailableSlots))
		for _, s := range r.AvailableSlots {
			if minutes, ok := model.ParseClock(s); ok {
				slots = append(slots, minutes)
			}
		}
		out = append(out, candidate{room: r, slots: slots})
	}
	return out
}

func canonicalRequirements(requirements []string) []string {
	seen := make(map[string]struct{}, len(requirements))
	out := make([]string, 0, len(requirements))
	for _, f := range requirements {
		c := model.CanonicalFeature(f)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func oversized(c model.Constraints, reqMinutes int, largest candidate) model.Result {
	s := score(c, reqMinutes, largest)
	slot := s.slot
	if !c.HasTime() && len(largest.slots) > 0 {
		slot = model.FormatClock(largest.slots[0])
	}
	room := largest.room
	return model.Result{
		MatchType:     model.MatchHeuristic,
		Room:          &room,
		Score:         &s.score,
		SuggestedSlot: slot,
		Explanation: fmt.Sprintf(
			"Requested capacity %d exceeds available capacity. Showing the largest available room: %s (%d seats)%s.",
			*c.Capacity, room.Name, room.Capacity, at(slot),
		),
	}
}

func isExact(c model.Constraints, reqMinutes int, s scored, required []string) bool {
	if c.HasTime() && !containsSlot(s.slots, reqMinutes) {
		return false
	}
	if c.HasCapacity() && s.room.Capacity < *c.Capacity {
		return false
	}
	return s.room.HasFeatures(required)
}

func containsSlot(slots []int, minutes int) bool {
	for _, s := range slots {
		if s == minutes {
			return true
		}
	}
	return false
}

func missingFeatures(required []string, rooms []candidate) string {
	if len(rooms) == 0 && len(required) == 0 {
		return "No rooms are available."
	}

	var missing []string
	for _, f := range required {
		offered := false
		for _, r := range rooms {
			if r.room.HasFeatures([]string{f}) {
				offered = true
				break
			}
		}
		if !offered {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return "No rooms include the required features: " + readable(missing) + "."
	}
	return "No single room offers all of: " + readable(required) + "."
}

func readable(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ReplaceAll(t, "_", " ")
	}
	return strings.Join(out, ", ")
}

func at(clock string) string {
	if clock == "" {
		return ""
	}
	return " at " + model.To12Hour(clock)
}
