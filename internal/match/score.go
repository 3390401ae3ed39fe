package match

import (
	"math"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

const (
	capacityWeight = 0.5
	timeWeight     = 0.3
	featureWeight  = 0.2

	capacityPenalty = 6  // points per seat of mismatch
	timePenalty     = 10 // points per started 15-minute block
	timeBlock       = 15 // minutes
)

// CapacityScore rates how closely a room's size fits the requested headcount.
func CapacityScore(roomCapacity, requested int) int {
	diff := roomCapacity - requested
	if diff < 0 {
		diff = -diff
	}
	return clamp(100 - diff*capacityPenalty)
}

// TimeScore rates a slot distance in minutes.
func TimeScore(distance int) int {
	if distance < 0 {
		distance = -distance
	}
	return clamp(100 - (distance/timeBlock)*timePenalty)
}

// Composite blends the sub-scores with the 0.5/0.3/0.2 weighting.
func Composite(capacity, timeOfDay, features int) int {
	return int(math.Round(capacityWeight*float64(capacity) + timeWeight*float64(timeOfDay) + featureWeight*float64(features)))
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

type scored struct {
	room  model.Room
	slots []int // parsed, valid slots in inventory order
	score int
	slot  string
}

// closestSlot returns the slot nearest to target and its distance. The first
// slot wins ties; ok is false when the room has no slots.
func closestSlot(slots []int, target int) (slot, distance int, ok bool) {
	best := math.MaxInt
	for _, s := range slots {
		d := s - target
		if d < 0 {
			d = -d
		}
		if d < best {
			best, slot = d, s
		}
	}
	return slot, best, best != math.MaxInt
}

// score computes the composite score of c against one room, along with the
// slot that earned the time sub-score.
func score(c model.Constraints, reqMinutes int, r candidate) scored {
	capacity := 100
	if c.HasCapacity() {
		capacity = CapacityScore(r.room.Capacity, *c.Capacity)
	}

	timeOfDay := 100
	suggested := ""
	if c.HasTime() {
		timeOfDay = 0
		if slot, distance, ok := closestSlot(r.slots, reqMinutes); ok {
			timeOfDay = TimeScore(distance)
			suggested = model.FormatClock(slot)
		}
	}

	// Requirements are hard-filtered before scoring, so every survivor
	// satisfies all of them.
	features := 100

	return scored{
		room:  r.room,
		slots: r.slots,
		score: Composite(capacity, timeOfDay, features),
		slot:  suggested,
	}
}
