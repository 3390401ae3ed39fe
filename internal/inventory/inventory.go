// Package inventory supplies the room list the matching engine runs against.
package inventory

import (
	"context"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

// Source yields a snapshot of the room inventory. Callers treat the returned
// slice as read-only.
type Source interface {
	Rooms(ctx context.Context) ([]model.Room, error)
}

// Static is a fixed in-memory inventory.
type Static []model.Room

func (s Static) Rooms(ctx context.Context) ([]model.Room, error) {
	out := make([]model.Room, len(s))
	copy(out, s)
	return out, nil
}

// DefaultRooms is the demo inventory used for seeding and local runs.
func DefaultRooms() []model.Room {
	return []model.Room{
		{
			ID:             "1",
			Name:           "Room A (Small)",
			Capacity:       4,
			Features:       []string{"whiteboard", "wifi"},
			AvailableSlots: []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"},
		},
		{
			ID:             "2",
			Name:           "Room B (Medium)",
			Capacity:       8,
			Features:       []string{"projector", "whiteboard", "wifi", "screen"},
			AvailableSlots: []string{"10:00", "13:00", "14:00"},
		},
		{
			ID:             "3",
			Name:           "Room C (Large)",
			Capacity:       20,
			Features:       []string{"projector", "video", "sound system", "wifi"},
			AvailableSlots: []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			ID:             "4",
			Name:           "Room D (Focus)",
			Capacity:       2,
			Features:       []string{"monitor", "wifi"},
			AvailableSlots: []string{"09:00", "10:30", "11:00"},
		},
		{
			ID:             "5",
			Name:           "Room E (Exec)",
			Capacity:       10,
			Features:       []string{"tv", "conference phone", "wifi", "mac adapter"},
			AvailableSlots: []string{"14:00", "15:00"},
		},
	}
}
