package models

import "time"

// Room represents a teaching room. Capacity 0 means unconstrained.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	RoomType  string    `db:"room_type" json:"room_type"`
	RoomTag   string    `db:"room_tag" json:"room_tag"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Fits reports whether the room can hold a group of the given size.
func (r Room) Fits(groupSize int) bool {
	if groupSize <= 0 || r.Capacity <= 0 {
		return true
	}
	return r.Capacity >= groupSize
}
