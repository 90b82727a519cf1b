package models

import "time"

// Room is a bookable classroom. Rooms are soft-deleted via the active flag
// and never removed while schedule events reference them.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  *int      `db:"capacity" json:"capacity,omitempty"`
	Floor     *string   `db:"floor" json:"floor,omitempty"`
	Building  *string   `db:"building" json:"building,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomStatus describes a room's occupancy at a single instant.
type RoomStatus struct {
	Room
	Status       string        `json:"status"`
	CurrentEvent *CurrentEvent `json:"current_event,omitempty"`
}

// CurrentEvent is the booking occupying a room at the queried instant.
type CurrentEvent struct {
	CourseID     string `json:"course_id"`
	CourseCode   string `json:"course_code"`
	CourseName   string `json:"course_name"`
	LecturerName string `json:"lecturer_name,omitempty"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}
