package models

import "time"

// ClassSchedule is the recurring weekly template for a course: one active
// row per course per semester. DayOfWeek is ISO 8601 (1=Monday .. 7=Sunday).
type ClassSchedule struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	RoomID       *string   `db:"room_id" json:"room_id,omitempty"`
	LecturerName *string   `db:"lecturer_name" json:"lecturer_name,omitempty"`
	Semester     *string   `db:"semester" json:"semester,omitempty"`
	AcademicYear *string   `db:"academic_year" json:"academic_year,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EventStatus is the lifecycle state of a schedule event.
type EventStatus string

const (
	// StatusDefault marks an event seeded from the recurring template.
	StatusDefault EventStatus = "default"
	// StatusScheduled marks an event placed directly by staff tooling.
	StatusScheduled EventStatus = "scheduled"
	// StatusUpdate marks an event created by a reschedule.
	StatusUpdate EventStatus = "update"
	// StatusReplaced marks an event superseded by a later reschedule.
	StatusReplaced EventStatus = "replaced"
	// StatusCancelled marks an explicitly cancelled event.
	StatusCancelled EventStatus = "cancelled"
)

// EventStatusValues lists every status, in lifecycle order.
var EventStatusValues = []EventStatus{StatusDefault, StatusScheduled, StatusUpdate, StatusReplaced, StatusCancelled}

// IsLive reports whether the event still occupies its room and week.
// Replaced and cancelled rows are history only.
func (s EventStatus) IsLive() bool {
	return s != StatusReplaced && s != StatusCancelled
}

// CanTransitionTo reports whether the status change is allowed. Live events
// may be replaced or cancelled; replaced and cancelled are terminal.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	if !s.IsLive() {
		return false
	}
	return next == StatusReplaced || next == StatusCancelled
}

// ScheduleEvent is a concrete dated occurrence of a course. Superseded rows
// flip to replaced rather than being deleted, preserving the audit trail
// through PreviousEventID.
type ScheduleEvent struct {
	ID              string      `db:"id" json:"id"`
	CourseID        string      `db:"course_id" json:"course_id"`
	RoomID          *string     `db:"room_id" json:"room_id,omitempty"`
	EventDate       string      `db:"event_date" json:"event_date"`
	StartTime       string      `db:"start_time" json:"start_time"`
	EndTime         string      `db:"end_time" json:"end_time"`
	Status          EventStatus `db:"status" json:"status"`
	AcademicWeek    int         `db:"academic_week" json:"academic_week"`
	MeetingNumber   int         `db:"meeting_number" json:"meeting_number"`
	ChangedBy       *string     `db:"changed_by" json:"changed_by,omitempty"`
	PreviousEventID *string     `db:"previous_event_id" json:"previous_event_id,omitempty"`
	ChangeReason    *string     `db:"change_reason" json:"change_reason,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// RoomBooking is the slice of a schedule event the conflict logic needs.
type RoomBooking struct {
	EventDate  string `db:"event_date"`
	StartTime  string `db:"start_time"`
	EndTime    string `db:"end_time"`
	CourseName string `db:"course_name"`
}

// RoomConflictError reports a rejected booking, naming the course that
// already holds the slot so the caller can resolve manually.
type RoomConflictError struct {
	RoomID            string `json:"room_id"`
	EventDate         string `json:"event_date"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	ConflictingCourse string `json:"conflicting_course"`
}

// Error implements the error interface.
func (e *RoomConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "room is already booked by " + e.ConflictingCourse
}

// HistoryEntry is one row of a course's schedule audit trail, including
// replaced events and a snapshot of what each change superseded.
type HistoryEntry struct {
	ID                string      `db:"id" json:"id"`
	EventDate         string      `db:"event_date" json:"event_date"`
	StartTime         string      `db:"start_time" json:"start_time"`
	EndTime           string      `db:"end_time" json:"end_time"`
	Status            EventStatus `db:"status" json:"status"`
	AcademicWeek      int         `db:"academic_week" json:"academic_week"`
	MeetingNumber     int         `db:"meeting_number" json:"meeting_number"`
	ChangeReason      *string     `db:"change_reason" json:"change_reason,omitempty"`
	RoomName          *string     `db:"room_name" json:"room_name,omitempty"`
	ChangedByName     *string     `db:"changed_by_name" json:"changed_by_name,omitempty"`
	PreviousEventDate *string     `db:"previous_event_date" json:"previous_event_date,omitempty"`
	PreviousStartTime *string     `db:"previous_start_time" json:"previous_start_time,omitempty"`
	PreviousEndTime   *string     `db:"previous_end_time" json:"previous_end_time,omitempty"`
	PreviousRoomName  *string     `db:"previous_room_name" json:"previous_room_name,omitempty"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
}
