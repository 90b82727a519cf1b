package dto

import "github.com/edricrolandli/cssc-api/internal/models"

// RescheduleRequest is the payload for moving a class to a new room/time.
type RescheduleRequest struct {
	CourseID      string  `json:"courseId" validate:"required"`
	NewRoomID     *string `json:"newRoomId,omitempty"`
	NewDate       string  `json:"newDate" validate:"required"`
	NewStartTime  string  `json:"newStartTime" validate:"required"`
	NewEndTime    string  `json:"newEndTime" validate:"required"`
	WeekNumber    *int    `json:"weekNumber,omitempty"`
	MeetingNumber *int    `json:"meetingNumber,omitempty"`
	ChangeReason  *string `json:"changeReason,omitempty"`
}

// RescheduleResult returns the created event and the resolved numbering.
type RescheduleResult struct {
	Event         *models.ScheduleEvent `json:"event"`
	WeekNumber    int                   `json:"week_number"`
	MeetingNumber int                   `json:"meeting_number"`
}

// RoomRef is the room slice embedded in schedule occurrences.
type RoomRef struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
	Building *string `json:"building,omitempty"`
}

// Occurrence is one class meeting in the projected weekly schedule, drawn
// either from a dated event or from the recurring template.
type Occurrence struct {
	EventID      string   `json:"event_id,omitempty"`
	CourseID     string   `json:"course_id"`
	CourseCode   string   `json:"course_code"`
	CourseName   string   `json:"course_name"`
	LecturerName string   `json:"lecturer_name,omitempty"`
	Room         *RoomRef `json:"room,omitempty"`
	Date         string   `json:"date"`
	DayOfWeek    int      `json:"day_of_week"`
	DayName      string   `json:"day_name"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Time         string   `json:"time"`
	Source       string   `json:"source"`
}

// DateRange is the resolved window of a schedule query.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// WeekViewResponse groups occurrences by calendar day.
type WeekViewResponse struct {
	Events      map[string][]Occurrence `json:"events"`
	DateRange   DateRange               `json:"date_range"`
	TotalEvents int                     `json:"total_events"`
}

// TemplateEntry is one recurring-template row in the subscribed-courses view.
type TemplateEntry struct {
	ID           string  `db:"id" json:"id"`
	CourseID     string  `db:"course_id" json:"course_id"`
	CourseName   string  `db:"course_name" json:"course_name"`
	DayOfWeek    int     `db:"day_of_week" json:"day_of_week"`
	DayName      string  `db:"-" json:"day_name"`
	StartTime    string  `db:"start_time" json:"start_time"`
	EndTime      string  `db:"end_time" json:"end_time"`
	RoomCode     *string `db:"room_code" json:"room_code,omitempty"`
	LecturerName *string `db:"lecturer_name" json:"lecturer_name,omitempty"`
	Semester     *string `db:"semester" json:"semester,omitempty"`
	AcademicYear *string `db:"academic_year" json:"academic_year,omitempty"`
}

// CourseRef identifies the course a history listing belongs to.
type CourseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryResponse is the audit trail of a course's schedule events.
type HistoryResponse struct {
	Course  CourseRef             `json:"course"`
	History []models.HistoryEntry `json:"history"`
	Total   int                   `json:"total"`
}
