package models

// TemplateOccurrence is a recurring-template row joined with its course and
// room, as consumed by the schedule projector.
type TemplateOccurrence struct {
	CourseID     string  `db:"course_id"`
	CourseCode   string  `db:"course_code"`
	CourseName   string  `db:"course_name"`
	LecturerName *string `db:"lecturer_name"`
	DayOfWeek    int     `db:"day_of_week"`
	StartTime    string  `db:"start_time"`
	EndTime      string  `db:"end_time"`
	RoomID       *string `db:"room_id"`
	RoomName     *string `db:"room_name"`
	RoomCapacity *int    `db:"room_capacity"`
	RoomBuilding *string `db:"room_building"`
}

// EventOccurrence is a dated schedule event joined with its course and
// room. Cancelled events are included so the projector can suppress the
// template for that week.
type EventOccurrence struct {
	EventID      string      `db:"event_id"`
	CourseID     string      `db:"course_id"`
	CourseCode   string      `db:"course_code"`
	CourseName   string      `db:"course_name"`
	LecturerName *string     `db:"lecturer_name"`
	EventDate    string      `db:"event_date"`
	StartTime    string      `db:"start_time"`
	EndTime      string      `db:"end_time"`
	Status       EventStatus `db:"status"`
	AcademicWeek int         `db:"academic_week"`
	RoomID       *string     `db:"room_id"`
	RoomName     *string     `db:"room_name"`
	RoomCapacity *int        `db:"room_capacity"`
	RoomBuilding *string     `db:"room_building"`
}
