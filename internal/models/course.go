package models

import "time"

// Course is the canonical recurring class. The lecturer_name column here is
// the source of truth; the copy on class_schedules is a display cache
// refreshed on write.
type Course struct {
	ID           string    `db:"id" json:"id"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	Name         string    `db:"name" json:"name"`
	LecturerName *string   `db:"lecturer_name" json:"lecturer_name,omitempty"`
	KomtingID    *string   `db:"komting_id" json:"komting_id,omitempty"`
	Semester     *string   `db:"semester" json:"semester,omitempty"`
	AcademicYear *string   `db:"academic_year" json:"academic_year,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseSubscription links a student to a course they follow. Subscriptions
// drive which courses appear in the projected weekly schedule.
type CourseSubscription struct {
	UserID    string    `db:"user_id" json:"user_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
