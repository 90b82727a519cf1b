package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edricrolandli/cssc-api/internal/models"
)

// CourseRepository provides read access to courses and ownership of the
// subscription table.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindActiveByID loads an active course by id.
func (r *CourseRepository) FindActiveByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, course_code, name, lecturer_name, komting_id, semester, academic_year, active, created_at
FROM courses WHERE id = $1 AND active = TRUE`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Subscribe records a user following a course. Repeat subscriptions are a
// no-op rather than an error.
func (r *CourseRepository) Subscribe(ctx context.Context, userID, courseID string) error {
	const query = `INSERT INTO course_subscriptions (user_id, course_id)
VALUES ($1, $2) ON CONFLICT (user_id, course_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID); err != nil {
		return fmt.Errorf("subscribe course: %w", err)
	}
	return nil
}

// Unsubscribe removes a subscription, reporting whether one existed.
func (r *CourseRepository) Unsubscribe(ctx context.Context, userID, courseID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM course_subscriptions WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("unsubscribe course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unsubscribe course: %w", err)
	}
	return affected > 0, nil
}

// IsSubscribed reports whether the user follows the course.
func (r *CourseRepository) IsSubscribed(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM course_subscriptions WHERE user_id = $1 AND course_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, courseID); err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return exists, nil
}
