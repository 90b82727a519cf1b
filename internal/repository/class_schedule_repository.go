package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
)

// ClassScheduleRepository reads the recurring weekly templates.
type ClassScheduleRepository struct {
	db *sqlx.DB
}

// NewClassScheduleRepository creates a new class schedule repository.
func NewClassScheduleRepository(db *sqlx.DB) *ClassScheduleRepository {
	return &ClassScheduleRepository{db: db}
}

const templateEntryColumns = `cs.id, c.id AS course_id, c.name AS course_name, cs.day_of_week,
cs.start_time, cs.end_time, r.name AS room_code, cs.lecturer_name, cs.semester, cs.academic_year`

// ListForUser returns the templates of the courses a user subscribes to,
// ordered by day then start time.
func (r *ClassScheduleRepository) ListForUser(ctx context.Context, userID string) ([]dto.TemplateEntry, error) {
	query := fmt.Sprintf(`SELECT %s
FROM course_subscriptions csub
JOIN courses c ON c.id = csub.course_id AND c.active = TRUE
JOIN class_schedules cs ON cs.course_id = c.id
LEFT JOIN rooms r ON r.id = cs.room_id
WHERE csub.user_id = $1
ORDER BY cs.day_of_week, cs.start_time`, templateEntryColumns)

	var entries []dto.TemplateEntry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list user templates: %w", err)
	}
	return entries, nil
}

// ListAll returns every active course's template.
func (r *ClassScheduleRepository) ListAll(ctx context.Context) ([]dto.TemplateEntry, error) {
	query := fmt.Sprintf(`SELECT %s
FROM class_schedules cs
JOIN courses c ON c.id = cs.course_id AND c.active = TRUE
LEFT JOIN rooms r ON r.id = cs.room_id
ORDER BY cs.day_of_week, cs.start_time`, templateEntryColumns)

	var entries []dto.TemplateEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list all templates: %w", err)
	}
	return entries, nil
}

const templateOccurrenceColumns = `c.id AS course_id, c.course_code, c.name AS course_name, cs.lecturer_name,
cs.day_of_week, cs.start_time, cs.end_time,
r.id AS room_id, r.name AS room_name, r.capacity AS room_capacity, r.building AS room_building`

// ProjectForUser returns the template occurrences feeding a subscribed
// user's weekly projection.
func (r *ClassScheduleRepository) ProjectForUser(ctx context.Context, userID string) ([]models.TemplateOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s
FROM course_subscriptions csub
JOIN courses c ON c.id = csub.course_id AND c.active = TRUE
JOIN class_schedules cs ON cs.course_id = c.id
LEFT JOIN rooms r ON r.id = cs.room_id
WHERE csub.user_id = $1
ORDER BY cs.day_of_week, cs.start_time`, templateOccurrenceColumns)

	var occurrences []models.TemplateOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, userID); err != nil {
		return nil, fmt.Errorf("project user templates: %w", err)
	}
	return occurrences, nil
}

// ProjectAll returns every active course's template occurrence, for
// elevated callers who see the full schedule.
func (r *ClassScheduleRepository) ProjectAll(ctx context.Context) ([]models.TemplateOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s
FROM class_schedules cs
JOIN courses c ON c.id = cs.course_id AND c.active = TRUE
LEFT JOIN rooms r ON r.id = cs.room_id
ORDER BY cs.day_of_week, cs.start_time`, templateOccurrenceColumns)

	var occurrences []models.TemplateOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query); err != nil {
		return nil, fmt.Errorf("project all templates: %w", err)
	}
	return occurrences, nil
}
