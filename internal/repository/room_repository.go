package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edricrolandli/cssc-api/internal/models"
)

// endedStatuses is the SQL exclusion list shared by every
// conflict-sensitive query: replaced and cancelled rows no longer occupy
// their slot.
const endedStatuses = `('replaced', 'cancelled')`

// RoomRepository provides read access to rooms and their occupancy.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns active rooms with pagination.
func (r *RoomRepository) List(ctx context.Context, page, size int) ([]models.Room, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, capacity, floor, building, active, created_at, updated_at
FROM rooms WHERE active = TRUE ORDER BY name LIMIT %d OFFSET %d`, size, offset)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM rooms WHERE active = TRUE`); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}
	return rooms, total, nil
}

// ListActive returns every active room ordered by building then name.
func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, floor, building, active, created_at, updated_at
FROM rooms WHERE active = TRUE ORDER BY building, name`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads an active room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, name, capacity, floor, building, active, created_at, updated_at
FROM rooms WHERE id = $1 AND active = TRUE`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListFree returns active rooms with no live booking overlapping the
// half-open interval [start, end) on the given date, largest first.
func (r *RoomRepository) ListFree(ctx context.Context, date, start, end string, minCapacity *int) ([]models.Room, error) {
	query := `SELECT r.id, r.name, r.capacity, r.floor, r.building, r.active, r.created_at, r.updated_at
FROM rooms r
WHERE r.active = TRUE
AND NOT EXISTS (
    SELECT 1 FROM schedule_events se
    WHERE se.room_id = r.id
    AND se.event_date = $1
    AND se.status NOT IN ` + endedStatuses + `
    AND se.start_time < $3 AND se.end_time > $2
)`
	args := []interface{}{date, start, end}
	if minCapacity != nil {
		query += fmt.Sprintf(" AND r.capacity >= $%d", len(args)+1)
		args = append(args, *minCapacity)
	}
	query += " ORDER BY r.capacity DESC, r.name"

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list free rooms: %w", err)
	}
	return rooms, nil
}

type roomStatusRow struct {
	models.Room
	CourseID     *string `db:"course_id"`
	CourseCode   *string `db:"course_code"`
	CourseName   *string `db:"course_name"`
	LecturerName *string `db:"course_lecturer"`
	StartTime    *string `db:"event_start_time"`
	EndTime      *string `db:"event_end_time"`
}

// StatusAt reports every active room's occupancy at one instant, joined
// with the occupying event when present.
func (r *RoomRepository) StatusAt(ctx context.Context, date, at string) ([]models.RoomStatus, error) {
	const query = `SELECT r.id, r.name, r.capacity, r.floor, r.building, r.active, r.created_at, r.updated_at,
se.course_id, c.course_code, c.name AS course_name, c.lecturer_name AS course_lecturer,
se.start_time AS event_start_time, se.end_time AS event_end_time
FROM rooms r
LEFT JOIN schedule_events se ON se.room_id = r.id
    AND se.event_date = $1
    AND se.status NOT IN ` + endedStatuses + `
    AND se.start_time <= $2 AND se.end_time > $2
LEFT JOIN courses c ON c.id = se.course_id
WHERE r.active = TRUE
ORDER BY r.name`

	var rows []roomStatusRow
	if err := r.db.SelectContext(ctx, &rows, query, date, at); err != nil {
		return nil, fmt.Errorf("room status: %w", err)
	}

	statuses := make([]models.RoomStatus, 0, len(rows))
	for _, row := range rows {
		status := models.RoomStatus{Room: row.Room, Status: "available"}
		if row.CourseID != nil {
			status.Status = "occupied"
			current := &models.CurrentEvent{CourseID: *row.CourseID}
			if row.CourseCode != nil {
				current.CourseCode = *row.CourseCode
			}
			if row.CourseName != nil {
				current.CourseName = *row.CourseName
			}
			if row.LecturerName != nil {
				current.LecturerName = *row.LecturerName
			}
			if row.StartTime != nil {
				current.StartTime = *row.StartTime
			}
			if row.EndTime != nil {
				current.EndTime = *row.EndTime
			}
			status.CurrentEvent = current
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
