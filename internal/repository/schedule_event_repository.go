package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edricrolandli/cssc-api/internal/models"
)

// ScheduleEventRepository owns the schedule_events table. All status
// mutations and inserts go through here; other components read only.
type ScheduleEventRepository struct {
	db *sqlx.DB
}

// NewScheduleEventRepository creates a new schedule event repository.
func NewScheduleEventRepository(db *sqlx.DB) *ScheduleEventRepository {
	return &ScheduleEventRepository{db: db}
}

// BeginTx opens the transaction the reschedule engine runs in.
func (r *ScheduleEventRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reschedule tx: %w", err)
	}
	return tx, nil
}

func (r *ScheduleEventRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindConflict returns the course name of a live booking in the room that
// overlaps [start, end) on the date, ignoring the excluded course's own
// events. Rows are locked so concurrent reschedules of the same slot
// serialize on the database.
func (r *ScheduleEventRepository) FindConflict(ctx context.Context, exec sqlx.ExtContext, roomID, date, start, end, excludeCourseID string) (string, bool, error) {
	const query = `SELECT c.name FROM schedule_events se
JOIN courses c ON c.id = se.course_id
WHERE se.room_id = $1 AND se.event_date = $2
AND se.status NOT IN ` + endedStatuses + `
AND se.start_time < $4 AND se.end_time > $3
AND se.course_id != $5
ORDER BY se.start_time
LIMIT 1
FOR UPDATE OF se`

	var courseName string
	err := sqlx.GetContext(ctx, r.exec(exec), &courseName, query, roomID, date, start, end, excludeCourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find room conflict: %w", err)
	}
	return courseName, true, nil
}

// CountLiveMeetings counts the course's events still counting toward its
// meeting sequence.
func (r *ScheduleEventRepository) CountLiveMeetings(ctx context.Context, exec sqlx.ExtContext, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM schedule_events
WHERE course_id = $1 AND status NOT IN ` + endedStatuses
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count live meetings: %w", err)
	}
	return count, nil
}

// FindLiveEventID returns the id of the live event for (course, week), if
// any, locking the row for the duration of the transaction.
func (r *ScheduleEventRepository) FindLiveEventID(ctx context.Context, exec sqlx.ExtContext, courseID string, academicWeek int) (*string, error) {
	const query = `SELECT id FROM schedule_events
WHERE course_id = $1 AND academic_week = $2 AND status NOT IN ` + endedStatuses + `
ORDER BY created_at DESC
LIMIT 1
FOR UPDATE`
	var id string
	err := sqlx.GetContext(ctx, r.exec(exec), &id, query, courseID, academicWeek)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find live event: %w", err)
	}
	return &id, nil
}

// replaceableStatuses is the SQL IN list of statuses the lifecycle allows
// to move to replaced, derived from the transition table so the predicate
// cannot drift from it.
var replaceableStatuses = func() string {
	var quoted []string
	for _, s := range models.EventStatusValues {
		if s.CanTransitionTo(models.StatusReplaced) {
			quoted = append(quoted, "'"+string(s)+"'")
		}
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}()

// MarkReplaced flips every event for (course, week) whose status may
// transition to replaced. History is preserved; nothing is deleted.
func (r *ScheduleEventRepository) MarkReplaced(ctx context.Context, exec sqlx.ExtContext, courseID string, academicWeek int) error {
	query := `UPDATE schedule_events SET status = 'replaced'
WHERE course_id = $1 AND academic_week = $2 AND status IN ` + replaceableStatuses
	if _, err := r.exec(exec).ExecContext(ctx, query, courseID, academicWeek); err != nil {
		return fmt.Errorf("mark events replaced: %w", err)
	}
	return nil
}

// Insert stores a new schedule event. Events are born live; terminal
// statuses are only ever reached through a transition.
func (r *ScheduleEventRepository) Insert(ctx context.Context, exec sqlx.ExtContext, event *models.ScheduleEvent) error {
	if !event.Status.IsLive() {
		return fmt.Errorf("insert schedule event: status %q is terminal", event.Status)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedule_events
(id, course_id, room_id, event_date, start_time, end_time, status, academic_week, meeting_number, changed_by, previous_event_id, change_reason, created_at)
VALUES (:id, :course_id, :room_id, :event_date, :start_time, :end_time, :status, :academic_week, :meeting_number, :changed_by, :previous_event_id, :change_reason, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, event); err != nil {
		return fmt.Errorf("insert schedule event: %w", err)
	}
	return nil
}

// ListBookingsForRoom fetches every live booking for one room across a day
// range in a single query, for the availability scanner's prefetch.
func (r *ScheduleEventRepository) ListBookingsForRoom(ctx context.Context, roomID, fromDate, toDate string) ([]models.RoomBooking, error) {
	const query = `SELECT se.event_date, se.start_time, se.end_time, c.name AS course_name
FROM schedule_events se
JOIN courses c ON c.id = se.course_id
WHERE se.room_id = $1
AND se.event_date BETWEEN $2 AND $3
AND se.status NOT IN ` + endedStatuses + `
ORDER BY se.event_date, se.start_time`

	var bookings []models.RoomBooking
	if err := r.db.SelectContext(ctx, &bookings, query, roomID, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("list room bookings: %w", err)
	}
	return bookings, nil
}

const eventOccurrenceColumns = `se.id AS event_id, c.id AS course_id, c.course_code, c.name AS course_name, c.lecturer_name,
se.event_date, se.start_time, se.end_time, se.status, se.academic_week,
r.id AS room_id, r.name AS room_name, r.capacity AS room_capacity, r.building AS room_building`

// ListForUser returns a subscribed user's events in a date range,
// including cancelled rows so the projector can suppress that week's
// template occurrence.
func (r *ScheduleEventRepository) ListForUser(ctx context.Context, userID, fromDate, toDate string) ([]models.EventOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s
FROM schedule_events se
JOIN courses c ON c.id = se.course_id AND c.active = TRUE
LEFT JOIN rooms r ON r.id = se.room_id
WHERE se.event_date BETWEEN $1 AND $2
AND se.status != 'replaced'
AND EXISTS (SELECT 1 FROM course_subscriptions csub WHERE csub.user_id = $3 AND csub.course_id = c.id)
ORDER BY se.event_date, se.start_time`, eventOccurrenceColumns)

	var occurrences []models.EventOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, fromDate, toDate, userID); err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	return occurrences, nil
}

// ListAll returns every course's events in a date range for elevated
// callers.
func (r *ScheduleEventRepository) ListAll(ctx context.Context, fromDate, toDate string) ([]models.EventOccurrence, error) {
	query := fmt.Sprintf(`SELECT %s
FROM schedule_events se
JOIN courses c ON c.id = se.course_id AND c.active = TRUE
LEFT JOIN rooms r ON r.id = se.room_id
WHERE se.event_date BETWEEN $1 AND $2
AND se.status != 'replaced'
ORDER BY se.event_date, se.start_time`, eventOccurrenceColumns)

	var occurrences []models.EventOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	return occurrences, nil
}

// ListHistory returns the full audit trail for a course, newest first,
// with each event's room and a snapshot of the event it superseded.
func (r *ScheduleEventRepository) ListHistory(ctx context.Context, courseID string) ([]models.HistoryEntry, error) {
	const query = `SELECT se.id, se.event_date, se.start_time, se.end_time, se.status, se.academic_week,
se.meeting_number, se.change_reason, se.created_at,
r.name AS room_name, u.full_name AS changed_by_name,
pe.event_date AS previous_event_date, pe.start_time AS previous_start_time,
pe.end_time AS previous_end_time, pr.name AS previous_room_name
FROM schedule_events se
LEFT JOIN rooms r ON r.id = se.room_id
LEFT JOIN users u ON u.id = se.changed_by
LEFT JOIN schedule_events pe ON pe.id = se.previous_event_id
LEFT JOIN rooms pr ON pr.id = pe.room_id
WHERE se.course_id = $1
ORDER BY se.created_at DESC`

	var entries []models.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("list schedule history: %w", err)
	}
	return entries, nil
}
