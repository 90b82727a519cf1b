package service

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/timegrid"
	"github.com/edricrolandli/cssc-api/pkg/config"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type stubEventStore struct {
	db *sqlx.DB

	conflictName  string
	conflictFound bool
	liveCount     int
	liveEventID   *string
	history       []models.HistoryEntry

	calls    []string
	inserted *models.ScheduleEvent
}

func (s *stubEventStore) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	s.calls = append(s.calls, "begin")
	return s.db.BeginTxx(ctx, nil)
}

func (s *stubEventStore) FindConflict(_ context.Context, _ sqlx.ExtContext, _, _, _, _, _ string) (string, bool, error) {
	s.calls = append(s.calls, "conflict")
	return s.conflictName, s.conflictFound, nil
}

func (s *stubEventStore) CountLiveMeetings(_ context.Context, _ sqlx.ExtContext, _ string) (int, error) {
	s.calls = append(s.calls, "count")
	return s.liveCount, nil
}

func (s *stubEventStore) FindLiveEventID(_ context.Context, _ sqlx.ExtContext, _ string, _ int) (*string, error) {
	s.calls = append(s.calls, "findLive")
	return s.liveEventID, nil
}

func (s *stubEventStore) MarkReplaced(_ context.Context, _ sqlx.ExtContext, _ string, _ int) error {
	s.calls = append(s.calls, "markReplaced")
	return nil
}

func (s *stubEventStore) Insert(_ context.Context, _ sqlx.ExtContext, event *models.ScheduleEvent) error {
	s.calls = append(s.calls, "insert")
	s.inserted = event
	return nil
}

func (s *stubEventStore) ListHistory(_ context.Context, _ string) ([]models.HistoryEntry, error) {
	return s.history, nil
}

type stubCourseStore struct {
	course *models.Course
}

func (s *stubCourseStore) FindActiveByID(_ context.Context, _ string) (*models.Course, error) {
	if s.course == nil {
		return nil, errors.New("sql: no rows in result set")
	}
	return s.course, nil
}

type stubRoomFinder struct {
	room *models.Room
}

func (s *stubRoomFinder) FindByID(_ context.Context, _ string) (*models.Room, error) {
	if s.room == nil {
		return nil, errors.New("sql: no rows in result set")
	}
	return s.room, nil
}

func semesterFixture() config.SemesterConfig {
	start, _ := timegrid.ParseDate("2025-08-25")
	end, _ := timegrid.ParseDate("2025-12-05")
	return config.SemesterConfig{
		StartDate:          start,
		EndDate:            end,
		DayStart:           "07:00",
		DayEnd:             "18:00",
		SlotMinutes:        30,
		MaxMeetings:        16,
		DefaultSlotMinutes: 150,
	}
}

func newRescheduleFixture(t *testing.T, events *stubEventStore) (*RescheduleService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	events.db = sqlx.NewDb(db, "postgres")

	courses := &stubCourseStore{course: &models.Course{ID: "course-1", Name: "Operating Systems", Active: true}}
	rooms := &stubRoomFinder{room: &models.Room{ID: "room-2", Name: "Lab 3", Active: true}}
	return NewRescheduleService(events, courses, rooms, nil, semesterFixture(), nil, nil), mock
}

func komtingClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-7", Role: models.RoleKomting}
}

func validRequest() dto.RescheduleRequest {
	roomID := "room-2"
	reason := "lecturer unavailable"
	return dto.RescheduleRequest{
		CourseID:     "course-1",
		NewRoomID:    &roomID,
		NewDate:      "2025-11-12",
		NewStartTime: "13:00",
		NewEndTime:   "15:30",
		ChangeReason: &reason,
	}
}

func TestRescheduleReplacesThenInsertsInOneTransaction(t *testing.T) {
	previousID := "event-old"
	events := &stubEventStore{liveCount: 11, liveEventID: &previousID}
	svc, mock := newRescheduleFixture(t, events)

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Reschedule(context.Background(), komtingClaims(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"begin", "conflict", "count", "findLive", "markReplaced", "insert"}, events.calls)
	assert.Equal(t, 12, result.WeekNumber, "2025-11-12 is week 12 from 2025-08-25")
	assert.Equal(t, 12, result.MeetingNumber)

	require.NotNil(t, events.inserted)
	assert.Equal(t, models.StatusUpdate, events.inserted.Status)
	require.NotNil(t, events.inserted.PreviousEventID)
	assert.Equal(t, "event-old", *events.inserted.PreviousEventID)
	require.NotNil(t, events.inserted.ChangedBy)
	assert.Equal(t, "user-7", *events.inserted.ChangedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleConflictAbortsWithOccupant(t *testing.T) {
	events := &stubEventStore{conflictFound: true, conflictName: "Databases"}
	svc, mock := newRescheduleFixture(t, events)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Reschedule(context.Background(), komtingClaims(), validRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Contains(t, appErr.Message, "Databases")

	var conflict *models.RoomConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Databases", conflict.ConflictingCourse)
	assert.Equal(t, "room-2", conflict.RoomID)

	assert.NotContains(t, events.calls, "markReplaced")
	assert.NotContains(t, events.calls, "insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleHonoursExplicitNumbers(t *testing.T) {
	events := &stubEventStore{}
	svc, mock := newRescheduleFixture(t, events)

	mock.ExpectBegin()
	mock.ExpectCommit()

	req := validRequest()
	week := 5
	meeting := 7
	req.WeekNumber = &week
	req.MeetingNumber = &meeting

	result, err := svc.Reschedule(context.Background(), komtingClaims(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, result.WeekNumber)
	assert.Equal(t, 7, result.MeetingNumber)
	assert.NotContains(t, events.calls, "count", "explicit meeting number skips derivation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRejectsDateOutsideSemester(t *testing.T) {
	events := &stubEventStore{}
	svc, _ := newRescheduleFixture(t, events)

	req := validRequest()
	req.NewDate = "2026-01-15"

	_, err := svc.Reschedule(context.Background(), komtingClaims(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Empty(t, events.calls, "validation failures must not open a transaction")
}

func TestRescheduleRejectsInvertedTimes(t *testing.T) {
	events := &stubEventStore{}
	svc, _ := newRescheduleFixture(t, events)

	req := validRequest()
	req.NewStartTime = "15:30"
	req.NewEndTime = "13:00"

	_, err := svc.Reschedule(context.Background(), komtingClaims(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestRescheduleRejectsMeetingBeyondCap(t *testing.T) {
	events := &stubEventStore{}
	svc, mock := newRescheduleFixture(t, events)

	mock.ExpectBegin()
	mock.ExpectRollback()

	req := validRequest()
	meeting := 17
	req.MeetingNumber = &meeting

	_, err := svc.Reschedule(context.Background(), komtingClaims(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.NotContains(t, events.calls, "insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleUnknownCourse(t *testing.T) {
	events := &stubEventStore{}
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	events.db = sqlx.NewDb(db, "postgres")

	svc := NewRescheduleService(events, &stubCourseStore{}, &stubRoomFinder{}, nil, semesterFixture(), nil, nil)

	_, rerr := svc.Reschedule(context.Background(), komtingClaims(), validRequest())
	require.Error(t, rerr)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(rerr).Status)
}

func TestHistoryRequiresKomtingOfCourse(t *testing.T) {
	komtingID := "user-7"
	courses := &stubCourseStore{course: &models.Course{ID: "course-1", Name: "Operating Systems", KomtingID: &komtingID, Active: true}}
	events := &stubEventStore{history: []models.HistoryEntry{{ID: "event-1", Status: models.StatusUpdate}}}
	svc := NewRescheduleService(events, courses, &stubRoomFinder{}, nil, semesterFixture(), nil, nil)

	_, err := svc.History(context.Background(), &models.JWTClaims{UserID: "user-9", Role: models.RoleStudent}, "course-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)

	resp, err := svc.History(context.Background(), komtingClaims(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Operating Systems", resp.Course.Name)

	resp, err = svc.History(context.Background(), &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}, "course-1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}
