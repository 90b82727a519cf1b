package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassScheduleRepoMock(t *testing.T) (*ClassScheduleRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewClassScheduleRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestListForUserJoinsSubscriptions(t *testing.T) {
	repo, mock := newClassScheduleRepoMock(t)

	rows := sqlmock.NewRows([]string{
		"id", "course_id", "course_name", "day_of_week",
		"start_time", "end_time", "room_code", "lecturer_name", "semester", "academic_year",
	}).AddRow(
		"cs-1", "course-1", "Operating Systems", 3,
		"10:00:00", "12:30:00", "Lab 2", "Dr. Tarigan", "Ganjil", "2025/2026",
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_subscriptions csub")).
		WithArgs("user-1").
		WillReturnRows(rows)

	entries, err := repo.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].DayOfWeek)
	assert.Equal(t, "Operating Systems", entries[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectAllOrdersByDayThenStart(t *testing.T) {
	repo, mock := newClassScheduleRepoMock(t)

	rows := sqlmock.NewRows([]string{
		"course_id", "course_code", "course_name", "lecturer_name",
		"day_of_week", "start_time", "end_time",
		"room_id", "room_name", "room_capacity", "room_building",
	}).AddRow(
		"course-1", "CS301", "Operating Systems", "Dr. Tarigan",
		1, "08:00:00", "10:30:00",
		"room-1", "Lab 2", 40, "D",
	).AddRow(
		"course-2", "CS420", "Databases", "Dr. Siregar",
		1, "13:00:00", "15:30:00",
		nil, nil, nil, nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY cs.day_of_week, cs.start_time")).
		WillReturnRows(rows)

	occurrences, err := repo.ProjectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, occurrences, 2)
	assert.Equal(t, "CS301", occurrences[0].CourseCode)
	assert.Nil(t, occurrences[1].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
