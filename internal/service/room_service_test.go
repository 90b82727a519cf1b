package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type stubRoomRepo struct {
	rooms    []models.Room
	statuses []models.RoomStatus

	lastMinCapacity *int
}

func (s *stubRoomRepo) List(_ context.Context, _, _ int) ([]models.Room, int, error) {
	return s.rooms, len(s.rooms), nil
}

func (s *stubRoomRepo) FindByID(_ context.Context, id string) (*models.Room, error) {
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			return &s.rooms[i], nil
		}
	}
	return nil, errors.New("sql: no rows in result set")
}

func (s *stubRoomRepo) ListFree(_ context.Context, _, _, _ string, minCapacity *int) ([]models.Room, error) {
	s.lastMinCapacity = minCapacity
	return s.rooms, nil
}

func (s *stubRoomRepo) StatusAt(_ context.Context, _, _ string) ([]models.RoomStatus, error) {
	return s.statuses, nil
}

func TestFreeSlotsPassesCapacityFilter(t *testing.T) {
	repo := &stubRoomRepo{rooms: []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}}
	svc := NewRoomService(repo, &stubBookingLister{}, nil, nil)

	minCapacity := 40
	resp, err := svc.FreeSlots(context.Background(), dto.FreeSlotRequest{
		Date: "2025-11-12", StartTime: "10:00", EndTime: "12:30", MinCapacity: &minCapacity,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalAvailable)
	require.NotNil(t, repo.lastMinCapacity)
	assert.Equal(t, 40, *repo.lastMinCapacity)
}

func TestFreeSlotsEmptyResultIsNotAnError(t *testing.T) {
	svc := NewRoomService(&stubRoomRepo{}, &stubBookingLister{}, nil, nil)

	resp, err := svc.FreeSlots(context.Background(), dto.FreeSlotRequest{
		Date: "2025-11-12", StartTime: "10:00", EndTime: "12:30",
	})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalAvailable)
}

func TestFreeSlotsRejectsInvertedTimes(t *testing.T) {
	svc := NewRoomService(&stubRoomRepo{}, &stubBookingLister{}, nil, nil)

	_, err := svc.FreeSlots(context.Background(), dto.FreeSlotRequest{
		Date: "2025-11-12", StartTime: "12:30", EndTime: "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestStatusSummarisesOccupancy(t *testing.T) {
	repo := &stubRoomRepo{statuses: []models.RoomStatus{
		{Room: models.Room{ID: "room-1"}, Status: "occupied", CurrentEvent: &models.CurrentEvent{CourseName: "Databases"}},
		{Room: models.Room{ID: "room-2"}, Status: "available"},
		{Room: models.Room{ID: "room-3"}, Status: "available"},
	}}
	svc := NewRoomService(repo, &stubBookingLister{}, nil, nil)

	resp, err := svc.Status(context.Background(), "2025-11-12", "11:00")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Summary.TotalRooms)
	assert.Equal(t, 1, resp.Summary.OccupiedRooms)
	assert.Equal(t, 2, resp.Summary.AvailableRooms)
}

func TestRoomScheduleUnknownRoom(t *testing.T) {
	svc := NewRoomService(&stubRoomRepo{}, &stubBookingLister{}, nil, nil)

	_, err := svc.Schedule(context.Background(), "missing", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestRoomScheduleReturnsBookings(t *testing.T) {
	repo := &stubRoomRepo{rooms: []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}}
	bookings := &stubBookingLister{bookings: map[string][]models.RoomBooking{
		"room-1": {{EventDate: "2025-11-12", StartTime: "10:00:00", EndTime: "12:30:00", CourseName: "Databases"}},
	}}
	svc := NewRoomService(repo, bookings, nil, nil)

	result, err := svc.Schedule(context.Background(), "room-1", "2025-11-10", "2025-11-16")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Databases", result[0].CourseName)
}
