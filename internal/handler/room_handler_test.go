package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type roomQueriesMock struct {
	rooms      []models.Room
	getErr     error
	freeResp   *dto.FreeSlotResponse
	statusResp *dto.RoomStatusResponse
	lastFree   dto.FreeSlotRequest
}

func (m *roomQueriesMock) List(_ context.Context, page, size int) ([]models.Room, *models.Pagination, error) {
	return m.rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: len(m.rooms)}, nil
}

func (m *roomQueriesMock) Get(_ context.Context, _ string) (*models.Room, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &m.rooms[0], nil
}

func (m *roomQueriesMock) Schedule(_ context.Context, _, _, _ string) ([]models.RoomBooking, error) {
	return nil, nil
}

func (m *roomQueriesMock) FreeSlots(_ context.Context, req dto.FreeSlotRequest) (*dto.FreeSlotResponse, error) {
	m.lastFree = req
	return m.freeResp, nil
}

func (m *roomQueriesMock) Status(_ context.Context, _, _ string) (*dto.RoomStatusResponse, error) {
	return m.statusResp, nil
}

type availabilityMock struct {
	slots   []dto.AvailabilitySlot
	err     error
	lastReq dto.AvailabilityRequest
}

func (m *availabilityMock) Scan(_ context.Context, req dto.AvailabilityRequest) ([]dto.AvailabilitySlot, error) {
	m.lastReq = req
	return m.slots, m.err
}

func TestRoomHandlerAvailableForRescheduleBindsQuery(t *testing.T) {
	scanner := &availabilityMock{slots: []dto.AvailabilitySlot{{Date: "2025-11-13", StartTime: "07:00", EndTime: "09:30"}}}
	h := NewRoomHandler(&roomQueriesMock{}, scanner, nil)

	c, w := testContext(t, http.MethodGet,
		"/rooms/available-for-reschedule?original_date=2025-11-12&original_start_time=10:00&original_end_time=12:30&duration_minutes=150", nil)
	h.AvailableForReschedule(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-11-12", scanner.lastReq.OriginalDate)
	assert.Equal(t, 150, scanner.lastReq.DurationMinutes)
	assert.Contains(t, w.Body.String(), "2025-11-13")
}

func TestRoomHandlerAvailableForRescheduleEmptyIsOK(t *testing.T) {
	h := NewRoomHandler(&roomQueriesMock{}, &availabilityMock{}, nil)

	c, w := testContext(t, http.MethodGet,
		"/rooms/available-for-reschedule?original_date=2025-11-12&original_start_time=10:00&original_end_time=12:30", nil)
	h.AvailableForReschedule(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRoomHandlerFreeSlots(t *testing.T) {
	rooms := &roomQueriesMock{freeResp: &dto.FreeSlotResponse{TotalAvailable: 2}}
	h := NewRoomHandler(rooms, &availabilityMock{}, nil)

	c, w := testContext(t, http.MethodGet,
		"/rooms/free-slots?date=2025-11-12&start_time=10:00&end_time=12:30&min_capacity=40", nil)
	h.FreeSlots(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, rooms.lastFree.MinCapacity)
	assert.Equal(t, 40, *rooms.lastFree.MinCapacity)
}

func TestRoomHandlerGetNotFound(t *testing.T) {
	h := NewRoomHandler(&roomQueriesMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "room not found")}, &availabilityMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/rooms/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandlerStatus(t *testing.T) {
	rooms := &roomQueriesMock{statusResp: &dto.RoomStatusResponse{
		Date: "2025-11-12", Time: "11:00",
		Summary: dto.RoomStatusSummary{TotalRooms: 3, OccupiedRooms: 1, AvailableRooms: 2},
	}}
	h := NewRoomHandler(rooms, &availabilityMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/rooms/status?date=2025-11-12&time=11:00", nil)
	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "occupied_rooms")
}
