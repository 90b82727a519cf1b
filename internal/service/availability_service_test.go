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

type stubRoomLister struct {
	rooms []models.Room
}

func (s *stubRoomLister) ListActive(_ context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type stubBookingLister struct {
	bookings map[string][]models.RoomBooking
	failFor  map[string]bool
}

func (s *stubBookingLister) ListBookingsForRoom(_ context.Context, roomID, _, _ string) ([]models.RoomBooking, error) {
	if s.failFor[roomID] {
		return nil, errors.New("connection reset")
	}
	return s.bookings[roomID], nil
}

func availabilityFixture(rooms []models.Room, bookings *stubBookingLister) *AvailabilityService {
	return NewAvailabilityService(&stubRoomLister{rooms: rooms}, bookings, semesterFixture(), nil, nil)
}

func scanRequest() dto.AvailabilityRequest {
	return dto.AvailabilityRequest{
		OriginalDate:      "2025-11-12",
		OriginalStartTime: "10:00",
		OriginalEndTime:   "12:30",
		FromDate:          "2025-11-12",
		ToDate:            "2025-11-12",
	}
}

func TestScanEmptyCalendarEnumeratesGrid(t *testing.T) {
	rooms := []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}
	svc := availabilityFixture(rooms, &stubBookingLister{})

	slots, err := svc.Scan(context.Background(), scanRequest())
	require.NoError(t, err)

	// 150-minute slots aligned to 30 minutes between 07:00 and 18:00 give
	// 18 starts; the original 10:00 slot is skipped.
	assert.Len(t, slots, 17)
	assert.Equal(t, "07:00", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
	last := slots[len(slots)-1]
	assert.Equal(t, "15:30", last.StartTime)
	assert.Equal(t, "18:00", last.EndTime)
	for _, slot := range slots {
		assert.NotEqual(t, "10:00", slot.StartTime, "original slot must be skipped")
		assert.Equal(t, 150, slot.DurationMinutes)
	}
}

func TestScanSkipsBookedSlots(t *testing.T) {
	rooms := []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}
	bookings := &stubBookingLister{bookings: map[string][]models.RoomBooking{
		"room-1": {{EventDate: "2025-11-12", StartTime: "07:00:00", EndTime: "18:00:00", CourseName: "Databases"}},
	}}
	svc := availabilityFixture(rooms, bookings)

	slots, err := svc.Scan(context.Background(), scanRequest())
	require.NoError(t, err)
	assert.Empty(t, slots, "a fully booked day yields no slots, not an error")
}

func TestScanBackToBackBookingLeavesSlotFree(t *testing.T) {
	rooms := []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}
	bookings := &stubBookingLister{bookings: map[string][]models.RoomBooking{
		"room-1": {{EventDate: "2025-11-12", StartTime: "09:30:00", EndTime: "18:00:00", CourseName: "Databases"}},
	}}
	svc := availabilityFixture(rooms, bookings)

	slots, err := svc.Scan(context.Background(), scanRequest())
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "07:00", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
}

func TestScanGroupsRoomsSharingASlot(t *testing.T) {
	building := "D"
	rooms := []models.Room{
		{ID: "room-1", Name: "Lab 2", Building: &building, Active: true},
		{ID: "room-2", Name: "Lab 3", Building: &building, Active: true},
	}
	svc := availabilityFixture(rooms, &stubBookingLister{})

	slots, err := svc.Scan(context.Background(), scanRequest())
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, slot := range slots {
		assert.Len(t, slot.AvailableRooms, 2)
	}
}

func TestScanSkipsRoomOnQueryFailure(t *testing.T) {
	rooms := []models.Room{
		{ID: "room-1", Name: "Lab 2", Active: true},
		{ID: "room-2", Name: "Lab 3", Active: true},
	}
	bookings := &stubBookingLister{failFor: map[string]bool{"room-1": true}}
	svc := availabilityFixture(rooms, bookings)

	slots, err := svc.Scan(context.Background(), scanRequest())
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, slot := range slots {
		require.Len(t, slot.AvailableRooms, 1)
		assert.Equal(t, "room-2", slot.AvailableRooms[0].RoomID)
	}
}

func TestScanExcludesWeekends(t *testing.T) {
	rooms := []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}
	svc := availabilityFixture(rooms, &stubBookingLister{})

	req := scanRequest()
	// 2025-11-15 and 2025-11-16 are Saturday and Sunday.
	req.FromDate = "2025-11-15"
	req.ToDate = "2025-11-16"

	slots, err := svc.Scan(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestScanNoActiveRooms(t *testing.T) {
	svc := availabilityFixture(nil, &stubBookingLister{})

	_, err := svc.Scan(context.Background(), scanRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestScanRejectsBadClock(t *testing.T) {
	rooms := []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}
	svc := availabilityFixture(rooms, &stubBookingLister{})

	req := scanRequest()
	req.OriginalStartTime = "25:00"

	_, err := svc.Scan(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestScanRejectsNegativeDuration(t *testing.T) {
	rooms := []models.Room{{ID: "room-1", Name: "Lab 2", Active: true}}
	svc := availabilityFixture(rooms, &stubBookingLister{})

	req := scanRequest()
	req.DurationMinutes = -30

	_, err := svc.Scan(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "duration_minutes")
}
