package dto

import "github.com/edricrolandli/cssc-api/internal/models"

// AvailabilityRequest asks for free reschedule slots over a day range.
type AvailabilityRequest struct {
	OriginalDate      string `form:"original_date" validate:"required"`
	OriginalStartTime string `form:"original_start_time" validate:"required"`
	OriginalEndTime   string `form:"original_end_time" validate:"required"`
	DurationMinutes   int    `form:"duration_minutes"`
	FromDate          string `form:"from_date"`
	ToDate            string `form:"to_date"`
}

// AvailableRoom is one free room inside an availability slot.
type AvailableRoom struct {
	RoomID   string  `json:"room_id"`
	RoomName string  `json:"room_name"`
	Building *string `json:"building,omitempty"`
	Floor    *string `json:"floor,omitempty"`
}

// AvailabilitySlot groups every room free for the same (date, start, end).
type AvailabilitySlot struct {
	Date            string          `json:"date"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	DurationMinutes int             `json:"duration_minutes"`
	AvailableRooms  []AvailableRoom `json:"available_rooms"`
}

// FreeSlotRequest asks which rooms are free for one fixed slot.
type FreeSlotRequest struct {
	Date        string `form:"date" validate:"required"`
	StartTime   string `form:"start_time" validate:"required"`
	EndTime     string `form:"end_time" validate:"required"`
	MinCapacity *int   `form:"min_capacity"`
}

// FreeSlotResponse lists the rooms free for the requested slot.
type FreeSlotResponse struct {
	Date           string        `json:"date"`
	TimeRange      TimeRange     `json:"time_range"`
	AvailableRooms []models.Room `json:"available_rooms"`
	TotalAvailable int           `json:"total_available"`
}

// TimeRange is a start/end pair of HH:MM clocks.
type TimeRange struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RoomStatusSummary aggregates occupancy counts at one instant.
type RoomStatusSummary struct {
	TotalRooms     int `json:"total_rooms"`
	OccupiedRooms  int `json:"occupied_rooms"`
	AvailableRooms int `json:"available_rooms"`
}

// RoomStatusResponse reports per-room occupancy at one instant.
type RoomStatusResponse struct {
	Date    string              `json:"date"`
	Time    string              `json:"time"`
	Rooms   []models.RoomStatus `json:"rooms"`
	Summary RoomStatusSummary   `json:"summary"`
}
