package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/service"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
	"github.com/edricrolandli/cssc-api/pkg/response"
)

type roomQueries interface {
	List(ctx context.Context, page, size int) ([]models.Room, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Room, error)
	Schedule(ctx context.Context, id, fromDate, toDate string) ([]models.RoomBooking, error)
	FreeSlots(ctx context.Context, req dto.FreeSlotRequest) (*dto.FreeSlotResponse, error)
	Status(ctx context.Context, date, at string) (*dto.RoomStatusResponse, error)
}

type availabilityScanner interface {
	Scan(ctx context.Context, req dto.AvailabilityRequest) ([]dto.AvailabilitySlot, error)
}

// RoomHandler manages room listing, occupancy, and availability endpoints.
type RoomHandler struct {
	rooms        roomQueries
	availability availabilityScanner
	metrics      *service.MetricsService
}

// NewRoomHandler constructs handler.
func NewRoomHandler(rooms roomQueries, availability availabilityScanner, metrics *service.MetricsService) *RoomHandler {
	return &RoomHandler{rooms: rooms, availability: availability, metrics: metrics}
}

// List godoc
// @Summary List active rooms
// @Tags Rooms
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rooms, pagination, err := h.rooms.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, pagination)
}

// Get godoc
// @Summary Room details
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Schedule godoc
// @Summary A room's bookings over a date range
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param from_date query string false "Range start (YYYY-MM-DD)"
// @Param to_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/schedule [get]
func (h *RoomHandler) Schedule(c *gin.Context) {
	bookings, err := h.rooms.Schedule(c.Request.Context(), c.Param("id"), c.Query("from_date"), c.Query("to_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// FreeSlots godoc
// @Summary Rooms free for one fixed slot
// @Tags Rooms
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start_time query string true "Start (HH:MM)"
// @Param end_time query string true "End (HH:MM)"
// @Param min_capacity query int false "Minimum capacity"
// @Success 200 {object} response.Envelope
// @Router /rooms/free-slots [get]
func (h *RoomHandler) FreeSlots(c *gin.Context) {
	var req dto.FreeSlotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid free-slot query"))
		return
	}

	resp, err := h.rooms.FreeSlots(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Status godoc
// @Summary Per-room occupancy at an instant
// @Tags Rooms
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param time query string false "Clock (HH:MM), defaults to now"
// @Success 200 {object} response.Envelope
// @Router /rooms/status [get]
func (h *RoomHandler) Status(c *gin.Context) {
	resp, err := h.rooms.Status(c.Request.Context(), c.Query("date"), c.Query("time"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// AvailableForReschedule godoc
// @Summary Free slots across all rooms for a reschedule
// @Tags Rooms
// @Produce json
// @Param original_date query string true "Original class date (YYYY-MM-DD)"
// @Param original_start_time query string true "Original start (HH:MM)"
// @Param original_end_time query string true "Original end (HH:MM)"
// @Param duration_minutes query int false "Slot duration, defaults to the original length"
// @Param from_date query string false "Scan start (YYYY-MM-DD)"
// @Param to_date query string false "Scan end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /rooms/available-for-reschedule [get]
func (h *RoomHandler) AvailableForReschedule(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query"))
		return
	}

	start := time.Now()
	slots, err := h.availability.Scan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveAvailabilityScan(time.Since(start))

	response.JSON(c, http.StatusOK, slots, nil, map[string]interface{}{
		"total_slots": len(slots),
	})
}
