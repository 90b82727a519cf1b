package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/timegrid"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, page, size int) ([]models.Room, int, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ListFree(ctx context.Context, date, start, end string, minCapacity *int) ([]models.Room, error)
	StatusAt(ctx context.Context, date, at string) ([]models.RoomStatus, error)
}

// RoomService answers room listing, occupancy, and free-slot queries.
type RoomService struct {
	rooms     roomRepository
	bookings  bookingLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService instantiates RoomService.
func NewRoomService(rooms roomRepository, bookings bookingLister, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{rooms: rooms, bookings: bookings, validator: validate, logger: logger}
}

// List returns active rooms with pagination metadata.
func (s *RoomService) List(ctx context.Context, page, size int) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.rooms.List(ctx, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	return rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one active room.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
	}
	return room, nil
}

// Schedule returns a room's live bookings across a date range, defaulting
// to the next seven days.
func (s *RoomService) Schedule(ctx context.Context, id, fromDate, toDate string) ([]models.RoomBooking, error) {
	if _, err := s.rooms.FindByID(ctx, id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
	}

	from := time.Now()
	if fromDate != "" {
		parsed, err := timegrid.ParseDate(fromDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from_date must be YYYY-MM-DD")
		}
		from = parsed
	}
	to := from.AddDate(0, 0, 7)
	if toDate != "" {
		parsed, err := timegrid.ParseDate(toDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must be YYYY-MM-DD")
		}
		to = parsed
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must not precede from_date")
	}

	bookings, err := s.bookings.ListBookingsForRoom(ctx, id, timegrid.FormatDate(from), timegrid.FormatDate(to))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room schedule")
	}
	return bookings, nil
}

// FreeSlots returns the rooms with no live booking overlapping one fixed
// slot. An empty list is a valid answer.
func (s *RoomService) FreeSlots(ctx context.Context, req dto.FreeSlotRequest) (*dto.FreeSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid free-slot query")
	}
	if _, err := timegrid.ParseDate(req.Date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	start, err := timegrid.ParseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	end, err := timegrid.ParseClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	rooms, err := s.rooms.ListFree(ctx, req.Date, req.StartTime, req.EndTime, req.MinCapacity)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list free rooms")
	}
	return &dto.FreeSlotResponse{
		Date:           req.Date,
		TimeRange:      dto.TimeRange{StartTime: req.StartTime, EndTime: req.EndTime},
		AvailableRooms: rooms,
		TotalAvailable: len(rooms),
	}, nil
}

// Status reports every active room's occupancy at one instant. Date and
// time default to now.
func (s *RoomService) Status(ctx context.Context, date, at string) (*dto.RoomStatusResponse, error) {
	now := time.Now()
	if date == "" {
		date = timegrid.FormatDate(now)
	} else if _, err := timegrid.ParseDate(date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if at == "" {
		at = now.Format("15:04")
	} else if _, err := timegrid.ParseClock(at); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be HH:MM")
	}

	statuses, err := s.rooms.StatusAt(ctx, date, at)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room status")
	}

	summary := dto.RoomStatusSummary{TotalRooms: len(statuses)}
	for _, status := range statuses {
		if status.Status == "occupied" {
			summary.OccupiedRooms++
		} else {
			summary.AvailableRooms++
		}
	}
	return &dto.RoomStatusResponse{Date: date, Time: at, Rooms: statuses, Summary: summary}, nil
}
