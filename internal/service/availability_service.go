package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/timegrid"
	"github.com/edricrolandli/cssc-api/pkg/config"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type bookingLister interface {
	ListBookingsForRoom(ctx context.Context, roomID, fromDate, toDate string) ([]models.RoomBooking, error)
}

// AvailabilityService scans the operating-hours grid for free reschedule
// slots across every active room.
type AvailabilityService struct {
	rooms     roomLister
	bookings  bookingLister
	semester  config.SemesterConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(rooms roomLister, bookings bookingLister, semester config.SemesterConfig, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{rooms: rooms, bookings: bookings, semester: semester, validator: validate, logger: logger}
}

type busyInterval struct {
	start int
	end   int
}

// Scan enumerates every aligned weekday slot in the requested range where
// at least one room is free, grouping rooms that share the same slot. The
// slot matching the original class is skipped. An empty result is a valid
// answer; only having zero active rooms is an error.
func (s *AvailabilityService) Scan(ctx context.Context, req dto.AvailabilityRequest) ([]dto.AvailabilitySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}

	originalDate, err := timegrid.ParseDate(req.OriginalDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "original_date must be YYYY-MM-DD")
	}
	originalStart, err := timegrid.ParseClock(req.OriginalStartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "original_start_time must be HH:MM")
	}
	originalEnd, err := timegrid.ParseClock(req.OriginalEndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "original_end_time must be HH:MM")
	}

	if req.DurationMinutes < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration_minutes must be a positive number")
	}
	duration := req.DurationMinutes
	if duration == 0 {
		// absent: fall back to the original slot's length
		duration = originalEnd - originalStart
	}
	if duration <= 0 {
		duration = s.semester.DefaultSlotMinutes
	}

	from := originalDate
	if req.FromDate != "" {
		from, err = timegrid.ParseDate(req.FromDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from_date must be YYYY-MM-DD")
		}
	}
	to := s.semester.EndDate
	if req.ToDate != "" {
		to, err = timegrid.ParseDate(req.ToDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must be YYYY-MM-DD")
		}
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must not precede from_date")
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active rooms configured")
	}

	dayStart, _ := timegrid.ParseClock(s.semester.DayStart)
	dayEnd, _ := timegrid.ParseClock(s.semester.DayEnd)
	starts := timegrid.SlotStarts(dayStart, dayEnd, s.semester.SlotMinutes, duration)

	type slotKey struct {
		date  string
		start int
	}
	slotRooms := make(map[slotKey][]dto.AvailableRoom)

	fromStr := timegrid.FormatDate(from)
	toStr := timegrid.FormatDate(to)

	for _, room := range rooms {
		bookings, berr := s.bookings.ListBookingsForRoom(ctx, room.ID, fromStr, toStr)
		if berr != nil {
			s.logger.Warn("skipping room after booking query failure",
				zap.String("room_id", room.ID), zap.Error(berr))
			continue
		}

		busy := make(map[string][]busyInterval)
		for _, booking := range bookings {
			bStart, perr := timegrid.ParseClock(booking.StartTime)
			if perr != nil {
				continue
			}
			bEnd, perr := timegrid.ParseClock(booking.EndTime)
			if perr != nil {
				continue
			}
			busy[booking.EventDate] = append(busy[booking.EventDate], busyInterval{bStart, bEnd})
		}

		available := dto.AvailableRoom{
			RoomID:   room.ID,
			RoomName: room.Name,
			Building: room.Building,
			Floor:    room.Floor,
		}

		timegrid.EachWeekday(from, to, func(date time.Time) {
			dateKey := timegrid.FormatDate(date)
			intervals := busy[dateKey]
			for _, start := range starts {
				if dateKey == req.OriginalDate && start == originalStart {
					continue
				}
				end := start + duration
				free := true
				for _, iv := range intervals {
					if timegrid.Overlaps(start, end, iv.start, iv.end) {
						free = false
						break
					}
				}
				if free {
					key := slotKey{dateKey, start}
					slotRooms[key] = append(slotRooms[key], available)
				}
			}
		})
	}

	slots := make([]dto.AvailabilitySlot, 0, len(slotRooms))
	for key, roomsForSlot := range slotRooms {
		slots = append(slots, dto.AvailabilitySlot{
			Date:            key.date,
			StartTime:       timegrid.FormatClock(key.start),
			EndTime:         timegrid.FormatClock(key.start + duration),
			DurationMinutes: duration,
			AvailableRooms:  roomsForSlot,
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}
