package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/timegrid"
	"github.com/edricrolandli/cssc-api/pkg/config"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type scheduleEventStore interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	FindConflict(ctx context.Context, exec sqlx.ExtContext, roomID, date, start, end, excludeCourseID string) (string, bool, error)
	CountLiveMeetings(ctx context.Context, exec sqlx.ExtContext, courseID string) (int, error)
	FindLiveEventID(ctx context.Context, exec sqlx.ExtContext, courseID string, academicWeek int) (*string, error)
	MarkReplaced(ctx context.Context, exec sqlx.ExtContext, courseID string, academicWeek int) error
	Insert(ctx context.Context, exec sqlx.ExtContext, event *models.ScheduleEvent) error
	ListHistory(ctx context.Context, courseID string) ([]models.HistoryEntry, error)
}

type courseStore interface {
	FindActiveByID(ctx context.Context, id string) (*models.Course, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RescheduleService moves a course's class to a new room and time inside a
// single transaction: conflict check, supersede the week's live events,
// insert the replacement.
type RescheduleService struct {
	events    scheduleEventStore
	courses   courseStore
	rooms     roomFinder
	cache     cacheInvalidator
	semester  config.SemesterConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRescheduleService instantiates RescheduleService. The cache may be nil.
func NewRescheduleService(events scheduleEventStore, courses courseStore, rooms roomFinder, cache cacheInvalidator, semester config.SemesterConfig, validate *validator.Validate, logger *zap.Logger) *RescheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RescheduleService{
		events:    events,
		courses:   courses,
		rooms:     rooms,
		cache:     cache,
		semester:  semester,
		validator: validate,
		logger:    logger,
	}
}

// Reschedule validates the request, then atomically replaces the course's
// live events for the target week with a new event. A room conflict aborts
// with the occupying course's name; any mid-transaction failure rolls the
// whole change back.
func (s *RescheduleService) Reschedule(ctx context.Context, claims *models.JWTClaims, req dto.RescheduleRequest) (*dto.RescheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	date, err := timegrid.ParseDate(req.NewDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "newDate must be YYYY-MM-DD")
	}
	startMin, err := timegrid.ParseClock(req.NewStartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "newStartTime must be HH:MM")
	}
	endMin, err := timegrid.ParseClock(req.NewEndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "newEndTime must be HH:MM")
	}
	if startMin >= endMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "newStartTime must be before newEndTime")
	}
	if date.Before(s.semester.StartDate) || date.After(s.semester.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("newDate must fall within the semester (%s to %s)",
			timegrid.FormatDate(s.semester.StartDate), timegrid.FormatDate(s.semester.EndDate)))
	}

	course, err := s.courses.FindActiveByID(ctx, req.CourseID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if req.NewRoomID != nil {
		if _, err := s.rooms.FindByID(ctx, *req.NewRoomID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
	}

	week := timegrid.AcademicWeek(date, s.semester.StartDate)
	if req.WeekNumber != nil {
		week = *req.WeekNumber
	}
	if week < 1 || week > s.semester.MaxMeetings {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week number must be between 1 and %d", s.semester.MaxMeetings))
	}

	tx, err := s.events.BeginTx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start reschedule")
	}
	defer tx.Rollback()

	if req.NewRoomID != nil {
		occupant, found, cerr := s.events.FindConflict(ctx, tx, *req.NewRoomID, req.NewDate, req.NewStartTime, req.NewEndTime, req.CourseID)
		if cerr != nil {
			return nil, appErrors.Wrap(cerr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room availability")
		}
		if found {
			s.logger.Info("reschedule rejected on room conflict",
				zap.String("course_id", req.CourseID),
				zap.String("room_id", *req.NewRoomID),
				zap.String("date", req.NewDate),
				zap.String("occupied_by", occupant))
			conflict := &models.RoomConflictError{
				RoomID:            *req.NewRoomID,
				EventDate:         req.NewDate,
				StartTime:         req.NewStartTime,
				EndTime:           req.NewEndTime,
				ConflictingCourse: occupant,
			}
			return nil, appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				fmt.Sprintf("room is already booked by %s at the requested time", occupant))
		}
	}

	meeting := 0
	if req.MeetingNumber != nil {
		meeting = *req.MeetingNumber
	} else {
		liveCount, cerr := s.events.CountLiveMeetings(ctx, tx, req.CourseID)
		if cerr != nil {
			return nil, appErrors.Wrap(cerr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive meeting number")
		}
		meeting = liveCount + 1
	}
	if meeting < 1 || meeting > s.semester.MaxMeetings {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("meeting number must be between 1 and %d", s.semester.MaxMeetings))
	}

	previousID, err := s.events.FindLiveEventID(ctx, tx, req.CourseID, week)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current event")
	}

	if err := s.events.MarkReplaced(ctx, tx, req.CourseID, week); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to supersede current events")
	}

	event := &models.ScheduleEvent{
		CourseID:        req.CourseID,
		RoomID:          req.NewRoomID,
		EventDate:       req.NewDate,
		StartTime:       req.NewStartTime,
		EndTime:         req.NewEndTime,
		Status:          models.StatusUpdate,
		AcademicWeek:    week,
		MeetingNumber:   meeting,
		PreviousEventID: previousID,
		ChangeReason:    req.ChangeReason,
	}
	if claims != nil {
		event.ChangedBy = &claims.UserID
	}
	if err := s.events.Insert(ctx, tx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store new event")
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit reschedule")
	}

	s.logger.Info("class rescheduled",
		zap.String("course_id", req.CourseID),
		zap.String("course_name", course.Name),
		zap.String("new_date", req.NewDate),
		zap.Int("academic_week", week),
		zap.Int("meeting_number", meeting))

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "schedule:template:*"); err != nil {
			s.logger.Warn("template cache invalidation failed", zap.Error(err))
		}
	}

	return &dto.RescheduleResult{Event: event, WeekNumber: week, MeetingNumber: meeting}, nil
}

// History returns a course's full schedule audit trail, newest first.
// Non-admin callers must be the course's komting.
func (s *RescheduleService) History(ctx context.Context, claims *models.JWTClaims, courseID string) (*dto.HistoryResponse, error) {
	course, err := s.courses.FindActiveByID(ctx, courseID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	if !claims.IsAdmin() {
		if course.KomtingID == nil || *course.KomtingID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course komting may view its history")
		}
	}

	entries, err := s.events.ListHistory(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule history")
	}

	return &dto.HistoryResponse{
		Course:  dto.CourseRef{ID: course.ID, Name: course.Name},
		History: entries,
		Total:   len(entries),
	}, nil
}
