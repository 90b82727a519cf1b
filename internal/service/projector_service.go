package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/timegrid"
	"github.com/edricrolandli/cssc-api/pkg/config"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type templateReader interface {
	ListForUser(ctx context.Context, userID string) ([]dto.TemplateEntry, error)
	ListAll(ctx context.Context) ([]dto.TemplateEntry, error)
	ProjectForUser(ctx context.Context, userID string) ([]models.TemplateOccurrence, error)
	ProjectAll(ctx context.Context) ([]models.TemplateOccurrence, error)
}

type eventReader interface {
	ListForUser(ctx context.Context, userID, fromDate, toDate string) ([]models.EventOccurrence, error)
	ListAll(ctx context.Context, fromDate, toDate string) ([]models.EventOccurrence, error)
}

type templateCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ProjectorService materializes weekly schedules by overlaying dated
// schedule events on the recurring templates.
type ProjectorService struct {
	templates templateReader
	events    eventReader
	cache     templateCache
	cacheCfg  config.CacheConfig
	logger    *zap.Logger
}

// NewProjectorService instantiates ProjectorService. The cache may be nil.
func NewProjectorService(templates templateReader, events eventReader, cache templateCache, cacheCfg config.CacheConfig, logger *zap.Logger) *ProjectorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectorService{templates: templates, events: events, cache: cache, cacheCfg: cacheCfg, logger: logger}
}

// WeekView projects the caller's schedule for [startDate, endDate]. When the
// range is empty it defaults to the current Monday through Sunday. A live
// event replaces the template occurrence in its week; a cancelled event
// suppresses it. Weekends are never projected.
func (s *ProjectorService) WeekView(ctx context.Context, claims *models.JWTClaims, startDate, endDate string) (*dto.WeekViewResponse, error) {
	from, to, err := resolveWeekRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var templates []models.TemplateOccurrence
	var events []models.EventOccurrence
	if claims.IsAdmin() {
		templates, err = s.templates.ProjectAll(ctx)
		if err == nil {
			events, err = s.events.ListAll(ctx, timegrid.FormatDate(from), timegrid.FormatDate(to))
		}
	} else {
		templates, err = s.templates.ProjectForUser(ctx, claims.UserID)
		if err == nil {
			events, err = s.events.ListForUser(ctx, claims.UserID, timegrid.FormatDate(from), timegrid.FormatDate(to))
		}
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	// Index events by course and date. Any event row for (course, date's
	// week) other than the template's own slot means the template occurrence
	// for that weekday is superseded.
	type courseWeek struct {
		courseID string
		weekday  int
		isoYear  int
		isoWeek  int
	}
	overridden := make(map[courseWeek]bool)
	grouped := make(map[string][]dto.Occurrence)
	total := 0

	templateDay := make(map[string]int, len(templates))
	for _, tpl := range templates {
		templateDay[tpl.CourseID] = tpl.DayOfWeek
	}

	for _, ev := range events {
		date, perr := timegrid.ParseDate(ev.EventDate)
		if perr != nil {
			s.logger.Warn("skipping event with bad date", zap.String("event_id", ev.EventID), zap.String("date", ev.EventDate))
			continue
		}
		if weekday, ok := templateDay[ev.CourseID]; ok {
			isoYear, isoWeek := date.ISOWeek()
			overridden[courseWeek{ev.CourseID, weekday, isoYear, isoWeek}] = true
		}
		if ev.Status == models.StatusCancelled || timegrid.IsWeekend(date) {
			continue
		}
		occ := occurrenceFromEvent(ev, date)
		grouped[ev.EventDate] = append(grouped[ev.EventDate], occ)
		total++
	}

	// Expand templates across the weekdays of the range, skipping weeks
	// where an event superseded them.
	timegrid.EachWeekday(from, to, func(date time.Time) {
		weekday := timegrid.ISOWeekday(date)
		isoYear, isoWeek := date.ISOWeek()
		dateKey := timegrid.FormatDate(date)
		for _, tpl := range templates {
			if tpl.DayOfWeek != weekday {
				continue
			}
			if overridden[courseWeek{tpl.CourseID, weekday, isoYear, isoWeek}] {
				continue
			}
			grouped[dateKey] = append(grouped[dateKey], occurrenceFromTemplate(tpl, date))
			total++
		}
	})

	for key := range grouped {
		occurrences := grouped[key]
		sort.SliceStable(occurrences, func(i, j int) bool {
			return occurrences[i].StartTime < occurrences[j].StartTime
		})
		grouped[key] = occurrences
	}

	return &dto.WeekViewResponse{
		Events: grouped,
		DateRange: dto.DateRange{
			StartDate: timegrid.FormatDate(from),
			EndDate:   timegrid.FormatDate(to),
		},
		TotalEvents: total,
	}, nil
}

// TemplateSchedule returns the caller's recurring weekly template, cached
// per user when the cache is enabled. Projections and availability always
// re-read the database; only this static view caches.
func (s *ProjectorService) TemplateSchedule(ctx context.Context, claims *models.JWTClaims) ([]dto.TemplateEntry, error) {
	cacheKey := fmt.Sprintf("schedule:template:%s", claims.UserID)
	if s.cacheEnabled() {
		var cached []dto.TemplateEntry
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if err != appErrors.ErrCacheMiss {
			s.logger.Warn("template cache read failed", zap.Error(err))
		}
	}

	entries, err := s.templates.ListForUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscribed schedules")
	}
	decorateTemplateEntries(entries)

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, entries, s.cacheCfg.TemplateTTL); err != nil {
			s.logger.Warn("template cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// AllTemplates returns every active course's recurring template.
func (s *ProjectorService) AllTemplates(ctx context.Context) ([]dto.TemplateEntry, error) {
	entries, err := s.templates.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	decorateTemplateEntries(entries)
	return entries, nil
}

func (s *ProjectorService) cacheEnabled() bool {
	return s.cache != nil && s.cacheCfg.Enabled
}

func resolveWeekRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" && endDate == "" {
		now := time.Now()
		monday := now.AddDate(0, 0, 1-timegrid.ISOWeekday(now))
		monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
		return monday, monday.AddDate(0, 0, 6), nil
	}
	from, err := timegrid.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	to := from.AddDate(0, 0, 6)
	if endDate != "" {
		to, err = timegrid.ParseDate(endDate)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	return from, to, nil
}

func occurrenceFromEvent(ev models.EventOccurrence, date time.Time) dto.Occurrence {
	weekday := timegrid.ISOWeekday(date)
	occ := dto.Occurrence{
		EventID:    ev.EventID,
		CourseID:   ev.CourseID,
		CourseCode: ev.CourseCode,
		CourseName: ev.CourseName,
		Date:       ev.EventDate,
		DayOfWeek:  weekday,
		DayName:    timegrid.DayName(weekday),
		StartTime:  shortClock(ev.StartTime),
		EndTime:    shortClock(ev.EndTime),
		Source:     "event",
	}
	if ev.LecturerName != nil {
		occ.LecturerName = *ev.LecturerName
	}
	occ.Time = occ.StartTime + " - " + occ.EndTime
	if ev.RoomID != nil {
		occ.Room = &dto.RoomRef{ID: *ev.RoomID, Capacity: ev.RoomCapacity, Building: ev.RoomBuilding}
		if ev.RoomName != nil {
			occ.Room.Name = *ev.RoomName
		}
	}
	return occ
}

func occurrenceFromTemplate(tpl models.TemplateOccurrence, date time.Time) dto.Occurrence {
	occ := dto.Occurrence{
		CourseID:   tpl.CourseID,
		CourseCode: tpl.CourseCode,
		CourseName: tpl.CourseName,
		Date:       timegrid.FormatDate(date),
		DayOfWeek:  tpl.DayOfWeek,
		DayName:    timegrid.DayName(tpl.DayOfWeek),
		StartTime:  shortClock(tpl.StartTime),
		EndTime:    shortClock(tpl.EndTime),
		Source:     "template",
	}
	if tpl.LecturerName != nil {
		occ.LecturerName = *tpl.LecturerName
	}
	occ.Time = occ.StartTime + " - " + occ.EndTime
	if tpl.RoomID != nil {
		occ.Room = &dto.RoomRef{ID: *tpl.RoomID, Capacity: tpl.RoomCapacity, Building: tpl.RoomBuilding}
		if tpl.RoomName != nil {
			occ.Room.Name = *tpl.RoomName
		}
	}
	return occ
}

func decorateTemplateEntries(entries []dto.TemplateEntry) {
	for i := range entries {
		entries[i].DayName = timegrid.DayName(entries[i].DayOfWeek)
		entries[i].StartTime = shortClock(entries[i].StartTime)
		entries[i].EndTime = shortClock(entries[i].EndTime)
	}
}

// shortClock trims HH:MM:SS from the database down to HH:MM.
func shortClock(clock string) string {
	if len(clock) >= 5 {
		return clock[:5]
	}
	return clock
}
