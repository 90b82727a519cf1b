package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/edricrolandli/cssc-api/internal/models"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type subscriptionStore interface {
	FindActiveByID(ctx context.Context, id string) (*models.Course, error)
	Subscribe(ctx context.Context, userID, courseID string) error
	Unsubscribe(ctx context.Context, userID, courseID string) (bool, error)
}

// CourseService manages course subscriptions, the links that decide which
// courses feed a student's projected schedule.
type CourseService struct {
	courses subscriptionStore
	cache   cacheInvalidator
	logger  *zap.Logger
}

// NewCourseService instantiates CourseService. The cache may be nil.
func NewCourseService(courses subscriptionStore, cache cacheInvalidator, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, cache: cache, logger: logger}
}

// Subscribe adds the caller to a course. Subscribing twice is a no-op.
func (s *CourseService) Subscribe(ctx context.Context, claims *models.JWTClaims, courseID string) (*models.Course, error) {
	course, err := s.courses.FindActiveByID(ctx, courseID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	if err := s.courses.Subscribe(ctx, claims.UserID, courseID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe")
	}
	s.invalidateTemplateCache(ctx, claims.UserID)
	return course, nil
}

// Unsubscribe removes the caller from a course.
func (s *CourseService) Unsubscribe(ctx context.Context, claims *models.JWTClaims, courseID string) error {
	if _, err := s.courses.FindActiveByID(ctx, courseID); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	existed, err := s.courses.Unsubscribe(ctx, claims.UserID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unsubscribe")
	}
	if !existed {
		return appErrors.Clone(appErrors.ErrNotFound, "not subscribed to this course")
	}
	s.invalidateTemplateCache(ctx, claims.UserID)
	return nil
}

func (s *CourseService) invalidateTemplateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "schedule:template:"+userID); err != nil {
		s.logger.Warn("template cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
