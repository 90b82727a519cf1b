package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edricrolandli/cssc-api/internal/middleware"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/pkg/response"
)

type subscriptionManager interface {
	Subscribe(ctx context.Context, claims *models.JWTClaims, courseID string) (*models.Course, error)
	Unsubscribe(ctx context.Context, claims *models.JWTClaims, courseID string) error
}

// CourseHandler manages course subscription and template schedule endpoints.
type CourseHandler struct {
	courses   subscriptionManager
	projector scheduleProjector
}

// NewCourseHandler constructs handler.
func NewCourseHandler(courses subscriptionManager, projector scheduleProjector) *CourseHandler {
	return &CourseHandler{courses: courses, projector: projector}
}

// MySchedules godoc
// @Summary Recurring templates of the caller's subscribed courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/schedules/my [get]
func (h *CourseHandler) MySchedules(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	entries, err := h.projector.TemplateSchedule(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// AllSchedules godoc
// @Summary Recurring templates of every active course
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/schedules/all [get]
func (h *CourseHandler) AllSchedules(c *gin.Context) {
	entries, err := h.projector.AllTemplates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Subscribe godoc
// @Summary Subscribe the caller to a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/subscribe [post]
func (h *CourseHandler) Subscribe(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	course, err := h.courses.Subscribe(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Unsubscribe godoc
// @Summary Remove the caller's course subscription
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id}/subscribe [delete]
func (h *CourseHandler) Unsubscribe(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if err := h.courses.Unsubscribe(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
