package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/middleware"
	"github.com/edricrolandli/cssc-api/internal/models"
	"github.com/edricrolandli/cssc-api/internal/service"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
	"github.com/edricrolandli/cssc-api/pkg/response"
)

type scheduleProjector interface {
	WeekView(ctx context.Context, claims *models.JWTClaims, startDate, endDate string) (*dto.WeekViewResponse, error)
	TemplateSchedule(ctx context.Context, claims *models.JWTClaims) ([]dto.TemplateEntry, error)
	AllTemplates(ctx context.Context) ([]dto.TemplateEntry, error)
}

type rescheduler interface {
	Reschedule(ctx context.Context, claims *models.JWTClaims, req dto.RescheduleRequest) (*dto.RescheduleResult, error)
	History(ctx context.Context, claims *models.JWTClaims, courseID string) (*dto.HistoryResponse, error)
}

type scheduleExporter interface {
	WeeklyPDF(ctx context.Context, claims *models.JWTClaims, startDate, endDate string) ([]byte, string, error)
}

// ScheduleHandler manages schedule projection, reschedule, and history
// endpoints.
type ScheduleHandler struct {
	projector  scheduleProjector
	reschedule rescheduler
	export     scheduleExporter
	metrics    *service.MetricsService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(projector scheduleProjector, reschedule rescheduler, export scheduleExporter, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{projector: projector, reschedule: reschedule, export: export, metrics: metrics}
}

// Week godoc
// @Summary Projected weekly schedule
// @Tags Schedule
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/real [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	view, err := h.projector.WeekView(c.Request.Context(), claims, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Default godoc
// @Summary Every course's recurring weekly template
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/default [get]
func (h *ScheduleHandler) Default(c *gin.Context) {
	entries, err := h.projector.AllTemplates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Update godoc
// @Summary Reschedule a class to a new room and time
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.RescheduleRequest true "Reschedule request"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/update [post]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload"))
		return
	}

	claims := middleware.CurrentClaims(c)
	result, err := h.reschedule.Reschedule(c.Request.Context(), claims, req)
	if err != nil {
		outcome := "error"
		if appErrors.FromError(err).Status == http.StatusConflict {
			outcome = "conflict"
		}
		h.metrics.RecordReschedule(outcome)
		response.Error(c, err)
		return
	}
	h.metrics.RecordReschedule("success")
	response.Created(c, result)
}

// History godoc
// @Summary Full schedule change history of a course
// @Tags Schedule
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /schedule/history/{course_id} [get]
func (h *ScheduleHandler) History(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	resp, err := h.reschedule.History(c.Request.Context(), claims, c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Export godoc
// @Summary Weekly schedule as PDF
// @Tags Schedule
// @Produce application/pdf
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {file} byte
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	payload, filename, err := h.export.WeeklyPDF(c.Request.Context(), claims, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
