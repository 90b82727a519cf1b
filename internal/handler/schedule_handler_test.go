package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edricrolandli/cssc-api/internal/dto"
	"github.com/edricrolandli/cssc-api/internal/middleware"
	"github.com/edricrolandli/cssc-api/internal/models"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
)

type projectorMock struct {
	weekResp     *dto.WeekViewResponse
	weekErr      error
	templateResp []dto.TemplateEntry
	lastStart    string
	lastEnd      string
}

func (m *projectorMock) WeekView(_ context.Context, _ *models.JWTClaims, start, end string) (*dto.WeekViewResponse, error) {
	m.lastStart = start
	m.lastEnd = end
	return m.weekResp, m.weekErr
}

func (m *projectorMock) TemplateSchedule(_ context.Context, _ *models.JWTClaims) ([]dto.TemplateEntry, error) {
	return m.templateResp, nil
}

func (m *projectorMock) AllTemplates(_ context.Context) ([]dto.TemplateEntry, error) {
	return m.templateResp, nil
}

type reschedulerMock struct {
	result      *dto.RescheduleResult
	err         error
	historyResp *dto.HistoryResponse
	historyErr  error
	lastReq     dto.RescheduleRequest
	called      bool
}

func (m *reschedulerMock) Reschedule(_ context.Context, _ *models.JWTClaims, req dto.RescheduleRequest) (*dto.RescheduleResult, error) {
	m.called = true
	m.lastReq = req
	return m.result, m.err
}

func (m *reschedulerMock) History(_ context.Context, _ *models.JWTClaims, _ string) (*dto.HistoryResponse, error) {
	return m.historyResp, m.historyErr
}

type exporterMock struct {
	payload []byte
}

func (m *exporterMock) WeeklyPDF(_ context.Context, _ *models.JWTClaims, _, _ string) ([]byte, string, error) {
	return m.payload, "schedule.pdf", nil
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-7", Role: models.RoleKomting})
	return c, w
}

func TestScheduleHandlerWeekPassesRange(t *testing.T) {
	projector := &projectorMock{weekResp: &dto.WeekViewResponse{Events: map[string][]dto.Occurrence{}}}
	h := NewScheduleHandler(projector, &reschedulerMock{}, &exporterMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/schedule/week?start_date=2025-11-10&end_date=2025-11-16", nil)
	h.Week(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-11-10", projector.lastStart)
	assert.Equal(t, "2025-11-16", projector.lastEnd)
}

func TestScheduleHandlerUpdateCreated(t *testing.T) {
	mock := &reschedulerMock{result: &dto.RescheduleResult{WeekNumber: 12, MeetingNumber: 12}}
	h := NewScheduleHandler(&projectorMock{}, mock, &exporterMock{}, nil)

	payload, _ := json.Marshal(dto.RescheduleRequest{
		CourseID: "course-1", NewDate: "2025-11-12", NewStartTime: "13:00", NewEndTime: "15:30",
	})
	c, w := testContext(t, http.MethodPost, "/schedule/update", payload)
	h.Update(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mock.called)
	assert.Equal(t, "course-1", mock.lastReq.CourseID)
}

func TestScheduleHandlerUpdateConflictStatus(t *testing.T) {
	mock := &reschedulerMock{err: appErrors.Clone(appErrors.ErrConflict, "room is already booked by Databases at the requested time")}
	h := NewScheduleHandler(&projectorMock{}, mock, &exporterMock{}, nil)

	payload, _ := json.Marshal(dto.RescheduleRequest{
		CourseID: "course-1", NewDate: "2025-11-12", NewStartTime: "13:00", NewEndTime: "15:30",
	})
	c, w := testContext(t, http.MethodPost, "/schedule/update", payload)
	h.Update(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Databases")
}

func TestScheduleHandlerUpdateMalformedBody(t *testing.T) {
	mock := &reschedulerMock{}
	h := NewScheduleHandler(&projectorMock{}, mock, &exporterMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/schedule/update", []byte(`{"courseId":`))
	h.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mock.called)
}

func TestScheduleHandlerHistoryForbidden(t *testing.T) {
	mock := &reschedulerMock{historyErr: appErrors.ErrForbidden}
	h := NewScheduleHandler(&projectorMock{}, mock, &exporterMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/schedule/history/course-1", nil)
	c.Params = gin.Params{{Key: "course_id", Value: "course-1"}}
	h.History(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestScheduleHandlerExportSetsHeaders(t *testing.T) {
	h := NewScheduleHandler(&projectorMock{}, &reschedulerMock{}, &exporterMock{payload: []byte("%PDF-1.4")}, nil)

	c, w := testContext(t, http.MethodGet, "/schedule/export", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule.pdf")
}

func TestWeekViewServedAtRealPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projector := &projectorMock{weekResp: &dto.WeekViewResponse{Events: map[string][]dto.Occurrence{}}}
	h := NewScheduleHandler(projector, &reschedulerMock{}, &exporterMock{}, nil)

	r := gin.New()
	r.GET("/schedule/real", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-7", Role: models.RoleStudent})
		h.Week(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedule/real?start_date=2025-11-10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-11-10", projector.lastStart)
}
