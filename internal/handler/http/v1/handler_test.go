package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/support_matching/internal/config"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/service"
	"github.com/shenikar/support_matching/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var authHeader = map[string]string{"X-API-Key": "test-api-key"}

// newTestHandler создает Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*mocks.MockMatchingService, *mocks.MockSweepRunner, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockMatchingService(ctrl)
	mockSweeper := mocks.NewMockSweepRunner(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, mockSweeper, logger, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return mockService, mockSweeper, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMatchReport_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reportID := uuid.New()
	providerID := uuid.New()
	near := models.Candidate{
		Service:    models.SupportService{ID: uuid.New(), ProviderID: &providerID, Name: "Haven Legal Aid", Category: "legal"},
		DistanceKm: 3.14159,
		Score:      92,
	}
	unknown := models.Candidate{
		Service:    models.SupportService{ID: uuid.New(), Category: "legal"},
		DistanceKm: math.Inf(1),
		Score:      60,
	}

	mockService.EXPECT().MatchReport(gomock.Any(), reportID).
		Return([]models.Candidate{near, unknown}, nil).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/reports/%s/match", reportID), nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []CandidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, near.Service.ID, resp[0].ServiceID)
	assert.Equal(t, "Haven Legal Aid", resp[0].ServiceName)
	assert.Equal(t, 92, resp[0].Score)
	require.NotNil(t, resp[0].DistanceKm)
	assert.InDelta(t, 3.14, *resp[0].DistanceKm, 1e-9)
	assert.Nil(t, resp[1].DistanceKm)
	assert.Equal(t, "legal", resp[1].ServiceName)
}

func TestMatchReport_NoEligibleServices(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reportID := uuid.New()

	mockService.EXPECT().MatchReport(gomock.Any(), reportID).Return([]models.Candidate{}, nil)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/reports/%s/match", reportID), nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMatchReport_InvalidID(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().MatchReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/reports/not-a-uuid/match", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid report ID")
}

func TestMatchReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found",
			err:        &service.FetchError{Resource: "report", Err: fmt.Errorf("report with id x: %w", models.ErrReportNotFound)},
			wantStatus: http.StatusNotFound,
			wantBody:   "report not found",
		},
		{
			name:       "already matched",
			err:        service.ErrAlreadyMatched,
			wantStatus: http.StatusConflict,
			wantBody:   "report already matched",
		},
		{
			name:       "in progress",
			err:        service.ErrMatchInProgress,
			wantStatus: http.StatusConflict,
			wantBody:   "report matching in progress",
		},
		{
			name:       "persistence failure",
			err:        &service.PersistenceError{Stage: service.StageMatchInsert, Err: errors.New("insert failed")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, _, router := newTestHandler(t)
			reportID := uuid.New()

			mockService.EXPECT().MatchReport(gomock.Any(), reportID).Return(nil, tt.err)

			w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/reports/%s/match", reportID), nil, authHeader)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestListMatches_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reportID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	match := &models.Match{
		ID:        uuid.New(),
		ReportID:  reportID,
		ServiceID: uuid.New(),
		Score:     104,
		Status:    models.MatchStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mockService.EXPECT().ListMatches(gomock.Any(), reportID, models.MatchStatusPending).
		Return([]*models.Match{match}, nil)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/reports/%s/matches?status=pending", reportID), nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []MatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, match.ID, resp[0].ID)
	assert.Equal(t, 104, resp[0].Score)
	assert.Equal(t, "pending", resp[0].Status)
}

func TestListMatches_NoFilter(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reportID := uuid.New()

	mockService.EXPECT().ListMatches(gomock.Any(), reportID, models.MatchStatus("")).
		Return([]*models.Match{}, nil)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/reports/%s/matches", reportID), nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListMatches_InvalidStatus(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListMatches(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/reports/%s/matches?status=lost", uuid.New()), nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed on the 'oneof' tag")
}

func TestListMatches_ServiceError(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	reportID := uuid.New()

	mockService.EXPECT().ListMatches(gomock.Any(), reportID, gomock.Any()).
		Return(nil, errors.New("db unavailable"))

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/reports/%s/matches", reportID), nil, authHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSweep_Success(t *testing.T) {
	_, mockSweeper, router := newTestHandler(t)

	mockSweeper.EXPECT().SweepUnmatched(gomock.Any()).
		Return(models.SweepResult{Attempted: 3, Succeeded: 2, Failed: 1}, nil)

	w := makeRequest(router, "POST", "/api/v1/matching/sweep", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"attempted":3,"succeeded":2,"failed":1}`, w.Body.String())
}

func TestSweep_ListFails(t *testing.T) {
	_, mockSweeper, router := newTestHandler(t)

	mockSweeper.EXPECT().SweepUnmatched(gomock.Any()).
		Return(models.SweepResult{}, errors.New("service: could not list unmatched reports"))

	w := makeRequest(router, "POST", "/api/v1/matching/sweep", nil, authHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "missing key", headers: map[string]string{}, wantStatus: http.StatusUnauthorized},
		{name: "invalid key", headers: map[string]string{"X-API-Key": "wrong"}, wantStatus: http.StatusUnauthorized},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer test-api-key"}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockSweeper, router := newTestHandler(t)
			if tt.wantStatus == http.StatusOK {
				mockSweeper.EXPECT().SweepUnmatched(gomock.Any()).Return(models.SweepResult{}, nil)
			}

			w := makeRequest(router, "POST", "/api/v1/matching/sweep", nil, tt.headers)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHealthCheck_NoAuth(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
