package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/support_matching/internal/config"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	matchingService service.MatchingService
	sweeper         service.SweepRunner
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(matchingService service.MatchingService, sweeper service.SweepRunner, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		matchingService: matchingService,
		sweeper:         sweeper,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Match a report to support services
// @Description Run matching for a single report: select up to MATCH_LIMIT verified services, persist matches and notify. Requires API key.
// @Tags Matching
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Success 200 {array} CandidateResponse "Selected services, empty when nothing is eligible"
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "Report already matched or matching in progress"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id}/match [post]
func (h *Handler) matchReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}
	log := h.logger.WithField("method", "matchReport").WithField("id", id)

	selected, err := h.matchingService.MatchReport(c.Request.Context(), id)
	if err != nil {
		status, msg := matchErrorStatus(err)
		entry := log.WithError(err)
		if status == http.StatusInternalServerError {
			entry.Error("Failed to match report in service")
		} else {
			entry.Warn("Report was not matched")
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, CandidatesToResponses(selected))
}

// @Summary List matches of a report
// @Description Get persisted matches of a report, best first, optionally filtered by status. Requires API key.
// @Tags Matching
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param status query string false "Match status" Enums(pending, accepted, rejected, completed)
// @Success 200 {array} MatchResponse
// @Failure 400 {object} map[string]string "Invalid report ID or status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id}/matches [get]
func (h *Handler) listMatches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}
	log := h.logger.WithField("method", "listMatches").WithField("id", id)

	var query ListMatchesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matches, err := h.matchingService.ListMatches(c.Request.Context(), id, models.MatchStatus(query.Status))
	if err != nil {
		log.WithError(err).Error("Failed to list matches from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToMatchResponses(matches))
}

// @Summary Run a reconciliation sweep
// @Description Attempt matching for every unmatched report and return the counts. Requires API key.
// @Tags Matching
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} SweepResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /matching/sweep [post]
func (h *Handler) sweep(c *gin.Context) {
	log := h.logger.WithField("method", "sweep")

	result, err := h.sweeper.SweepUnmatched(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to run sweep")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, SweepResultToResponse(result))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func matchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrReportNotFound):
		return http.StatusNotFound, "report not found"
	case errors.Is(err, service.ErrAlreadyMatched):
		return http.StatusConflict, "report already matched"
	case errors.Is(err, service.ErrMatchInProgress):
		return http.StatusConflict, "report matching in progress"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
