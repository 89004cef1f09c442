package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fittrack/internal/progress"
	"fittrack/internal/services"
)

// ProgressHandler serves streaks, achievements and stats.
type ProgressHandler struct {
	progressService services.ProgressServicer
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService services.ProgressServicer) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress returns the report for everything the user has logged
// @Summary     Progress report
// @Tags        progress
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} progress.Report "Report"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.progressService.GetReport(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PreviewProgress runs the engine on a posted history without storing it
// @Summary     Preview a progress report
// @Tags        progress
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body progress.Input true "Activity history"
// @Success     200 {object} progress.Report "Report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /progress/preview [post]
func (h *ProgressHandler) PreviewProgress(c *gin.Context) {
	var in progress.Input
	if !bindJSON(c, &in) {
		return
	}
	c.JSON(http.StatusOK, h.progressService.Preview(in))
}

// GetCatalogue lists every achievement
// @Summary     Achievement catalogue
// @Tags        progress
// @Produce     json
// @Success     200 {array} progress.Descriptor "Achievements"
// @Router      /progress/achievements [get]
func (h *ProgressHandler) GetCatalogue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": progress.Catalogue()})
}
