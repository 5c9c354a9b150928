package user

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/learning-insight/internal/controller"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/middleware"
	"github.com/lshigami/learning-insight/internal/service"
)

type TrackingController struct {
	trackingService service.TrackingService
	summaryService  service.ProgressSummaryService
}

func NewTrackingController(ts service.TrackingService, pss service.ProgressSummaryService) *TrackingController {
	return &TrackingController{trackingService: ts, summaryService: pss}
}

// TrackTutorial godoc
// @Summary (User) Record opening or completing a tutorial
// @Tags User - Tracking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tutorial_id path int true "Tutorial ID"
// @Param track body dto.TrackTutorialDTO true "Action: start or complete"
// @Success 200 {object} dto.APIResponse{data=dto.TrackResultDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid tutorial ID or action"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Failure 500 {object} dto.ErrorResponse "Storage error"
// @Router /tracking/tutorials/{tutorial_id}/track [post]
func (c *TrackingController) TrackTutorial(ctx *gin.Context) {
	tutorialID, err := controller.ParseIDParam(ctx, "tutorial_id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	var req dto.TrackTutorialDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err, req.UserID)
		return
	}
	userID, err := middleware.ResolveUserID(ctx, req.UserID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	result, err := c.trackingService.TrackTutorial(ctx.Request.Context(), userID, tutorialID, req.Action)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	message := "Tutorial tracking started or updated"
	switch {
	case result.AlreadyCompleted:
		message = "Tutorial was already completed"
	case req.Action == service.TrackActionComplete:
		message = "Tutorial completed"
	}
	ctx.JSON(http.StatusOK, dto.Success(message, result))
}

// Heartbeat godoc
// @Summary (User) Report that a tutorial is still open
// @Description Adds the time since the previous heartbeat to the study duration when the gap is under five minutes.
// @Tags User - Tracking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param heartbeat body dto.HeartbeatDTO true "Tutorial and journey"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityDTO}
// @Failure 400 {object} dto.ErrorResponse "Missing identifiers"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Router /tracking/heartbeat [post]
func (c *TrackingController) Heartbeat(ctx *gin.Context) {
	var req dto.HeartbeatDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err, req.UserID)
		return
	}
	userID, err := middleware.ResolveUserID(ctx, req.UserID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	activity, err := c.trackingService.Heartbeat(ctx.Request.Context(), userID, req.TutorialID, req.JourneyID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("Heartbeat received", activity))
}

// GetSummary godoc
// @Summary (User) Summarize tracked activity in a date range
// @Description Both dates are required to set a range (YYYY-MM-DD or RFC3339). Without them the last seven days are used.
// @Tags User - Tracking
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Range start"
// @Param endDate query string false "Range end, inclusive of the whole day"
// @Param user_id query int false "User ID when no bearer token is sent"
// @Success 200 {object} dto.APIResponse{data=dto.TrackingSummaryDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid dates"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Router /tracking/summary [get]
func (c *TrackingController) GetSummary(ctx *gin.Context) {
	userID, err := middleware.ResolveUserID(ctx, nil)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	var start, end *time.Time
	if ctx.Query("startDate") != "" && ctx.Query("endDate") != "" {
		s, errStart := parseDate(ctx.Query("startDate"))
		e, errEnd := parseDate(ctx.Query("endDate"))
		if errStart != nil || errEnd != nil {
			controller.RespondError(ctx, &service.Error{Kind: service.KindBadRequest, Message: "startDate and endDate must be YYYY-MM-DD or RFC3339"})
			return
		}
		start, end = &s, &e
	}

	summary, err := c.trackingService.Summary(ctx.Request.Context(), userID, start, end)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("Tracking summary retrieved", summary))
}

// GetActivities godoc
// @Summary (User) List recently viewed tutorials
// @Tags User - Tracking
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 5, max 100)"
// @Param offset query int false "Offset (default 0)"
// @Param user_id query int false "User ID when no bearer token is sent"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityPageDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Router /tracking/activities [get]
func (c *TrackingController) GetActivities(ctx *gin.Context) {
	userID, err := middleware.ResolveUserID(ctx, nil)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	limit, errLimit := strconv.Atoi(ctx.DefaultQuery("limit", "5"))
	offset, errOffset := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if errLimit != nil || errOffset != nil {
		controller.RespondError(ctx, &service.Error{Kind: service.KindBadRequest, Message: "limit and offset must be integers"})
		return
	}

	page, err := c.trackingService.Activities(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("", page))
}

// UpdateSummary godoc
// @Summary (User) Recompute my progress summary
// @Tags User - Tracking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpdateSummaryDTO false "Optional user_id when no bearer token is sent"
// @Success 200 {object} dto.APIResponse{data=model.UserProgressSummary}
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Failure 500 {object} dto.ErrorResponse "Storage error"
// @Router /tracking/update-summary [post]
func (c *TrackingController) UpdateSummary(ctx *gin.Context) {
	var req dto.UpdateSummaryDTO
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondBindingError(ctx, err, req.UserID)
			return
		}
	}
	userID, err := middleware.ResolveUserID(ctx, req.UserID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	summary, err := c.summaryService.RefreshSummary(ctx.Request.Context(), userID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("Progress summary updated", summary))
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
