package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/learning-insight/internal/controller"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/middleware"
	"github.com/lshigami/learning-insight/internal/service"
)

type InsightController struct {
	insightService service.InsightService
}

func NewInsightController(is service.InsightService) *InsightController {
	return &InsightController{insightService: is}
}

// GenerateInsights godoc
// @Summary (User) Generate learning insights
// @Description Sends the learner's features to the configured insight provider. Without stats the stored progress summary is used.
// @Tags User - Insights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InsightRequestDTO true "Optional stats and profile"
// @Success 200 {object} dto.APIResponse{data=dto.InsightResponseDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid body"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Failure 502 {object} dto.ErrorResponse "Insight provider failed"
// @Router /insights [post]
func (c *InsightController) GenerateInsights(ctx *gin.Context) {
	var req dto.InsightRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err, req.UserID)
		return
	}
	userID, err := middleware.ResolveUserID(ctx, req.UserID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	profileName := ""
	if req.UserProfile != nil {
		profileName = req.UserProfile.Name
	}
	insights, err := c.insightService.GenerateInsights(ctx.Request.Context(), userID, req.Stats, profileName)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("Insights generated", insights))
}

// Health godoc
// @Summary Insight provider status
// @Tags User - Insights
// @Produce json
// @Success 200 {object} dto.InsightHealthDTO
// @Router /insights/health [get]
func (c *InsightController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.insightService.Health())
}
