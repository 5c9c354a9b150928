package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/learning-insight/internal/controller"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminExamController struct {
	examAdminService service.ExamAdminService
}

func NewAdminExamController(examAdminService service.ExamAdminService) *AdminExamController {
	return &AdminExamController{examAdminService: examAdminService}
}

// CreateExam godoc
// @Summary (Admin) Create the final exam of a journey
// @Description Creates an exam with its full question set. Question numbers must run from 1 without gaps and correct_answer must be one of A, B, C or D.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Param exam_data body dto.ExamCreateDTO true "Exam and all its questions"
// @Success 201 {object} dto.APIResponse{data=dto.ExamAdminResponseDTO} "Exam created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/exams [post]
func (c *AdminExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateExam: Failed to bind JSON")
		controller.RespondBindingError(ctx, err)
		return
	}

	examResp, err := c.examAdminService.CreateExam(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Uint("journeyID", req.JourneyID).Int("questionCount", len(req.Questions)).Msg("Admin CreateExam: Service error")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.Success("Exam created successfully", examResp))
}
