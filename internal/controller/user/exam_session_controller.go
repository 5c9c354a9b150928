package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/learning-insight/internal/controller"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/middleware"
	"github.com/lshigami/learning-insight/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamSessionController struct {
	examSessionService service.ExamSessionService
}

func NewExamSessionController(ess service.ExamSessionService) *ExamSessionController {
	return &ExamSessionController{examSessionService: ess}
}

// StartSession godoc
// @Summary (User) Start or resume a final exam
// @Description Registers the user for the exam on first call and starts the timer once. Later calls resume the same session with the remaining time derived from the stored start.
// @Tags User - Exams
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Param user_id query int false "User ID when no bearer token is sent"
// @Success 200 {object} dto.APIResponse{data=dto.ExamSessionDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID, exam already completed (invalid_state) or time expired (expired)"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Failure 403 {object} dto.ErrorResponse "Journey tutorials not completed"
// @Failure 404 {object} dto.ErrorResponse "Exam not found or has no questions"
// @Failure 500 {object} dto.ErrorResponse "Storage error"
// @Router /exams/{exam_id}/start [get]
func (c *ExamSessionController) StartSession(ctx *gin.Context) {
	examID, err := controller.ParseIDParam(ctx, "exam_id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	userID, err := middleware.ResolveUserID(ctx, nil)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	session, err := c.examSessionService.StartOrResumeSession(ctx.Request.Context(), examID, userID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	message := "Exam session started"
	if session.Resumed {
		message = "Exam session resumed"
	}
	ctx.JSON(http.StatusOK, dto.Success(message, session))
}

// SubmitSession godoc
// @Summary (User) Submit the final exam
// @Description Scores the answers against the answer key and closes the session. Each answer selects an option by its text. Storage failures after scoring do not fail the request; submission_id is then null.
// @Tags User - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Param submission body dto.ExamSubmitDTO true "Answers and optional client timing"
// @Success 200 {object} dto.APIResponse{data=dto.ExamResultDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid body, session not started or already submitted, or late"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Storage error"
// @Router /exams/{exam_id}/submit [post]
func (c *ExamSessionController) SubmitSession(ctx *gin.Context) {
	examID, err := controller.ParseIDParam(ctx, "exam_id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	var req dto.ExamSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err, req.UserID)
		return
	}
	userID, err := middleware.ResolveUserID(ctx, req.UserID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	log.Info().Uint("examID", examID).Uint("userID", userID).Int("answerCount", len(req.Answers)).Msg("Received request to submit exam")

	result, err := c.examSessionService.SubmitSession(ctx.Request.Context(), examID, userID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("Exam submitted", result))
}

// GetMySubmissions godoc
// @Summary (User) List my submissions for an exam
// @Tags User - Exams
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Param user_id query int false "User ID when no bearer token is sent"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubmissionSummaryDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid Exam ID"
// @Failure 401 {object} dto.ErrorResponse "No user identity"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{exam_id}/my-submissions [get]
func (c *ExamSessionController) GetMySubmissions(ctx *gin.Context) {
	examID, err := controller.ParseIDParam(ctx, "exam_id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	userID, err := middleware.ResolveUserID(ctx, nil)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	submissions, err := c.examSessionService.ListSubmissions(ctx.Request.Context(), examID, userID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("", submissions))
}

// GetJourneyExam godoc
// @Summary (User) Get the final exam of a journey
// @Tags User - Exams
// @Produce json
// @Param journey_id path int true "Journey ID"
// @Success 200 {object} dto.APIResponse{data=dto.JourneyExamDTO}
// @Failure 400 {object} dto.ErrorResponse "Invalid Journey ID"
// @Failure 404 {object} dto.ErrorResponse "Journey has no exam"
// @Router /journeys/{journey_id}/exam [get]
func (c *ExamSessionController) GetJourneyExam(ctx *gin.Context) {
	journeyID, err := controller.ParseIDParam(ctx, "journey_id")
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}

	exam, err := c.examSessionService.GetJourneyExam(ctx.Request.Context(), journeyID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.Success("", exam))
}

// respondBindingError refuses an anonymous request before judging its body,
// so a client without identity always sees 401.
func respondBindingError(ctx *gin.Context, err error, bodyUserID *uint) {
	if _, idErr := middleware.ResolveUserID(ctx, bodyUserID); idErr != nil {
		switch service.KindOf(idErr) {
		case service.KindUnauthenticated, service.KindForbidden:
			controller.RespondError(ctx, idErr)
			return
		}
	}
	controller.RespondBindingError(ctx, err)
}
