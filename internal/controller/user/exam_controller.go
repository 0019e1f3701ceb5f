package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	attemptService      service.AttemptService
	registrationService service.RegistrationService
}

func NewExamController(attemptService service.AttemptService, registrationService service.RegistrationService) *ExamController {
	return &ExamController{
		attemptService:      attemptService,
		registrationService: registrationService,
	}
}

// Register godoc
// @Summary Register a candidate for an exam
// @Description Registers the candidate (get-or-create by email) and returns the single-use attempt link. Repeating the registration returns the existing link.
// @Tags Candidate
// @Accept json
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param registration body dto.RegisterCandidateDTO true "Candidate details"
// @Success 200 {object} dto.RegistrationResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Exam not found or not active"
// @Router /exams/{exam_id}/register [post]
func (c *ExamController) Register(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid exam ID format"})
		return
	}

	var req dto.RegisterCandidateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Register: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.registrationService.Register(uint(examID), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrExamNotActive):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
		default:
			log.Error().Err(err).Uint64("examID", examID).Msg("Register: service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to register", Details: []string{err.Error()}})
		}
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Open godoc
// @Summary Open an attempt by token
// @Description First qualifying access starts the clock and freezes the question order. A submitted attempt routes to its result, an expired one to the submit path.
// @Tags Candidate
// @Produce json
// @Param token path string true "Attempt token"
// @Success 200 {object} dto.OpenAttemptDTO
// @Failure 404 {object} dto.ErrorResponse "No such attempt"
// @Router /exam/{token} [get]
func (c *ExamController) Open(ctx *gin.Context) {
	token := ctx.Param("token")

	view, err := c.attemptService.Open(token, service.ClientInfo{
		IPAddress: ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
	})
	if err != nil {
		c.renderAttemptError(ctx, token, "Open", err)
		return
	}

	// Past the deadline the question page is never rendered; the caller is
	// routed to the submit path where the implicit submission happens.
	if view.State == "expired" {
		ctx.Redirect(http.StatusFound, view.SubmitURL)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// Submit godoc
// @Summary Submit answers for an attempt
// @Description Grades the attempt exactly once and makes it terminal. Submitting an already-submitted attempt returns the stored result unchanged. GET on this path is the implicit post-expiry submission.
// @Tags Candidate
// @Accept json
// @Produce json
// @Param token path string true "Attempt token"
// @Param submission body dto.AttemptSubmitDTO false "Answers keyed by question ID plus the focus-violation counter"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 400 {object} dto.ErrorResponse "Submit before open"
// @Failure 403 {object} dto.ErrorResponse "Invalid submission method"
// @Failure 404 {object} dto.ErrorResponse "No such attempt"
// @Router /exam/{token}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	token := ctx.Param("token")
	implicit := ctx.Request.Method != http.MethodPost

	var req dto.AttemptSubmitDTO
	if !implicit {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			log.Warn().Err(err).Str("token", token).Msg("Submit: failed to bind JSON")
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
			return
		}
	}

	result, err := c.attemptService.Submit(token, req, implicit)
	if err != nil {
		c.renderAttemptError(ctx, token, "Submit", err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Result godoc
// @Summary Read the result of a submitted attempt
// @Tags Candidate
// @Produce json
// @Param token path string true "Attempt token"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 404 {object} dto.ErrorResponse "No such attempt"
// @Failure 409 {object} dto.ErrorResponse "Attempt not yet submitted"
// @Router /exam/{token}/result [get]
func (c *ExamController) Result(ctx *gin.Context) {
	token := ctx.Param("token")

	result, err := c.attemptService.Result(token)
	if err != nil {
		c.renderAttemptError(ctx, token, "Result", err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *ExamController) renderAttemptError(ctx *gin.Context, token, op string, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "No such attempt"})
	case errors.Is(err, service.ErrInvalidTransition):
		log.Warn().Str("token", token).Str("op", op).Msg("Rejected submit before open")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrInvalidSubmission):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrResultNotReady):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Str("token", token).Str("op", op).Msg("Attempt operation failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal error", Details: []string{err.Error()}})
	}
}
