package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminExamController struct {
	adminExamService service.AdminExamService
	reportService    service.ReportService
}

func NewAdminExamController(adminExamService service.AdminExamService, reportService service.ReportService) *AdminExamController {
	return &AdminExamController{
		adminExamService: adminExamService,
		reportService:    reportService,
	}
}

// CreateExam godoc
// @Summary (Admin) Create a new exam with questions and choices
// @Tags Admin
// @Accept json
// @Produce json
// @Param exam_data body dto.ExamCreateDTO true "Exam with nested questions and choices"
// @Success 201 {object} model.Exam
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Router /admin/exams [post]
func (c *AdminExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateExam: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	exam, err := c.adminExamService.CreateExam(req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateExam: service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create exam", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// ListExams godoc
// @Summary (Admin) List all exams
// @Tags Admin
// @Produce json
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/exams [get]
func (c *AdminExamController) ListExams(ctx *gin.Context) {
	exams, err := c.adminExamService.ListExams()
	if err != nil {
		log.Error().Err(err).Msg("Admin ListExams: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list exams", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// ListAttempts godoc
// @Summary (Admin) List all attempts for an exam
// @Tags Admin
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /admin/exams/{exam_id}/attempts [get]
func (c *AdminExamController) ListAttempts(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("exam_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid exam ID format"})
		return
	}

	attempts, err := c.adminExamService.ListAttempts(uint(examID))
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Uint64("examID", examID).Msg("Admin ListAttempts: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list attempts", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// ListAnswers godoc
// @Summary (Admin) List the graded answers of one attempt
// @Tags Admin
// @Produce json
// @Param token path string true "Attempt token"
// @Success 200 {array} model.Answer
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /admin/attempt/{token}/answers [get]
func (c *AdminExamController) ListAnswers(ctx *gin.Context) {
	token := ctx.Param("token")

	answers, err := c.adminExamService.ListAnswers(token)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Str("token", token).Msg("Admin ListAnswers: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list answers", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, answers)
}

// ExportAttempts godoc
// @Summary (Admin) Export all attempt results as CSV
// @Tags Admin
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/attempts/export [get]
func (c *AdminExamController) ExportAttempts(ctx *gin.Context) {
	filename := "attempts-" + time.Now().Format("2006-01-02") + ".csv"
	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := c.reportService.ExportAttemptsCSV(ctx.Writer); err != nil {
		log.Error().Err(err).Msg("Admin ExportAttempts: export failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to export attempts", Details: []string{err.Error()}})
		return
	}
}
