package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/app/services"
	"github.com/unigate/admissions/internal/middleware"
	"github.com/unigate/admissions/internal/pkg/helpers"
)

// AdminController serves the review screens of administrators
type AdminController struct {
	studentService  services.StudentService
	documentService services.DocumentService
	reviewService   services.ReviewService
	logger          zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(
	studentService services.StudentService,
	documentService services.DocumentService,
	reviewService services.ReviewService,
	logger zerolog.Logger,
) *AdminController {
	return &AdminController{
		studentService:  studentService,
		documentService: documentService,
		reviewService:   reviewService,
		logger:          logger,
	}
}

// ListStudents returns students with their latest application
// @Summary List students
// @Description Filters are case-insensitive; search matches school id, names, date of birth, term, year, status, notes and country
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status name"
// @Param term query string false "Term name"
// @Param academicYear query string false "Academic year name"
// @Param country query string false "Current country name"
// @Param search query string false "Free text search"
// @Param sortBy query string false "Sort key" Enums(school_id, term, academic_year, status, notes, first_name, middle_name, last_name, additional_name, date_of_birth, current_country)
// @Param sortDir query string false "Sort direction" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.StudentOverview}}
// @Failure 400 {object} dto.ErrorResponse "Invalid sort field"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/students [get]
func (c *AdminController) ListStudents(ctx *gin.Context) {
	var q dto.StudentListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page := helpers.PageFromQuery(ctx)

	items, total, err := c.studentService.ListWithLatestApplication(ctx.Request.Context(), q, page.Number, page.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: page.Info(total),
	}))
}

// GetStudent returns one student
// @Summary Get student
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id} [get]
func (c *AdminController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student))
}

// ListStudentApplications returns the applications of one student
// @Summary Student applications
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationSummary}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id}/applications [get]
func (c *AdminController) ListStudentApplications(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	apps, err := c.studentService.ListApplications(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(apps))
}

// ListApplicationDocuments returns the documents of an application
// @Summary Application documents
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.DocumentResponse}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id}/documents [get]
func (c *AdminController) ListApplicationDocuments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	docs, err := c.documentService.ListForApplication(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(docs))
}

// ReviewApplication updates the review fields of an application
// @Summary Review application
// @Description Changes status, notes, scholarship, student type or location. A status change notifies the student.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.ReviewRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationSummary}
// @Failure 400 {object} dto.ErrorResponse "Nothing to update"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/applications/{id} [patch]
func (c *AdminController) ReviewApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	summary, err := c.reviewService.UpdateApplication(ctx.Request.Context(), id, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("applicationID", id.String()).Msg("Application review failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	adminID, _ := middleware.UserIDFrom(ctx)
	c.logger.Info().
		Str("applicationID", id.String()).
		Str("adminID", adminID.String()).
		Msg("Application reviewed")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}
