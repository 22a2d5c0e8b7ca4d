package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/app/services"
	"github.com/unigate/admissions/internal/middleware"
	"github.com/unigate/admissions/internal/pkg/apperrors"
)

// Multipart field names of the documents step
const (
	formTermID               = "termId"
	formAcademicYearID       = "academicYearId"
	formNationalID           = "nationalId"
	formNationalIDCountryID  = "nationalIdCountryId"
	formTranscripts          = "transcripts"
	formTranscriptCountryIDs = "transcriptCountryIds"
)

// ApplicantController serves the signed-in student: profile, application wizard and dashboard
type ApplicantController struct {
	studentService     services.StudentService
	applicationService services.ApplicationService
	documentService    services.DocumentService
	logger             zerolog.Logger
}

// NewApplicantController creates a new ApplicantController
func NewApplicantController(
	studentService services.StudentService,
	applicationService services.ApplicationService,
	documentService services.DocumentService,
	logger zerolog.Logger,
) *ApplicantController {
	return &ApplicantController{
		studentService:     studentService,
		applicationService: applicationService,
		documentService:    documentService,
		logger:             logger,
	}
}

// GetStudent returns the student record of the signed-in user, creating it on first access
// @Summary Current student
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me/student [get]
func (c *ApplicantController) GetStudent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.EnsureForUser(ctx.Request.Context(), userID, middleware.EmailFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student))
}

// SavePersonalInfo is the first wizard step
// @Summary Save personal information
// @Description Creates or updates the student record of the signed-in user
// @Tags application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PersonalInfoRequest true "Personal information"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /me/application/personal [put]
func (c *ApplicantController) SavePersonalInfo(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.PersonalInfoRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateProfile(ctx.Request.Context(), userID, middleware.EmailFrom(ctx), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Failed to save personal information")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(student))
}

// SaveEducation is the second wizard step
// @Summary Save education choice
// @Description Creates or updates the application for the chosen term and academic year
// @Tags application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EducationRequest true "Program choice"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 409 {object} dto.ErrorResponse "Personal information missing or application already submitted"
// @Router /me/application/education [put]
func (c *ApplicantController) SaveEducation(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.EducationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.SaveEducation(ctx.Request.Context(), userID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Failed to save education step")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app))
}

// UploadDocuments is the third wizard step
// @Summary Upload application documents
// @Description Stores a national ID and any number of transcripts. transcriptCountryIds holds one country per transcript, in the same order.
// @Tags application
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param termId formData string true "Term ID"
// @Param academicYearId formData string true "Academic year ID"
// @Param nationalId formData file false "National ID document"
// @Param nationalIdCountryId formData string false "Issuing country of the national ID"
// @Param transcripts formData file false "Transcripts"
// @Param transcriptCountryIds formData []string false "Country of each transcript" collectionFormat(multi)
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 409 {object} dto.ErrorResponse "Education step missing or application already submitted"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 415 {object} dto.ErrorResponse "Unsupported file type"
// @Router /me/application/documents [post]
func (c *ApplicantController) UploadDocuments(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Expected a multipart form"))
		return
	}

	in, err := uploadInputFromForm(form)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	docs, err := c.documentService.Upload(ctx.Request.Context(), userID, in)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Document upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", userID.String()).Int("count", len(docs)).Msg("Documents uploaded")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.UploadResponse{Documents: docs}))
}

// Submit is the final wizard step
// @Summary Submit application
// @Tags application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitRequest true "Application to submit"
// @Success 200 {object} dto.APIResponse{data=models.ApplicationSummary}
// @Failure 400 {object} dto.ErrorResponse "Terms not accepted"
// @Failure 409 {object} dto.ErrorResponse "Earlier step missing or already submitted"
// @Router /me/application/submit [post]
func (c *ApplicantController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	summary, err := c.applicationService.Submit(ctx.Request.Context(), userID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Application submission failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("userID", userID.String()).Str("applicationID", summary.ID.String()).Msg("Application submitted")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}

// Progress tells the wizard where to resume
// @Summary Wizard progress
// @Tags application
// @Produce json
// @Security BearerAuth
// @Param termId query string true "Term ID"
// @Param academicYearId query string true "Academic year ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProgressResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /me/application/progress [get]
func (c *ApplicantController) Progress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var q dto.ApplicationKeyQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	progress, err := c.applicationService.Progress(ctx.Request.Context(), userID,
		uuid.MustParse(q.TermID), uuid.MustParse(q.AcademicYearID))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(progress))
}

// ListApplications returns the applications of the signed-in student
// @Summary My applications
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationSummary}
// @Router /me/applications [get]
func (c *ApplicantController) ListApplications(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	apps, err := c.applicationService.ListMine(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(apps))
}

// ListDocuments returns the documents of one of the student's applications
// @Summary Application documents
// @Description Each document carries a short-lived download link
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.DocumentResponse}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /me/applications/{id}/documents [get]
func (c *ApplicantController) ListDocuments(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	appID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	docs, err := c.documentService.ListForOwner(ctx.Request.Context(), userID, appID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(docs))
}

// DeleteDocument removes a document before the application is submitted
// @Summary Delete document
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Failure 409 {object} dto.ErrorResponse "Application already submitted"
// @Router /me/documents/{id} [delete]
func (c *ApplicantController) DeleteDocument(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	docID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.documentService.DeleteForOwner(ctx.Request.Context(), userID, docID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Document deleted"}))
}

// uploadInputFromForm maps the documents step form onto the service input
func uploadInputFromForm(form *multipart.Form) (services.UploadInput, error) {
	var in services.UploadInput
	var err error

	if in.TermID, err = formUUID(form, formTermID); err != nil {
		return in, err
	}
	if in.AcademicYearID, err = formUUID(form, formAcademicYearID); err != nil {
		return in, err
	}

	if files := form.File[formNationalID]; len(files) > 0 {
		upload := fileUpload(files[0])
		in.NationalID = &upload
		if len(form.Value[formNationalIDCountryID]) > 0 && form.Value[formNationalIDCountryID][0] != "" {
			countryID, err := formUUID(form, formNationalIDCountryID)
			if err != nil {
				return in, err
			}
			in.NationalIDCountryID = &countryID
		}
	}

	for _, fh := range form.File[formTranscripts] {
		in.Transcripts = append(in.Transcripts, fileUpload(fh))
	}
	for _, raw := range form.Value[formTranscriptCountryIDs] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return in, apperrors.NewValidationError(formTranscriptCountryIDs + " must contain valid UUIDs")
		}
		in.TranscriptCountryIDs = append(in.TranscriptCountryIDs, id)
	}

	return in, nil
}

func formUUID(form *multipart.Form, field string) (uuid.UUID, error) {
	values := form.Value[field]
	if len(values) == 0 || values[0] == "" {
		return uuid.Nil, apperrors.NewValidationError(field + " is required")
	}
	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(field + " must be a valid UUID")
	}
	return id, nil
}

func fileUpload(fh *multipart.FileHeader) services.FileUpload {
	return services.FileUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
