package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/app/services"
	"github.com/unigate/admissions/internal/middleware"
)

// IntakeController accepts complete applications in a single request
type IntakeController struct {
	applicationService services.ApplicationService
	logger             zerolog.Logger
}

// NewIntakeController creates a new IntakeController
func NewIntakeController(applicationService services.ApplicationService, logger zerolog.Logger) *IntakeController {
	return &IntakeController{
		applicationService: applicationService,
		logger:             logger,
	}
}

// Submit runs the personal, education and submit steps in one go
// @Summary One-shot application
// @Description Saves personal and education information and submits the application. The email must be the signed-in user's.
// @Tags application
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.IntakeRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.ApplicationSummary}
// @Failure 400 {object} dto.ErrorResponse "Missing required fields"
// @Failure 403 {object} dto.ErrorResponse "Email does not match the session"
// @Failure 409 {object} dto.ErrorResponse "Already submitted"
// @Router /applications/intake [post]
func (c *IntakeController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.IntakeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	summary, err := c.applicationService.Intake(ctx.Request.Context(), userID, middleware.EmailFrom(ctx), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Intake submission failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(summary))
}
