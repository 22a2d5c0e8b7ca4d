package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/app/services"
	"github.com/unigate/admissions/internal/middleware"
)

// LookupController serves the lookup tables to administrators and the wizard dropdowns
type LookupController struct {
	lookupService services.LookupService
	logger        zerolog.Logger
}

// NewLookupController creates a new LookupController
func NewLookupController(lookupService services.LookupService, logger zerolog.Logger) *LookupController {
	return &LookupController{
		lookupService: lookupService,
		logger:        logger,
	}
}

// Tables lists the lookup tables
// @Summary List lookup tables
// @Description Returns the slug and label of every lookup table
// @Tags lookups-admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]services.LookupInfo}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/lookups [get]
func (c *LookupController) Tables(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(c.lookupService.Tables()))
}

// List returns the rows of a lookup table
// @Summary List lookup rows
// @Description Returns the active rows of a lookup table, or every row with all=true
// @Tags lookups-admin
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lookup table" Enums(terms, academic-years, academic-levels, degree-programs, countries, application-statuses, scholarships, student-types, student-locations, roles, user-roles, genders)
// @Param all query bool false "Include inactive rows"
// @Success 200 {object} dto.APIResponse{data=[]object}
// @Failure 404 {object} dto.ErrorResponse "Unknown lookup table"
// @Router /admin/lookups/{slug} [get]
func (c *LookupController) List(ctx *gin.Context) {
	var q dto.LookupListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	records, err := c.lookupService.List(ctx.Request.Context(), ctx.Param("slug"), q.All)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(records))
}

// Get returns one lookup row
// @Summary Get lookup row
// @Tags lookups-admin
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lookup table"
// @Param id path string true "Row ID"
// @Success 200 {object} dto.APIResponse{data=object}
// @Failure 400 {object} dto.ErrorResponse "Invalid id"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /admin/lookups/{slug}/{id} [get]
func (c *LookupController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.lookupService.Get(ctx.Request.Context(), ctx.Param("slug"), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(record))
}

// Create adds a lookup row
// @Summary Create lookup row
// @Description The body holds the fields of the chosen table, e.g. {"termCode":"FALL","termName":"Fall"} for terms
// @Tags lookups-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lookup table"
// @Param request body object true "Row fields"
// @Success 201 {object} dto.APIResponse{data=object}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Unknown lookup table"
// @Failure 409 {object} dto.ErrorResponse "Duplicate code"
// @Router /admin/lookups/{slug} [post]
func (c *LookupController) Create(ctx *gin.Context) {
	slug := ctx.Param("slug")
	record, err := c.lookupService.NewRecord(slug)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !middleware.BindJSON(ctx, record) {
		return
	}

	created, err := c.lookupService.Create(ctx.Request.Context(), slug, record)
	if err != nil {
		c.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to create lookup row")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("slug", slug).Str("id", created.Base().ID.String()).Msg("Lookup row created")
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(created))
}

// Update replaces the fields of a lookup row
// @Summary Update lookup row
// @Tags lookups-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lookup table"
// @Param id path string true "Row ID"
// @Param request body object true "Row fields"
// @Success 200 {object} dto.APIResponse{data=object}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate code"
// @Router /admin/lookups/{slug}/{id} [put]
func (c *LookupController) Update(ctx *gin.Context) {
	slug := ctx.Param("slug")
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	record, err := c.lookupService.NewRecord(slug)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !middleware.BindJSON(ctx, record) {
		return
	}

	updated, err := c.lookupService.Update(ctx.Request.Context(), slug, id, record)
	if err != nil {
		c.logger.Warn().Err(err).Str("slug", slug).Str("id", id.String()).Msg("Failed to update lookup row")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(updated))
}

// SetActive activates or deactivates a lookup row
// @Summary Activate or deactivate lookup row
// @Tags lookups-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Lookup table"
// @Param id path string true "Row ID"
// @Param request body dto.SetActiveRequest true "New state"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /admin/lookups/{slug}/{id}/active [patch]
func (c *LookupController) SetActive(ctx *gin.Context) {
	slug := ctx.Param("slug")
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.lookupService.SetActive(ctx.Request.Context(), slug, id, *req.IsActive); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Deactivated"
	if *req.IsActive {
		message = "Activated"
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: message}))
}

// Options returns the active rows of a public lookup table
// @Summary Dropdown options
// @Description Active rows of a lookup table used by the application form
// @Tags lookups
// @Produce json
// @Param slug path string true "Lookup table" Enums(terms, academic-years, academic-levels, degree-programs, countries, genders, application-statuses)
// @Success 200 {object} dto.APIResponse{data=[]object}
// @Failure 404 {object} dto.ErrorResponse "Unknown lookup table"
// @Router /lookups/{slug} [get]
func (c *LookupController) Options(ctx *gin.Context) {
	raw, err := c.lookupService.Options(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(raw))
}
