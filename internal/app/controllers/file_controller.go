package controllers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/middleware"
	"github.com/unigate/admissions/internal/pkg/filestorage"
)

// FileController serves locally stored documents behind signed links
type FileController struct {
	storage filestorage.Storage
	signer  *filestorage.URLSigner
	logger  zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(storage filestorage.Storage, signer *filestorage.URLSigner, logger zerolog.Logger) *FileController {
	return &FileController{
		storage: storage,
		signer:  signer,
		logger:  logger,
	}
}

// Download streams the file a signed link points to
// @Summary Download document
// @Description Serves the file named by a signed, short-lived token
// @Tags files
// @Produce application/octet-stream
// @Param token query string true "Signed file token"
// @Success 200 {file} file
// @Failure 403 {object} dto.ErrorResponse "Invalid or expired link"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Router /files [get]
func (c *FileController) Download(ctx *gin.Context) {
	storagePath, err := c.signer.Verify(ctx.Query("token"))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error())
		ctx.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
		return
	}

	obj, err := c.storage.Open(ctx.Request.Context(), storagePath)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotFound) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "File not found")
			ctx.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := "attachment"
	if filestorage.IsDocumentMIME(contentType) {
		disposition = "inline"
	}
	ctx.Header("Content-Type", contentType)
	ctx.Header("Content-Disposition", disposition+"; filename=\""+path.Base(storagePath)+"\"")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("Cache-Control", "private, no-store")
	if obj.Size > 0 {
		ctx.Header("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	ctx.Status(http.StatusOK)

	if _, err := io.Copy(ctx.Writer, obj.Body); err != nil {
		c.logger.Warn().Err(err).Str("path", storagePath).Msg("File download interrupted")
	}
}
