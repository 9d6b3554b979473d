package http

import (
	"net/http"
	"strconv"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DocumentHandler handles company document attachments.
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *logger.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService, logger *logger.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, logger: logger}
}

// RegisterCompanyRoutes registers the per-company document routes to the companies group.
func (h *DocumentHandler) RegisterCompanyRoutes(g *echo.Group) {
	g.POST("/:id/documents", h.UploadDocument)
	g.GET("/:id/documents", h.ListDocuments)
	g.POST("/:id/documents/upload-url", h.UploadURL)
}

// RegisterRoutes registers the document routes to the Echo group.
func (h *DocumentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id/download", h.DownloadURL)
	g.DELETE("/:id", h.DeleteDocument)
}

// UploadDocument godoc
// @Summary Upload a document for a company
// @Tags documents
// @Accept  multipart/form-data
// @Produce  json
// @Param   id    path      string  true  "Company ID"
// @Param   file  formData  file    true  "Document"
// @Success 201 {object} entity.CompanyDocument
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /companies/{id}/documents [post]
func (h *DocumentHandler) UploadDocument(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing file")
	}
	file, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request().Context(), id, service.UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        file,
	}, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListDocuments godoc
// @Summary List company documents
// @Tags documents
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {array} entity.CompanyDocument
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id}/documents [get]
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	docs, err := h.documentService.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// UploadURL godoc
// @Summary Presign a direct upload for a company document
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id       path    string                true    "Company ID"
// @Param   request  body    dto.UploadURLRequest  true    "File to upload"
// @Success 200 {object} dto.SignedURLResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /companies/{id}/documents/upload-url [post]
func (h *DocumentHandler) UploadURL(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req dto.UploadURLRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	signed, err := h.documentService.UploadURL(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, signed)
}

// DownloadURL godoc
// @Summary Presign a document download
// @Tags documents
// @Produce  json
// @Param   id          path    string  true   "Document ID"
// @Param   attachment  query   bool    false  "Force a download under the original file name"
// @Success 200 {object} dto.SignedURLResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) DownloadURL(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	attachment, _ := strconv.ParseBool(c.QueryParam("attachment"))

	signed, err := h.documentService.DownloadURL(c.Request().Context(), id, attachment)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, signed)
}

// DeleteDocument godoc
// @Summary Delete a document and its stored object
// @Tags documents
// @Param   id  path    string true    "Document ID"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.documentService.Delete(c.Request().Context(), id, actor(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
