package http

import (
	"encoding/json"
	"net/http"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CompanyHandler handles HTTP requests for pipeline companies.
type CompanyHandler struct {
	companyService    service.CompanyService
	enrichmentService service.EnrichmentService
	logger            *logger.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService service.CompanyService, enrichmentService service.EnrichmentService, logger *logger.Logger) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, enrichmentService: enrichmentService, logger: logger}
}

// RegisterRoutes registers the company routes to the Echo group.
func (h *CompanyHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateCompany)
	g.GET("", h.ListCompanies)
	g.POST("/import", h.ImportCompanies)
	g.POST("/enrich", h.EnrichCompanies)
	g.GET("/:id", h.GetCompany)
	g.PATCH("/:id", h.UpdateCompany)
	g.POST("/:id/stage", h.PromoteStage)
	g.POST("/:id/enrich", h.EnrichCompany)
	g.GET("/:id/notes", h.ListNotes)
	g.POST("/:id/notes", h.AddNote)
	g.GET("/:id/audit", h.AuditHistory)
}

// CreateCompany godoc
// @Summary Create a company
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company  body    dto.CreateCompanyRequest   true    "Company to create"
// @Success 201 {object} entity.Company
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies [post]
func (h *CompanyHandler) CreateCompany(c echo.Context) error {
	var req dto.CreateCompanyRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	company, err := h.companyService.Create(c.Request().Context(), &req, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, company)
}

// ListCompanies godoc
// @Summary List companies
// @Tags companies
// @Produce  json
// @Param   stage   query   string  false  "Pipeline stage (L0-L5) or none"
// @Param   search  query   string  false  "Case-insensitive name search"
// @Param   limit   query   int     false  "Page size"
// @Param   offset  query   int     false  "Page offset"
// @Success 200 {array} entity.Company
// @Failure 400 {object} dto.ErrorResponse
// @Router /companies [get]
func (h *CompanyHandler) ListCompanies(c echo.Context) error {
	var filter dto.CompanyFilter
	if err := bind(c, &filter); err != nil {
		return respondError(c, h.logger, err)
	}

	companies, err := h.companyService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, companies)
}

// GetCompany godoc
// @Summary Get a company by ID
// @Tags companies
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {object} entity.Company
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	company, err := h.companyService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, company)
}

// UpdateCompany godoc
// @Summary Update company fields
// @Description Writes whitelisted columns; null clears a column. The pipeline stage is changed through /stage.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   id      path    string          true    "Company ID"
// @Param   fields  body    object          true    "Column values keyed by column name"
// @Success 200 {object} entity.Company
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id} [patch]
func (h *CompanyHandler) UpdateCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	// Decoded directly: echo's binder would copy path params into the map.
	var fields map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return badRequest(c, "invalid request payload")
	}

	company, err := h.companyService.Update(c.Request().Context(), id, fields, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, company)
}

// ImportCompanies godoc
// @Summary Bulk import companies
// @Description Each record is inserted on its own; failures are reported per record.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   companies  body    dto.ImportCompaniesRequest   true    "Records to import"
// @Success 200 {object} dto.ImportSummary
// @Failure 400 {object} dto.ErrorResponse
// @Router /companies/import [post]
func (h *CompanyHandler) ImportCompanies(c echo.Context) error {
	var req dto.ImportCompaniesRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.companyService.Import(c.Request().Context(), &req, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// PromoteStage godoc
// @Summary Promote a company to a later pipeline stage
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   id     path    string                   true    "Company ID"
// @Param   stage  body    dto.PromoteStageRequest  true    "Target stage"
// @Success 200 {object} entity.Company
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /companies/{id}/stage [post]
func (h *CompanyHandler) PromoteStage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req dto.PromoteStageRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	company, err := h.companyService.PromoteStage(c.Request().Context(), id, entity.PipelineStage(req.Stage), actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, company)
}

// EnrichCompany godoc
// @Summary Fill missing company fields with the agent
// @Tags enrichment
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {object} dto.EnrichmentResult
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /companies/{id}/enrich [post]
func (h *CompanyHandler) EnrichCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.enrichmentService.Enrich(c.Request().Context(), id, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

// EnrichCompanies godoc
// @Summary Enrich several companies in order
// @Tags enrichment
// @Accept  json
// @Produce  json
// @Param   request  body    dto.BatchEnrichRequest  true    "Company IDs"
// @Success 200 {object} dto.BatchEnrichResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /companies/enrich [post]
func (h *CompanyHandler) EnrichCompanies(c echo.Context) error {
	var req dto.BatchEnrichRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	ids := make([]uuid.UUID, 0, len(req.CompanyIDs))
	for _, raw := range req.CompanyIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	resp, err := h.enrichmentService.EnrichBatch(c.Request().Context(), ids, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// AddNote godoc
// @Summary Append a note to a company
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   id    path    string                 true    "Company ID"
// @Param   note  body    dto.CreateNoteRequest  true    "Note"
// @Success 201 {object} entity.CompanyNote
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id}/notes [post]
func (h *CompanyHandler) AddNote(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req dto.CreateNoteRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	note, err := h.companyService.AddNote(c.Request().Context(), id, req.Body, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, note)
}

// ListNotes godoc
// @Summary List company notes
// @Tags companies
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {array} entity.CompanyNote
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id}/notes [get]
func (h *CompanyHandler) ListNotes(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	notes, err := h.companyService.ListNotes(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, notes)
}

// AuditHistory godoc
// @Summary Company lifecycle history, newest first
// @Tags companies
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {array} entity.DealAuditLog
// @Failure 404 {object} dto.ErrorResponse
// @Router /companies/{id}/audit [get]
func (h *CompanyHandler) AuditHistory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	history, err := h.companyService.AuditHistory(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, history)
}
