package http

import (
	"net/http"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DiscoveryHandler handles HTTP requests for discovery runs and their results.
type DiscoveryHandler struct {
	discoveryService service.DiscoveryService
	logger           *logger.Logger
}

// NewDiscoveryHandler creates a new DiscoveryHandler.
func NewDiscoveryHandler(discoveryService service.DiscoveryService, logger *logger.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{discoveryService: discoveryService, logger: logger}
}

// RegisterRoutes registers the discovery routes to the Echo group.
func (h *DiscoveryHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/run", h.RunDiscovery)
	g.GET("/results", h.ListResults)
	g.POST("/results/:id/add", h.AddToPipeline)
	g.DELETE("/results/:id", h.DismissResult)
}

// RunDiscovery godoc
// @Summary Run discovery for an ad-hoc thesis
// @Tags discovery
// @Accept  json
// @Produce  json
// @Param   request  body    dto.RunDiscoveryRequest  true    "Thesis text"
// @Success 200 {object} dto.DiscoveryRunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /discovery/run [post]
func (h *DiscoveryHandler) RunDiscovery(c echo.Context) error {
	var req dto.RunDiscoveryRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	resp, err := h.discoveryService.Run(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListResults godoc
// @Summary List discovery results
// @Tags discovery
// @Produce  json
// @Param   status     query   string  false  "pending (default), added or all"
// @Param   thesis_id  query   string  false  "Thesis ID"
// @Success 200 {array} entity.DiscoveryResult
// @Failure 400 {object} dto.ErrorResponse
// @Router /discovery/results [get]
func (h *DiscoveryHandler) ListResults(c echo.Context) error {
	var filter dto.DiscoveryFilter
	if err := bind(c, &filter); err != nil {
		return respondError(c, h.logger, err)
	}

	results, err := h.discoveryService.List(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, results)
}

// AddToPipeline godoc
// @Summary Add a discovery result to the pipeline
// @Description Creates the company at L0 unless another stage is given. A result can be added once.
// @Tags discovery
// @Accept  json
// @Produce  json
// @Param   id       path    string                    true    "Discovery result ID"
// @Param   request  body    dto.AddToPipelineRequest  false   "Initial stage"
// @Success 201 {object} entity.Company
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /discovery/results/{id}/add [post]
func (h *DiscoveryHandler) AddToPipeline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req dto.AddToPipelineRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return respondError(c, h.logger, err)
		}
	}

	company, err := h.discoveryService.AddToPipeline(c.Request().Context(), id, req, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, company)
}

// DismissResult godoc
// @Summary Dismiss a pending discovery result
// @Tags discovery
// @Param   id  path    string true    "Discovery result ID"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /discovery/results/{id} [delete]
func (h *DiscoveryHandler) DismissResult(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.discoveryService.Dismiss(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
