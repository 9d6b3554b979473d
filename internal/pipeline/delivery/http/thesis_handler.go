package http

import (
	"net/http"
	"strconv"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ThesisHandler handles HTTP requests for investment theses.
type ThesisHandler struct {
	thesisService service.ThesisService
	logger        *logger.Logger
}

// NewThesisHandler creates a new ThesisHandler.
func NewThesisHandler(thesisService service.ThesisService, logger *logger.Logger) *ThesisHandler {
	return &ThesisHandler{thesisService: thesisService, logger: logger}
}

// RegisterRoutes registers the thesis routes to the Echo group.
func (h *ThesisHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateThesis)
	g.GET("", h.ListTheses)
	g.GET("/:id", h.GetThesis)
	g.PUT("/:id", h.UpdateThesis)
	g.DELETE("/:id", h.DeleteThesis)
	g.POST("/:id/scan", h.ScanThesis)
}

// CreateThesis godoc
// @Summary Create an investment thesis
// @Tags theses
// @Accept  json
// @Produce  json
// @Param   thesis  body    dto.CreateThesisRequest   true    "Thesis to create"
// @Success 201 {object} entity.InvestmentThesis
// @Failure 400 {object} dto.ErrorResponse
// @Router /theses [post]
func (h *ThesisHandler) CreateThesis(c echo.Context) error {
	var req dto.CreateThesisRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	thesis, err := h.thesisService.Create(c.Request().Context(), &req, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, thesis)
}

// ListTheses godoc
// @Summary List investment theses
// @Tags theses
// @Produce  json
// @Param   active  query   bool  false  "Only active theses"
// @Success 200 {array} entity.InvestmentThesis
// @Router /theses [get]
func (h *ThesisHandler) ListTheses(c echo.Context) error {
	activeOnly := false
	if raw := c.QueryParam("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid active flag")
		}
		activeOnly = parsed
	}

	theses, err := h.thesisService.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, theses)
}

// GetThesis godoc
// @Summary Get an investment thesis
// @Tags theses
// @Produce  json
// @Param   id  path    string true    "Thesis ID"
// @Success 200 {object} entity.InvestmentThesis
// @Failure 404 {object} dto.ErrorResponse
// @Router /theses/{id} [get]
func (h *ThesisHandler) GetThesis(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	thesis, err := h.thesisService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, thesis)
}

// UpdateThesis godoc
// @Summary Update an investment thesis
// @Tags theses
// @Accept  json
// @Produce  json
// @Param   id      path    string                   true    "Thesis ID"
// @Param   thesis  body    dto.UpdateThesisRequest  true    "Fields to change"
// @Success 200 {object} entity.InvestmentThesis
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /theses/{id} [put]
func (h *ThesisHandler) UpdateThesis(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req dto.UpdateThesisRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	thesis, err := h.thesisService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, thesis)
}

// DeleteThesis godoc
// @Summary Delete an investment thesis
// @Description Discovery results keep their thesis snapshot.
// @Tags theses
// @Param   id  path    string true    "Thesis ID"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Router /theses/{id} [delete]
func (h *ThesisHandler) DeleteThesis(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.thesisService.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ScanThesis godoc
// @Summary Run a discovery scan for a thesis
// @Description Runs synchronously, or queues the scan for the scan service with async=true.
// @Tags theses
// @Produce  json
// @Param   id     path    string  true   "Thesis ID"
// @Param   async  query   bool    false  "Queue instead of waiting"
// @Success 200 {object} dto.DiscoveryRunResponse
// @Success 202 {object} dto.ScanAcceptedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /theses/{id}/scan [post]
func (h *ThesisHandler) ScanThesis(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	async, _ := strconv.ParseBool(c.QueryParam("async"))

	if async {
		accepted, err := h.thesisService.RequestScan(c.Request().Context(), id, actor(c))
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusAccepted, accepted)
	}

	resp, err := h.thesisService.ScanNow(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}
