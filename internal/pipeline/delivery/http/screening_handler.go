package http

import (
	"net/http"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScreeningHandler handles screening evaluations.
type ScreeningHandler struct {
	screeningService service.ScreeningService
	logger           *logger.Logger
}

// NewScreeningHandler creates a new ScreeningHandler.
func NewScreeningHandler(screeningService service.ScreeningService, logger *logger.Logger) *ScreeningHandler {
	return &ScreeningHandler{screeningService: screeningService, logger: logger}
}

// RegisterRoutes registers the screening routes to the Echo group.
func (h *ScreeningHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/evaluate", h.Evaluate)
}

// Evaluate godoc
// @Summary Evaluate a company against a screening criterion
// @Description Agent failures are reported as result "error" with the reason in remarks.
// @Tags screening
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ScreeningRequest  true    "Company and criterion"
// @Success 200 {object} dto.ScreeningResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /screening/evaluate [post]
func (h *ScreeningHandler) Evaluate(c echo.Context) error {
	var req dto.ScreeningRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.screeningService.Evaluate(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}
