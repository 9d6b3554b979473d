package http

import (
	"net/http"
	"strconv"

	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScanRunHandler handles HTTP requests for the discovery run history.
type ScanRunHandler struct {
	runService service.ScanRunService
	logger     *logger.Logger
}

// NewScanRunHandler creates a new ScanRunHandler.
func NewScanRunHandler(runService service.ScanRunService, logger *logger.Logger) *ScanRunHandler {
	return &ScanRunHandler{runService: runService, logger: logger}
}

// RegisterRoutes registers the scan run routes to the Echo group.
func (h *ScanRunHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListScanRuns)
	g.GET("/:id", h.GetScanRun)
}

// RegisterThesisRoutes registers the thesis-specific run history route.
func (h *ScanRunHandler) RegisterThesisRoutes(g *echo.Group) {
	g.GET("/:id/runs", h.ListThesisScanRuns)
}

// ListScanRuns godoc
// @Summary List discovery runs
// @Description Newest first, at most 50.
// @Tags scan-runs
// @Produce  json
// @Param   limit  query   int  false  "Maximum number of runs"
// @Success 200 {array} dto.ScanRunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /scan-runs [get]
func (h *ScanRunHandler) ListScanRuns(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	runs, err := h.runService.List(c.Request().Context(), nil, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, runs)
}

// GetScanRun godoc
// @Summary Get a discovery run
// @Tags scan-runs
// @Produce  json
// @Param   id  path    string true    "Scan run ID"
// @Success 200 {object} dto.ScanRunResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /scan-runs/{id} [get]
func (h *ScanRunHandler) GetScanRun(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	run, err := h.runService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, run)
}

// ListThesisScanRuns godoc
// @Summary List discovery runs for a thesis
// @Tags theses
// @Produce  json
// @Param   id     path    string  true   "Thesis ID"
// @Param   limit  query   int     false  "Maximum number of runs"
// @Success 200 {array} dto.ScanRunResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /theses/{id}/runs [get]
func (h *ScanRunHandler) ListThesisScanRuns(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	limit, err := queryLimit(c)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	runs, err := h.runService.List(c.Request().Context(), &id, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, runs)
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
