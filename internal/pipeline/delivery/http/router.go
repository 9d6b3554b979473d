package http

import (
	"net/http"
	"strconv"

	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	swagger "github.com/swaggo/echo-swagger"
)

// Services bundles the services exposed over HTTP.
type Services struct {
	Company    service.CompanyService
	Thesis     service.ThesisService
	Discovery  service.DiscoveryService
	ScanRuns   service.ScanRunService
	Enrichment service.EnrichmentService
	Screening  service.ScreeningService
	Document   service.DocumentService
	Chat       service.ChatService
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	JWTSecret   string
	MaxUploadMB int64
}

// NewRouter builds the Echo server with every API route under /api/v1.
func NewRouter(svc Services, opts RouterOptions, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = HTTPErrorHandler(log)
	e.Use(middleware.Recover())
	if opts.MaxUploadMB > 0 {
		// Leave room for multipart framing around the file itself.
		e.Use(middleware.BodyLimit(formatMB(opts.MaxUploadMB + 1)))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", swagger.WrapHandler)

	apiV1 := e.Group("/api/v1", SessionMiddleware(opts.JWTSecret))

	companiesGroup := apiV1.Group("/companies")
	NewCompanyHandler(svc.Company, svc.Enrichment, log).RegisterRoutes(companiesGroup)
	NewChatHandler(svc.Chat, log).RegisterRoutes(companiesGroup)
	documentHandler := NewDocumentHandler(svc.Document, log)
	documentHandler.RegisterCompanyRoutes(companiesGroup)
	documentHandler.RegisterRoutes(apiV1.Group("/documents"))

	thesesGroup := apiV1.Group("/theses")
	NewThesisHandler(svc.Thesis, log).RegisterRoutes(thesesGroup)
	scanRunHandler := NewScanRunHandler(svc.ScanRuns, log)
	scanRunHandler.RegisterThesisRoutes(thesesGroup)
	scanRunHandler.RegisterRoutes(apiV1.Group("/scan-runs"))
	NewDiscoveryHandler(svc.Discovery, log).RegisterRoutes(apiV1.Group("/discovery"))
	NewScreeningHandler(svc.Screening, log).RegisterRoutes(apiV1.Group("/screening"))

	return e
}

func formatMB(mb int64) string {
	return strconv.FormatInt(mb, 10) + "M"
}
