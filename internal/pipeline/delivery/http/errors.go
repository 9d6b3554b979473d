package http

import (
	"errors"
	"net/http"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/pkg/llmjson"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// respondError writes the JSON error body for err. Every failure gets a body.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable && status != http.StatusBadGateway {
		log.Error("Request failed",
			logger.ErrorField(err),
			logger.StringField("method", c.Request().Method),
			logger.StringField("path", c.Path()),
		)
	}
	return c.JSON(status, body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	if fields, ok := validationFields(err); ok {
		return http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrValidation.Error(), Fields: fields}
	}

	var fieldErr *dto.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrValidation.Error(), Fields: fieldErr.Fields}
	}

	var agentErr *llmjson.Error
	if errors.As(err, &agentErr) {
		return http.StatusBadGateway, dto.ErrorResponse{Error: agentErr.Reason, Code: string(agentErr.Kind)}
	}

	switch {
	case errors.Is(err, dto.ErrValidation):
		return http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()}
	case errors.Is(err, dto.ErrNotFound):
		return http.StatusNotFound, dto.ErrorResponse{Error: err.Error()}
	case errors.Is(err, dto.ErrAlreadyAdded), errors.Is(err, dto.ErrStageRegression):
		return http.StatusConflict, dto.ErrorResponse{Error: err.Error()}
	case errors.Is(err, dto.ErrAgentNotConfigured):
		return http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeAgentNotConfigured}
	case errors.Is(err, dto.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeStorageNotConfigured}
	case errors.Is(err, dto.ErrQueueNotConfigured):
		return http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeQueueNotConfigured}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, dto.ErrorResponse{Error: msg}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"}
}

// HTTPErrorHandler renders errors that escape handlers, such as unknown
// routes or middleware rejections, with the same body shape.
func HTTPErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if respErr := respondError(c, log, err); respErr != nil {
			log.Error("Failed to write error response", logger.ErrorField(respErr))
		}
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: message})
}
