package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/service"
	"golang-deal-scout/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatHandler streams agent answers as Server-Sent Events.
type ChatHandler struct {
	chatService service.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

// RegisterRoutes registers the chat route to the companies group.
func (h *ChatHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/:id/chat", h.Chat)
}

type chatEvent struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Chat godoc
// @Summary Chat with the agent about a company
// @Description Streams "message" events with text fragments, then "done", or "error" if the agent fails mid-stream.
// @Tags chat
// @Accept  json
// @Produce  text/event-stream
// @Param   id       path    string           true    "Company ID"
// @Param   request  body    dto.ChatRequest  true    "Conversation so far"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /companies/{id}/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req dto.ChatRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	// The request context ends when the client disconnects, which stops the agent stream.
	ctx := c.Request().Context()
	stream, err := h.chatService.Stream(ctx, id, req.Messages)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for frag := range stream {
		if frag.Err != nil {
			h.logger.Warn("Chat stream failed", logger.ErrorField(frag.Err), logger.StringField("company_id", id.String()))
			return writeEvent(res, "error", chatEvent{Error: frag.Err.Error()})
		}
		if err := writeEvent(res, "message", chatEvent{Text: frag.Text}); err != nil {
			return nil
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return writeEvent(res, "done", chatEvent{})
}

func writeEvent(res *echo.Response, event string, data chatEvent) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}
