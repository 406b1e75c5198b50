package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	models "github.com/Swigstan1810/Heights-sub002/internal/domain/models"
	"github.com/Swigstan1810/Heights-sub002/internal/usecase"
	xhttp "github.com/Swigstan1810/Heights-sub002/pkg/http"
	xlogger "github.com/Swigstan1810/Heights-sub002/pkg/logger"
)

// AssistantHandler exposes the query pipeline over HTTP.
type AssistantHandler struct {
	logger *xlogger.Logger
	orch   *usecase.Orchestrator
}

func NewAssistantHandler(logger *xlogger.Logger, orch *usecase.Orchestrator) *AssistantHandler {
	return &AssistantHandler{logger: logger, orch: orch}
}

func (h *AssistantHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/assistant")
	g.POST("/query", h.Query)
	g.GET("/stream", h.Stream)
	e.GET("/healthz", h.Health)
}

// Query answers a single question synchronously.
func (h *AssistantHandler) Query(c echo.Context) error {
	req := &models.AssistantQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp := h.orch.ProcessQuery(c.Request().Context(), req.Query, req.Context, req.Options)
	return xhttp.SuccessResponse(c, resp)
}

// Stream answers a question as server-sent events, one event per partial
// response and a final `done` event.
func (h *AssistantHandler) Stream(c echo.Context) error {
	req := &models.AssistantStreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	ctx := c.Request().Context()
	for partial := range h.orch.StreamProcessQuery(ctx, req.Query, nil) {
		payload, err := json.Marshal(partial)
		if err != nil {
			h.logger.Error("stream marshal", xlogger.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(res, "event: response\ndata: %s\n\n", payload); err != nil {
			return nil // client went away
		}
		flusher.Flush()
	}
	_, _ = fmt.Fprint(res, "event: done\ndata: {}\n\n")
	flusher.Flush()
	return nil
}

func (h *AssistantHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
