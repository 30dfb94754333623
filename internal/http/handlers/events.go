package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/observability"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/ctxutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
)

// EventsHandler streams material and collection changes to the client
// over SSE so every open tab stays in sync.
type EventsHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	metrics *observability.Metrics
}

func NewEventsHandler(log *logger.Logger, hub *realtime.SSEHub, metrics *observability.Metrics) *EventsHandler {
	return &EventsHandler{
		log:     log.With("handler", "EventsHandler"),
		hub:     hub,
		metrics: metrics,
	}
}

// GET /api/events/stream
func (eh *EventsHandler) Stream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"message": "not authenticated", "code": "unauthorized"},
		})
		return
	}
	userID := rd.UserID

	client := eh.hub.NewSSEClient(userID)
	eh.hub.AddChannel(client, realtime.UserChannel(userID))
	eh.log.Info("SSE stream open", "user_id", userID.String(), "client_id", client.ID)
	eh.metrics.SSEClientConnected()

	eh.hub.ServeHTTP(c.Writer, c.Request, client)

	eh.hub.CloseClient(client)
	eh.metrics.SSEClientDisconnected()
	eh.log.Info("SSE stream closed", "user_id", userID.String(), "client_id", client.ID)
}
