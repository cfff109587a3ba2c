package handler

import (
	"context"
	"net/http"
	"time"

	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GenerateStream godoc
// @Summary      Generate a feature with progress events
// @Description  WebSocket variant of POST /api/features/{feature}. Each step is sent as a JSON
// @Description  event: charged, text, image_pending, image, done or error.
// @Description  <br>
// @Description  Clients connect with `ws://` or `wss://` and pass the session token as the `token` query parameter.
// @Description  Closing the socket cancels the image job.
// @Tags         WebSocket
// @Param        token   query string true "session token"
// @Param        feature query string true "feature id"
// @Success      101 {string} string "Switching Protocols"
// @Failure      400 {object} handler.ErrorResponse "unknown feature"
// @Failure      401 {object} handler.ErrorResponse
// @Router       /ws/generate [get]
func (h *Handler) GenerateStream(c *gin.Context) {
	f, err := prompt.ParseFeature(c.Query("feature"))
	if err != nil {
		h.fail(c, err)
		return
	}
	id := recordID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("GenerateStream(): failed to upgrade to WebSocket", zap.String("record_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// the reader only notices the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(e service.Event) {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(e); err != nil {
			h.log.Debug("GenerateStream(): write failed", zap.String("record_id", id), zap.Error(err))
			cancel()
		}
	}

	if _, err := h.portal.GenerateFeature(ctx, id, f, send); err != nil {
		h.log.Info("GenerateStream(): generation ended with error", zap.String("record_id", id), zap.String("feature", f.String()), zap.Error(err))
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
