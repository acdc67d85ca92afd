package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/domain"
)

// WSHandler streams live leaderboard snapshots over a websocket. The
// client receives the current top list on connect and a fresh one after
// every accepted quiz submission.
type WSHandler struct {
	board    *app.LeaderboardService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(board *app.LeaderboardService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		board: board,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string             `json:"type"`
	Payload domain.Leaderboard `json:"payload"`
}

// ServeLeaderboard upgrades the request and pushes snapshots until the
// client goes away.
func (h *WSHandler) ServeLeaderboard(c *gin.Context) {
	updates, cancel, err := h.board.Subscribe(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			// Clients never send application messages; the read pump
			// exists to notice the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: snapshot}); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
