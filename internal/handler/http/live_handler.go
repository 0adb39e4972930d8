package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/dto"
	"github.com/mikiasgoitom/PromptShelf/internal/handler/http/middleware"
	usecasecontract "github.com/mikiasgoitom/PromptShelf/internal/usecase/contract"
)

const liveWriteWait = 10 * time.Second

// LiveHandler streams membership states over WebSocket.
type LiveHandler struct {
	reactionUsecase usecasecontract.IReactionUseCase
	logger          usecasecontract.IAppLogger
	upgrader        websocket.Upgrader
	pingInterval    time.Duration
}

func NewLiveHandler(reactionUsecase usecasecontract.IReactionUseCase, logger usecasecontract.IAppLogger, pingInterval time.Duration, allowedOrigins []string) *LiveHandler {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &LiveHandler{
		reactionUsecase: reactionUsecase,
		logger:          logger,
		pingInterval:    pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Stream sends the caller's current state and then every newer one. A client that
// reconnects passes the last revision it saw as ?since= and only receives newer states.
func (h *LiveHandler) Stream(c *gin.Context) {
	var uri dto.ReactionURI
	if err := BindURI(c, &uri); err != nil {
		return
	}
	var since int64 = -1
	if raw := c.Query("since"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			ErrorHandler(c, http.StatusBadRequest, dto.CodeBadRequest, "since must be a non-negative revision")
			return
		}
		since = n
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Watch before upgrading so that failures still get a proper status code.
	states, err := h.reactionUsecase.Watch(ctx, middleware.Identity(c), uri.PromptID, entity.ReactionKind(uri.Kind))
	if err != nil {
		FailureHandler(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("live upgrade failed for prompt %s: %v", uri.PromptID, err)
		return
	}
	defer conn.Close()

	go h.readPump(conn, cancel)

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeConn(conn, websocket.CloseNormalClosure, "")
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case state, ok := <-states:
			if !ok {
				h.closeConn(conn, websocket.CloseGoingAway, "stream ended")
				return
			}
			if state.Revision <= since {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(dto.ToMembershipStateResponse(state)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so pongs and close frames are processed, and cancels
// the stream when the peer goes away.
func (h *LiveHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	pongWait := 2 * h.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.logger.Warnf("live read error: %v", err)
			}
			return
		}
	}
}

func (h *LiveHandler) closeConn(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}
