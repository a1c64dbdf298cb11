package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/calcscript/internal/history/store"
	"github.com/msto63/calcscript/internal/runner/service"
	"github.com/msto63/calcscript/pkg/core/logging"
)

const wsReadTimeout = 120 * time.Second

// WebSocketHandler runs programs sent over a WebSocket connection. Each run
// message is a separate session; nothing carries over between messages.
type WebSocketHandler struct {
	runner   *service.Service
	logger   *logging.Logger
	upgrader websocket.Upgrader
	maxSize  int64
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cfg Config, runner *service.Service) *WebSocketHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("playground-websocket")
	}
	maxSize := cfg.MaxRequestSize
	if maxSize <= 0 {
		maxSize = 2 << 20
	}

	origins := cfg.AllowedOrigins
	return &WebSocketHandler{
		runner:  runner,
		logger:  logger,
		maxSize: maxSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true // local development
				}
				origin := r.Header.Get("Origin")
				for _, o := range origins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`    // "run", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSRunPayload carries the program of a run message
type WSRunPayload struct {
	Code string `json:"code"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"`    // "result", "error", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err.Error())
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection serves one connection. Messages are handled in order.
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	conn.SetReadLimit(h.maxSize)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err.Error())
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch msg.Type {
		case "ping":
			h.send(conn, WSResponse{Type: "pong"})

		case "run":
			var payload WSRunPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, "invalid_payload", "Invalid run payload", 0)
				continue
			}
			resp, _ := runProgram(ctx, h.runner, store.SourceWebSocket, payload.Code)
			if resp.Error != nil {
				h.sendError(conn, resp.Error.Code, resp.Error.Message, resp.Error.Line)
				continue
			}
			h.send(conn, WSResponse{Type: "result", Payload: resp})

		default:
			h.sendError(conn, "unknown_type", "Unknown message type: "+msg.Type, 0)
		}
	}
}

// send writes a message to the connection
func (h *WebSocketHandler) send(conn *websocket.Conn, resp WSResponse) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err.Error())
	}
}

// sendError writes an error message to the connection
func (h *WebSocketHandler) sendError(conn *websocket.Conn, code, message string, line int) {
	h.send(conn, WSResponse{
		Type: "error",
		Payload: FaultInfo{
			Code:    code,
			Message: message,
			Line:    line,
		},
	})
}
