package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Dipeshkhadgi/hamrospace/internal/auth"
	"github.com/Dipeshkhadgi/hamrospace/internal/chat"
	"github.com/Dipeshkhadgi/hamrospace/internal/event"
	"github.com/Dipeshkhadgi/hamrospace/internal/hub"
	"github.com/Dipeshkhadgi/hamrospace/internal/model"
)

type WebSocketHandler struct {
	Hub         *hub.Hub
	Pipeline    *chat.Pipeline
	TokenConfig auth.TokenConfig
	Log         *slog.Logger
}

type clientFrame struct {
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
}

type newMessageIn struct {
	ChatID      string             `json:"chatId"`
	Content     string             `json:"content"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

// handshakeToken accepts the bearer credential either as a query parameter
// or an Authorization header.
func handshakeToken(c *gin.Context) string {
	if tok := c.Query("token"); tok != "" {
		return tok
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// Serve authenticates the handshake, registers the session and runs the
// read loop. The credential is verified before any session exists; a failed
// handshake is rejected with an explicit authentication error.
func (h *WebSocketHandler) Serve(c *gin.Context) {
	tokenString := handshakeToken(c)
	if tokenString == "" {
		unauthorized(c)
		return
	}
	claims, err := auth.VerifyToken(tokenString, h.TokenConfig)
	if err != nil {
		unauthorized(c)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn := &hub.Connection{PrincipalID: claims.PrincipalID, Writer: &wsWriter{conn: ws}}
	h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(conn)
		_ = ws.Close()
	}()

	ws.SetReadLimit(1024 * 1024)
	const pongWait = 60 * time.Second
	const writeWait = 10 * time.Second
	pingPeriod := (pongWait * 9) / 10

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
	defer closeDone()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					_ = ws.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}

		switch frame.Event {
		case "ping":
			out, _ := json.Marshal(hub.Frame{Event: "pong"})
			_ = conn.Writer.Write(out)
		case event.NewMessage:
			var in newMessageIn
			if err := json.Unmarshal(frame.Body, &in); err != nil || in.ChatID == "" {
				continue
			}
			if _, err := h.Pipeline.Send(in.ChatID, claims.PrincipalID, in.Content, in.Attachments); err != nil {
				h.Log.Debug("inbound message rejected", "chatId", in.ChatID, "err", err)
			}
		}
	}
}
