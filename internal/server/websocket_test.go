package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWebSocketPingPong(t *testing.T) {
	r, _ := newTestRouter(t)
	tok := tokenFor(t, "user-a")

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"event": "ping"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var resp map[string]any
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if resp["event"] != "pong" {
		t.Fatalf("expected pong, got %v", resp)
	}
}

func TestWebSocketHandshakeRejectsBadToken(t *testing.T) {
	r, _ := newTestRouter(t)

	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	for _, url := range []string{base, base + "?token=garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatalf("expected handshake failure for %s", url)
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %v", url, resp)
		}
	}
}

func TestWebSocketMessageFanOut(t *testing.T) {
	r, st := newTestRouter(t)

	chat, err := st.CreateDirect("user-a", "user-b")
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}

	srv := httptest.NewServer(r)
	defer srv.Close()

	dial := func(principal string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tokenFor(t, principal)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Dial %s: %v", principal, err)
		}
		return conn
	}

	connA := dial("user-a")
	defer connA.Close()
	connB := dial("user-b")
	defer connB.Close()

	body, _ := json.Marshal(map[string]any{"chatId": chat.ID, "content": "hello"})
	if err := connA.WriteJSON(map[string]any{"event": "NEW_MESSAGE", "body": json.RawMessage(body)}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	type frame struct {
		Event string `json:"event"`
		Body  struct {
			ChatID  string `json:"chatId"`
			Message struct {
				Content string `json:"content"`
				Sender  string `json:"sender"`
			} `json:"message"`
		} `json:"body"`
	}

	// Both members receive the full payload first, then the unread alert.
	for _, conn := range []*websocket.Conn{connB, connA} {
		var full frame
		if err := conn.ReadJSON(&full); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if full.Event != "NEW_MESSAGE" || full.Body.Message.Content != "hello" || full.Body.Message.Sender != "user-a" {
			t.Fatalf("unexpected frame: %+v", full)
		}
		if full.Body.ChatID != chat.ID {
			t.Fatalf("expected chatId %s, got %s", chat.ID, full.Body.ChatID)
		}

		var alert frame
		if err := conn.ReadJSON(&alert); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if alert.Event != "NEW_MESSAGE_ALERT" || alert.Body.ChatID != chat.ID {
			t.Fatalf("unexpected alert frame: %+v", alert)
		}
	}
}
