package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// WebSocketChannel serves chat over WebSocket. Clients connect with
// ?user_id=<id> and exchange JSON frames.
type WebSocketChannel struct {
	originPatterns []string

	mu      sync.RWMutex
	conns   map[string]*websocket.Conn
	handler func(InboundMessage)
}

type wsInbound struct {
	Text      string `json:"text"`
	FirstName string `json:"first_name,omitempty"`
}

type wsDocument struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type wsOutbound struct {
	Text      string      `json:"text,omitempty"`
	ParseMode string      `json:"parse_mode,omitempty"`
	Document  *wsDocument `json:"document,omitempty"`
}

// NewWebSocketChannel creates a channel accepting the given origin patterns.
// An empty list allows only same-origin clients.
func NewWebSocketChannel(originPatterns ...string) *WebSocketChannel {
	return &WebSocketChannel{
		originPatterns: originPatterns,
		conns:          make(map[string]*websocket.Conn),
	}
}

func (w *WebSocketChannel) Start(_ context.Context, handler func(InboundMessage)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = handler
	return nil
}

func (w *WebSocketChannel) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, c := range w.conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
		delete(w.conns, id)
	}
	return nil
}

func (w *WebSocketChannel) SendTyping(_ context.Context, _ string) error {
	return nil
}

func (w *WebSocketChannel) SendMessage(ctx context.Context, userID string, msg OutboundMessage) error {
	w.mu.RLock()
	c, ok := w.conns[userID]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("websocket user %s is not connected", userID)
	}

	for _, part := range ChunkText(msg.Text, MaxChunkLen) {
		if err := wsjson.Write(ctx, c, wsOutbound{Text: part, ParseMode: msg.ParseMode}); err != nil {
			return fmt.Errorf("writing websocket message: %w", err)
		}
	}
	if d := msg.Document; d != nil {
		out := wsOutbound{Document: &wsDocument{FileName: d.FileName, MimeType: d.MimeType, Data: d.Data}}
		if err := wsjson.Write(ctx, c, out); err != nil {
			return fmt.Errorf("writing websocket document: %w", err)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and feeds frames to the handler in order.
func (w *WebSocketChannel) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		http.Error(rw, "user_id is required", http.StatusBadRequest)
		return
	}

	w.mu.RLock()
	handler := w.handler
	w.mu.RUnlock()
	if handler == nil {
		http.Error(rw, "channel not started", http.StatusServiceUnavailable)
		return
	}

	c, err := websocket.Accept(rw, r, &websocket.AcceptOptions{OriginPatterns: w.originPatterns})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	w.mu.Lock()
	if prev, ok := w.conns[userID]; ok {
		_ = prev.Close(websocket.StatusPolicyViolation, "replaced by a newer connection")
	}
	w.conns[userID] = c
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.conns[userID] == c {
			delete(w.conns, userID)
		}
		w.mu.Unlock()
	}()

	slog.Info("websocket client connected", "user_id", userID)
	ctx := r.Context()
	for {
		var in wsInbound
		if err := wsjson.Read(ctx, c, &in); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				slog.Debug("websocket read ended", "user_id", userID, "error", err)
			}
			return
		}

		text := strings.TrimSpace(in.Text)
		if text == "" {
			continue
		}
		handler(InboundMessage{
			Channel:   "websocket",
			UserID:    userID,
			Text:      text,
			FirstName: in.FirstName,
		})
	}
}
