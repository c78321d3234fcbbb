package chat_test

import (
	"context"
	"testing"

	"github.com/p-n-ai/timetable-bot/internal/chat"
)

func TestNewGateway(t *testing.T) {
	gw := chat.NewGateway()
	if gw == nil {
		t.Fatal("NewGateway() returned nil")
	}
}

func TestGateway_RegisterChannel(t *testing.T) {
	gw := chat.NewGateway()
	mock := &chat.MockChannel{}

	gw.Register("telegram", mock)

	if !gw.HasChannel("telegram") {
		t.Error("HasChannel(telegram) should be true after Register")
	}
}

func TestGateway_HasChannel_NotRegistered(t *testing.T) {
	gw := chat.NewGateway()

	if gw.HasChannel("whatsapp") {
		t.Error("HasChannel(whatsapp) should be false when not registered")
	}
}

func TestGateway_SendMessage(t *testing.T) {
	gw := chat.NewGateway()
	mock := &chat.MockChannel{}
	gw.Register("telegram", mock)

	err := gw.Send(context.Background(), chat.OutboundMessage{
		Channel: "telegram",
		UserID:  "123",
		Text:    "Hello!",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(mock.SentMessages) != 1 {
		t.Errorf("SentMessages = %d, want 1", len(mock.SentMessages))
	}
}

func TestGateway_SendMessage_UnknownChannel(t *testing.T) {
	gw := chat.NewGateway()

	err := gw.Send(context.Background(), chat.OutboundMessage{
		Channel: "unknown",
		UserID:  "123",
		Text:    "Hello!",
	})
	if err == nil {
		t.Error("Send() should error for unknown channel")
	}
}

func TestInboundMessage_SessionID(t *testing.T) {
	msg := chat.InboundMessage{
		Channel:  "telegram",
		UserID:   "123456",
		Text:     "Hello bot",
		Username: "testuser",
	}
	if got := msg.SessionID(); got != "telegram:123456" {
		t.Errorf("SessionID() = %q, want telegram:123456", got)
	}

	other := chat.InboundMessage{Channel: "websocket", UserID: "123456"}
	if other.SessionID() == msg.SessionID() {
		t.Error("sessions on different channels must not collide")
	}
}

func TestGateway_StartAllAndStopAll(t *testing.T) {
	gw := chat.NewGateway()
	gw.Register("telegram", &chat.MockChannel{})
	gw.Register("websocket", &chat.MockChannel{})

	if err := gw.StartAll(context.Background(), func(chat.InboundMessage) {}); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	gw.StopAll()
}
