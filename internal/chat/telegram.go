package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// BotCommand is an entry of the Telegram command menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// DefaultCommands is published to Telegram on start.
var DefaultCommands = []BotCommand{
	{Command: "start", Description: "Начать работу"},
	{Command: "help", Description: "Список команд"},
	{Command: "new_schedule", Description: "Создать новое расписание"},
	{Command: "set_difficult", Description: "Задать сложность предметов"},
	{Command: "show_difficult", Description: "Показать сложность предметов"},
	{Command: "difficulty_presets", Description: "Готовые наборы сложности"},
	{Command: "view_schedule", Description: "Посмотреть предметы"},
	{Command: "view_timetable", Description: "Сгенерировать расписание уроков"},
	{Command: "export_timetable", Description: "Выгрузить расписание в Excel"},
	{Command: "clear_schedule", Description: "Очистить расписание"},
	{Command: "cancel", Description: "Отменить ввод"},
}

// TelegramChannel implements the Channel interface for Telegram Bot API.
type TelegramChannel struct {
	token   string
	baseURL string
	client  *http.Client
	offset  int
	stop    chan struct{}
}

// NewTelegramChannel creates a Telegram channel adapter.
func NewTelegramChannel(token string) (*TelegramChannel, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required (SCHED_TELEGRAM_BOT_TOKEN)")
	}
	return &TelegramChannel{
		token:   token,
		baseURL: "https://api.telegram.org/bot" + token,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		stop: make(chan struct{}),
	}, nil
}

func (t *TelegramChannel) SendTyping(ctx context.Context, userID string) error {
	params := url.Values{
		"chat_id": {userID},
		"action":  {"typing"},
	}
	resp, err := t.postForm(ctx, "/sendChatAction", params)
	if err != nil {
		return fmt.Errorf("sending typing indicator: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func (t *TelegramChannel) SendMessage(ctx context.Context, userID string, msg OutboundMessage) error {
	for _, part := range ChunkText(msg.Text, MaxChunkLen) {
		if err := t.sendText(ctx, userID, part, msg.ParseMode); err != nil {
			return err
		}
	}
	if msg.Document != nil {
		if err := t.sendDocument(ctx, userID, *msg.Document); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramChannel) sendText(ctx context.Context, userID, text, parseMode string) error {
	params := url.Values{
		"chat_id": {userID},
		"text":    {text},
	}
	if parseMode != "" {
		params.Set("parse_mode", parseMode)
	}

	resp, err := t.postForm(ctx, "/sendMessage", params)
	if err != nil {
		return fmt.Errorf("sending Telegram message: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	// If Markdown parsing fails, retry without parse mode
	if parseMode != "" && resp.StatusCode == http.StatusBadRequest {
		slog.Warn("Telegram markdown parse failed, retrying plain")
		params.Del("parse_mode")
		retryResp, retryErr := t.postForm(ctx, "/sendMessage", params)
		if retryErr != nil {
			return fmt.Errorf("sending Telegram message (retry): %w", retryErr)
		}
		_ = retryResp.Body.Close()
		if retryResp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram API error %d on retry", retryResp.StatusCode)
		}
		return nil
	}
	return fmt.Errorf("telegram API error %d", resp.StatusCode)
}

func (t *TelegramChannel) sendDocument(ctx context.Context, userID string, doc Document) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", userID); err != nil {
		return fmt.Errorf("build document request: %w", err)
	}
	part, err := w.CreateFormFile("document", doc.FileName)
	if err != nil {
		return fmt.Errorf("build document request: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return fmt.Errorf("build document request: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("build document request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sendDocument", &body)
	if err != nil {
		return fmt.Errorf("create sendDocument request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending Telegram document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendDocument error %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func (t *TelegramChannel) postForm(ctx context.Context, method string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.client.Do(req)
}

func (t *TelegramChannel) Start(ctx context.Context, handler func(InboundMessage)) error {
	if err := t.syncCommands(ctx); err != nil {
		slog.Warn("failed to publish Telegram commands", "error", err)
	}
	go t.pollLoop(ctx, handler)
	return nil
}

func (t *TelegramChannel) Stop() error {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
	return nil
}

// syncCommands publishes the command menu via setMyCommands.
func (t *TelegramChannel) syncCommands(ctx context.Context) error {
	payload, err := json.Marshal(DefaultCommands)
	if err != nil {
		return fmt.Errorf("encode commands: %w", err)
	}
	resp, err := t.postForm(ctx, "/setMyCommands", url.Values{"commands": {string(payload)}})
	if err != nil {
		return fmt.Errorf("setMyCommands: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram setMyCommands error %d", resp.StatusCode)
	}
	return nil
}

// pollLoop long-polls getUpdates. Messages from one chat are handled
// sequentially in update order; chats run concurrently.
func (t *TelegramChannel) pollLoop(ctx context.Context, handler func(InboundMessage)) {
	slog.Info("Telegram long-polling started")
	dispatcher := newOrderedDispatcher(handler)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		default:
			updates, err := t.getUpdates(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("Telegram getUpdates error", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}

			for _, u := range updates {
				t.offset = u.UpdateID + 1
				msg, ok := mapTelegramInbound(u)
				if !ok {
					continue
				}
				dispatcher.dispatch(msg)
			}
		}
	}
}

func (t *TelegramChannel) getUpdates(ctx context.Context) ([]tgUpdate, error) {
	params := url.Values{
		"offset":  {strconv.Itoa(t.offset)},
		"timeout": {"30"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/getUpdates?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		OK     bool       `json:"ok"`
		Result []tgUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	if !result.OK {
		return nil, fmt.Errorf("telegram API returned ok=false")
	}

	return result.Result, nil
}

// Telegram API types (minimal)
type tgUpdate struct {
	UpdateID int        `json:"update_id"`
	Message  *tgMessage `json:"message"`
}

type tgMessage struct {
	Text string `json:"text"`
	Chat tgChat `json:"chat"`
	From tgUser `json:"from"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LanguageCode string `json:"language_code"`
}

func mapTelegramInbound(u tgUpdate) (InboundMessage, bool) {
	if u.Message == nil {
		return InboundMessage{}, false
	}

	text := strings.TrimSpace(u.Message.Text)
	if text == "" {
		return InboundMessage{}, false
	}

	return InboundMessage{
		Channel:   "telegram",
		UserID:    strconv.FormatInt(u.Message.Chat.ID, 10),
		Text:      text,
		Username:  u.Message.From.Username,
		FirstName: u.Message.From.FirstName,
		Language:  u.Message.From.LanguageCode,
	}, true
}
