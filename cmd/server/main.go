package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/p-n-ai/timetable-bot/internal/chat"
	"github.com/p-n-ai/timetable-bot/internal/dialogue"
	"github.com/p-n-ai/timetable-bot/internal/platform/cache"
	"github.com/p-n-ai/timetable-bot/internal/platform/config"
	"github.com/p-n-ai/timetable-bot/internal/platform/database"
	"github.com/p-n-ai/timetable-bot/internal/presets"
	"github.com/p-n-ai/timetable-bot/internal/schedule"
	"github.com/p-n-ai/timetable-bot/internal/session"
	"github.com/p-n-ai/timetable-bot/internal/timetable"
)

const (
	messageTimeout = 30 * time.Second
	sweepInterval  = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from SCHED_LOG_LEVEL/SCHED_LOG_FORMAT.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func run(ctx context.Context, cfg *config.Config) error {
	checks := map[string]healthChecker{}

	var redisCache *cache.Cache
	if cfg.Session.Backend == "redis" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = c.Close() }()
		redisCache = c
		checks["cache"] = c
	}

	store, err := newSessionStore(ctx, cfg.Session, redisCache)
	if err != nil {
		return err
	}

	var events dialogue.EventLogger = dialogue.NopEventLogger{}
	if cfg.Events.Enabled {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		events = dialogue.NewPostgresEventLogger(db.Pool)
		checks["database"] = db
	}

	catalog, err := presets.NewCatalog(cfg.PresetsPath)
	if err != nil {
		return err
	}

	classifier, ok := schedule.ClassifierByName(cfg.Timetable.DifficultyMatch)
	if !ok {
		return fmt.Errorf("unknown difficulty match %q", cfg.Timetable.DifficultyMatch)
	}

	var random timetable.RandomSource
	if cfg.Timetable.Seed != 0 {
		random = timetable.NewSeededSource(cfg.Timetable.Seed)
	}

	engine := dialogue.NewEngine(dialogue.EngineConfig{
		Store:      store,
		Events:     events,
		Generator:  timetable.NewGenerator(random),
		Classifier: classifier,
		Presets:    catalog,
	})

	gateway := chat.NewGateway()
	if cfg.Telegram.BotToken != "" {
		tg, err := chat.NewTelegramChannel(cfg.Telegram.BotToken)
		if err != nil {
			return err
		}
		gateway.Register("telegram", tg)
	}
	var ws *chat.WebSocketChannel
	if cfg.WebSocket.Enabled {
		ws = chat.NewWebSocketChannel(cfg.WebSocket.OriginPatterns...)
		gateway.Register("websocket", ws)
	}

	if err := gateway.StartAll(ctx, newMessageHandler(ctx, engine, gateway)); err != nil {
		return err
	}
	defer gateway.StopAll()

	var wsHandler http.Handler
	if ws != nil {
		wsHandler = ws
	}
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newMux(checks, wsHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	return nil
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig, redisCache *cache.Cache) (session.Store, error) {
	ttl := cfg.TTLDuration()
	if cfg.Backend == "redis" {
		if redisCache == nil {
			return nil, fmt.Errorf("redis session backend requires a cache connection")
		}
		slog.Info("session store", "backend", "redis", "ttl", ttl)
		return session.NewRedisStore(redisCache.Client, ttl)
	}

	store := session.NewMemoryStore(ttl)
	if ttl > 0 {
		go store.RunSweeper(ctx, sweepInterval)
	}
	slog.Info("session store", "backend", "memory", "ttl", ttl)
	return store, nil
}

// newMessageHandler routes inbound chat messages through the engine and
// sends the reply back on the originating channel.
func newMessageHandler(ctx context.Context, engine *dialogue.Engine, gateway *chat.Gateway) func(chat.InboundMessage) {
	return func(msg chat.InboundMessage) {
		msgCtx, cancel := context.WithTimeout(ctx, messageTimeout)
		defer cancel()

		if err := gateway.SendTyping(msgCtx, msg.Channel, msg.UserID); err != nil {
			slog.Debug("typing indicator failed", "channel", msg.Channel, "error", err)
		}

		reply, err := engine.ProcessMessage(msgCtx, msg)
		if err != nil {
			slog.Error("message processing failed", "channel", msg.Channel, "user_id", msg.UserID, "error", err)
		}
		if reply.Text == "" && reply.Document == nil {
			return
		}

		err = gateway.Send(msgCtx, chat.OutboundMessage{
			Channel:  msg.Channel,
			UserID:   msg.UserID,
			Text:     reply.Text,
			Document: reply.Document,
		})
		if err != nil {
			slog.Error("failed to send reply", "channel", msg.Channel, "user_id", msg.UserID, "error", err)
		}
	}
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// newMux creates the HTTP router with health check endpoints and, when
// given, the websocket chat endpoint.
func newMux(checks map[string]healthChecker, ws http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", readyzHandler(checks))
	if ws != nil {
		mux.Handle("GET /ws", ws)
	}
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func readyzHandler(checks map[string]healthChecker) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for _, name := range names {
			if err := checks[name].HealthCheck(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
