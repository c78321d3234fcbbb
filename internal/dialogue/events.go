package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// Analytics event types.
const (
	EventCollectionStarted   = "collection_started"
	EventClassesEntered      = "classes_entered"
	EventSubjectsSaved       = "subjects_saved"
	EventHourOverflow        = "hour_overflow"
	EventCollectionCompleted = "collection_completed"
	EventCollectionCancelled = "collection_cancelled"
	EventDifficultySet       = "difficulty_set"
	EventTimetableGenerated  = "timetable_generated"
	EventScheduleCleared     = "schedule_cleared"
)

// Event represents an analytics event persisted to the events table.
type Event struct {
	SessionID string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(ctx context.Context, event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(context.Context, Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(_ context.Context, event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// Types returns the logged event types in order.
func (l *MemoryEventLogger) Types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.EventType
	}
	return out
}

// PostgresEventLogger inserts events into the events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(ctx context.Context, event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO events (session_id, event_type, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		event.SessionID,
		event.EventType,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"session_id", event.SessionID,
	)
	return nil
}
