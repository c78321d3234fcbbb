// Package dialogue drives schedule collection: it dispatches commands, walks
// the per-session state machine and produces replies.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/p-n-ai/timetable-bot/internal/chat"
	"github.com/p-n-ai/timetable-bot/internal/presenter"
	"github.com/p-n-ai/timetable-bot/internal/presets"
	"github.com/p-n-ai/timetable-bot/internal/schedule"
	"github.com/p-n-ai/timetable-bot/internal/session"
	"github.com/p-n-ai/timetable-bot/internal/timetable"
)

const (
	xlsxFileName = "timetable.xlsx"
	xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Reply is the engine's answer to one inbound message.
type Reply struct {
	Text     string
	Document *chat.Document
}

// EngineConfig holds dependencies for the dialogue engine.
type EngineConfig struct {
	Store      session.Store
	Events     EventLogger
	Generator  *timetable.Generator
	Classifier schedule.Classifier
	Presets    *presets.Catalog // optional
	Now        func() time.Time
}

// Engine is the core message processor.
type Engine struct {
	store      session.Store
	events     EventLogger
	generator  *timetable.Generator
	classifier schedule.Classifier
	presets    *presets.Catalog
	now        func() time.Time
	locks      *keyedMutex
}

// NewEngine creates a new dialogue engine.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = session.NewMemoryStore(0)
	}
	events := cfg.Events
	if events == nil {
		events = NopEventLogger{}
	}
	generator := cfg.Generator
	if generator == nil {
		generator = timetable.NewGenerator(nil)
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = schedule.SubstringClassifier
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:      store,
		events:     events,
		generator:  generator,
		classifier: classifier,
		presets:    cfg.Presets,
		now:        now,
		locks:      newKeyedMutex(),
	}
}

// turn carries one message through the engine.
type turn struct {
	msg     chat.InboundMessage
	sess    *session.Session
	changed bool
	events  []Event
}

// ProcessMessage handles an incoming message and returns the reply. Messages
// of one session are processed one at a time. A non-nil error comes with a
// user-facing apology in the reply.
func (e *Engine) ProcessMessage(ctx context.Context, msg chat.InboundMessage) (Reply, error) {
	sid := msg.SessionID()
	unlock := e.locks.Lock(sid)
	defer unlock()

	sess, found, err := e.store.Get(ctx, sid)
	if err != nil {
		slog.Error("failed to load session", "session_id", sid, "error", err)
		return Reply{Text: presenter.InternalError()}, fmt.Errorf("load session %s: %w", sid, err)
	}
	if !found {
		sess = session.New(sid)
	}

	t := &turn{msg: msg, sess: sess}
	text := strings.TrimSpace(msg.Text)

	var reply Reply
	if strings.HasPrefix(text, "/") {
		name, args := parseCommand(text)
		reply = e.handleCommand(t, name, args)
	} else {
		reply = e.handleText(t, text)
	}

	slog.Info("message processed",
		"channel", msg.Channel,
		"user_id", msg.UserID,
		"state", t.sess.State.Name(),
		"text_len", len(text),
	)

	if t.changed {
		t.sess.UpdatedAt = e.now()
		if err := e.store.Save(ctx, t.sess); err != nil {
			slog.Error("failed to save session", "session_id", sid, "error", err)
			return Reply{Text: presenter.InternalError()}, fmt.Errorf("save session %s: %w", sid, err)
		}
	}
	e.flush(ctx, t)
	return reply, nil
}

// parseCommand splits "/name@bot args" into a lower-cased name and the
// trimmed argument text.
func parseCommand(text string) (string, string) {
	head, args := strings.TrimPrefix(text, "/"), ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, args = head[:i], head[i:]
	}
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(args)
}

func (e *Engine) handleCommand(t *turn, name, args string) Reply {
	switch name {
	case "start":
		return Reply{Text: presenter.Start()}
	case "help":
		return Reply{Text: presenter.Help()}
	case "echo":
		return Reply{Text: presenter.Echo(args)}
	case "new_schedule":
		t.sess.State = session.AwaitClasses{}
		t.changed = true
		e.emit(t, EventCollectionStarted, nil)
		return Reply{Text: presenter.NewSchedulePrompt()}
	case "set_difficult":
		return e.setDifficulty(t, args)
	case "show_difficult":
		return Reply{Text: presenter.DifficultyView(t.sess.Difficulty)}
	case "difficulty_presets":
		return Reply{Text: presenter.PresetList(e.presetInfos())}
	case "view_schedule":
		if !t.sess.HasSchedule() {
			return Reply{Text: presenter.NoSchedule()}
		}
		return Reply{Text: presenter.ScheduleView(t.sess.ScheduledClasses(), t.sess.Schedule)}
	case "view_timetable":
		if !t.sess.HasSchedule() {
			return Reply{Text: presenter.NoSchedule()}
		}
		return Reply{Text: presenter.Timetables(e.generate(t, "view"))}
	case "export_timetable":
		return e.export(t)
	case "clear_schedule":
		if t.sess.HasSchedule() || len(t.sess.Classes) > 0 {
			t.sess.ClearSchedule()
			t.changed = true
			e.emit(t, EventScheduleCleared, nil)
		}
		return Reply{Text: presenter.Cleared()}
	case "cancel":
		if session.IsIdle(t.sess.State) {
			return Reply{Text: presenter.NothingToCancel()}
		}
		e.emit(t, EventCollectionCancelled, map[string]any{"state": t.sess.State.Name()})
		t.sess.State = session.Idle{}
		t.changed = true
		return Reply{Text: presenter.Cancelled()}
	default:
		return Reply{Text: presenter.UnknownCommand(name)}
	}
}

func (e *Engine) setDifficulty(t *turn, presetID string) Reply {
	if presetID == "" {
		t.sess.State = session.AwaitDifficulty{}
		t.changed = true
		return Reply{Text: presenter.DifficultyPrompt()}
	}

	p, ok := e.presets.Get(presetID)
	if !ok {
		return Reply{Text: presenter.UnknownPreset(presetID)}
	}
	t.sess.Difficulty = p.Table
	if _, waiting := t.sess.State.(session.AwaitDifficulty); waiting {
		t.sess.State = session.Idle{}
	}
	t.changed = true
	e.emit(t, EventDifficultySet, map[string]any{"preset": p.ID, "entries": p.Table.Len()})
	return Reply{Text: presenter.PresetApplied(p.Name, p.Table)}
}

func (e *Engine) presetInfos() []presenter.PresetInfo {
	all := e.presets.All()
	out := make([]presenter.PresetInfo, 0, len(all))
	for _, p := range all {
		out = append(out, presenter.PresetInfo{ID: p.ID, Name: p.Name, Size: p.Table.Len()})
	}
	return out
}

func (e *Engine) export(t *turn) Reply {
	if !t.sess.HasSchedule() {
		return Reply{Text: presenter.NoSchedule()}
	}
	data, err := timetable.ExportXLSX(e.generate(t, "export"))
	if err != nil {
		slog.Error("timetable export failed", "session_id", t.sess.ID, "error", err)
		return Reply{Text: presenter.InternalError()}
	}
	return Reply{
		Text:     presenter.Exporting(),
		Document: &chat.Document{FileName: xlsxFileName, MimeType: xlsxMimeType, Data: data},
	}
}

// generate builds a timetable for every class with stored subjects. The
// difficulty-aware layout is used once a difficulty table is configured.
func (e *Engine) generate(t *turn, purpose string) []timetable.ClassTimetable {
	aware := t.sess.Difficulty != nil
	classes := t.sess.ScheduledClasses()
	out := make([]timetable.ClassTimetable, 0, len(classes))
	for _, c := range classes {
		out = append(out, timetable.ClassTimetable{
			Class:     c,
			Timetable: e.generator.Generate(t.sess.Schedule[c], aware),
		})
	}
	e.emit(t, EventTimetableGenerated, map[string]any{
		"classes":          len(out),
		"difficulty_aware": aware,
		"purpose":          purpose,
	})
	return out
}

func (e *Engine) handleText(t *turn, text string) Reply {
	switch st := t.sess.State.(type) {
	case session.AwaitClasses:
		return e.handleClasses(t, text)
	case session.AwaitSubjects:
		return e.handleSubjects(t, st, text)
	case session.AwaitDifficulty:
		return e.handleDifficulty(t, text)
	default:
		return Reply{Text: presenter.Said(text)}
	}
}

func (e *Engine) handleClasses(t *turn, text string) Reply {
	classes, err := schedule.ParseClassList(text)
	if err != nil {
		slog.Debug("class list rejected", "session_id", t.sess.ID, "error", err)
		return Reply{Text: presenter.NoClasses()}
	}
	t.sess.StartCollection(classes)
	t.changed = true
	e.emit(t, EventClassesEntered, map[string]any{"classes": len(classes)})
	return Reply{Text: presenter.SubjectsPrompt(classes[0])}
}

func (e *Engine) handleSubjects(t *turn, st session.AwaitSubjects, text string) Reply {
	if st.ClassIndex < 0 || st.ClassIndex >= len(t.sess.Classes) {
		// The class list was cleared mid-collection.
		t.sess.State = session.Idle{}
		t.changed = true
		return Reply{Text: presenter.NoSchedule()}
	}
	class := t.sess.Classes[st.ClassIndex]

	if st.Pending != nil && isConfirmation(text) {
		t.sess.State = session.AwaitSubjects{ClassIndex: st.ClassIndex}
		t.changed = true
		return Reply{Text: presenter.OverflowAcknowledged(class)}
	}

	subjects, err := schedule.ParseSubjects(text)
	if err != nil {
		slog.Debug("subject batch rejected", "session_id", t.sess.ID, "class", class, "error", err)
		return Reply{Text: presenter.SubjectsError(err)}
	}
	subjects = schedule.Classify(e.classifier, subjects, t.sess.Difficulty)
	total := schedule.TotalHours(subjects)

	if warning, over := schedule.CheckWeeklyHours(total); over {
		t.sess.State = session.AwaitSubjects{
			ClassIndex: st.ClassIndex,
			Pending:    &session.PendingOverflow{Class: class, Subjects: subjects, TotalHours: total},
		}
		t.changed = true
		e.emit(t, EventHourOverflow, map[string]any{"class": class, "total_hours": total})
		return Reply{Text: presenter.HourOverflow(class, warning)}
	}

	t.sess.Schedule[class] = subjects
	t.changed = true
	e.emit(t, EventSubjectsSaved, map[string]any{
		"class":       class,
		"subjects":    len(subjects),
		"total_hours": total,
	})

	next := st.ClassIndex + 1
	if next < len(t.sess.Classes) {
		t.sess.State = session.AwaitSubjects{ClassIndex: next}
		return Reply{Text: presenter.ClassSaved(class, subjects, t.sess.Classes[next])}
	}

	t.sess.State = session.Idle{}
	e.emit(t, EventCollectionCompleted, map[string]any{"classes": len(t.sess.Classes)})
	return Reply{Text: presenter.Summary(t.sess.Classes, t.sess.Schedule, e.generate(t, "summary"))}
}

func (e *Engine) handleDifficulty(t *turn, text string) Reply {
	table, err := schedule.ParseDifficulty(text)
	if err != nil {
		slog.Debug("difficulty batch rejected", "session_id", t.sess.ID, "error", err)
		return Reply{Text: presenter.DifficultyError(err)}
	}
	t.sess.Difficulty = table
	t.sess.State = session.Idle{}
	t.changed = true
	e.emit(t, EventDifficultySet, map[string]any{"entries": table.Len()})
	return Reply{Text: presenter.DifficultySaved(table)}
}

var confirmations = map[string]bool{"да": true, "нет": true, "yes": true, "no": true}

func isConfirmation(text string) bool {
	return confirmations[schedule.Fold(strings.Trim(strings.TrimSpace(text), ".!"))]
}

// emit queues an event; queued events reach the logger only after the turn's
// session state is saved.
func (e *Engine) emit(t *turn, eventType string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["channel"] = t.msg.Channel
	t.events = append(t.events, Event{
		SessionID: t.sess.ID,
		EventType: eventType,
		Data:      data,
		CreatedAt: e.now(),
	})
}

func (e *Engine) flush(ctx context.Context, t *turn) {
	for _, ev := range t.events {
		if err := e.events.LogEvent(ctx, ev); err != nil {
			slog.Warn("failed to log event", "type", ev.EventType, "session_id", ev.SessionID, "error", err)
		}
	}
}
