// Package presenter renders the bot's Russian user-facing texts.
package presenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
	"github.com/p-n-ai/timetable-bot/internal/timetable"
)

const commandList = `/help — показать эту справку
/new_schedule — создать новое расписание
/set_difficult — задать сложность предметов
/show_difficult — показать сложность предметов
/difficulty_presets — готовые наборы сложности
/view_schedule — посмотреть текущее расписание
/view_timetable — сгенерировать расписание уроков
/export_timetable — выгрузить расписание в Excel
/clear_schedule — очистить расписание
/cancel — отменить ввод
/echo <текст> — повторить ваш текст`

// Start greets the user and lists the commands.
func Start() string {
	return "Привет! Я бот \"Оптимальное расписание\".\n" +
		"Я соберу предметы ваших классов и составлю расписание, ставя сложные предметы в начало дня.\n\n" +
		"Используй команды:\n" + commandList
}

// Help lists the commands with short usage notes.
func Help() string {
	return "📋 Доступные команды:\n\n/start — начать работу\n" + commandList
}

// NewSchedulePrompt asks for the class list.
func NewSchedulePrompt() string {
	return "📝 Создание нового расписания\n\n" +
		"Введите список классов через запятую или с новой строки.\n" +
		"Например:\n" +
		"5А, 5Б, 6А, 6Б\n\n" +
		"Или каждый класс с новой строки:\n" +
		"5А\n5Б\n6А\n6Б\n\n" +
		"Для отмены введите /cancel"
}

// NoClasses re-prompts after an empty class list.
func NoClasses() string {
	return "❌ Не указаны классы. Попробуйте снова."
}

// SubjectsPrompt asks for the subjects of class.
func SubjectsPrompt(class string) string {
	return fmt.Sprintf("🎓 Введите предметы для класса %s\n\n", class) +
		"Формат: предмет (количество часов в неделю)\n" +
		"Каждый предмет с новой строки:\n\n" +
		"Например:\n" +
		"Математика (5)\n" +
		"Русский язык (4)\n" +
		"Литература (3)\n" +
		"История (2)\n\n" +
		"Для отмены введите /cancel"
}

// SubjectsError explains why a subject batch was rejected.
func SubjectsError(err error) string {
	var malformed *schedule.MalformedLineError
	if errors.As(err, &malformed) {
		return fmt.Sprintf("❌ Ошибка в формате: %s\nИспользуйте формат: 'Математика (5)'", malformed.Line)
	}
	return "❌ Не указаны предметы или неправильный формат. Попробуйте снова."
}

// ClassSaved confirms a stored batch and asks for the next class.
func ClassSaved(class string, subjects []schedule.Subject, next string) string {
	return fmt.Sprintf("✅ Предметы для класса %s сохранены!\n", class) +
		fmt.Sprintf("Всего предметов: %d\n", len(subjects)) +
		fmt.Sprintf("Сумма часов: %d\n\n", schedule.TotalHours(subjects)) +
		fmt.Sprintf("🎓 Теперь введите предметы для класса %s:", next)
}

// HourOverflow warns that a batch exceeds the weekly capacity and asks for confirmation.
func HourOverflow(class string, w schedule.HourOverflowWarning) string {
	return fmt.Sprintf("⚠️ Для класса %s указано %d ч/нед, а в неделе только %d уроков (%d дней × %d).\n",
		class, w.TotalHours, w.Capacity, schedule.DaysPerWeek, schedule.LessonsPerDay) +
		"Часть уроков не поместится в расписание.\n\n" +
		"Продолжить? (да/нет)"
}

// OverflowAcknowledged re-prompts for class after an oversized batch was dropped.
func OverflowAcknowledged(class string) string {
	return fmt.Sprintf("Понятно. Предметы для класса %s не сохранены.\n", class) +
		"Введите список предметов заново, уменьшив количество часов."
}

// Summary is shown once the last class has been filled in.
func Summary(classes []string, sched schedule.ClassSchedule, timetables []timetable.ClassTimetable) string {
	var b strings.Builder
	total := 0
	for _, c := range classes {
		total += len(sched[c])
	}

	b.WriteString("✅ Расписание успешно создано!\n\n")
	b.WriteString("📊 Статистика:\n")
	fmt.Fprintf(&b, "• Классов: %d\n", len(classes))
	fmt.Fprintf(&b, "• Всего предметов: %d\n\n", total)

	b.WriteString("📋 Детали по классам:\n")
	for _, c := range classes {
		subjects := sched[c]
		fmt.Fprintf(&b, "\n🎓 %s:\n", c)
		for _, s := range subjects {
			fmt.Fprintf(&b, "  • %s: %d ч/нед\n", s.Name, s.HoursPerWeek)
		}
		fmt.Fprintf(&b, "  Всего часов: %d\n", schedule.TotalHours(subjects))
	}

	if len(timetables) > 0 {
		b.WriteString("\n⚖️ Нагрузка:\n")
		for _, ct := range timetables {
			fmt.Fprintf(&b, "  %s: %s\n", ct.Class, statsLine(ct.Timetable.Stats))
		}
	}

	b.WriteString("\nИспользуйте /view_schedule для просмотра и /view_timetable для расписания уроков")
	return b.String()
}

// Cancelled confirms /cancel.
func Cancelled() string {
	return "❌ Создание расписания отменено."
}

// NothingToCancel answers /cancel outside a dialogue.
func NothingToCancel() string {
	return "Сейчас нечего отменять."
}

// NoSchedule answers view and export commands when nothing is stored.
func NoSchedule() string {
	return "📭 У вас нет сохраненного расписания.\nИспользуйте /new_schedule для создания."
}

// ScheduleView lists stored subjects per class.
func ScheduleView(classes []string, sched schedule.ClassSchedule) string {
	var b strings.Builder
	b.WriteString("📋 Текущее расписание:\n\n")
	for _, c := range classes {
		subjects, ok := sched[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "🎓 Класс %s:\n", c)
		for i, s := range subjects {
			fmt.Fprintf(&b, "  %d. %s: %d ч/нед\n", i+1, s.Name, s.HoursPerWeek)
		}
		fmt.Fprintf(&b, "  📊 Всего часов в неделю: %d\n\n", schedule.TotalHours(subjects))
	}
	fmt.Fprintf(&b, "Всего классов: %d", len(classes))
	return b.String()
}

// Cleared confirms /clear_schedule.
func Cleared() string {
	return "✅ Расписание очищено."
}

// Echo answers /echo; empty text gets a usage hint.
func Echo(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Используйте: /echo <ваш текст>"
	}
	return "Эхо: " + text
}

// Said echoes free text received in the idle state.
func Said(text string) string {
	return "Вы сказали: " + text
}

// UnknownCommand answers an unrecognised command.
func UnknownCommand(cmd string) string {
	return fmt.Sprintf("Неизвестная команда: /%s\nИспользуйте /help для списка команд.", cmd)
}

// InternalError is the apology sent when storage fails.
func InternalError() string {
	return "Произошла внутренняя ошибка. Попробуйте ещё раз чуть позже."
}

// Exporting captions the xlsx document.
func Exporting() string {
	return "📎 Расписание уроков в формате Excel."
}
