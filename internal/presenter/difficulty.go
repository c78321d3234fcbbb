package presenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/p-n-ai/timetable-bot/internal/schedule"
)

// DifficultyPrompt asks for "<subject>: <level>" lines.
func DifficultyPrompt() string {
	return "🧠 Укажите сложность предметов, каждый с новой строки.\n" +
		"Формат: предмет: уровень\n\n" +
		"Уровни: очень сложный, сложный, средний, легкий\n\n" +
		"Например:\n" +
		"Математика: очень сложный\n" +
		"Физика: сложный\n" +
		"История: средний\n" +
		"Музыка: легкий\n\n" +
		"Название может быть частью имени предмета: «язык» подойдёт и для «Русский язык».\n" +
		"Сложность применяется к предметам, введённым после настройки.\n\n" +
		"Для отмены введите /cancel"
}

// DifficultyError explains why a difficulty batch was rejected.
func DifficultyError(err error) string {
	var unknown *schedule.UnknownDifficultyLevelError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("❌ Неизвестный уровень сложности для предмета «%s»: %s\n", unknown.Subject, unknown.Level) +
			"Допустимые уровни: очень сложный, сложный, средний, легкий"
	}
	return "❌ Не удалось разобрать сложность. Используйте формат: 'Математика: сложный'"
}

// DifficultySaved confirms a new difficulty table.
func DifficultySaved(table *schedule.DifficultyTable) string {
	return "✅ Сложность предметов сохранена!\n\n" + difficultyLines(table)
}

// DifficultyView renders the table grouped by tier.
func DifficultyView(table *schedule.DifficultyTable) string {
	if table.Len() == 0 {
		return "Сложность предметов не задана.\nИспользуйте /set_difficult, чтобы её указать."
	}
	return "🧠 Сложность предметов:\n\n" + difficultyLines(table)
}

func difficultyLines(table *schedule.DifficultyTable) string {
	var b strings.Builder
	for _, e := range table.Entries {
		fmt.Fprintf(&b, "• %s: %s\n", e.Fragment, e.Tier.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}

// PresetInfo is the subset of a preset shown to users.
type PresetInfo struct {
	ID   string
	Name string
	Size int
}

// PresetList renders the available presets.
func PresetList(presets []PresetInfo) string {
	if len(presets) == 0 {
		return "Готовых наборов сложности нет."
	}
	var b strings.Builder
	b.WriteString("📚 Готовые наборы сложности:\n\n")
	for _, p := range presets {
		fmt.Fprintf(&b, "• %s — %s (%d предм.)\n", p.ID, p.Name, p.Size)
	}
	b.WriteString("\nПрименить: /set_difficult <набор>")
	return b.String()
}

// PresetApplied confirms a preset and shows its table.
func PresetApplied(name string, table *schedule.DifficultyTable) string {
	return fmt.Sprintf("✅ Применён набор «%s».\n\n", name) + difficultyLines(table)
}

// UnknownPreset answers /set_difficult with an unknown preset id.
func UnknownPreset(id string) string {
	return fmt.Sprintf("❌ Набор «%s» не найден. Список: /difficulty_presets", id)
}
