package formatters

import (
	"fmt"
	"html"
	"strings"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
	"OrandaBot/internal/stats"
)

// PeriodTitle - заголовок блока статистики: "День (2024-02-15)", "Місяць (2024-02)", "Рік (2024)".
func PeriodTitle(r stats.Report) string {
	switch r.Period {
	case stats.Day:
		return fmt.Sprintf("День (%s)", r.Start.Format("2006-01-02"))
	case stats.Month:
		return fmt.Sprintf("Місяць (%s)", r.Start.Format("2006-01"))
	case stats.Year:
		return fmt.Sprintf("Рік (%s)", r.Start.Format("2006"))
	}
	return string(r.Period)
}

// FormatStatsReport форматирует один период: итоги по статусам и разбивку по маклерам.
func FormatStatsReport(r stats.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", PeriodTitle(r)))
	for _, st := range models.Statuses {
		d := constants.StatusDisplayMap[st]
		b.WriteString(fmt.Sprintf("%s %s: <b>%d</b>\n", d.Emoji, d.Name, r.Totals[st]))
	}
	b.WriteString("\n👨‍💼 <b>По маклерам (кожен статус окремо)</b>\n")

	if r.Empty() {
		b.WriteString("— немає змін статусів за період\n")
		return b.String()
	}
	for _, name := range r.Actors() {
		line := []string{fmt.Sprintf("• <b>%s</b>:", html.EscapeString(name))}
		for _, st := range models.Statuses {
			line = append(line, fmt.Sprintf("%s%d", constants.StatusDisplayMap[st].Emoji, r.ByActor[name][st]))
		}
		b.WriteString(strings.Join(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatStats собирает полный ответ на /stats из отчётов за несколько периодов.
func FormatStats(reports []stats.Report) string {
	parts := []string{"📊 <b>Статистика статусів</b>\n"}
	for _, r := range reports {
		parts = append(parts, FormatStatsReport(r))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
