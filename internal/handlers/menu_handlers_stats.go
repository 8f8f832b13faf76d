package handlers

import (
	"context"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/formatters"
	"OrandaBot/internal/stats"
)

// handleStats - /stats [day|month|year]. Без аргумента - все три периода.
func (bh *BotHandler) handleStats(ctx context.Context, message *tgbotapi.Message, arg string) {
	chatID := message.Chat.ID
	if !bh.requireAdmin(ctx, message) {
		return
	}

	periods := stats.Periods
	if arg != "" {
		p, err := stats.ParsePeriod(arg)
		if err != nil {
			bh.sendMessage(ctx, chatID, formatters.StatsUsageText)
			return
		}
		periods = []stats.Period{p}
	}

	now := bh.now()
	reports := make([]stats.Report, 0, len(periods))
	for _, p := range periods {
		r, err := stats.Compute(ctx, bh.Deps.Store, p, now)
		if err != nil {
			log.Printf("handleStats: Ошибка подсчёта статистики (%s): %v", p, err)
			bh.sendMessage(ctx, chatID, formatters.StatsFailedText)
			return
		}
		reports = append(reports, r)
	}
	bh.sendMessage(ctx, chatID, formatters.FormatStats(reports))
}
