package handlers

import (
	"context"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/formatters"
	"OrandaBot/internal/utils"
)

// handleStart - /start и deep link /start offer_<n> (показ карточки пропозиции).
func (bh *BotHandler) handleStart(ctx context.Context, message *tgbotapi.Message, payload string) {
	chatID := message.Chat.ID
	if payload != "" {
		if offerID, ok := utils.ParseStartPayload(payload); ok {
			log.Printf("handleStart: Deep link на пропозицию #%d от chatID %d", offerID, chatID)
			conv := conversationFor(chatID, message.From)
			reportError("handleStart", bh.Deps.Controller.ShowOffer(ctx, conv, offerID))
			return
		}
		log.Printf("handleStart: Неизвестный параметр /start '%s' от chatID %d", payload, chatID)
	}
	bh.sendMessage(ctx, chatID, formatters.StartText)
}
