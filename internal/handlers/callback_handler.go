package handlers

import (
	"context"
	"errors"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/formatters"
	"OrandaBot/internal/lifecycle"
	"OrandaBot/internal/models"
)

// HandleCallback обрабатывает нажатия inline-кнопок. На каждый callback отправляется ответ.
func (bh *BotHandler) HandleCallback(ctx context.Context, update tgbotapi.Update) {
	query := update.CallbackQuery
	if query == nil {
		log.Println("[CALLBACK_HANDLER] Получен пустой CallbackQuery.")
		return
	}
	if query.Message == nil {
		bh.Deps.Messenger.AnswerCallback(ctx, query.ID, formatters.InvalidButtonText)
		return
	}

	chatID := query.Message.Chat.ID
	data := query.Data
	log.Printf("[CALLBACK_HANDLER] START: ChatID=%d, User=%s, MsgID=%d, Data='%s'",
		chatID, actorFromUser(query.From).Name, query.Message.MessageID, data)

	if lifecycle.IsStatusCallback(data) {
		bh.Deps.Messenger.AnswerCallback(ctx, query.ID, bh.handleStatusCallback(ctx, query))
		return
	}

	conv := conversationFor(chatID, query.From)
	handled, err := bh.Deps.Controller.HandleCallback(ctx, conv, data)
	reportError("HandleCallback", err)

	answer := ""
	if !handled {
		answer = formatters.InvalidButtonText
	}
	bh.Deps.Messenger.AnswerCallback(ctx, query.ID, answer)
}

// handleStatusCallback меняет статус пропозиции и возвращает текст ответа на нажатие.
func (bh *BotHandler) handleStatusCallback(ctx context.Context, query *tgbotapi.CallbackQuery) string {
	pressed := models.MessageRef{ChatID: query.Message.Chat.ID, MessageID: query.Message.MessageID}
	st, err := bh.Deps.Controller.HandleStatusPress(ctx, actorFromUser(query.From), pressed, query.Data)
	switch {
	case err == nil:
		return formatters.StatusChangedToast(st)
	case errors.Is(err, lifecycle.ErrInvalidCallback):
		return formatters.InvalidButtonText
	case errors.Is(err, models.ErrOfferNotFound):
		return formatters.OfferNotFoundText
	case lifecycle.IsDeliveryError(err):
		// Статус уже записан, не удалось только обновить сообщение.
		log.Printf("handleStatusCallback: %v", err)
		return formatters.GroupLiveUpdateFailure
	}
	log.Printf("handleStatusCallback: Ошибка смены статуса: %v", err)
	return formatters.GenericErrorText
}
