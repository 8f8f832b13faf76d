package handlers

import (
	"context"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/lifecycle"
	"OrandaBot/internal/models"
	"OrandaBot/internal/session"
	"OrandaBot/internal/utils"
)

// --- Вспомогательные функции для отправки сообщений и определения разговора ---

// sendMessage отправляет сообщение; ошибка только логируется.
func (bh *BotHandler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := bh.Deps.Messenger.SendMessage(ctx, chatID, text, nil); err != nil {
		log.Printf("sendMessage: Ошибка отправки сообщения в чат %d: %v", chatID, err)
	}
}

// actorFromUser - автор действия по пользователю Telegram.
func actorFromUser(user *tgbotapi.User) models.Actor {
	if user == nil {
		return models.Actor{Name: utils.UserMention(nil)}
	}
	return models.Actor{ID: user.ID, Name: utils.UserMention(user)}
}

// conversationFor - разговор (чат + пользователь) для контроллера.
func conversationFor(chatID int64, user *tgbotapi.User) lifecycle.Conversation {
	actor := actorFromUser(user)
	return lifecycle.Conversation{
		Key:  session.ConversationKey{ChatID: chatID, UserID: actor.ID},
		User: actor,
	}
}

// ConversationKeyForUpdate возвращает ключ очереди для обновления.
// Обновления без чата (inline и т.п.) не обрабатываются: ok=false.
func ConversationKeyForUpdate(update tgbotapi.Update) (session.ConversationKey, bool) {
	switch {
	case update.Message != nil:
		var userID int64
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		return session.ConversationKey{ChatID: update.Message.Chat.ID, UserID: userID}, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		var userID int64
		if update.CallbackQuery.From != nil {
			userID = update.CallbackQuery.From.ID
		}
		return session.ConversationKey{ChatID: update.CallbackQuery.Message.Chat.ID, UserID: userID}, true
	}
	return session.ConversationKey{}, false
}

// wizardIdle - у разговора нет незавершённого мастера. Ошибка чтения считается занятым состоянием.
func (bh *BotHandler) wizardIdle(ctx context.Context, conv lifecycle.Conversation) bool {
	w, err := bh.Deps.SessionManager.GetWizard(ctx, conv.Key)
	if err != nil {
		log.Printf("wizardIdle: Ошибка чтения состояния %s: %v", conv.Key, err)
		return false
	}
	return w.Idle()
}

// isAdmin проверяет права на админские команды.
func (bh *BotHandler) isAdmin(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	return bh.Deps.Config.IsAdmin(user.ID)
}

// reportError логирует ошибку контроллера. Пользователю контроллер уже ответил сам.
func reportError(op string, err error) {
	if err == nil {
		return
	}
	if lifecycle.IsDeliveryError(err) {
		log.Printf("%s: Ошибка доставки: %v", op, err)
		return
	}
	log.Printf("%s: Ошибка: %v", op, err)
}

// HandleUpdate направляет обновление в обработчик сообщений или коллбэков.
func (bh *BotHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		bh.HandleMessage(ctx, update)
	case update.CallbackQuery != nil:
		bh.HandleCallback(ctx, update)
	}
}
