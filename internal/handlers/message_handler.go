// Файл: internal/handlers/message_handler.go

package handlers

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/formatters"
	"OrandaBot/internal/utils"
)

// HandleMessage обрабатывает входящие сообщения от Telegram.
func (bh *BotHandler) HandleMessage(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	message := update.Message
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	log.Printf("HandleMessage: ChatID=%d, MessageID=%d, Text='%s', MediaGroupID='%s', Photo: %v",
		chatID, message.MessageID, text, message.MediaGroupID, len(message.Photo) > 0)

	if message.From == nil || message.From.IsBot {
		return
	}
	conv := conversationFor(chatID, message.From)

	if message.IsCommand() {
		bh.handleCommand(ctx, message)
		return
	}

	if len(message.Photo) > 0 {
		fileID := utils.LargestPhotoFileID(message.Photo)
		handled, err := bh.Deps.Controller.HandlePhoto(ctx, conv, fileID)
		reportError("HandleMessage", err)
		if !handled {
			log.Printf("HandleMessage: Фото от %s вне шага фото проигнорировано.", conv.Key)
		}
		return
	}

	if utils.IsNewOfferShortcut(text) && message.Chat.IsPrivate() && bh.wizardIdle(ctx, conv) {
		reportError("HandleMessage", bh.Deps.Controller.NewOffer(ctx, conv))
		return
	}

	handled, err := bh.Deps.Controller.HandleText(ctx, conv, message.Text)
	reportError("HandleMessage", err)
	if !handled && message.Chat.IsPrivate() && text != "" {
		bh.sendMessage(ctx, chatID, formatters.StartText)
	}
}

// handleCommand маршрутизирует команды бота.
func (bh *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	conv := conversationFor(chatID, message.From)
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		bh.handleStart(ctx, message, args)
	case "new":
		reportError("handleCommand /new", bh.Deps.Controller.NewOffer(ctx, conv))
	case "cancel":
		reportError("handleCommand /cancel", bh.Deps.Controller.Cancel(ctx, conv))
	case "done":
		// /done имеет смысл только на шаге фото, иначе текст попал бы в поле.
		w, err := bh.Deps.SessionManager.GetWizard(ctx, conv.Key)
		if err != nil || w.Step != constants.STATE_OFFER_PHOTOS {
			bh.sendMessage(ctx, chatID, formatters.DoneOutsidePhotosText)
			return
		}
		_, err = bh.Deps.Controller.HandleText(ctx, conv, "/done")
		reportError("handleCommand /done", err)
	case "id":
		bh.sendMessage(ctx, chatID, formatters.IDText(message.From.ID, chatID))
	case "edit":
		bh.handleEdit(ctx, message, args)
	case "qr":
		bh.handleQR(ctx, message, args)
	case "stats":
		bh.handleStats(ctx, message, args)
	case "export":
		bh.handleExport(ctx, message, args)
	default:
		log.Printf("HandleMessage: Неизвестная команда '%s' от chatID %d", message.Command(), chatID)
		if message.Chat.IsPrivate() {
			bh.sendMessage(ctx, chatID, formatters.UnknownCommandText)
		}
	}
}
