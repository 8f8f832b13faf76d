package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/export"
	"OrandaBot/internal/formatters"
	"OrandaBot/internal/models"
	"OrandaBot/internal/utils"
)

// adminCommands - команды, доступные только администраторам (ADMIN_USER_IDS).
var adminCommands = []string{"stats", "export"}

// requireAdmin отвечает отказом, если пользователь не администратор.
func (bh *BotHandler) requireAdmin(ctx context.Context, message *tgbotapi.Message) bool {
	if !utils.IsCommandInCategory(message.Command(), adminCommands) || bh.isAdmin(message.From) {
		return true
	}
	log.Printf("requireAdmin: Пользователь %d не администратор, команда /%s отклонена.", message.From.ID, message.Command())
	bh.sendMessage(ctx, message.Chat.ID, formatters.NotAllowedText)
	return false
}

// loadOffer читает пропозицию по аргументу команды и отвечает пользователю при ошибке.
func (bh *BotHandler) loadOffer(ctx context.Context, chatID int64, arg, usage string) (models.Offer, bool) {
	id, err := utils.ParseOfferNumber(arg)
	if err != nil {
		bh.sendMessage(ctx, chatID, usage)
		return models.Offer{}, false
	}
	offer, err := bh.Deps.Store.GetOffer(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrOfferNotFound) {
			bh.sendMessage(ctx, chatID, formatters.OfferNotFoundText)
		} else {
			log.Printf("loadOffer: Ошибка чтения пропозиции #%d: %v", id, err)
			bh.sendMessage(ctx, chatID, formatters.GenericErrorText)
		}
		return models.Offer{}, false
	}
	return offer, true
}

// handleEdit - /edit <n>: автор пропозиции или администратор.
func (bh *BotHandler) handleEdit(ctx context.Context, message *tgbotapi.Message, arg string) {
	chatID := message.Chat.ID
	offer, ok := bh.loadOffer(ctx, chatID, arg, formatters.EditUsageText)
	if !ok {
		return
	}
	if offer.Creator.ID != message.From.ID && !bh.isAdmin(message.From) {
		log.Printf("handleEdit: Пользователь %d не может редактировать чужую пропозицию #%s.", message.From.ID, offer.Number())
		bh.sendMessage(ctx, chatID, formatters.NotAllowedText)
		return
	}
	conv := conversationFor(chatID, message.From)
	reportError("handleEdit", bh.Deps.Controller.EditExisting(ctx, conv, offer.ID))
}

// handleQR - /qr <n>: QR-код ссылки на сообщение в группе (или deep link на бота).
func (bh *BotHandler) handleQR(ctx context.Context, message *tgbotapi.Message, arg string) {
	chatID := message.Chat.ID
	offer, ok := bh.loadOffer(ctx, chatID, arg, formatters.QRUsageText)
	if !ok {
		return
	}
	link, err := utils.OfferLink(bh.Deps.BotUsername, offer)
	if err != nil {
		log.Printf("handleQR: Нет ссылки для пропозиции #%s: %v", offer.Number(), err)
		bh.sendMessage(ctx, chatID, formatters.QRFailedText)
		return
	}
	png, err := utils.GenerateQRCode(link)
	if err != nil {
		bh.sendMessage(ctx, chatID, formatters.QRFailedText)
		return
	}
	name := fmt.Sprintf("offer_%s.png", offer.Number())
	if err := bh.Deps.Messenger.SendPhotoBytes(ctx, chatID, name, png, formatters.QRCaption(offer, link)); err != nil {
		log.Printf("handleQR: Ошибка отправки QR-кода пропозиции #%s: %v", offer.Number(), err)
	}
}

// handleExport - /export [xlsx|csv]: выгрузка всех пропозиций файлом.
func (bh *BotHandler) handleExport(ctx context.Context, message *tgbotapi.Message, arg string) {
	chatID := message.Chat.ID
	if !bh.requireAdmin(ctx, message) {
		return
	}
	format, err := export.ParseFormat(arg)
	if err != nil {
		bh.sendMessage(ctx, chatID, formatters.ExportUsageText)
		return
	}
	offers, err := bh.Deps.Store.ListOffers(ctx)
	if err != nil {
		log.Printf("handleExport: Ошибка получения пропозиций: %v", err)
		bh.sendMessage(ctx, chatID, formatters.ExportFailedText)
		return
	}
	if len(offers) == 0 {
		bh.sendMessage(ctx, chatID, formatters.ExportEmptyText)
		return
	}

	filePath, err := export.SaveFile(bh.Deps.Config.ExportDir, format, offers, bh.Deps.Config.Location)
	if err != nil {
		log.Printf("handleExport: Ошибка сохранения файла: %v", err)
		bh.sendMessage(ctx, chatID, formatters.ExportFailedText)
		return
	}
	if err := bh.Deps.Messenger.SendDocument(ctx, chatID, filePath, formatters.ExportCaption(len(offers))); err != nil {
		bh.sendMessage(ctx, chatID, formatters.ExportFailedText)
	}

	// Удаляем временный файл после отправки
	if errRemove := os.Remove(filePath); errRemove != nil {
		log.Printf("handleExport: Ошибка удаления временного файла %s: %v", filePath, errRemove)
	}
}
