package formatters

import (
	"fmt"
	"html"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

// Тексты мастера. Формат - HTML.
const (
	StartText = "👋 Привіт!\n\n" +
		"Команди:\n" +
		"• /new — створити пропозицію\n" +
		"• /edit &lt;номер&gt; — редагувати пропозицію\n" +
		"• /stats — статистика\n" +
		"• /export — експорт (xlsx, або /export csv)\n" +
		"• /qr &lt;номер&gt; — QR-код посилання на пропозицію\n" +
		"• /id — показати chat id\n" +
		"• /cancel — скасувати поточну дію"

	ChooseCategoryText     = "Обери категорію:"
	ChooseHousingTypeText  = "Обери тип житла:"
	HousingTypeCustomText  = "✍️ Напиши свій варіант типу житла:"
	HousingTypeEmptyText   = "Напиши текстом тип житла:"
	PhotosPromptText       = "📸 Надішли фото. Коли закінчиш — натисни кнопку або напиши /done"
	PhotosNeedOneText      = "⚠️ Спочатку додай хоча б 1 фото."
	PhotosWaitingText      = "Надішли фото або /done щоб завершити."
	PreviewHeaderText      = "👉 <b>Це фінальний вигляд пропозиції</b> (перевір):"
	UpdatedHeaderText      = "✅ Оновлено. Ось оновлений вигляд:"
	CancelledText          = "❌ Скасовано."
	NothingToCancelText    = "Немає активної дії."
	DoneOutsidePhotosText  = "ℹ️ /done працює лише на кроці додавання фото."
	AlreadyPublishedText   = "ℹ️ Цю пропозицію вже опубліковано."
	PublishFailedText      = "⚠️ Не вдалося опублікувати в групу. Спробуй ще раз кнопкою «Публікувати»."
	OfferNotFoundText      = "❌ Пропозицію не знайдено."
	GenericErrorText       = "⚠️ Сталася помилка. Спробуй ще раз або звернись до адміністратора."
	UseButtonsText         = "Скористайся кнопками нижче 👇"
	NotAllowedText         = "⛔️ Ця команда доступна лише адміністраторам."
	EditUsageText          = "Використання: /edit &lt;номер пропозиції&gt;, наприклад /edit 7"
	QRUsageText            = "Використання: /qr &lt;номер пропозиції&gt;, наприклад /qr 7"
	ExportEmptyText        = "Поки немає жодної пропозиції для експорту."
	GroupLiveUpdateFailure = "⚠️ Не вдалося оновити повідомлення в групі."
	ExportFailedText       = "⚠️ Не вдалося сформувати експорт."
	ExportUsageText        = "Використання: /export або /export csv"
	StatsUsageText         = "Використання: /stats [day|month|year]"
	StatsFailedText        = "⚠️ Не вдалося порахувати статистику."
	QRFailedText           = "⚠️ Не вдалося створити QR-код."
	InvalidButtonText      = "Кнопка застаріла."
	UnknownCommandText     = "Невідома команда. /start — список команд."
)

// StatusChangedToast - ответ на нажатие кнопки статуса.
func StatusChangedToast(st models.Status) string {
	d, ok := constants.StatusDisplayMap[st]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %s", d.Emoji, d.Name)
}

// ExportCaption - подпись к файлу выгрузки.
func ExportCaption(count int) string {
	return fmt.Sprintf("📁 Експорт пропозицій: %d", count)
}

// QRCaption - подпись к QR-коду пропозиции.
func QRCaption(offer models.Offer, link string) string {
	return fmt.Sprintf("🔗 Пропозиція #%s\n%s", offer.Number(), html.EscapeString(link))
}

// fieldPrompts - запрос для каждого текстового шага мастера.
var fieldPrompts = map[models.FieldKey]string{
	models.FieldStreet:     "📍 Вулиця (можна коротко, напр. Grabova 12):",
	models.FieldCity:       "🏙️ Місто:",
	models.FieldDistrict:   "🗺️ Район:",
	models.FieldPerks:      "✨ Переваги (через кому або текст):",
	models.FieldRent:       "💶 Оренда (напр. 350€):",
	models.FieldDeposit:    "🔐 Депозит (напр. 350€):",
	models.FieldCommission: "🤝 Комісія (напр. 98€):",
	models.FieldParking:    "🚗 Паркінг (так/ні або опис):",
	models.FieldMoveIn:     "📦 Заселення від (напр. Вже / 01.01):",
	models.FieldViewings:   "👀 Огляди від (напр. Вже / 10:00):",
	models.FieldBroker:     "🧑‍💼 Маклер (наприклад @username):",
}

// FieldPrompt возвращает запрос для шага мастера, собирающего поле key.
func FieldPrompt(key models.FieldKey) string {
	if p, ok := fieldPrompts[key]; ok {
		return p
	}
	f, _ := models.LookupField(key)
	return fmt.Sprintf("%s %s:", f.Emoji, f.Label)
}

// PhotoAddedText - подтверждение добавления фото.
func PhotoAddedText(count int) string {
	return fmt.Sprintf("📸 Фото додано (%d).", count)
}

// PublishedText - подтверждение публикации.
func PublishedText(offer models.Offer) string {
	return fmt.Sprintf("✅ Пропозицію #%s опубліковано в групу.", offer.Number())
}

// IDText - ответ на /id.
func IDText(userID, chatID int64) string {
	return fmt.Sprintf("Your ID: <b>%d</b>\nCurrent chat ID: <b>%d</b>", userID, chatID)
}
