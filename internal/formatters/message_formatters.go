package formatters

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

// DefaultCurrency добавляется к денежным полям, введённым только цифрами.
const DefaultCurrency = "€"

// NormalizeMoney добавляет символ валюты к значению вида "350", "1 200" или "99,50".
// Значение, уже содержащее символ валюты, возвращается без изменений. Хранимое значение не меняется.
func NormalizeMoney(value, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	if value == "" || strings.Contains(value, currency) {
		return value
	}
	digits := strings.NewReplacer(" ", "", ",", "", ".", "").Replace(value)
	if digits == "" {
		return value
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return value
		}
	}
	return value + currency
}

// FieldDisplayValue возвращает значение поля для показа: "—" для пустого, валюта для денежных полей.
func FieldDisplayValue(key models.FieldKey, value models.NullString, currency string) string {
	val := strings.TrimSpace(value.ValueOr(""))
	if val == "" {
		return constants.EMPTY_FIELD_PLACEHOLDER
	}
	if key.IsMonetary() {
		val = NormalizeMoney(val, currency)
	}
	return val
}

// StatusLabel возвращает эмодзи и название статуса. Неопубликованная пропозиция показывается как "Актуально" -
// именно с этим статусом она попадёт в группу.
func StatusLabel(st models.Status) (string, string) {
	if d, ok := constants.StatusDisplayMap[st]; ok {
		return d.Emoji, d.Name
	}
	d := constants.StatusDisplayMap[models.StatusActive]
	return d.Emoji, d.Name
}

// OfferText форматирует карточку пропозиции (HTML): номер, статус и все 13 полей.
// Один и тот же текст используется в предпросмотре и в контрольном сообщении группы.
func OfferText(offer models.Offer, currency string) string {
	var b strings.Builder
	emoji, name := StatusLabel(offer.Status)

	b.WriteString(fmt.Sprintf("🏡 <b>ПРОПОЗИЦІЯ #%s</b>\n", offer.Number()))
	b.WriteString(fmt.Sprintf("📊 <b>Статус:</b> %s <b>%s</b>\n", emoji, name))
	b.WriteString("\n")
	for i, f := range models.Fields {
		val := FieldDisplayValue(f.Key, offer.Field(f.Key), currency)
		b.WriteString(fmt.Sprintf("%s <b>%s:</b> %s", f.Emoji, f.Label, html.EscapeString(val)))
		if i < len(models.Fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// EditMenuText - список полей с номерами 1..13 для выбора в режиме редактирования.
func EditMenuText(offer models.Offer) string {
	lines := []string{
		fmt.Sprintf("✏️ <b>Редагування пропозиції #%s</b>", offer.Number()),
		fmt.Sprintf("Напиши <b>номер пункту 1–%d</b>, який хочеш змінити.", models.FieldCount),
		"Наприклад: <b>2</b>",
		"",
		"<b>Список:</b>",
	}
	for i, f := range models.Fields {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, f.Label))
	}
	return strings.Join(lines, "\n")
}

// EditFieldPrompt - запрос нового значения выбранного поля.
func EditFieldPrompt(field models.Field, clearToken string) string {
	return fmt.Sprintf("%s <b>%s</b>\nНапиши нове значення (або '%s' щоб очистити):",
		field.Emoji, field.Label, html.EscapeString(clearToken))
}

// EditNumberRejectedText - повторный запрос при неверном номере пункта.
func EditNumberRejectedText(raw string) string {
	if strings.TrimSpace(raw) == "" || !isASCIIDigits(strings.TrimSpace(raw)) {
		return fmt.Sprintf("Напиши номер пункту <b>1–%d</b> цифрою.", models.FieldCount)
	}
	return fmt.Sprintf("Номер має бути в діапазоні <b>1–%d</b>.", models.FieldCount)
}

func isASCIIDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
