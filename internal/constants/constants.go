package constants

import (
	"OrandaBot/internal/models"
)

// Состояния мастера создания пропозиции
// Wizard states
const (
	STATE_IDLE                = "idle"
	STATE_OFFER_CATEGORY      = "offer_category"
	STATE_OFFER_HOUSING_TYPE  = "offer_housing_type"
	STATE_OFFER_HOUSING_OTHER = "offer_housing_type_custom"
	STATE_OFFER_STREET        = "offer_street"
	STATE_OFFER_CITY          = "offer_city"
	STATE_OFFER_DISTRICT      = "offer_district"
	STATE_OFFER_PERKS         = "offer_perks"
	STATE_OFFER_RENT          = "offer_rent"
	STATE_OFFER_DEPOSIT       = "offer_deposit"
	STATE_OFFER_COMMISSION    = "offer_commission"
	STATE_OFFER_PARKING       = "offer_parking"
	STATE_OFFER_MOVE_IN       = "offer_move_in"
	STATE_OFFER_VIEWINGS      = "offer_viewings"
	STATE_OFFER_BROKER        = "offer_broker"
	STATE_OFFER_PHOTOS        = "offer_photos"
	STATE_OFFER_PREVIEW       = "offer_preview"
)

// Состояния редактирования
// Edit states
const (
	STATE_EDIT_CHOOSE_FIELD  = "edit_choose_field"
	STATE_EDIT_NEW_VALUE     = "edit_new_value"
	STATE_EDIT_HOUSING_TYPE  = "edit_housing_type"
	STATE_EDIT_HOUSING_OTHER = "edit_housing_type_custom"
)

// Префиксы и значения callback_data
const (
	CALLBACK_PREFIX_CATEGORY     = "cat"
	CALLBACK_PREFIX_HOUSING_TYPE = "ht"
	CALLBACK_PREFIX_STATUS       = "st"
	CALLBACK_PREFIX_PREVIEW      = "pv"

	CALLBACK_PHOTOS_DONE     = "photos:done"
	CALLBACK_PREVIEW_PUBLISH = "pv:publish"
	CALLBACK_PREVIEW_EDIT    = "pv:edit"
	CALLBACK_PREVIEW_CANCEL  = "pv:cancel"

	// HOUSING_TYPE_OTHER - значение кнопки "Інше...", после которой тип вводится текстом.
	HOUSING_TYPE_OTHER = "__OTHER__"

	// CALLBACK_DATA_SEPARATOR разделяет части callback_data.
	CALLBACK_DATA_SEPARATOR = ":"
)

// Лимиты Telegram
const (
	// MAX_ALBUM_PHOTOS - максимальное число фото в одном альбоме (sendMediaGroup).
	MAX_ALBUM_PHOTOS = 10
	// MAX_CALLBACK_DATA_LEN - ограничение Telegram на длину callback_data в байтах.
	MAX_CALLBACK_DATA_LEN = 64
)

// Категории пропозиций: значение в callback_data -> подпись кнопки.
var Categories = []struct {
	Value string
	Label string
}{
	{"ОРЕНДА", "Оренда"},
	{"ПРОДАЖ", "Продаж"},
}

// HousingTypes - варианты типа жилья (значение совпадает с подписью).
var HousingTypes = []string{
	"Кімната", "1-кімн.",
	"2-кімн.", "3-кімн.",
	"Будинок", "Студія",
}

// StatusDisplayMap - эмодзи и название статуса для группы и статистики.
var StatusDisplayMap = map[models.Status]struct {
	Emoji string
	Name  string
}{
	models.StatusActive:    {"🟢", "Актуально"},
	models.StatusReserved:  {"🟡", "Резерв"},
	models.StatusWithdrawn: {"⚫️", "Знято"},
	models.StatusClosed:    {"✅", "Угода закрита"},
}

// Значения по умолчанию для конфигурации мастера.
var (
	DefaultClearTokens = []string{"-", "—"}
	DefaultDoneTokens  = []string{"done", "/done", "готово", "ready"}
)

// NewOfferShortcuts - текстовые сообщения, которые запускают создание пропозиции без команды.
var NewOfferShortcuts = []string{"new", "створити", "зробити пропозицію", "+ зробити пропозицію"}

// ANONYMOUS_ACTOR подставляется в статистике вместо пустого имени.
const ANONYMOUS_ACTOR = "—"

// EMPTY_FIELD_PLACEHOLDER показывается вместо незаданного поля.
const EMPTY_FIELD_PLACEHOLDER = "—"

// Периоды статистики
const (
	PERIOD_DAY   = "day"
	PERIOD_MONTH = "month"
	PERIOD_YEAR  = "year"
)
