package models

// FieldKey - ключ одного из 13 редактируемых полей пропозиции.
// Значение совпадает с именем колонки в таблице offers.
type FieldKey string

const (
	FieldCategory    FieldKey = "category"
	FieldHousingType FieldKey = "housing_type"
	FieldStreet      FieldKey = "street"
	FieldCity        FieldKey = "city"
	FieldDistrict    FieldKey = "district"
	FieldPerks       FieldKey = "perks"
	FieldRent        FieldKey = "rent"
	FieldDeposit     FieldKey = "deposit"
	FieldCommission  FieldKey = "commission"
	FieldParking     FieldKey = "parking"
	FieldMoveIn      FieldKey = "move_in"
	FieldViewings    FieldKey = "viewings"
	FieldBroker      FieldKey = "broker"
)

// Field описывает поле для мастера, меню редактирования и экспорта.
type Field struct {
	Key   FieldKey
	Emoji string
	Label string
}

// Fields - фиксированный упорядоченный список полей. Позиция (с 1) - номер в меню редактирования.
var Fields = []Field{
	{FieldCategory, "🏷️", "Категорія"},
	{FieldHousingType, "🏠", "Тип житла"},
	{FieldStreet, "📍", "Вулиця"},
	{FieldCity, "🏙️", "Місто"},
	{FieldDistrict, "🗺️", "Район"},
	{FieldPerks, "✨", "Переваги"},
	{FieldRent, "💶", "Оренда"},
	{FieldDeposit, "🔐", "Депозит"},
	{FieldCommission, "🤝", "Комісія"},
	{FieldParking, "🚗", "Паркінг"},
	{FieldMoveIn, "📦", "Заселення від"},
	{FieldViewings, "👀", "Огляди від"},
	{FieldBroker, "🧑‍💼", "Маклер"},
}

// FieldCount - количество редактируемых полей.
var FieldCount = len(Fields)

// FieldByNumber возвращает поле по номеру пункта меню (1..FieldCount).
func FieldByNumber(n int) (Field, bool) {
	if n < 1 || n > len(Fields) {
		return Field{}, false
	}
	return Fields[n-1], true
}

// LookupField ищет описание поля по ключу.
func LookupField(key FieldKey) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// IsMonetary сообщает, относится ли поле к денежным (к нему добавляется символ валюты при показе).
func (k FieldKey) IsMonetary() bool {
	return k == FieldRent || k == FieldDeposit || k == FieldCommission
}
