package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrOfferNotFound возвращается хранилищем, если пропозиции с таким номером нет.
var ErrOfferNotFound = errors.New("offer not found")

// Status - текущий статус пропозиции. Пустое значение означает "ещё не опубликована".
type Status string

const (
	StatusNone      Status = ""
	StatusActive    Status = "ACTIVE"
	StatusReserved  Status = "RESERVED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusClosed    Status = "CLOSED"
)

// Statuses - все статусы в порядке отображения (кнопки, статистика, экспорт).
var Statuses = []Status{StatusActive, StatusReserved, StatusWithdrawn, StatusClosed}

// Valid сообщает, является ли статус одним из четырёх публичных.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// ParseStatus строго разбирает код статуса.
func ParseStatus(raw string) (Status, error) {
	st := Status(raw)
	if !st.Valid() {
		return StatusNone, fmt.Errorf("неизвестный статус %q", raw)
	}
	return st, nil
}

// Actor - пользователь, совершивший действие (создатель, автор смены статуса).
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupPost - расположение единственного контрольного сообщения пропозиции в группе.
type GroupPost struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// MessageRef - ссылка на отправленное сообщение.
type MessageRef = GroupPost

// Offer - одна пропозиция (объявление).
type Offer struct {
	ID      int64 `json:"id"`
	Creator Actor `json:"creator"`

	Category    NullString `json:"category"`
	HousingType NullString `json:"housing_type"`
	Street      NullString `json:"street"`
	City        NullString `json:"city"`
	District    NullString `json:"district"`
	Perks       NullString `json:"perks"`
	Rent        NullString `json:"rent"`
	Deposit     NullString `json:"deposit"`
	Commission  NullString `json:"commission"`
	Parking     NullString `json:"parking"`
	MoveIn      NullString `json:"move_in"`
	Viewings    NullString `json:"viewings"`
	Broker      NullString `json:"broker"`

	Photos    []string   `json:"photos"`
	Status    Status     `json:"status"`
	GroupPost *GroupPost `json:"group_post,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Published сообщает, было ли контрольное сообщение уже отправлено в группу.
func (o Offer) Published() bool {
	return o.GroupPost != nil
}

// Number возвращает публичный номер пропозиции с ведущими нулями (#0007).
func (o Offer) Number() string {
	return FormatNumber(o.ID)
}

// FormatNumber форматирует номер пропозиции для отображения.
func FormatNumber(id int64) string {
	return fmt.Sprintf("%04d", id)
}

// Field возвращает значение поля по ключу.
func (o Offer) Field(key FieldKey) NullString {
	switch key {
	case FieldCategory:
		return o.Category
	case FieldHousingType:
		return o.HousingType
	case FieldStreet:
		return o.Street
	case FieldCity:
		return o.City
	case FieldDistrict:
		return o.District
	case FieldPerks:
		return o.Perks
	case FieldRent:
		return o.Rent
	case FieldDeposit:
		return o.Deposit
	case FieldCommission:
		return o.Commission
	case FieldParking:
		return o.Parking
	case FieldMoveIn:
		return o.MoveIn
	case FieldViewings:
		return o.Viewings
	case FieldBroker:
		return o.Broker
	}
	panic(fmt.Sprintf("models: неизвестное поле пропозиции %q", key))
}

// FieldPointer возвращает указатель на поле для сканирования из БД.
func (o *Offer) FieldPointer(key FieldKey) *NullString {
	switch key {
	case FieldCategory:
		return &o.Category
	case FieldHousingType:
		return &o.HousingType
	case FieldStreet:
		return &o.Street
	case FieldCity:
		return &o.City
	case FieldDistrict:
		return &o.District
	case FieldPerks:
		return &o.Perks
	case FieldRent:
		return &o.Rent
	case FieldDeposit:
		return &o.Deposit
	case FieldCommission:
		return &o.Commission
	case FieldParking:
		return &o.Parking
	case FieldMoveIn:
		return &o.MoveIn
	case FieldViewings:
		return &o.Viewings
	case FieldBroker:
		return &o.Broker
	}
	panic(fmt.Sprintf("models: неизвестное поле пропозиции %q", key))
}

// StatusEvent - неизменяемая запись журнала смены статусов.
type StatusEvent struct {
	ID        int64     `json:"id"`
	OfferID   int64     `json:"offer_id"`
	Status    Status    `json:"status"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusCount - одна строка агрегата журнала: сколько раз актёр ставил статус за период.
type StatusCount struct {
	Status Status
	Actor  string
	Count  int
}
