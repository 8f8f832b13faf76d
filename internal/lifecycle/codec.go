package lifecycle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

// ErrInvalidCallback - callback_data не удалось строго разобрать. Такие нажатия отбрасываются.
var ErrInvalidCallback = errors.New("invalid callback payload")

// StatusCommand - разобранное нажатие кнопки статуса в группе.
type StatusCommand struct {
	OfferID int64
	Status  models.Status
}

// EncodeStatus формирует callback_data кнопки статуса: "st:<id>:<STATUS>".
func EncodeStatus(offerID int64, st models.Status) string {
	return strings.Join([]string{constants.CALLBACK_PREFIX_STATUS, strconv.FormatInt(offerID, 10), string(st)}, constants.CALLBACK_DATA_SEPARATOR)
}

// DecodeStatus строго разбирает callback_data кнопки статуса.
// Номер - только десятичные цифры без знака, статус - один из четырёх кодов.
func DecodeStatus(data string) (StatusCommand, error) {
	if len(data) > constants.MAX_CALLBACK_DATA_LEN {
		return StatusCommand{}, fmt.Errorf("%w: длина %d", ErrInvalidCallback, len(data))
	}
	parts := strings.Split(data, constants.CALLBACK_DATA_SEPARATOR)
	if len(parts) != 3 || parts[0] != constants.CALLBACK_PREFIX_STATUS {
		return StatusCommand{}, fmt.Errorf("%w: %q", ErrInvalidCallback, data)
	}
	if !isDigits(parts[1]) {
		return StatusCommand{}, fmt.Errorf("%w: номер %q", ErrInvalidCallback, parts[1])
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return StatusCommand{}, fmt.Errorf("%w: номер %q", ErrInvalidCallback, parts[1])
	}
	st, err := models.ParseStatus(parts[2])
	if err != nil {
		return StatusCommand{}, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}
	return StatusCommand{OfferID: id, Status: st}, nil
}

// IsStatusCallback сообщает, адресовано ли нажатие обработчику статусов.
func IsStatusCallback(data string) bool {
	return strings.HasPrefix(data, constants.CALLBACK_PREFIX_STATUS+constants.CALLBACK_DATA_SEPARATOR)
}

// CallbackKind - тип нажатия кнопки мастера.
type CallbackKind int

const (
	CallbackCategory CallbackKind = iota + 1
	CallbackHousingType
	CallbackPhotosDone
	CallbackPreview
)

// WizardCallback - разобранное нажатие кнопки мастера.
type WizardCallback struct {
	Kind  CallbackKind
	Value string
}

// DecodeWizard строго разбирает callback_data кнопок мастера.
// Значения категорий и типов жилья сверяются с фиксированными списками.
func DecodeWizard(data string) (WizardCallback, error) {
	if len(data) > constants.MAX_CALLBACK_DATA_LEN {
		return WizardCallback{}, fmt.Errorf("%w: длина %d", ErrInvalidCallback, len(data))
	}
	if data == constants.CALLBACK_PHOTOS_DONE {
		return WizardCallback{Kind: CallbackPhotosDone}, nil
	}
	prefix, value, ok := strings.Cut(data, constants.CALLBACK_DATA_SEPARATOR)
	if !ok {
		return WizardCallback{}, fmt.Errorf("%w: %q", ErrInvalidCallback, data)
	}
	switch prefix {
	case constants.CALLBACK_PREFIX_CATEGORY:
		for _, c := range constants.Categories {
			if c.Value == value {
				return WizardCallback{Kind: CallbackCategory, Value: value}, nil
			}
		}
	case constants.CALLBACK_PREFIX_HOUSING_TYPE:
		if value == constants.HOUSING_TYPE_OTHER {
			return WizardCallback{Kind: CallbackHousingType, Value: value}, nil
		}
		for _, ht := range constants.HousingTypes {
			if ht == value {
				return WizardCallback{Kind: CallbackHousingType, Value: value}, nil
			}
		}
	case constants.CALLBACK_PREFIX_PREVIEW:
		switch data {
		case constants.CALLBACK_PREVIEW_PUBLISH, constants.CALLBACK_PREVIEW_EDIT, constants.CALLBACK_PREVIEW_CANCEL:
			return WizardCallback{Kind: CallbackPreview, Value: value}, nil
		}
	}
	return WizardCallback{}, fmt.Errorf("%w: %q", ErrInvalidCallback, data)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
