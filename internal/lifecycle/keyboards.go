package lifecycle

import (
	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

func CategoryKeyboard() models.Keyboard {
	var row []models.Button
	for _, c := range constants.Categories {
		row = append(row, models.Button{Text: c.Label, Data: constants.CALLBACK_PREFIX_CATEGORY + constants.CALLBACK_DATA_SEPARATOR + c.Value})
	}
	return models.Keyboard{row}
}

// HousingTypeKeyboard - по две кнопки в ряд и отдельная кнопка "Інше...".
func HousingTypeKeyboard() models.Keyboard {
	var kb models.Keyboard
	var row []models.Button
	for _, ht := range constants.HousingTypes {
		row = append(row, models.Button{Text: ht, Data: constants.CALLBACK_PREFIX_HOUSING_TYPE + constants.CALLBACK_DATA_SEPARATOR + ht})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, models.Row(models.Button{
		Text: "Інше...",
		Data: constants.CALLBACK_PREFIX_HOUSING_TYPE + constants.CALLBACK_DATA_SEPARATOR + constants.HOUSING_TYPE_OTHER,
	}))
	return kb
}

func PhotosDoneKeyboard() models.Keyboard {
	return models.Keyboard{models.Row(models.Button{Text: "✅ Готово", Data: constants.CALLBACK_PHOTOS_DONE})}
}

func PreviewKeyboard() models.Keyboard {
	return models.Keyboard{
		models.Row(
			models.Button{Text: "📤 Публікувати", Data: constants.CALLBACK_PREVIEW_PUBLISH},
			models.Button{Text: "✏️ Редагувати", Data: constants.CALLBACK_PREVIEW_EDIT},
		),
		models.Row(models.Button{Text: "❌ Скасувати", Data: constants.CALLBACK_PREVIEW_CANCEL}),
	}
}

// StatusKeyboard - четыре кнопки статуса под контрольным сообщением, по две в ряд.
func StatusKeyboard(offerID int64) models.Keyboard {
	var kb models.Keyboard
	var row []models.Button
	for _, st := range models.Statuses {
		d := constants.StatusDisplayMap[st]
		row = append(row, models.Button{Text: d.Emoji + " " + d.Name, Data: EncodeStatus(offerID, st)})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	return kb
}
