package lifecycle

import (
	"context"
	"log"
	"strconv"
	"strings"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/formatters"
	"OrandaBot/internal/models"
	"OrandaBot/internal/session"
)

// textSteps - текстовые шаги мастера по порядку. После последнего - сбор фото.
var textSteps = []struct {
	step  string
	field models.FieldKey
}{
	{constants.STATE_OFFER_STREET, models.FieldStreet},
	{constants.STATE_OFFER_CITY, models.FieldCity},
	{constants.STATE_OFFER_DISTRICT, models.FieldDistrict},
	{constants.STATE_OFFER_PERKS, models.FieldPerks},
	{constants.STATE_OFFER_RENT, models.FieldRent},
	{constants.STATE_OFFER_DEPOSIT, models.FieldDeposit},
	{constants.STATE_OFFER_COMMISSION, models.FieldCommission},
	{constants.STATE_OFFER_PARKING, models.FieldParking},
	{constants.STATE_OFFER_MOVE_IN, models.FieldMoveIn},
	{constants.STATE_OFFER_VIEWINGS, models.FieldViewings},
	{constants.STATE_OFFER_BROKER, models.FieldBroker},
}

// textStep возвращает поле шага и следующий шаг.
func textStep(step string) (models.FieldKey, string, bool) {
	for i, s := range textSteps {
		if s.step != step {
			continue
		}
		if i+1 < len(textSteps) {
			return s.field, textSteps[i+1].step, true
		}
		return s.field, constants.STATE_OFFER_PHOTOS, true
	}
	return "", "", false
}

// HandleText обрабатывает текстовое сообщение в рамках мастера.
// handled=false означает, что мастер не активен и сообщение не для него.
func (c *Controller) HandleText(ctx context.Context, conv Conversation, text string) (handled bool, err error) {
	w, err := c.sessions.GetWizard(ctx, conv.Key)
	if err != nil {
		return true, c.fail(ctx, conv, "HandleText", err)
	}
	if w.Idle() {
		return false, nil
	}

	switch w.Step {
	case constants.STATE_OFFER_CATEGORY:
		return true, c.send(ctx, conv.ChatID(), formatters.ChooseCategoryText, CategoryKeyboard())

	case constants.STATE_OFFER_HOUSING_TYPE, constants.STATE_EDIT_HOUSING_TYPE:
		return true, c.send(ctx, conv.ChatID(), formatters.ChooseHousingTypeText, HousingTypeKeyboard())

	case constants.STATE_OFFER_HOUSING_OTHER, constants.STATE_EDIT_HOUSING_OTHER:
		return true, c.handleHousingCustom(ctx, conv, w, text)

	case constants.STATE_OFFER_PHOTOS:
		if c.isDoneToken(text) {
			return true, c.finishPhotos(ctx, conv, w)
		}
		return true, c.send(ctx, conv.ChatID(), formatters.PhotosWaitingText, PhotosDoneKeyboard())

	case constants.STATE_OFFER_PREVIEW:
		return true, c.send(ctx, conv.ChatID(), formatters.UseButtonsText, PreviewKeyboard())

	case constants.STATE_EDIT_CHOOSE_FIELD:
		return true, c.chooseEditField(ctx, conv, w, text)

	case constants.STATE_EDIT_NEW_VALUE:
		if _, ok := models.LookupField(w.EditField); !ok {
			log.Printf("HandleText: Некорректное поле '%s' в состоянии %s, сброс.", w.EditField, conv.Key)
			c.sessions.Clear(ctx, conv.Key)
			return true, c.send(ctx, conv.ChatID(), formatters.GenericErrorText, nil)
		}
		if err := c.store.SetField(ctx, w.OfferID, w.EditField, c.fieldValue(text)); err != nil {
			return true, c.fail(ctx, conv, "HandleText", err)
		}
		return true, c.afterEdit(ctx, conv, w.OfferID)
	}

	field, next, ok := textStep(w.Step)
	if !ok {
		log.Printf("HandleText: Неизвестный шаг '%s' для %s, сброс.", w.Step, conv.Key)
		if err := c.sessions.Clear(ctx, conv.Key); err != nil {
			return true, c.fail(ctx, conv, "HandleText", err)
		}
		return false, nil
	}

	value := c.fieldValue(text)
	if field == models.FieldBroker && strings.TrimSpace(text) == "" {
		// Пустой ввод маклера - подставляем автора.
		value = models.NewNullString(conv.User.Name)
	}
	if err := c.store.SetField(ctx, w.OfferID, field, value); err != nil {
		return true, c.fail(ctx, conv, "HandleText", err)
	}
	if err := c.setWizard(ctx, conv, session.Wizard{Step: next, OfferID: w.OfferID}); err != nil {
		return true, c.fail(ctx, conv, "HandleText", err)
	}
	if next == constants.STATE_OFFER_PHOTOS {
		return true, c.send(ctx, conv.ChatID(), formatters.PhotosPromptText, PhotosDoneKeyboard())
	}
	nextField, _, _ := textStep(next)
	return true, c.send(ctx, conv.ChatID(), formatters.FieldPrompt(nextField), nil)
}

func (c *Controller) handleHousingCustom(ctx context.Context, conv Conversation, w session.Wizard, text string) error {
	if strings.TrimSpace(text) == "" {
		return c.send(ctx, conv.ChatID(), formatters.HousingTypeEmptyText, nil)
	}
	if err := c.store.SetField(ctx, w.OfferID, models.FieldHousingType, c.fieldValue(text)); err != nil {
		return c.fail(ctx, conv, "handleHousingCustom", err)
	}
	if w.Step == constants.STATE_EDIT_HOUSING_OTHER {
		return c.afterEdit(ctx, conv, w.OfferID)
	}
	return c.toStreet(ctx, conv, w.OfferID)
}

func (c *Controller) toStreet(ctx context.Context, conv Conversation, offerID int64) error {
	if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_OFFER_STREET, OfferID: offerID}); err != nil {
		return c.fail(ctx, conv, "toStreet", err)
	}
	return c.send(ctx, conv.ChatID(), formatters.FieldPrompt(models.FieldStreet), nil)
}

// chooseEditField принимает номер пункта 1..FieldCount. Неверный ввод не меняет состояние.
func (c *Controller) chooseEditField(ctx context.Context, conv Conversation, w session.Wizard, text string) error {
	raw := strings.TrimSpace(text)
	field, ok := models.Field{}, false
	if isDigits(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			field, ok = models.FieldByNumber(n)
		}
	}
	if !ok {
		return c.send(ctx, conv.ChatID(), formatters.EditNumberRejectedText(raw), nil)
	}

	if field.Key == models.FieldHousingType {
		next := session.Wizard{Step: constants.STATE_EDIT_HOUSING_TYPE, OfferID: w.OfferID, EditField: field.Key}
		if err := c.setWizard(ctx, conv, next); err != nil {
			return c.fail(ctx, conv, "chooseEditField", err)
		}
		return c.send(ctx, conv.ChatID(), formatters.ChooseHousingTypeText, HousingTypeKeyboard())
	}

	next := session.Wizard{Step: constants.STATE_EDIT_NEW_VALUE, OfferID: w.OfferID, EditField: field.Key}
	if err := c.setWizard(ctx, conv, next); err != nil {
		return c.fail(ctx, conv, "chooseEditField", err)
	}
	return c.send(ctx, conv.ChatID(), formatters.EditFieldPrompt(field, c.clearToken()), nil)
}

// HandlePhoto добавляет фото к пропозиции на шаге сбора фото.
func (c *Controller) HandlePhoto(ctx context.Context, conv Conversation, fileID string) (handled bool, err error) {
	w, err := c.sessions.GetWizard(ctx, conv.Key)
	if err != nil {
		return true, c.fail(ctx, conv, "HandlePhoto", err)
	}
	if w.Step != constants.STATE_OFFER_PHOTOS {
		return false, nil
	}
	n, err := c.store.AddPhoto(ctx, w.OfferID, fileID)
	if err != nil {
		return true, c.fail(ctx, conv, "HandlePhoto", err)
	}
	return true, c.send(ctx, conv.ChatID(), formatters.PhotoAddedText(n), PhotosDoneKeyboard())
}

// HandleCallback обрабатывает нажатия кнопок мастера (категория, тип жилья, "Готово", предпросмотр).
// Нажатия, не подходящие к текущему шагу, и неразборчивые payload игнорируются (handled=false).
func (c *Controller) HandleCallback(ctx context.Context, conv Conversation, data string) (handled bool, err error) {
	cb, err := DecodeWizard(data)
	if err != nil {
		log.Printf("HandleCallback: Отброшен callback от %s: %v", conv.Key, err)
		return false, nil
	}
	w, err := c.sessions.GetWizard(ctx, conv.Key)
	if err != nil {
		return true, c.fail(ctx, conv, "HandleCallback", err)
	}

	switch {
	case cb.Kind == CallbackCategory && w.Step == constants.STATE_OFFER_CATEGORY:
		if err := c.store.SetField(ctx, w.OfferID, models.FieldCategory, models.NewNullString(cb.Value)); err != nil {
			return true, c.fail(ctx, conv, "HandleCallback", err)
		}
		if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_OFFER_HOUSING_TYPE, OfferID: w.OfferID}); err != nil {
			return true, c.fail(ctx, conv, "HandleCallback", err)
		}
		return true, c.send(ctx, conv.ChatID(), formatters.ChooseHousingTypeText, HousingTypeKeyboard())

	case cb.Kind == CallbackHousingType && (w.Step == constants.STATE_OFFER_HOUSING_TYPE || w.Step == constants.STATE_EDIT_HOUSING_TYPE):
		editing := w.Step == constants.STATE_EDIT_HOUSING_TYPE
		if cb.Value == constants.HOUSING_TYPE_OTHER {
			next := session.Wizard{Step: constants.STATE_OFFER_HOUSING_OTHER, OfferID: w.OfferID}
			if editing {
				next = session.Wizard{Step: constants.STATE_EDIT_HOUSING_OTHER, OfferID: w.OfferID, EditField: models.FieldHousingType}
			}
			if err := c.setWizard(ctx, conv, next); err != nil {
				return true, c.fail(ctx, conv, "HandleCallback", err)
			}
			return true, c.send(ctx, conv.ChatID(), formatters.HousingTypeCustomText, nil)
		}
		if err := c.store.SetField(ctx, w.OfferID, models.FieldHousingType, models.NewNullString(cb.Value)); err != nil {
			return true, c.fail(ctx, conv, "HandleCallback", err)
		}
		if editing {
			return true, c.afterEdit(ctx, conv, w.OfferID)
		}
		return true, c.toStreet(ctx, conv, w.OfferID)

	case cb.Kind == CallbackPhotosDone && w.Step == constants.STATE_OFFER_PHOTOS:
		return true, c.finishPhotos(ctx, conv, w)

	case cb.Kind == CallbackPreview && w.Step == constants.STATE_OFFER_PREVIEW:
		switch data {
		case constants.CALLBACK_PREVIEW_PUBLISH:
			return true, c.Publish(ctx, conv, w.OfferID)
		case constants.CALLBACK_PREVIEW_EDIT:
			return true, c.EditExisting(ctx, conv, w.OfferID)
		case constants.CALLBACK_PREVIEW_CANCEL:
			if err := c.sessions.Clear(ctx, conv.Key); err != nil {
				return true, c.fail(ctx, conv, "HandleCallback", err)
			}
			return true, c.send(ctx, conv.ChatID(), formatters.CancelledText, nil)
		}
	}

	log.Printf("HandleCallback: Callback %q не подходит к шагу '%s' для %s.", data, w.Step, conv.Key)
	return false, nil
}

// finishPhotos переводит мастер в предпросмотр, если собрано хотя бы одно фото.
func (c *Controller) finishPhotos(ctx context.Context, conv Conversation, w session.Wizard) error {
	offer, err := c.store.GetOffer(ctx, w.OfferID)
	if err != nil {
		return c.fail(ctx, conv, "finishPhotos", err)
	}
	if len(offer.Photos) == 0 {
		return c.send(ctx, conv.ChatID(), formatters.PhotosNeedOneText, PhotosDoneKeyboard())
	}
	if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_OFFER_PREVIEW, OfferID: offer.ID}); err != nil {
		return c.fail(ctx, conv, "finishPhotos", err)
	}
	if err := c.send(ctx, conv.ChatID(), formatters.PreviewHeaderText, nil); err != nil {
		return err
	}
	return c.sendPreview(ctx, conv.ChatID(), offer)
}

// sendPreview отправляет фото и текст пропозиции с кнопками Публікувати / Редагувати / Скасувати.
func (c *Controller) sendPreview(ctx context.Context, chatID int64, offer models.Offer) error {
	if len(offer.Photos) > 0 {
		if err := c.messenger.SendAlbum(ctx, chatID, offer.Photos); err != nil {
			log.Printf("sendPreview: Ошибка отправки фото пропозиции #%s: %v", offer.Number(), err)
			return &DeliveryError{Op: "sendAlbum", Err: err}
		}
	}
	return c.send(ctx, chatID, formatters.OfferText(offer, c.cfg.Currency), PreviewKeyboard())
}

// afterEdit возвращает мастер в предпросмотр, перечитав пропозицию из хранилища.
// Для опубликованной пропозиции также обновляется контрольное сообщение в группе.
func (c *Controller) afterEdit(ctx context.Context, conv Conversation, offerID int64) error {
	offer, err := c.store.GetOffer(ctx, offerID)
	if err != nil {
		return c.fail(ctx, conv, "afterEdit", err)
	}
	if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_OFFER_PREVIEW, OfferID: offer.ID}); err != nil {
		return c.fail(ctx, conv, "afterEdit", err)
	}
	if offer.Published() {
		if err := c.refreshGroupPost(ctx, offer, *offer.GroupPost); err != nil {
			log.Printf("afterEdit: Не удалось обновить сообщение группы для #%s: %v", offer.Number(), err)
			c.send(ctx, conv.ChatID(), formatters.GroupLiveUpdateFailure, nil)
		}
	}
	if err := c.send(ctx, conv.ChatID(), formatters.UpdatedHeaderText, nil); err != nil {
		return err
	}
	return c.sendPreview(ctx, conv.ChatID(), offer)
}
