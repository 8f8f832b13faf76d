package lifecycle

import (
	"context"
	"log"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/formatters"
	"OrandaBot/internal/models"
	"OrandaBot/internal/session"
)

// Publish отправляет пропозицию в группу: сначала альбом, затем отдельное контрольное сообщение
// с кнопками статусов. Ссылка на контрольное сообщение сохраняется, первым событием журнала
// записывается ACTIVE.
//
// Уже опубликованная пропозиция (GroupPost задан) повторно не публикуется.
// Ошибка доставки не повторяется автоматически: пользователь получает сообщение,
// мастер остаётся в предпросмотре, и публикацию можно повторить кнопкой.
func (c *Controller) Publish(ctx context.Context, conv Conversation, offerID int64) error {
	offer, err := c.store.GetOffer(ctx, offerID)
	if err != nil {
		return c.fail(ctx, conv, "Publish", err)
	}
	if offer.Published() {
		log.Printf("Publish: Пропозиция #%s уже опубликована (%d/%d), повтор пропущен.",
			offer.Number(), offer.GroupPost.ChatID, offer.GroupPost.MessageID)
		if err := c.sessions.Clear(ctx, conv.Key); err != nil {
			log.Printf("Publish: Не удалось сбросить состояние %s: %v", conv.Key, err)
		}
		return c.send(ctx, conv.ChatID(), formatters.AlreadyPublishedText, nil)
	}
	if len(offer.Photos) == 0 {
		if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_OFFER_PHOTOS, OfferID: offer.ID}); err != nil {
			return c.fail(ctx, conv, "Publish", err)
		}
		return c.send(ctx, conv.ChatID(), formatters.PhotosNeedOneText+"\n"+formatters.PhotosPromptText, PhotosDoneKeyboard())
	}

	group := c.cfg.GroupChatID
	if err := c.messenger.SendAlbum(ctx, group, offer.Photos); err != nil {
		return c.publishFailed(ctx, conv, offer, &DeliveryError{Op: "sendAlbum", Err: err})
	}
	offer.Status = models.StatusActive
	ref, err := c.messenger.SendMessage(ctx, group, formatters.OfferText(offer, c.cfg.Currency), StatusKeyboard(offer.ID))
	if err != nil {
		return c.publishFailed(ctx, conv, offer, &DeliveryError{Op: "sendMessage", Err: err})
	}

	if err := c.store.MarkPublished(ctx, offer.ID, ref, conv.User); err != nil {
		return c.fail(ctx, conv, "Publish", err)
	}
	log.Printf("Publish: Пропозиция #%s опубликована в группе %d (сообщение %d) пользователем %d.",
		offer.Number(), ref.ChatID, ref.MessageID, conv.User.ID)

	if err := c.sessions.Clear(ctx, conv.Key); err != nil {
		log.Printf("Publish: Не удалось сбросить состояние %s: %v", conv.Key, err)
	}
	return c.send(ctx, conv.ChatID(), formatters.PublishedText(offer), nil)
}

func (c *Controller) publishFailed(ctx context.Context, conv Conversation, offer models.Offer, err *DeliveryError) error {
	log.Printf("Publish: Ошибка публикации пропозиции #%s в группу %d: %v", offer.Number(), c.cfg.GroupChatID, err)
	c.send(ctx, conv.ChatID(), formatters.PublishFailedText, PreviewKeyboard())
	return err
}

// HandleStatusPress обрабатывает нажатие кнопки статуса в группе.
// Payload разбирается строго; неразборчивые нажатия отбрасываются с ErrInvalidCallback.
// Новый статус записывается вместе с событием журнала, затем контрольное сообщение
// перерисовывается на месте; если редактирование невозможно, публикуется новое сообщение
// и ссылка на него сохраняется.
func (c *Controller) HandleStatusPress(ctx context.Context, actor models.Actor, pressed models.MessageRef, data string) (models.Status, error) {
	cmd, err := DecodeStatus(data)
	if err != nil {
		log.Printf("HandleStatusPress: Отброшен callback от пользователя %d: %v", actor.ID, err)
		return models.StatusNone, err
	}
	if err := c.store.RecordStatus(ctx, cmd.OfferID, cmd.Status, actor); err != nil {
		log.Printf("HandleStatusPress: Ошибка записи статуса %s для #%s: %v", cmd.Status, models.FormatNumber(cmd.OfferID), err)
		return models.StatusNone, err
	}
	offer, err := c.store.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return cmd.Status, err
	}

	target := pressed
	if offer.GroupPost != nil {
		target = *offer.GroupPost
	}
	if err := c.refreshGroupPost(ctx, offer, target); err != nil {
		return cmd.Status, err
	}
	return cmd.Status, nil
}

// refreshGroupPost перерисовывает контрольное сообщение пропозиции на месте.
// При ошибке редактирования сообщение публикуется заново в тот же чат, а новая ссылка сохраняется.
func (c *Controller) refreshGroupPost(ctx context.Context, offer models.Offer, target models.MessageRef) error {
	text := formatters.OfferText(offer, c.cfg.Currency)
	kb := StatusKeyboard(offer.ID)

	editErr := c.messenger.EditMessageText(ctx, target, text, kb)
	if editErr == nil {
		return nil
	}
	log.Printf("refreshGroupPost: Не удалось отредактировать сообщение %d/%d пропозиции #%s: %v. Публикуем заново.",
		target.ChatID, target.MessageID, offer.Number(), editErr)

	ref, err := c.messenger.SendMessage(ctx, target.ChatID, text, kb)
	if err != nil {
		log.Printf("refreshGroupPost: Повторная публикация пропозиции #%s тоже не удалась: %v", offer.Number(), err)
		return &DeliveryError{Op: "editMessageText", Err: editErr}
	}
	if err := c.store.SetGroupPost(ctx, offer.ID, ref); err != nil {
		return err
	}
	log.Printf("refreshGroupPost: Пропозиция #%s: новое контрольное сообщение %d/%d.", offer.Number(), ref.ChatID, ref.MessageID)
	return nil
}
