// Package lifecycle ведёт пропозицию от создания до публикации и смены статусов:
// линейный мастер, предпросмотр, публикация в группу и обработка кнопок статусов.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/formatters"
	"OrandaBot/internal/models"
	"OrandaBot/internal/session"
)

// OfferStore - операции хранилища, которые нужны контроллеру (реализует db.Store).
type OfferStore interface {
	CreateOffer(ctx context.Context, creator models.Actor) (int64, error)
	GetOffer(ctx context.Context, id int64) (models.Offer, error)
	SetField(ctx context.Context, id int64, key models.FieldKey, value models.NullString) error
	AddPhoto(ctx context.Context, id int64, ref string) (int, error)
	SetGroupPost(ctx context.Context, id int64, post models.GroupPost) error
	RecordStatus(ctx context.Context, id int64, status models.Status, actor models.Actor) error
	MarkPublished(ctx context.Context, id int64, post models.GroupPost, actor models.Actor) error
}

// Messenger - исходящие сообщения (реализует telegram_api.Messenger).
// Каждый вызов может завершиться ошибкой; контроллер не считает доставку гарантированной.
type Messenger interface {
	SendAlbum(ctx context.Context, chatID int64, photos []string) error
	SendMessage(ctx context.Context, chatID int64, text string, kb models.Keyboard) (models.MessageRef, error)
	EditMessageText(ctx context.Context, ref models.MessageRef, text string, kb models.Keyboard) error
}

// DeliveryError - ошибка доставки сообщения, в отличие от ошибок логики и хранилища.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("доставка (%s): %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError сообщает, вызвана ли ошибка сбоем доставки.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

// Config - параметры контроллера.
type Config struct {
	GroupChatID int64
	Currency    string
	ClearTokens []string
	DoneTokens  []string
}

// Conversation - источник события: ключ разговора и автор.
type Conversation struct {
	Key  session.ConversationKey
	User models.Actor
}

// ChatID - чат, в который отвечает контроллер.
func (c Conversation) ChatID() int64 {
	return c.Key.ChatID
}

// Controller - конечный автомат мастера пропозиций.
// Состояние каждого разговора хранится в session.Manager; события одного разговора
// должны подаваться последовательно (session.Queue).
type Controller struct {
	store     OfferStore
	messenger Messenger
	sessions  *session.Manager
	cfg       Config
}

// NewController создает контроллер. Пустые списки токенов заменяются значениями по умолчанию.
func NewController(store OfferStore, messenger Messenger, sessions *session.Manager, cfg Config) *Controller {
	if len(cfg.ClearTokens) == 0 {
		cfg.ClearTokens = constants.DefaultClearTokens
	}
	if len(cfg.DoneTokens) == 0 {
		cfg.DoneTokens = constants.DefaultDoneTokens
	}
	if cfg.Currency == "" {
		cfg.Currency = formatters.DefaultCurrency
	}
	return &Controller{store: store, messenger: messenger, sessions: sessions, cfg: cfg}
}

// fieldValue применяет правило ввода: обрезка пробелов, токен очистки или пустая строка -> NULL.
func (c *Controller) fieldValue(text string) models.NullString {
	v := strings.TrimSpace(text)
	if v == "" || c.isClearToken(v) {
		return models.Null()
	}
	return models.NewNullString(v)
}

func (c *Controller) isClearToken(v string) bool {
	for _, t := range c.cfg.ClearTokens {
		if v == t {
			return true
		}
	}
	return false
}

// isDoneToken - без учёта регистра.
func (c *Controller) isDoneToken(text string) bool {
	v := strings.ToLower(strings.TrimSpace(text))
	if v == "" {
		return false
	}
	for _, t := range c.cfg.DoneTokens {
		if v == strings.ToLower(t) {
			return true
		}
	}
	return false
}

func (c *Controller) clearToken() string {
	return c.cfg.ClearTokens[0]
}

// send отправляет сообщение в чат разговора.
func (c *Controller) send(ctx context.Context, chatID int64, text string, kb models.Keyboard) error {
	if _, err := c.messenger.SendMessage(ctx, chatID, text, kb); err != nil {
		log.Printf("Controller.send: Ошибка отправки сообщения в чат %d: %v", chatID, err)
		return &DeliveryError{Op: "sendMessage", Err: err}
	}
	return nil
}

// fail сообщает пользователю об ошибке операции и возвращает исходную ошибку.
// NotFound показывается как "пропозицію не знайдено", остальное - общим текстом без деталей.
func (c *Controller) fail(ctx context.Context, conv Conversation, op string, err error) error {
	log.Printf("Controller.%s: Ошибка для %s: %v", op, conv.Key, err)
	text := formatters.GenericErrorText
	if errors.Is(err, models.ErrOfferNotFound) {
		text = formatters.OfferNotFoundText
		if clearErr := c.sessions.Clear(ctx, conv.Key); clearErr != nil {
			log.Printf("Controller.%s: Не удалось сбросить состояние %s: %v", op, conv.Key, clearErr)
		}
	}
	c.send(ctx, conv.ChatID(), text, nil)
	return err
}

func (c *Controller) setWizard(ctx context.Context, conv Conversation, w session.Wizard) error {
	return c.sessions.SetWizard(ctx, conv.Key, w)
}

// NewOffer создает пустую пропозицию и запускает мастер с выбора категории.
// Незавершённый мастер того же разговора бросается (пропозиция остаётся в хранилище).
func (c *Controller) NewOffer(ctx context.Context, conv Conversation) error {
	id, err := c.store.CreateOffer(ctx, conv.User)
	if err != nil {
		return c.fail(ctx, conv, "NewOffer", err)
	}
	if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_OFFER_CATEGORY, OfferID: id}); err != nil {
		return c.fail(ctx, conv, "NewOffer", err)
	}
	return c.send(ctx, conv.ChatID(), formatters.ChooseCategoryText, CategoryKeyboard())
}

// Cancel сбрасывает мастер. Пропозиция не удаляется.
func (c *Controller) Cancel(ctx context.Context, conv Conversation) error {
	w, err := c.sessions.GetWizard(ctx, conv.Key)
	if err != nil {
		return c.fail(ctx, conv, "Cancel", err)
	}
	if w.Idle() {
		return c.send(ctx, conv.ChatID(), formatters.NothingToCancelText, nil)
	}
	if err := c.sessions.Clear(ctx, conv.Key); err != nil {
		return c.fail(ctx, conv, "Cancel", err)
	}
	log.Printf("Controller.Cancel: Мастер пропозиции #%s отменён пользователем %d.", models.FormatNumber(w.OfferID), conv.User.ID)
	return c.send(ctx, conv.ChatID(), formatters.CancelledText, nil)
}

// EditExisting открывает меню редактирования существующей пропозиции (в том числе опубликованной).
// Проверка прав - на стороне вызывающего.
func (c *Controller) EditExisting(ctx context.Context, conv Conversation, offerID int64) error {
	offer, err := c.store.GetOffer(ctx, offerID)
	if err != nil {
		return c.fail(ctx, conv, "EditExisting", err)
	}
	if err := c.setWizard(ctx, conv, session.Wizard{Step: constants.STATE_EDIT_CHOOSE_FIELD, OfferID: offer.ID}); err != nil {
		return c.fail(ctx, conv, "EditExisting", err)
	}
	return c.send(ctx, conv.ChatID(), formatters.EditMenuText(offer), nil)
}

// ShowOffer отправляет карточку пропозиции (фото и текст) без кнопок управления.
func (c *Controller) ShowOffer(ctx context.Context, conv Conversation, offerID int64) error {
	offer, err := c.store.GetOffer(ctx, offerID)
	if err != nil {
		return c.fail(ctx, conv, "ShowOffer", err)
	}
	if len(offer.Photos) > 0 {
		if err := c.messenger.SendAlbum(ctx, conv.ChatID(), offer.Photos); err != nil {
			log.Printf("Controller.ShowOffer: Ошибка отправки фото пропозиции #%s: %v", offer.Number(), err)
			return &DeliveryError{Op: "sendAlbum", Err: err}
		}
	}
	return c.send(ctx, conv.ChatID(), formatters.OfferText(offer, c.cfg.Currency), nil)
}
