package handlers

import (
	"context"
	"time"

	"OrandaBot/internal/config"
	"OrandaBot/internal/lifecycle"
	"OrandaBot/internal/models"
	"OrandaBot/internal/session"
)

// Outbox - исходящие вызовы, которые нужны обработчикам помимо контроллера (реализует telegram_api.Messenger).
type Outbox interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb models.Keyboard) (models.MessageRef, error)
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
	SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	AnswerCallback(ctx context.Context, callbackID, text string)
}

// OfferReader - чтение пропозиций и журнала статусов (реализует db.Store).
type OfferReader interface {
	GetOffer(ctx context.Context, id int64) (models.Offer, error)
	ListOffers(ctx context.Context) ([]models.Offer, error)
	CountStatusEvents(ctx context.Context, start, end time.Time) ([]models.StatusCount, error)
}

// HandlerDependencies содержит все зависимости, необходимые для обработчиков.
type HandlerDependencies struct {
	Config         *config.Config
	Controller     *lifecycle.Controller
	Messenger      Outbox
	Store          OfferReader
	SessionManager *session.Manager
	// BotUsername - для deep link в QR-кодах; если пусто, берётся из Config.
	BotUsername string
	// Now - часы для статистики; nil означает time.Now.
	Now func() time.Time
}

// BotHandler инкапсулирует логику обработки сообщений и коллбэков.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.Controller == nil || deps.Messenger == nil || deps.Store == nil || deps.SessionManager == nil {
		panic("Не все зависимости для BotHandler были предоставлены.")
	}
	if deps.BotUsername == "" {
		deps.BotUsername = deps.Config.BotUsername
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &BotHandler{Deps: deps}
}

// now - текущее время в часовом поясе конфигурации.
func (bh *BotHandler) now() time.Time {
	t := bh.Deps.Now()
	if bh.Deps.Config.Location != nil {
		t = t.In(bh.Deps.Config.Location)
	}
	return t
}
