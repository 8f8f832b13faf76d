package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// BotClient представляет собой обертку для Telegram Bot API.
// BotClient represents a wrapper for the Telegram Bot API.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// InitBot инициализирует Telegram бота.
// token - API токен бота, debug - флаг режима отладки.
func InitBot(token string, debug bool) (*BotClient, error) {
	if token == "" {
		return nil, fmt.Errorf("токен Telegram API не предоставлен")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}

	api.Debug = debug

	log.Printf("Авторизован как аккаунт %s", api.Self.UserName)

	// Отключаем вебхук, если он активен (важно для getUpdates)
	// Disable webhook if active (important for getUpdates)
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: false,
	}
	if _, err = api.Request(deleteWebhookConfig); err != nil {
		log.Printf("Предупреждение или ошибка при отключении вебхука: %v. Это может быть нормально, если вебхук не был установлен.", err)
	} else {
		log.Println("Вебхук успешно отключен (или не был установлен).")
	}

	return &BotClient{api: api, Debug: debug}, nil
}

// Username возвращает имя бота (для ссылок t.me/<bot>?start=...).
func (bc *BotClient) Username() string {
	if bc == nil || bc.api == nil {
		return ""
	}
	return bc.api.Self.UserName
}

// GetUpdatesChan возвращает канал обновлений от Telegram.
// GetUpdatesChan returns the update channel from Telegram.
func (bc *BotClient) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if bc == nil || bc.api == nil {
		log.Fatal("BotClient или его API не инициализирован перед запросом обновлений.")
	}
	if bc.Debug {
		log.Printf("Запрос канала обновлений с конфигурацией: %+v", config)
	}
	return bc.api.GetUpdatesChan(config)
}

// StopReceivingUpdates останавливает long polling.
func (bc *BotClient) StopReceivingUpdates() {
	if bc != nil && bc.api != nil {
		bc.api.StopReceivingUpdates()
	}
}

// Send отправляет сообщение через BotClient.
// Send sends a message via BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			log.Printf("Отправка сообщения: ChatID=%d, Text='%.50s...'", msg.ChatID, msg.Text)
		} else if photoMsg, ok := c.(tgbotapi.PhotoConfig); ok {
			log.Printf("Отправка фото: ChatID=%d, Caption='%.50s...'", photoMsg.ChatID, photoMsg.Caption)
		} else {
			log.Printf("Отправка/запрос типа %T", c)
		}
	}
	return bc.api.Send(c)
}

// SendMediaGroup отправляет альбом (2-10 элементов).
func (bc *BotClient) SendMediaGroup(cfg tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		log.Printf("Отправка альбома: ChatID=%d, элементов=%d", cfg.ChatID, len(cfg.Media))
	}
	return bc.api.SendMediaGroup(cfg)
}

// Request выполняет запрос через BotClient.
// Request performs a request via BotClient.
func (bc *BotClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if editMsg, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			log.Printf("Редактирование сообщения: ChatID=%d, MessageID=%d, Text='%.50s...'", editMsg.ChatID, editMsg.MessageID, editMsg.Text)
		} else if cbAns, ok := c.(tgbotapi.CallbackConfig); ok {
			log.Printf("Запрос ответа на коллбэк: CallbackQueryID=%s, Text='%.50s...'", cbAns.CallbackQueryID, cbAns.Text)
		} else {
			log.Printf("Выполнение запроса типа %T", c)
		}
	}
	return bc.api.Request(c)
}
