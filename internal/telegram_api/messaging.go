package telegram_api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

// Sender - часть BotClient, через которую Messenger ходит в Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(cfg tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
}

// DefaultSendTimeout - ограничение на один вызов Telegram API.
const DefaultSendTimeout = 15 * time.Second

// Messenger отправляет сообщения в формате HTML, альбомы и правки.
// Каждый вызов ограничен по времени: по истечении timeout возвращается ошибка,
// даже если HTTP-запрос ещё не завершился.
type Messenger struct {
	client  Sender
	timeout time.Duration
}

// NewMessenger создает Messenger поверх клиента.
func NewMessenger(client Sender, timeout time.Duration) *Messenger {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Messenger{client: client, timeout: timeout}
}

// withTimeout выполняет вызов API с ограничением по времени.
func withTimeout[T any](ctx context.Context, timeout time.Duration, op string, call func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		log.Printf("Messenger: Превышено время ожидания (%s) для операции %s", timeout, op)
		return zero, fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// ToInlineKeyboard преобразует клавиатуру в разметку Telegram. Пустая клавиатура -> nil.
func ToInlineKeyboard(kb models.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// SendMessage отправляет HTML-сообщение с необязательной inline-клавиатурой.
func (m *Messenger) SendMessage(ctx context.Context, chatID int64, text string, kb models.Keyboard) (models.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := ToInlineKeyboard(kb); markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := withTimeout(ctx, m.timeout, "sendMessage", func() (tgbotapi.Message, error) {
		return m.client.Send(msg)
	})
	if err != nil {
		log.Printf("Messenger.SendMessage: Ошибка отправки в чат %d: %v", chatID, err)
		return models.MessageRef{}, err
	}
	return models.MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// EditMessageText редактирует текст и клавиатуру сообщения.
// Ответ Telegram "message is not modified" считается успехом.
func (m *Messenger) EditMessageText(ctx context.Context, ref models.MessageRef, text string, kb models.Keyboard) error {
	var edit tgbotapi.EditMessageTextConfig
	if markup := ToInlineKeyboard(kb); markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	}
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := withTimeout(ctx, m.timeout, "editMessageText", func() (*tgbotapi.APIResponse, error) {
		return m.client.Request(edit)
	})
	if err == nil {
		return nil
	}
	if IsNotModified(err) {
		log.Printf("Messenger.EditMessageText: Сообщение не изменено (ожидаемо): chatID=%d, MessageID=%d", ref.ChatID, ref.MessageID)
		return nil
	}
	log.Printf("Messenger.EditMessageText: Ошибка редактирования chatID=%d, MessageID=%d: %v", ref.ChatID, ref.MessageID, err)
	return err
}

// IsNotModified распознаёт ответ Telegram на правку без изменений.
func IsNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// SendAlbum отправляет фото пачками по constants.MAX_ALBUM_PHOTOS.
// Пачка из одного фото отправляется обычным sendPhoto (альбом требует минимум два элемента).
func (m *Messenger) SendAlbum(ctx context.Context, chatID int64, photos []string) error {
	for _, chunk := range ChunkPhotos(photos, constants.MAX_ALBUM_PHOTOS) {
		if len(chunk) == 1 {
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(chunk[0]))
			if _, err := withTimeout(ctx, m.timeout, "sendPhoto", func() (tgbotapi.Message, error) {
				return m.client.Send(photo)
			}); err != nil {
				log.Printf("Messenger.SendAlbum: Ошибка отправки фото в чат %d: %v", chatID, err)
				return err
			}
			continue
		}

		media := make([]tgbotapi.InputMedia, 0, len(chunk))
		for _, ref := range chunk {
			photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(ref))
			media = append(media, &photo)
		}
		group := tgbotapi.NewMediaGroup(chatID, media)
		if _, err := withTimeout(ctx, m.timeout, "sendMediaGroup", func() ([]tgbotapi.Message, error) {
			return m.client.SendMediaGroup(group)
		}); err != nil {
			log.Printf("Messenger.SendAlbum: Ошибка отправки альбома (%d фото) в чат %d: %v", len(chunk), chatID, err)
			return err
		}
	}
	return nil
}

// ChunkPhotos делит список на пачки не больше size, сохраняя порядок.
func ChunkPhotos(photos []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(photos); start += size {
		end := start + size
		if end > len(photos) {
			end = len(photos)
		}
		chunks = append(chunks, photos[start:end])
	}
	return chunks
}

// SendDocument отправляет файл с диска.
func (m *Messenger) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := withTimeout(ctx, m.timeout, "sendDocument", func() (tgbotapi.Message, error) {
		return m.client.Send(doc)
	})
	if err != nil {
		log.Printf("Messenger.SendDocument: Ошибка отправки файла %s в чат %d: %v", path, chatID, err)
	}
	return err
}

// SendPhotoBytes отправляет картинку из памяти (QR-код).
func (m *Messenger) SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	_, err := withTimeout(ctx, m.timeout, "sendPhoto", func() (tgbotapi.Message, error) {
		return m.client.Send(photo)
	})
	if err != nil {
		log.Printf("Messenger.SendPhotoBytes: Ошибка отправки фото в чат %d: %v", chatID, err)
	}
	return err
}

// AnswerCallback отвечает на callback query (убирает "часики" на кнопке).
func (m *Messenger) AnswerCallback(ctx context.Context, callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := withTimeout(ctx, m.timeout, "answerCallbackQuery", func() (*tgbotapi.APIResponse, error) {
		return m.client.Request(cb)
	}); err != nil {
		log.Printf("Messenger.AnswerCallback: Ошибка ответа на коллбэк %s: %v", callbackID, err)
	}
}
