package utils

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"OrandaBot/internal/models"
)

// GroupPostLink строит ссылку t.me/c/... на сообщение в супергруппе.
// Для обычных групп (id без префикса -100) ссылки не существует.
func GroupPostLink(post models.GroupPost) (string, bool) {
	id := strconv.FormatInt(post.ChatID, 10)
	if !strings.HasPrefix(id, "-100") || len(id) <= 4 || post.MessageID <= 0 {
		return "", false
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", strings.TrimPrefix(id, "-100"), post.MessageID), true
}

// OfferDeepLink генерирует ссылку на бота, открывающую карточку пропозиции.
func OfferDeepLink(botUsername string, offerID int64) (string, error) {
	if botUsername == "" {
		log.Println("OfferDeepLink: botUsername не предоставлен.")
		return "", fmt.Errorf("имя пользователя бота не настроено")
	}
	if offerID <= 0 {
		log.Printf("OfferDeepLink: невалидный номер пропозиции: %d", offerID)
		return "", fmt.Errorf("невалидный номер пропозиции")
	}
	return fmt.Sprintf("https://t.me/%s?start=offer_%d", botUsername, offerID), nil
}

// OfferLink - ссылка на опубликованное сообщение, если она есть, иначе deep link на бота.
func OfferLink(botUsername string, offer models.Offer) (string, error) {
	if offer.GroupPost != nil {
		if link, ok := GroupPostLink(*offer.GroupPost); ok {
			return link, nil
		}
	}
	return OfferDeepLink(botUsername, offer.ID)
}

// GenerateQRCode генерирует PNG QR-код для ссылки.
func GenerateQRCode(link string) ([]byte, error) {
	if link == "" {
		return nil, fmt.Errorf("пустая ссылка для QR-кода")
	}
	// qrcode.Medium - уровень коррекции ошибок, 256 - размер QR-кода в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GenerateQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
