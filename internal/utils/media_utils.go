// internal/utils/media_utils.go
package utils

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// LargestPhotoFileID возвращает file_id самого большого размера фото.
// Telegram присылает размеры по возрастанию, но сравниваем по площади на всякий случай.
func LargestPhotoFileID(sizes []tgbotapi.PhotoSize) string {
	best := -1
	bestArea := -1
	for i, s := range sizes {
		if area := s.Width * s.Height; area >= bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return ""
	}
	return sizes[best].FileID
}
