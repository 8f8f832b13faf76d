// Файл: internal/utils/formatters.go

package utils

import (
	"fmt"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"OrandaBot/internal/constants"
)

// UserMention формирует упоминание пользователя: @username, иначе полное имя,
// иначе "id<число>". Для nil возвращает анонимного автора.
func UserMention(user *tgbotapi.User) string {
	if user == nil {
		return constants.ANONYMOUS_ACTOR
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	name := strings.TrimSpace(strings.Join([]string{user.FirstName, user.LastName}, " "))
	if name != "" {
		return name
	}
	return fmt.Sprintf("id%d", user.ID)
}
