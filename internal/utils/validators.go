package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"OrandaBot/internal/constants"
)

// offerNumberRegex принимает "12", "0012" и "#0012".
var offerNumberRegex = regexp.MustCompile(`^#?([0-9]{1,18})$`)

// ParseOfferNumber разбирает номер пропозиции из аргумента команды.
func ParseOfferNumber(raw string) (int64, error) {
	m := offerNumberRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("некорректный номер пропозиции '%s'", raw)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный номер пропозиции '%s'", raw)
	}
	return id, nil
}

// ParseStartPayload разбирает параметр /start вида offer_<n>.
func ParseStartPayload(payload string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), "offer_")
	if !ok {
		return 0, false
	}
	id, err := ParseOfferNumber(rest)
	if err != nil || strings.HasPrefix(rest, "#") {
		return 0, false
	}
	return id, true
}

// IsNewOfferShortcut проверяет, является ли текст кнопкой/фразой "новая пропозиция".
func IsNewOfferShortcut(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, s := range constants.NewOfferShortcuts {
		if t == strings.ToLower(s) {
			return true
		}
	}
	return false
}

// IsCommandInCategory проверяет, принадлежит ли команда одной из категорий.
func IsCommandInCategory(command string, categoryCommands []string) bool {
	for _, cmdPrefix := range categoryCommands {
		if strings.HasPrefix(command, cmdPrefix) {
			return true
		}
	}
	return false
}
