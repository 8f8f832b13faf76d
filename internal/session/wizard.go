package session

import (
	"fmt"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

// ConversationKey - ключ состояния мастера: чат + пользователь.
// В личке ChatID совпадает с UserID, в группе у каждого участника своё состояние.
type ConversationKey struct {
	ChatID int64
	UserID int64
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

// Wizard - явное состояние мастера для одного разговора.
// OfferID задан во всех шагах, кроме STATE_IDLE; EditField - только в STATE_EDIT_NEW_VALUE.
type Wizard struct {
	Step      string          `json:"step"`
	OfferID   int64           `json:"offer_id,omitempty"`
	EditField models.FieldKey `json:"edit_field,omitempty"`
}

// Idle сообщает, что мастер не запущен.
func (w Wizard) Idle() bool {
	return w.Step == "" || w.Step == constants.STATE_IDLE
}

// IdleWizard возвращает пустое состояние.
func IdleWizard() Wizard {
	return Wizard{Step: constants.STATE_IDLE}
}
