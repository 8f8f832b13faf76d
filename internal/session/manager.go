package session

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Store хранит состояние мастера по ключу разговора.
type Store interface {
	Load(ctx context.Context, key ConversationKey) (Wizard, bool, error)
	Save(ctx context.Context, key ConversationKey, w Wizard) error
	Delete(ctx context.Context, key ConversationKey) error
}

// MemoryStore - хранилище состояний в памяти процесса.
// Подходит для одного экземпляра бота; при перезапуске незавершённые мастера теряются.
type MemoryStore struct {
	mu      sync.RWMutex
	wizards map[ConversationKey]Wizard
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{wizards: make(map[ConversationKey]Wizard)}
}

func (m *MemoryStore) Load(_ context.Context, key ConversationKey) (Wizard, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wizards[key]
	return w, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key ConversationKey, w Wizard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wizards[key] = w
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key ConversationKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wizards, key)
	return nil
}

// Manager управляет состояниями мастера поверх выбранного Store.
type Manager struct {
	store Store
}

// NewManager создает и возвращает новый экземпляр Manager.
func NewManager(store Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{store: store}
}

// GetWizard возвращает текущее состояние разговора.
// Если состояние не установлено, возвращает IdleWizard().
func (m *Manager) GetWizard(ctx context.Context, key ConversationKey) (Wizard, error) {
	w, ok, err := m.store.Load(ctx, key)
	if err != nil {
		log.Printf("Manager.GetWizard: Ошибка чтения состояния для %s: %v", key, err)
		return IdleWizard(), fmt.Errorf("чтение состояния мастера: %w", err)
	}
	if !ok {
		return IdleWizard(), nil
	}
	return w, nil
}

// SetWizard сохраняет новое состояние разговора.
func (m *Manager) SetWizard(ctx context.Context, key ConversationKey, w Wizard) error {
	if w.Idle() {
		return m.Clear(ctx, key)
	}
	if err := m.store.Save(ctx, key, w); err != nil {
		log.Printf("Manager.SetWizard: Ошибка сохранения состояния для %s: %v", key, err)
		return fmt.Errorf("сохранение состояния мастера: %w", err)
	}
	log.Printf("Manager.SetWizard: Состояние для %s установлено: %s (пропозиция %d, поле '%s')", key, w.Step, w.OfferID, w.EditField)
	return nil
}

// Clear сбрасывает разговор в STATE_IDLE.
func (m *Manager) Clear(ctx context.Context, key ConversationKey) error {
	if err := m.store.Delete(ctx, key); err != nil {
		log.Printf("Manager.Clear: Ошибка удаления состояния для %s: %v", key, err)
		return fmt.Errorf("удаление состояния мастера: %w", err)
	}
	log.Printf("Manager.Clear: Состояние для %s очищено (установлено в IDLE).", key)
	return nil
}
