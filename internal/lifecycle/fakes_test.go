package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"OrandaBot/internal/models"
	"OrandaBot/internal/session"
)

// memStore - хранилище в памяти с той же семантикой, что и db.Store.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	offers map[int64]*models.Offer
	events []models.StatusEvent

	groupPostWrites int
	// failPublish - ошибка, которую вернёт следующий MarkPublished.
	failPublish error
}

func newMemStore() *memStore {
	return &memStore{offers: make(map[int64]*models.Offer)}
}

func (s *memStore) CreateOffer(_ context.Context, creator models.Actor) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	s.offers[s.nextID] = &models.Offer{ID: s.nextID, Creator: creator, Photos: []string{}, CreatedAt: now, UpdatedAt: now}
	return s.nextID, nil
}

func (s *memStore) GetOffer(_ context.Context, id int64) (models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return models.Offer{}, fmt.Errorf("offer %d: %w", id, models.ErrOfferNotFound)
	}
	cp := *o
	cp.Photos = append([]string{}, o.Photos...)
	if o.GroupPost != nil {
		gp := *o.GroupPost
		cp.GroupPost = &gp
	}
	return cp, nil
}

func (s *memStore) SetField(_ context.Context, id int64, key models.FieldKey, value models.NullString) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	*o.FieldPointer(key) = value
	return nil
}

func (s *memStore) AddPhoto(_ context.Context, id int64, ref string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return 0, models.ErrOfferNotFound
	}
	o.Photos = append(o.Photos, ref)
	return len(o.Photos), nil
}

func (s *memStore) SetGroupPost(_ context.Context, id int64, post models.GroupPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	o.GroupPost = &post
	s.groupPostWrites++
	return nil
}

func (s *memStore) RecordStatus(_ context.Context, id int64, st models.Status, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	o.Status = st
	s.events = append(s.events, models.StatusEvent{ID: int64(len(s.events) + 1), OfferID: id, Status: st, Actor: actor})
	return nil
}

func (s *memStore) MarkPublished(_ context.Context, id int64, post models.GroupPost, actor models.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPublish; err != nil {
		s.failPublish = nil
		return err
	}
	o, ok := s.offers[id]
	if !ok {
		return models.ErrOfferNotFound
	}
	o.GroupPost = &post
	o.Status = models.StatusActive
	s.groupPostWrites++
	s.events = append(s.events, models.StatusEvent{ID: int64(len(s.events) + 1), OfferID: id, Status: models.StatusActive, Actor: actor})
	return nil
}

func (s *memStore) eventsFor(id int64) []models.StatusEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StatusEvent
	for _, ev := range s.events {
		if ev.OfferID == id {
			out = append(out, ev)
		}
	}
	return out
}

type sentMessage struct {
	ref  models.MessageRef
	text string
	kb   models.Keyboard
}

type sentAlbum struct {
	chatID int64
	photos []string
}

var errDelivery = errors.New("Forbidden: bot was kicked from the group chat")

// fakeMessenger записывает исходящие сообщения; отправка в чаты из failChats и редактирование
// при failEdit завершаются ошибкой.
type fakeMessenger struct {
	mu        sync.Mutex
	nextID    int
	messages  []sentMessage
	albums    []sentAlbum
	edits     []sentMessage
	failChats map[int64]bool
	failEdit  bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, failChats: make(map[int64]bool)}
}

func (m *fakeMessenger) SendAlbum(_ context.Context, chatID int64, photos []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChats[chatID] {
		return errDelivery
	}
	m.albums = append(m.albums, sentAlbum{chatID: chatID, photos: append([]string{}, photos...)})
	return nil
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string, kb models.Keyboard) (models.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChats[chatID] {
		return models.MessageRef{}, errDelivery
	}
	m.nextID++
	ref := models.MessageRef{ChatID: chatID, MessageID: m.nextID}
	m.messages = append(m.messages, sentMessage{ref: ref, text: text, kb: kb})
	return ref, nil
}

func (m *fakeMessenger) EditMessageText(_ context.Context, ref models.MessageRef, text string, kb models.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEdit {
		return errors.New("Bad Request: message can't be edited")
	}
	m.edits = append(m.edits, sentMessage{ref: ref, text: text, kb: kb})
	return nil
}

func (m *fakeMessenger) messagesTo(chatID int64) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, msg := range m.messages {
		if msg.ref.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out
}

func (m *fakeMessenger) lastTo(t *testing.T, chatID int64) sentMessage {
	t.Helper()
	msgs := m.messagesTo(chatID)
	if len(msgs) == 0 {
		t.Fatalf("no messages sent to chat %d", chatID)
	}
	return msgs[len(msgs)-1]
}

const (
	testGroupChat = int64(-100500)
	testUserChat  = int64(10)
)

type harness struct {
	c        *Controller
	store    *memStore
	msgr     *fakeMessenger
	sessions *session.Manager
	conv     Conversation
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newMemStore()
	msgr := newFakeMessenger()
	sessions := session.NewManager(session.NewMemoryStore())
	c := NewController(store, msgr, sessions, Config{GroupChatID: testGroupChat, Currency: "€"})
	return &harness{
		c:        c,
		store:    store,
		msgr:     msgr,
		sessions: sessions,
		conv: Conversation{
			Key:  session.ConversationKey{ChatID: testUserChat, UserID: testUserChat},
			User: models.Actor{ID: testUserChat, Name: "@alice"},
		},
	}
}

func (h *harness) wizard(t *testing.T) session.Wizard {
	t.Helper()
	w, err := h.sessions.GetWizard(context.Background(), h.conv.Key)
	if err != nil {
		t.Fatalf("GetWizard: %v", err)
	}
	return w
}

func (h *harness) text(t *testing.T, text string) {
	t.Helper()
	if handled, err := h.c.HandleText(context.Background(), h.conv, text); err != nil || !handled {
		t.Fatalf("HandleText(%q) = %v, %v", text, handled, err)
	}
}

func (h *harness) press(t *testing.T, data string) {
	t.Helper()
	if handled, err := h.c.HandleCallback(context.Background(), h.conv, data); err != nil || !handled {
		t.Fatalf("HandleCallback(%q) = %v, %v", data, handled, err)
	}
}

func (h *harness) photo(t *testing.T, ref string) {
	t.Helper()
	if handled, err := h.c.HandlePhoto(context.Background(), h.conv, ref); err != nil || !handled {
		t.Fatalf("HandlePhoto(%q) = %v, %v", ref, handled, err)
	}
}

// toPreview проводит мастер до предпросмотра и возвращает номер пропозиции.
func (h *harness) toPreview(t *testing.T, photos ...string) int64 {
	t.Helper()
	if err := h.c.NewOffer(context.Background(), h.conv); err != nil {
		t.Fatalf("NewOffer: %v", err)
	}
	h.press(t, "cat:ОРЕНДА")
	h.press(t, "ht:Студія")
	for _, v := range []string{"Grabova 12", "Bratislava", "Petržalka", "balcony", "350", "350€", "98", "-", "Вже", "10:00", "@bob"} {
		h.text(t, v)
	}
	for _, p := range photos {
		h.photo(t, p)
	}
	h.text(t, "Готово")
	return h.wizard(t).OfferID
}
