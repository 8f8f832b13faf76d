package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"OrandaBot/internal/constants"
	"OrandaBot/internal/models"
)

func TestManagerDefaultsToIdle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore())
	key := ConversationKey{ChatID: 10, UserID: 10}

	w, err := m.GetWizard(ctx, key)
	if err != nil {
		t.Fatalf("GetWizard: %v", err)
	}
	if !w.Idle() {
		t.Fatalf("wizard = %+v, want idle", w)
	}

	want := Wizard{Step: constants.STATE_EDIT_NEW_VALUE, OfferID: 3, EditField: models.FieldRent}
	if err := m.SetWizard(ctx, key, want); err != nil {
		t.Fatalf("SetWizard: %v", err)
	}
	if got, _ := m.GetWizard(ctx, key); got != want {
		t.Fatalf("wizard = %+v, want %+v", got, want)
	}
	other, _ := m.GetWizard(ctx, ConversationKey{ChatID: -100, UserID: 10})
	if !other.Idle() {
		t.Fatalf("state leaked to another chat: %+v", other)
	}

	if err := m.SetWizard(ctx, key, IdleWizard()); err != nil {
		t.Fatalf("SetWizard(idle): %v", err)
	}
	if _, ok, _ := m.store.Load(ctx, key); ok {
		t.Fatal("idle wizard was stored instead of cleared")
	}
}

func TestRedisKey(t *testing.T) {
	if got := redisKey(ConversationKey{ChatID: -1001, UserID: 7}); got != "oranda:wizard:-1001:7" {
		t.Fatalf("redisKey = %q", got)
	}
}

func TestQueueSerialPerKey(t *testing.T) {
	q := NewQueue()
	key := ConversationKey{ChatID: 1, UserID: 1}

	var mu sync.Mutex
	var order []int
	var inFlight int32
	for i := 0; i < 50; i++ {
		i := i
		q.Submit(key, func() {
			if atomic.AddInt32(&inFlight, 1) != 1 {
				t.Errorf("two tasks of one conversation ran at once")
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			atomic.AddInt32(&inFlight, -1)
		})
	}
	q.Wait()

	if len(order) != 50 {
		t.Fatalf("ran %d tasks, want 50", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want %d", i, v, i)
		}
	}
	if q.Pending() != 0 {
		t.Fatalf("Pending = %d after Wait, want 0", q.Pending())
	}
}

func TestQueueKeysRunConcurrently(t *testing.T) {
	q := NewQueue()
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	for _, user := range []int64{1, 2} {
		q.Submit(ConversationKey{ChatID: user, UserID: user}, func() {
			started <- struct{}{}
			<-release
		})
	}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("tasks of different conversations did not run concurrently")
		}
	}
	close(release)
	q.Wait()
}

func TestQueueSurvivesPanic(t *testing.T) {
	q := NewQueue()
	key := ConversationKey{ChatID: 5, UserID: 5}
	var ran int32
	q.Submit(key, func() { panic("boom") })
	q.Submit(key, func() { atomic.StoreInt32(&ran, 1) })
	q.Wait()
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("task after a panic did not run")
	}
}
