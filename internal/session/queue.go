package session

import (
	"log"
	"runtime/debug"
	"sync"
)

// Queue выполняет задачи одного разговора строго последовательно,
// а задачи разных разговоров - параллельно. Горутина разговора живёт,
// пока у него есть задачи.
type Queue struct {
	mu    sync.Mutex
	lanes map[ConversationKey]*lane
	wg    sync.WaitGroup
}

type lane struct {
	tasks []func()
}

// NewQueue создает пустую очередь.
func NewQueue() *Queue {
	return &Queue{lanes: make(map[ConversationKey]*lane)}
}

// Submit ставит задачу в очередь разговора key.
func (q *Queue) Submit(key ConversationKey, task func()) {
	q.mu.Lock()
	if l, ok := q.lanes[key]; ok {
		l.tasks = append(l.tasks, task)
		q.mu.Unlock()
		return
	}
	l := &lane{tasks: []func(){task}}
	q.lanes[key] = l
	q.wg.Add(1)
	q.mu.Unlock()

	go q.run(key, l)
}

// Pending возвращает число разговоров, у которых есть невыполненные задачи.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lanes)
}

// Wait блокируется, пока не будут выполнены все поставленные задачи.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) run(key ConversationKey, l *lane) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		if len(l.tasks) == 0 {
			delete(q.lanes, key)
			q.mu.Unlock()
			return
		}
		task := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		q.mu.Unlock()

		runSafely(key, task)
	}
}

// runSafely изолирует панику одной задачи от остальных разговоров.
func runSafely(key ConversationKey, task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Queue: ПАНИКА при обработке события %s: %v\n%s", key, r, debug.Stack())
		}
	}()
	task()
}
