package bot

import "sync"

// chatQueue runs jobs one at a time per chat, in submission order.
// A chat's goroutine exists only while it has pending jobs.
type chatQueue struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newChatQueue() *chatQueue {
	return &chatQueue{queues: make(map[int64][]func())}
}

func (q *chatQueue) Submit(chatID int64, job func()) {
	q.mu.Lock()
	pending, running := q.queues[chatID]
	q.queues[chatID] = append(pending, job)
	if running {
		q.mu.Unlock()
		return
	}
	q.wg.Add(1)
	q.mu.Unlock()

	go q.drain(chatID)
}

func (q *chatQueue) drain(chatID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		pending := q.queues[chatID]
		if len(pending) == 0 {
			delete(q.queues, chatID)
			q.mu.Unlock()
			return
		}
		job := pending[0]
		q.queues[chatID] = pending[1:]
		q.mu.Unlock()

		job()
	}
}

// Wait blocks until every submitted job has run.
func (q *chatQueue) Wait() {
	q.wg.Wait()
}
