package listedit

import "sync"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient user-facing message.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Notifier is the notification surface. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a plain function.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Queue buffers notifications until drained; the admin pages render them once.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Drain returns and clears the pending notifications.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func success(msg string) Notification { return Notification{Kind: KindSuccess, Message: msg} }
func failure(msg string) Notification { return Notification{Kind: KindError, Message: msg} }
