package admin

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/orders-admin/internal/listedit"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

const sessionCookie = "admin_session"

type (
	ProductController = listedit.Controller[orders.Product, orders.ProductInput, *ProductDraft]
	OrderController   = listedit.Controller[orders.Order, orders.OrderInput, *OrderDraft]
)

// Resources are the remote collections the pages work on.
type Resources struct {
	Products listedit.Resource[orders.Product, orders.ProductInput]
	Orders   listedit.Resource[orders.Order, orders.OrderInput]
}

// Session is one browser's state. All of its controllers share the
// notification queue and are used under mu.
type Session struct {
	ID string

	mu       sync.Mutex
	notes    *listedit.Queue
	products *ProductController
	orders   *OrderController
	// product choices for the order form; loaded with the orders page
	options *listedit.Store[orders.Product]
	// page left current by the last action, set until the next request
	fresh string
	// page whose store this request may reuse without loading again
	reloaded string
	lastSeen time.Time
}

func newSession(id string, res Resources, log *slog.Logger) *Session {
	q := &listedit.Queue{}
	return &Session{
		ID:    id,
		notes: q,
		products: listedit.NewController(listedit.Config[orders.Product, orders.ProductInput, *ProductDraft]{
			Name: orders.ResourceProduct, Resource: res.Products, Binding: productBinding, Notifier: q, Logger: log,
		}),
		orders: listedit.NewController(listedit.Config[orders.Order, orders.OrderInput, *OrderDraft]{
			Name: orders.ResourceOrder, Resource: res.Orders, Binding: orderBinding, Notifier: q, Logger: log,
		}),
		options: listedit.NewStore[orders.Product](orders.ResourceProduct, res.Products.List, q, log),
	}
}

// markFresh records that the store of page is current, so the redirected GET
// can skip its load. Only the very next request of the session sees the mark.
func (s *Session) markFresh(page string) { s.fresh = page }

func (s *Session) takeFresh(page string) bool {
	ok := s.reloaded == page
	s.reloaded = ""
	return ok
}

// Sessions keeps sessions in memory keyed by cookie. Idle sessions expire.
type Sessions struct {
	res    Resources
	ttl    time.Duration
	secure bool
	log    *slog.Logger
	now    func() time.Time

	mu sync.Mutex
	m  map[string]*Session
}

func NewSessions(res Resources, ttl time.Duration, secure bool, log *slog.Logger) *Sessions {
	if log == nil {
		log = slog.Default()
	}
	return &Sessions{res: res, ttl: ttl, secure: secure, log: log, now: time.Now, m: map[string]*Session{}}
}

// Acquire returns the caller's session locked; release it with Release.
// A new session (and cookie) is issued when none is valid.
func (ss *Sessions) Acquire(w http.ResponseWriter, r *http.Request) *Session {
	now := ss.now()

	ss.mu.Lock()
	ss.sweep(now)
	var s *Session
	if c, err := r.Cookie(sessionCookie); err == nil {
		s = ss.m[c.Value]
	}
	if s == nil {
		sid := uuid.NewString()
		s = newSession(sid, ss.res, ss.log.With("session", sid))
		ss.m[s.ID] = s
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   ss.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.lastSeen = now
	ss.mu.Unlock()

	s.mu.Lock()
	s.reloaded, s.fresh = s.fresh, ""
	return s
}

func (ss *Sessions) Release(s *Session) { s.mu.Unlock() }

// Len is the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.m)
}

func (ss *Sessions) sweep(now time.Time) {
	if ss.ttl <= 0 {
		return
	}
	for id, s := range ss.m {
		if now.Sub(s.lastSeen) > ss.ttl {
			delete(ss.m, id)
		}
	}
}
