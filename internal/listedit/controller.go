// Package listedit implements the list/create/edit workflow shared by the
// admin pages: a Store holding the full collection, an Editor holding one
// draft, and a Controller moving between viewing and editing.
package listedit

import (
	"context"
	"log/slog"
	"strings"
)

// Resource is the remote collection behind a page.
type Resource[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, p P) error
	Update(ctx context.Context, id int64, p P) error
}

// Deleter is implemented by resources that support delete.
type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

type Config[T any, P any, D Draft[P]] struct {
	// Name is the lower-case resource name used in messages ("order").
	Name     string
	Resource Resource[T, P]
	Binding  Binding[T, D]
	Notifier Notifier
	Logger   *slog.Logger
}

// Controller drives one page. It is not safe for concurrent use; callers
// serialize access (the admin does so per session).
type Controller[T any, P any, D Draft[P]] struct {
	name   string
	res    Resource[T, P]
	bind   Binding[T, D]
	notify Notifier
	log    *slog.Logger

	store  *Store[T]
	editor *Editor[T, D]
}

func NewController[T any, P any, D Draft[P]](cfg Config[T, P, D]) *Controller[T, P, D] {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	n := cfg.Notifier
	if n == nil {
		n = NotifierFunc(func(Notification) {})
	}
	return &Controller[T, P, D]{
		name:   cfg.Name,
		res:    cfg.Resource,
		bind:   cfg.Binding,
		notify: n,
		log:    log,
		store:  NewStore[T](cfg.Name, cfg.Resource.List, n, log),
		editor: NewEditor[T, D](cfg.Binding),
	}
}

func (c *Controller[T, P, D]) Name() string     { return c.name }
func (c *Controller[T, P, D]) Store() *Store[T] { return c.store }

func (c *Controller[T, P, D]) State() State {
	if c.editor.IsOpen() {
		return Editing
	}
	return Viewing
}

// Mount enters the page: any draft left from an earlier visit is discarded
// and the collection is loaded in full.
func (c *Controller[T, P, D]) Mount(ctx context.Context) error {
	c.editor.Close()
	_, _, err := c.store.Refresh(ctx)
	return err
}

// Items returns the currently displayed collection.
func (c *Controller[T, P, D]) Items() []T { return c.store.Items() }

// Find looks a record up in the loaded collection.
func (c *Controller[T, P, D]) Find(id int64) (T, bool) {
	for _, it := range c.store.Items() {
		if c.bind.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Create opens the editor with an empty draft.
func (c *Controller[T, P, D]) Create() D {
	return c.editor.Open(nil)
}

// Edit opens the editor seeded from record.
func (c *Controller[T, P, D]) Edit(record T) D {
	return c.editor.Open(&record)
}

// EditByID opens the editor on a loaded record.
func (c *Controller[T, P, D]) EditByID(id int64) (D, error) {
	rec, ok := c.Find(id)
	if !ok {
		var zero D
		return zero, ErrUnknownRecord
	}
	return c.Edit(rec), nil
}

// Draft returns the draft of the open editor.
func (c *Controller[T, P, D]) Draft() (D, bool) { return c.editor.Draft() }

// Target returns the id being updated; ok is false in create mode or when closed.
func (c *Controller[T, P, D]) Target() (int64, bool) { return c.editor.Target() }

// Cancel discards the draft and returns to viewing.
func (c *Controller[T, P, D]) Cancel() { c.editor.Close() }

// Submit validates the draft and sends it as an update when the session was
// opened on a record, otherwise as a create. On success the editor closes and
// the store reloads. On failure the draft is kept as entered.
func (c *Controller[T, P, D]) Submit(ctx context.Context) error {
	draft, ok := c.editor.Draft()
	if !ok {
		return ErrNotEditing
	}
	if fe := draft.Validate(); len(fe) > 0 {
		return fe
	}
	payload := draft.Payload()

	var err error
	id, update := c.editor.Target()
	if update {
		err = c.res.Update(ctx, id, payload)
	} else {
		err = c.res.Create(ctx, payload)
	}
	if err != nil {
		c.log.Warn("save failed", "resource", c.name, "id", id, "update", update, "err", err)
		c.notify.Notify(failure("Failed to save " + c.name))
		return &Failure{Op: OpSave, Resource: c.name, Err: err}
	}

	if update {
		c.notify.Notify(success(title(c.name) + " updated successfully"))
	} else {
		c.notify.Notify(success(title(c.name) + " created successfully"))
	}
	c.editor.Close()
	c.store.Load(ctx)
	return nil
}

// Delete removes a record remotely and reloads. The displayed list is never
// edited locally.
func (c *Controller[T, P, D]) Delete(ctx context.Context, id int64) error {
	d, ok := c.res.(Deleter)
	if !ok {
		return ErrDeleteNotSupported
	}
	if err := d.Delete(ctx, id); err != nil {
		c.log.Warn("delete failed", "resource", c.name, "id", id, "err", err)
		c.notify.Notify(failure("Failed to delete " + c.name))
		return &Failure{Op: OpDelete, Resource: c.name, Err: err}
	}
	c.notify.Notify(success(title(c.name) + " deleted successfully"))
	c.store.Load(ctx)
	return nil
}

// CanDelete reports whether the resource supports delete.
func (c *Controller[T, P, D]) CanDelete() bool {
	_, ok := c.res.(Deleter)
	return ok
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
