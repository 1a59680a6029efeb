package listedit

// Draft is the form-local copy of a record. Payload returns only the fields
// the server accepts.
type Draft[P any] interface {
	Validate() FieldErrors
	Payload() P
}

// Binding tells the editor how a record maps to a draft.
type Binding[T any, D any] struct {
	// ID is the record identity used for update requests.
	ID func(T) int64
	// Seed copies the editable fields of a record into a fresh draft.
	Seed func(T) D
	// Empty returns the draft used in create mode.
	Empty func() D
}

// Editor holds at most one draft. Its zero value is closed.
type Editor[T any, D any] struct {
	bind Binding[T, D]

	open  bool
	draft D
	id    int64
	edit  bool
}

func NewEditor[T any, D any](b Binding[T, D]) *Editor[T, D] {
	return &Editor[T, D]{bind: b}
}

// Open starts a session. With a record the draft is seeded from it and the
// session updates that record; with nil it is in create mode.
func (e *Editor[T, D]) Open(record *T) D {
	if record != nil {
		e.draft = e.bind.Seed(*record)
		e.id = e.bind.ID(*record)
		e.edit = true
	} else {
		e.draft = e.bind.Empty()
		e.id = 0
		e.edit = false
	}
	e.open = true
	return e.draft
}

// Close discards the draft unconditionally.
func (e *Editor[T, D]) Close() {
	var zero D
	e.draft = zero
	e.id = 0
	e.edit = false
	e.open = false
}

func (e *Editor[T, D]) IsOpen() bool { return e.open }

// Draft returns the current draft; ok is false when the editor is closed.
func (e *Editor[T, D]) Draft() (D, bool) { return e.draft, e.open }

// Target returns the id of the record being updated; ok is false in create mode.
func (e *Editor[T, D]) Target() (int64, bool) { return e.id, e.open && e.edit }
