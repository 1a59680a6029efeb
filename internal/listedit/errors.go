package listedit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Op string

const (
	OpLoad   Op = "load"
	OpSave   Op = "save"
	OpDelete Op = "delete"
)

// Failure is a failed load, save or delete attempt. None of them are retried.
type Failure struct {
	Op       Op
	Resource string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Resource, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// IsFailure reports whether err is a Failure of the given op.
func IsFailure(err error, op Op) bool {
	var f *Failure
	return errors.As(err, &f) && f.Op == op
}

var (
	ErrNotEditing         = errors.New("editor is not open")
	ErrUnknownRecord      = errors.New("record is not in the loaded list")
	ErrDeleteNotSupported = errors.New("resource does not support delete")
)

// FieldErrors maps a form field name to its message. A non-empty FieldErrors
// returned from Submit means nothing was sent.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}
