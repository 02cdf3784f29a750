// pattern: Functional Core

package launcher

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies launcher failures.
type Kind int

const (
	// KindUsage is a bad invocation: missing or invalid arguments.
	KindUsage Kind = iota + 1
	// KindLookupMiss is a selected key that is not in the catalog.
	KindLookupMiss
	// KindCollaborator is a failure of tmux, the picker or the filesystem.
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindLookupMiss:
		return "lookup miss"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// ErrAborted is returned when the user dismisses the picker. It is not a failure.
var ErrAborted = errors.New("selection aborted")

var errNotInCatalog = errors.New("not in catalog; the tree changed since the scan")

// Error carries the failure kind and the key or session it concerns.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UsageError builds a KindUsage error.
func UsageError(format string, args ...any) error {
	return &Error{Kind: KindUsage, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
