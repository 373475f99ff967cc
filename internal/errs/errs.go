package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Wrap adds context and keeps err reachable through errors.Is/As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// KindError tags a cause with a sentinel kind. Both the kind and the cause
// match errors.Is.
type KindError struct {
	msg   string
	kind  error
	cause error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.msg, e.kind, e.cause)
}

func (e *KindError) Unwrap() []error { return []error{e.kind, e.cause} }

func (e *KindError) Kind() error  { return e.kind }
func (e *KindError) Cause() error { return e.cause }

// WrapKind wraps err with msg and tags it with kind. A nil kind, or one the
// chain already carries, degrades to Wrap.
func WrapKind(err error, kind error, msg string) error {
	if err == nil {
		return nil
	}
	if kind == nil || errors.Is(err, kind) {
		return Wrap(err, msg)
	}
	return &KindError{msg: msg, kind: kind, cause: err}
}

// KindOf returns the outermost kind attached with WrapKind, or nil.
func KindOf(err error) error {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return nil
}

// WithStack records the current stack once; later calls on the same chain
// are no-ops.
func WithStack(err error) error {
	if err == nil {
		return nil
	}

	var se *StackError
	if errors.As(err, &se) {
		return err
	}
	return &StackError{err: err, stack: debug.Stack()}
}

type StackError struct {
	err   error
	stack []byte
}

func (e *StackError) Error() string { return e.err.Error() }
func (e *StackError) Unwrap() error { return e.err }
func (e *StackError) Stack() []byte { return e.stack }

type loggable struct{ err error }

// Loggable renders err as a structured group: message, chain, and kind and
// stack when present. Usage: slog.Any("err", errs.Loggable(err)).
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}
	if kind := KindOf(l.err); kind != nil {
		attrs = append(attrs, slog.String("kind", kind.Error()))
	}
	var se *StackError
	if errors.As(l.err, &se) {
		attrs = append(attrs, slog.String("stack", string(se.Stack())))
	}
	return slog.GroupValue(attrs...)
}

// ErrorChainStrings lists the chain outer to inner. A KindError continues
// with its cause.
func ErrorChainStrings(err error) []string {
	if err == nil {
		return nil
	}

	out := make([]string, 0, 8)
	for e := err; e != nil; {
		out = append(out, e.Error())
		if ke, ok := e.(*KindError); ok {
			e = ke.cause
			continue
		}
		e = errors.Unwrap(e)
	}
	return out
}
