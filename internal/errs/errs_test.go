package errs

import (
	"errors"
	"log/slog"
	"testing"
)

var errKind = errors.New("kind")

func TestWrapKindKeepsBothChains(t *testing.T) {
	cause := errors.New("database is locked")
	err := WrapKind(cause, errKind, "insert")

	if !errors.Is(err, errKind) || !errors.Is(err, cause) {
		t.Fatalf("WrapKind() = %v lost a chain", err)
	}
	if err.Error() != "insert: kind: database is locked" {
		t.Fatalf("WrapKind() message = %q", err.Error())
	}
	if WrapKind(nil, errKind, "insert") != nil {
		t.Fatalf("WrapKind(nil) expected nil")
	}
	if got := WrapKind(err, errKind, "outer"); got.Error() != "outer: insert: kind: database is locked" {
		t.Fatalf("WrapKind() re-tagged: %q", got.Error())
	}
}

func TestLoggableIncludesStack(t *testing.T) {
	err := Wrap(WithStack(errors.New("root")), "outer")

	value := Loggable(err).LogValue()
	if value.Kind() != slog.KindGroup {
		t.Fatalf("LogValue() kind = %v", value.Kind())
	}

	keys := map[string]bool{}
	for _, attr := range value.Group() {
		keys[attr.Key] = true
	}
	for _, key := range []string{"message", "chain", "stack"} {
		if !keys[key] {
			t.Fatalf("LogValue() missing %q", key)
		}
	}

	if chain := ErrorChainStrings(err); len(chain) != 3 {
		t.Fatalf("ErrorChainStrings() = %v", chain)
	}
}

func TestKindSurvivesStackAndWrap(t *testing.T) {
	cause := errors.New("database is locked")
	err := Wrap(WithStack(WrapKind(cause, errKind, "insert")), "record")

	if KindOf(err) != errKind {
		t.Fatalf("KindOf() = %v, want %v", KindOf(err), errKind)
	}
	if KindOf(cause) != nil {
		t.Fatalf("KindOf(untagged) = %v, want nil", KindOf(cause))
	}

	chain := ErrorChainStrings(err)
	if len(chain) != 4 || chain[3] != "database is locked" {
		t.Fatalf("ErrorChainStrings() = %v", chain)
	}

	var kind string
	for _, attr := range Loggable(err).LogValue().Group() {
		if attr.Key == "kind" {
			kind = attr.Value.String()
		}
	}
	if kind != "kind" {
		t.Fatalf("LogValue() kind = %q", kind)
	}
}
