package coreerr

import (
	"errors"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := Validation("bad currency")
	k, ok := KindOf(err)
	if !ok || k != KindValidation {
		t.Fatalf("expected KindValidation, got %v ok=%v", k, ok)
	}
}

func TestIs(t *testing.T) {
	err := NotFound("entry %s", "e1")
	if !Is(err, KindNotFound) {
		t.Fatalf("expected KindNotFound")
	}
	if Is(err, KindValidation) {
		t.Fatalf("did not expect KindValidation")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageTransient(cause, "save failed")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}
}
