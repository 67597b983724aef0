package media

import (
	"errors"
	"io"
	"testing"
)

func TestWrapTagsMarkerAndCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := Wrap(ErrOperator, "imaging", "resize", "decode failed", cause)
	if !errors.Is(err, ErrOperator) {
		t.Fatalf("expected marker in chain: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain: %v", err)
	}
	want := "operator failure: imaging: resize: decode failed: unexpected EOF"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsAndOmissions(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrOperator) {
		t.Fatalf("nil marker should default to ErrOperator: %v", err)
	}
	if err.Error() != "operator failure: media failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	err = Wrap(ErrStorage, "storage", "", "directory missing", nil)
	if err.Error() != "storage error: storage: directory missing" {
		t.Fatalf("blank segments should be skipped: %q", err.Error())
	}
}
