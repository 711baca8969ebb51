package models

import (
	"errors"
	"io"
	"testing"
)

func TestSeverityFromIndex(t *testing.T) {
	tests := []struct {
		idx  int
		want Severity
	}{
		{0, SeverityLow},
		{1, SeverityMedium},
		{2, SeverityHigh},
		{3, SeverityMedium},
		{-1, SeverityMedium},
	}
	for _, tt := range tests {
		if got := SeverityFromIndex(tt.idx); got != tt.want {
			t.Errorf("SeverityFromIndex(%d) = %s, want %s", tt.idx, got, tt.want)
		}
	}
}

func TestSeverity_Index(t *testing.T) {
	for i, s := range SeverityLevels {
		if s.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", s, s.Index(), i)
		}
	}
	if Severity("critical").Index() != -1 {
		t.Error("unknown severity should have index -1")
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(ErrStoreLoad, "load", nil) != nil {
		t.Fatal("nil cause should stay nil")
	}
	err := WrapError(ErrStoreLoad, "load store", io.ErrUnexpectedEOF)
	if !IsKind(err, ErrStoreLoad) {
		t.Error("wrapped error should carry its kind")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped error should carry its cause")
	}
	if IsKind(err, ErrModelLoad) {
		t.Error("wrapped error should not match another kind")
	}
}

func TestNewError(t *testing.T) {
	err := NewError(ErrDimensionMismatch, "retrieve", "got %d, want %d", 3, 4)
	if !IsKind(err, ErrDimensionMismatch) {
		t.Fatal("expected dimension mismatch kind")
	}
	want := "retrieve: embedding dimension mismatch: got 3, want 4"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
