package models

import (
	"errors"
	"testing"
)

func TestRaceError_Error(t *testing.T) {
	e := NewRaceError(ErrCodeInvalidInput, "bad url", nil)
	if got := e.Error(); got != "INVALID_INPUT: bad url" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := NewRaceError(ErrCodeInternal, "race failed", errors.New("boom"))
	if got := wrapped.Error(); got != "INTERNAL_ERROR: race failed: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRaceError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	e := NewRaceError(ErrCodeInternal, "wrapper", inner)

	if !errors.Is(e, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestRaceError_ToDetail(t *testing.T) {
	e := NewRaceError(ErrCodeRateLimited, "slow down", errors.New("internal detail"))

	d := e.ToDetail()
	if d.Code != ErrCodeRateLimited || d.Message != "slow down" {
		t.Errorf("ToDetail() = %+v", d)
	}
}

func TestRaceRequest_Defaults(t *testing.T) {
	r := &RaceRequest{URL: "https://example.com"}
	r.Defaults()
	if r.Timeout != 30 {
		t.Errorf("default timeout = %d, want 30", r.Timeout)
	}

	r2 := &RaceRequest{URL: "https://example.com", Timeout: 60}
	r2.Defaults()
	if r2.Timeout != 60 {
		t.Errorf("explicit timeout overwritten: %d", r2.Timeout)
	}
}
