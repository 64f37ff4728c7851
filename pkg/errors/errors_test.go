package errors

import (
	"errors"
	"testing"
)

// Test codes for testing
var (
	testCode = MustNewCode("test.code")
	sendCode = MustNewCode("test.send_rejected")
)

func TestNew(t *testing.T) {
	err := New(CommonInternal, "test error", nil)

	if err.Message != "test error" {
		t.Errorf("Expected message 'test error', got '%s'", err.Message)
	}

	if err.Code.String() != "common.internal" {
		t.Errorf("Expected code 'common.internal', got '%s'", err.Code.String())
	}

	if err.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	if len(err.Stack) == 0 {
		t.Error("Expected stack trace to be captured")
	}
}

func TestNewWithCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := New(sendCode, "request failed", cause)

	if err.Cause != cause {
		t.Error("Expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to unwrap to the cause")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CommonInternal, "test error with %s", "formatting")

	expected := "test error with formatting"
	if err.Message != expected {
		t.Errorf("Expected message '%s', got '%s'", expected, err.Message)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	err := Wrap(testCode, originalErr, "wrapped error")

	if err.Message != "wrapped error" {
		t.Errorf("Expected message 'wrapped error', got '%s'", err.Message)
	}

	if err.Code.String() != "test.code" {
		t.Errorf("Expected code 'test.code', got '%s'", err.Code.String())
	}

	if err.Cause != originalErr {
		t.Error("Expected cause to be set to original error")
	}
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("original error")
	err := Wrapf(testCode, originalErr, "wrapped error with %s", "formatting")

	expected := "wrapped error with formatting"
	if err.Message != expected {
		t.Errorf("Expected message '%s', got '%s'", expected, err.Message)
	}
}

func TestAddContext(t *testing.T) {
	err := New(testCode, "test error", nil).
		AddContext("focus", "focus.example.com").
		AddContext("attempt", "1")

	if err.Context["focus"] != "focus.example.com" {
		t.Errorf("Expected context 'focus' to be set, got '%s'", err.Context["focus"])
	}

	if err.Context["attempt"] != "1" {
		t.Errorf("Expected context 'attempt' to be set, got '%s'", err.Context["attempt"])
	}
}

func TestErrorString(t *testing.T) {
	plain := New(testCode, "plain message", nil)
	if plain.Error() != "plain message" {
		t.Errorf("Expected 'plain message', got '%s'", plain.Error())
	}

	withCause := New(testCode, "outer", errors.New("inner"))
	if withCause.Error() != "outer: inner" {
		t.Errorf("Expected 'outer: inner', got '%s'", withCause.Error())
	}
}

func TestHasCode(t *testing.T) {
	err := New(testCode, "test error", nil)

	if !HasCode(err, testCode) {
		t.Error("Expected HasCode to match the error's own code")
	}

	if HasCode(err, sendCode) {
		t.Error("Expected HasCode to reject a different code")
	}

	if HasCode(errors.New("plain"), testCode) {
		t.Error("Expected HasCode to reject non-coded errors")
	}
}
