package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	if err := New(ErrCodeTimeout, "timed out"); !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound_Success(t *testing.T) {
	err := NotFound("manifest", "package.json")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if err.Details["resource"] != "manifest" {
		t.Errorf("expected resource=manifest, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "package.json" {
		t.Errorf("expected id=package.json, got %v", err.Details["id"])
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("user", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	root := stderrors.New("disk gone")
	err := MissingField("version").WithCause(root)
	if !stderrors.Is(err, root) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "disk gone") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := InvalidInput("port", "out of range").WithDetails(map[string]any{"min": 1, "max": 65535})
	if err.Details["field"] != "port" || err.Details["min"] != 1 || err.Details["max"] != 65535 {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := Validation("bad").WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Errorf("expected k=v, got %v", err.Details)
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"service unavailable", ServiceUnavailable("graph"), ErrCodeServiceUnavailable, true},
		{"connection failed", ConnectionFailed("neo4j"), ErrCodeConnectionFailed, true},
		{"timeout", Timeout("check"), ErrCodeTimeout, true},
		{"invalid format", InvalidFormat("manifest", "json"), ErrCodeInvalidFormat, false},
		{"missing field", MissingField("TEST_VAR"), ErrCodeMissingField, false},
		{"internal", Internal(fmt.Errorf("x")), ErrCodeInternal, false},
		{"external", ExternalServiceError("neo4j", fmt.Errorf("x")), ErrCodeExternalService, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
			if tc.err.Error() == "" {
				t.Error("Error() should not be empty")
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Internal(nil))
	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if _, ok := AsAppError(fmt.Errorf("not an app error")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to be true")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("ctx: %w", ConnectionFailed("neo4j"))) {
		t.Error("connection failures should be retryable")
	}
	if IsRetryable(NotFound("x", "")) {
		t.Error("not found should not be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
	if got := Wrap(fmt.Errorf("outer: %w", orig)); got.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestErrorCodeRetryable(t *testing.T) {
	if !ErrCodeTimeout.Retryable() || ErrCodeNotFound.Retryable() {
		t.Error("unexpected retryable classification")
	}
	if IsRetryableCode(ErrorCode("UNKNOWN")) {
		t.Error("unknown codes must not be retryable")
	}
}
