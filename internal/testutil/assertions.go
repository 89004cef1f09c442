package testutil

import (
	"errors"
	"testing"
	"time"

	apperrors "fittrack/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected code
// and returns it for further inspection.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertErrorKind checks that err is an *AppError of the given kind.
func AssertErrorKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError of kind %q, got %T: %v", kind, err, err)
	}
	if appErr.Kind != kind {
		t.Errorf("expected kind %q, got %q (code %s)", kind, appErr.Kind, appErr.Code)
	}
}

// AssertRetryAfter checks that err carries a retry-after within one
// second of want.
func AssertRetryAfter(t *testing.T, err error, want time.Duration) {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if d := appErr.RetryAfter - want; d < -time.Second || d > time.Second {
		t.Errorf("expected retry after %v, got %v", want, appErr.RetryAfter)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
