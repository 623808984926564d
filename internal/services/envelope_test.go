package services

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nytevibe/nyte/internal/shared"
)

func TestDecodeEnvelope(t *testing.T) {
	t.Run("Data Message Envelope", func(t *testing.T) {
		body := []byte(`{"data": {"token": "abc"}, "message": "welcome back"}`)
		result := decodeEnvelope(http.StatusOK, body)

		if result.Err != nil {
			t.Fatalf("expected success, got %+v", result.Err)
		}
		if string(result.Payload) != `{"token": "abc"}` {
			t.Errorf("expected data payload, got %s", string(result.Payload))
		}
		if result.Message != "welcome back" {
			t.Errorf("expected message, got %q", result.Message)
		}
	})

	t.Run("Success Flag Envelope", func(t *testing.T) {
		body := []byte(`{"success": true, "token": "abc"}`)
		result := decodeEnvelope(http.StatusOK, body)

		if result.Err != nil {
			t.Fatalf("expected success, got %+v", result.Err)
		}
		if string(result.Payload) != string(body) {
			t.Errorf("expected inline payload, got %s", string(result.Payload))
		}
	})

	t.Run("Success False Is An Error Even On 200", func(t *testing.T) {
		body := []byte(`{"success": false, "message": "nope", "code": "INVALID_CREDENTIALS"}`)
		result := decodeEnvelope(http.StatusOK, body)

		if result.Err == nil {
			t.Fatal("expected an error result")
		}
		if result.Err.Code != codeInvalidCredentials {
			t.Errorf("expected code to survive normalization, got %q", result.Err.Code)
		}
	})

	t.Run("Nested Error Envelope", func(t *testing.T) {
		body := []byte(`{"error": {"message": "slow down", "code": "RATE_LIMITED", "retry_after": 30}}`)
		result := decodeEnvelope(http.StatusTooManyRequests, body)

		if result.Err == nil {
			t.Fatal("expected an error result")
		}
		if result.Err.RetryAfter != 30*time.Second {
			t.Errorf("expected 30s retry-after, got %v", result.Err.RetryAfter)
		}
		if result.Err.Message != "slow down" {
			t.Errorf("expected message, got %q", result.Err.Message)
		}
	})

	t.Run("Non 2xx Without Error Object", func(t *testing.T) {
		body := []byte(`{"message": "gone"}`)
		result := decodeEnvelope(http.StatusNotFound, body)

		if result.Err == nil {
			t.Fatal("expected an error result")
		}
		if result.Err.Status != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", result.Err.Status)
		}
	})

	t.Run("Unrecognized Shape Fails Closed", func(t *testing.T) {
		result := decodeEnvelope(http.StatusOK, []byte(`not json`))
		if result.Err == nil {
			t.Fatal("expected malformed body to fail closed")
		}
	})

	t.Run("Empty Body On 204", func(t *testing.T) {
		result := decodeEnvelope(http.StatusNoContent, nil)
		if result.Err != nil {
			t.Errorf("expected empty 204 to succeed, got %+v", result.Err)
		}
	})
}

func TestErrorMapping(t *testing.T) {
	t.Run("Session 401 Is Unauthorized", func(t *testing.T) {
		err := sessionError(&apiError{Status: http.StatusUnauthorized})
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("Session 404 Is Venue Not Found", func(t *testing.T) {
		err := sessionError(&apiError{Status: http.StatusNotFound})
		if !errors.Is(err, shared.ErrVenueNotFound) {
			t.Errorf("expected ErrVenueNotFound, got %v", err)
		}
	})

	t.Run("Session 429 Carries Retry After", func(t *testing.T) {
		err := sessionError(&apiError{Status: http.StatusTooManyRequests, RetryAfter: 10 * time.Second})
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}

		var rle *shared.RateLimitError
		if !errors.As(err, &rle) {
			t.Fatal("expected a RateLimitError value")
		}
		if rle.RetryAfter != 10*time.Second {
			t.Errorf("expected 10s retry-after, got %v", rle.RetryAfter)
		}
	})

	t.Run("Session 500 Is Server Error", func(t *testing.T) {
		err := sessionError(&apiError{Status: http.StatusInternalServerError})
		if !errors.Is(err, shared.ErrServer) {
			t.Errorf("expected ErrServer, got %v", err)
		}
	})

	t.Run("Login Codes Win Over Status", func(t *testing.T) {
		cases := map[string]error{
			codeEmailNotVerified:   shared.ErrEmailNotVerified,
			codeAccountSuspended:   shared.ErrAccountSuspended,
			codeInvalidCredentials: shared.ErrInvalidCredentials,
		}
		for code, want := range cases {
			err := loginError(&apiError{Status: http.StatusForbidden, Code: code})
			if !errors.Is(err, want) {
				t.Errorf("code %s: expected %v, got %v", code, want, err)
			}
		}
	})

	t.Run("Login 401 Without Code Is Invalid Credentials", func(t *testing.T) {
		err := loginError(&apiError{Status: http.StatusUnauthorized})
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("Reset 422 Is Invalid Reset Token", func(t *testing.T) {
		err := resetError(&apiError{Status: http.StatusUnprocessableEntity})
		if !errors.Is(err, shared.ErrInvalidResetToken) {
			t.Errorf("expected ErrInvalidResetToken, got %v", err)
		}
	})
}
