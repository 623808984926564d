package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nytevibe/nyte/internal/shared"
)

// Error codes the backend has been observed to send.
const (
	codeInvalidCredentials = "INVALID_CREDENTIALS"
	codeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	codeAccountSuspended   = "ACCOUNT_SUSPENDED"
	codeInvalidResetToken  = "INVALID_RESET_TOKEN"
	codeRateLimited        = "RATE_LIMITED"
)

// apiError is the normalized failure extracted from a response envelope.
type apiError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
}

// apiResult is a decoded API response: either a payload or an apiError.
type apiResult struct {
	Status  int
	Payload json.RawMessage
	Message string
	Err     *apiError
}

// rawEnvelope covers the envelope shapes the backend has shipped across
// versions:
//
//	{"data": {...}, "message": "..."}
//	{"error": {"message": "...", "code": "...", "retry_after": 30, "data": {...}}}
//	{"success": true, ...} / {"success": false, "message": "...", "code": "..."}
type rawEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Success *bool           `json:"success"`
	Error   *struct {
		Message    string          `json:"message"`
		Code       string          `json:"code"`
		RetryAfter int             `json:"retry_after"`
		Data       json.RawMessage `json:"data"`
	} `json:"error"`
}

// decodeEnvelope normalizes a response body into an apiResult. Unrecognized
// shapes fail closed as a server error rather than guessing field paths.
func decodeEnvelope(status int, body []byte) *apiResult {
	result := &apiResult{Status: status}

	var env rawEnvelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			result.Err = &apiError{Status: status, Message: "unrecognized response shape"}
			if status >= 200 && status < 300 {
				result.Err.Message = "malformed success envelope"
			}
			return result
		}
	}

	if env.Error != nil {
		result.Err = &apiError{
			Status:     status,
			Code:       env.Error.Code,
			Message:    env.Error.Message,
			RetryAfter: time.Duration(env.Error.RetryAfter) * time.Second,
		}
		return result
	}

	if env.Success != nil && !*env.Success {
		result.Err = &apiError{Status: status, Code: env.Code, Message: env.Message}
		return result
	}

	if status < 200 || status >= 300 {
		result.Err = &apiError{Status: status, Code: env.Code, Message: env.Message}
		return result
	}

	result.Message = env.Message
	if env.Data != nil {
		result.Payload = env.Data
	} else {
		// Top-level {"success": true, ...} envelopes carry the payload inline.
		result.Payload = body
	}
	return result
}

// sessionError maps a failure on an authenticated endpoint to a sentinel error.
func sessionError(e *apiError) error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return wrapAPIError(shared.ErrUnauthorized, e)
	case e.Status == http.StatusNotFound:
		return wrapAPIError(shared.ErrVenueNotFound, e)
	case e.Status == http.StatusTooManyRequests || e.Code == codeRateLimited:
		return &shared.RateLimitError{RetryAfter: e.RetryAfter}
	default:
		return wrapAPIError(shared.ErrServer, e)
	}
}

// loginError maps a login failure to the specific reason the UI should show.
func loginError(e *apiError) error {
	switch e.Code {
	case codeEmailNotVerified:
		return wrapAPIError(shared.ErrEmailNotVerified, e)
	case codeAccountSuspended:
		return wrapAPIError(shared.ErrAccountSuspended, e)
	case codeInvalidCredentials:
		return wrapAPIError(shared.ErrInvalidCredentials, e)
	}

	switch e.Status {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity, http.StatusForbidden:
		return wrapAPIError(shared.ErrInvalidCredentials, e)
	case http.StatusTooManyRequests:
		return &shared.RateLimitError{RetryAfter: e.RetryAfter}
	default:
		return wrapAPIError(shared.ErrServer, e)
	}
}

// resetError maps a password reset failure.
func resetError(e *apiError) error {
	switch {
	case e.Code == codeInvalidResetToken,
		e.Status == http.StatusBadRequest,
		e.Status == http.StatusUnprocessableEntity:
		return wrapAPIError(shared.ErrInvalidResetToken, e)
	case e.Status == http.StatusTooManyRequests || e.Code == codeRateLimited:
		return &shared.RateLimitError{RetryAfter: e.RetryAfter}
	default:
		return wrapAPIError(shared.ErrServer, e)
	}
}

// rateLimitError maps a forgot-password failure, where throttling is expected.
func rateLimitError(e *apiError) error {
	if e.Status == http.StatusTooManyRequests || e.Code == codeRateLimited {
		return &shared.RateLimitError{RetryAfter: e.RetryAfter}
	}
	return wrapAPIError(shared.ErrServer, e)
}

func wrapAPIError(sentinel error, e *apiError) error {
	if e.Message != "" {
		return fmt.Errorf("%w: %s", sentinel, e.Message)
	}
	return fmt.Errorf("%w: status %d", sentinel, e.Status)
}
