package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
)

// backendErrorBody matches the error shape the backend API emits, a bare
// object with a message field.
type backendErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ParseResponseError reads the body of a non-2xx backend response and
// translates it into an AppError. 404 maps to NotFound and 400 to
// InvalidInput so those surface to our own clients with the right status;
// everything else collapses into the single upstream-failure surface.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, resource string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream(
			fmt.Sprintf("%s request returned status %d", resource, resp.StatusCode),
			fmt.Errorf("read response body: %w", err),
		)
	}

	message := string(bodyBytes)
	var parsed backendErrorBody
	if json.Unmarshal(bodyBytes, &parsed) == nil {
		if parsed.Message != "" {
			message = parsed.Message
		} else if parsed.Error != "" {
			message = parsed.Error
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("%s: %s", resource, message),
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s: %s", resource, message))
	case http.StatusConflict:
		return apperrors.Conflict(fmt.Sprintf("%s: %s", resource, message))
	default:
		return apperrors.Upstream(
			fmt.Sprintf("%s request failed with status %d", resource, resp.StatusCode),
			fmt.Errorf("backend said: %s", message),
		)
	}
}
