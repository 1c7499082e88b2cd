package apiclient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sanctumfront/internal/apipaths"
	"github.com/sanctumfront/internal/domain"
)

// TestConnection probes the backend through the CSRF endpoint within timeout
func (c *Client) TestConnection(ctx context.Context, timeout time.Duration) domain.ConnectionStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.Get(ctx, apipaths.CSRFCookie)
	elapsed := time.Since(start)

	if err == nil {
		return domain.ConnectionStatus{
			Success:        true,
			StatusCode:     resp.StatusCode,
			ResponseTimeMs: elapsed.Milliseconds(),
			Message:        "Successfully connected to backend API",
			Cookies:        strings.Join(c.CookieNames(), "; "),
		}
	}

	status := domain.ConnectionStatus{
		Success: false,
		Message: "Unknown error occurred while testing API connection",
		Details: "No response data",
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		status.StatusCode = apiErr.StatusCode
		status.Message = apiErr.Message
		if len(apiErr.Body) > 0 {
			status.Details = string(apiErr.Body)
		}
	}
	return status
}
