package apiclient

import (
	"errors"
	"log/slog"
	"net/http"
)

// RequestHook inspects or amends an outbound request
type RequestHook func(req *http.Request)

// ResponseHook observes a resolved call. resp is nil on transport failure.
type ResponseHook func(req *http.Request, resp *Response, err error)

// LogRequests logs every outbound call
func LogRequests(logger *slog.Logger) RequestHook {
	return func(req *http.Request) {
		logger.DebugContext(req.Context(), "api request",
			"method", req.Method,
			"url", req.URL.String(),
			"has_body", req.ContentLength > 0,
			"has_xsrf", req.Header.Get(xsrfHeaderName) != "",
		)
	}
}

// LogResponses logs the outcome of every call.
// A 401 on one of quietPaths is the normal anonymous state and is logged at debug level.
func LogResponses(logger *slog.Logger, quietPaths ...string) ResponseHook {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(req *http.Request, resp *Response, err error) {
		ctx := req.Context()
		if err == nil {
			logger.InfoContext(ctx, "api response",
				"method", req.Method,
				"url", req.URL.String(),
				"status", resp.StatusCode,
			)
			return
		}

		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Transport() {
			logger.ErrorContext(ctx, "api request failed",
				"method", req.Method,
				"url", req.URL.String(),
				"error", err,
			)
			return
		}

		if apiErr.StatusCode == http.StatusUnauthorized && quiet[req.URL.Path] {
			logger.DebugContext(ctx, "user not authenticated (expected 401)",
				"method", req.Method,
				"url", req.URL.String(),
			)
			return
		}

		logger.WarnContext(ctx, "api error response",
			"method", req.Method,
			"url", req.URL.String(),
			"status", apiErr.StatusCode,
			"body_bytes", len(apiErr.Body),
		)
	}
}
