package domain

import "encoding/json"

// User is the authenticated backend user as returned by the current-user endpoint
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResult is the outcome of a login attempt.
// On failure StatusCode and ErrorMessage carry what the backend (or transport) reported.
type LoginResult struct {
	OK           bool            `json:"ok"`
	Data         json.RawMessage `json:"data,omitempty"`
	StatusCode   int             `json:"statusCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Err          error           `json:"-"`
}

// LoginSucceeded builds a success result
func LoginSucceeded(data []byte) LoginResult {
	return LoginResult{OK: true, Data: json.RawMessage(data)}
}

// LoginFailed builds a failure result
func LoginFailed(statusCode int, message string, err error) LoginResult {
	return LoginResult{
		OK:           false,
		StatusCode:   statusCode,
		ErrorMessage: message,
		Err:          err,
	}
}

// ConnectionStatus is the outcome of the backend connectivity self-test
type ConnectionStatus struct {
	Success        bool   `json:"success"`
	StatusCode     int    `json:"statusCode,omitempty"`
	ResponseTimeMs int64  `json:"responseTime,omitempty"`
	Message        string `json:"message"`
	Details        string `json:"details,omitempty"`
	Cookies        string `json:"cookies,omitempty"`
}
