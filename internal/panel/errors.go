package panel

import "fmt"

// AuthError indicates rejected credentials or a login response without a
// usable session cookie. Flows treat it as fatal for the current flow.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	if e.Msg == "" {
		return "panel authentication failed"
	}
	return e.Msg
}

// Code identifies the error class in handler summary logs.
func (e *AuthError) Code() string { return "AUTH_ERROR" }

// APIError indicates a non-success HTTP status or a panel-reported failure on
// an API call made with an established session.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("panel API request failed: status %d", e.Status)
}

// Code identifies the error class in handler summary logs.
func (e *APIError) Code() string { return "API_ERROR" }
