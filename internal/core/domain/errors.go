package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// Advisor errors
var (
	ErrAdvisorNotFound      = errors.New("advisor not found")
	ErrAdvisorAlreadyExists = errors.New("advisor already exists")
	ErrAdvisorInactive      = errors.New("advisor account is inactive")
)

// Quoting errors
var (
	ErrProxyUnavailable = errors.New("neoliane proxy unavailable")
	ErrEmptyEnvelope    = errors.New("invalid response envelope from quoting API")
	ErrCatalogShape     = errors.New("unrecognized product catalog shape")
	ErrLeadNotFound     = errors.New("lead not found")
	ErrFlowNotFound     = errors.New("subscription flow not found")
)

// TransportError reports a proxy-level failure: non-JSON body (including the
// HTML prologue case), a non-success HTTP status, or a malformed envelope.
type TransportError struct {
	Reason string
}

func (e *TransportError) Error() string {
	return "proxy transport: " + e.Reason
}

// AuthError reports that the proxy was reachable but authentication was
// rejected or returned no token.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "neoliane auth: " + e.Reason
}

// ApplicationError carries a downstream API failure (success:false at the
// transport level), with structured field errors flattened into Message.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// ValidationError reports malformed caller input, detected before any
// network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}
