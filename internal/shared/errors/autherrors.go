package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	ErrorTypeTokenExpired ErrorType = "token_expired"
	ErrorTypeTokenInvalid ErrorType = "token_invalid"
)

// AuthError is a 401 raised while verifying a bearer token.
type AuthError struct {
	*AppError
	// ShouldLog is false for routine failures such as expiry.
	ShouldLog bool
}

func (e *AuthError) Error() string {
	return e.AppError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.AppError
}

func newAuthError(t ErrorType, message, details string, shouldLog bool) *AuthError {
	return &AuthError{
		AppError:  &AppError{Type: t, Message: message, Code: http.StatusUnauthorized, Details: details},
		ShouldLog: shouldLog,
	}
}

// NewTokenExpiredError tells the client to obtain a fresh token from the identity provider.
func NewTokenExpiredError(tokenType string) *AuthError {
	return newAuthError(ErrorTypeTokenExpired, fmt.Sprintf("%s has expired", tokenType),
		"Obtain a new token and retry", false)
}

func NewTokenInvalidError(tokenType string) *AuthError {
	return newAuthError(ErrorTypeTokenInvalid, fmt.Sprintf("Invalid %s", tokenType),
		"Token signature, issuer or claims are invalid", true)
}

func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ShouldLogAuthError reports whether err deserves a log line. Errors that are not AuthErrors
// are always logged.
func ShouldLogAuthError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}
