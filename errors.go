package blog

import (
	stderrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeNoCredentials           = "NO_CREDENTIALS"
	TextCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	TextCodeInactiveAccount         = "INACTIVE_ACCOUNT"
	TextCodeDuplicateEmail          = "DUPLICATE_EMAIL"
	TextCodeInvalidPassword         = "INVALID_PASSWORD"
	TextCodeInvalidLoginCredentials = "INVALID_LOGIN_CREDENTIALS"
	TextCodePostNotFound            = "POST_NOT_FOUND"
	TextCodeForbidden               = "FORBIDDEN"
	TextCodeTokenInvalid            = "TOKEN_INVALID"
	TextCodeTokenExpired            = "TOKEN_EXPIRED"
	TextCodeTokenMissingSubject     = "TOKEN_MISSING_SUBJECT"
)

// ErrNoCredentials is returned when a protected request carries no bearer token
var ErrNoCredentials = errors.New("Not authenticated", errors.CategoryAuth).
	WithTextCode(TextCodeNoCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials covers bad, expired or malformed tokens and unknown subjects.
// Callers never learn which one it was.
var ErrInvalidCredentials = errors.New("Invalid credentials provided", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrInactiveAccount is returned for a valid token whose user is disabled
var ErrInactiveAccount = errors.New("User account is inactive", errors.CategoryAuth).
	WithTextCode(TextCodeInactiveAccount).
	WithCode(errors.CodeBadRequest)

// ErrDuplicateEmail is returned by signup when the email is taken
var ErrDuplicateEmail = errors.New("Email is already registered", errors.CategoryValidation).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeBadRequest)

// ErrInvalidLoginCredentials covers both unknown email and wrong password
var ErrInvalidLoginCredentials = errors.New("Invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidLoginCredentials).
	WithCode(errors.CodeBadRequest)

// ErrPostNotFound is returned when a post id does not exist
var ErrPostNotFound = errors.New("Post not found", errors.CategoryNotFound).
	WithTextCode(TextCodePostNotFound).
	WithCode(errors.CodeNotFound)

// ErrForbidden is returned when the caller does not own the post
var ErrForbidden = errors.New("You do not have permission to modify this post", errors.CategoryAuth).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrTokenInvalid bad signature, unexpected algorithm or malformed payload
var ErrTokenInvalid = errors.New("token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired the exp claim is in the past
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMissingSubject the token verified but carries no sub claim
var ErrTokenMissingSubject = errors.New("token has no subject", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissingSubject).
	WithCode(errors.CodeUnauthorized)

// ErrUserNotFound is the store level miss, never sent to clients as is
var ErrUserNotFound = stderrors.New("user not found")

// ErrNoEmptyString we do not hash empty passwords
var ErrNoEmptyString = stderrors.New("password must not be empty")

// IsTokenError reports whether err came out of the token codec
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMissingSubject)
}
