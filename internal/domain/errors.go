package domain

import "errors"

// Client errors (4xx-equivalent)
var (
	ErrDuplicateCompany    = errors.New("company already exists")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrMissingAuth         = errors.New("missing or invalid authorization header")
	ErrInvalidTokenPayload = errors.New("invalid token payload")
	ErrNoTenantContext     = errors.New("no tenant database in token")
	ErrUserNotFound        = errors.New("user not found")
	ErrCompanyNotFound     = errors.New("company profile not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrProfileNotFound     = errors.New("no profile exists")
	ErrUserNotLinked       = errors.New("user not linked to a company")
)

// Infrastructure faults (5xx-equivalent)
var (
	ErrTenantUnavailable = errors.New("tenant database unavailable")
)

// ValidationError reports a failed field check on submitted input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// IsClientError reports whether err belongs to the client-error taxonomy.
func IsClientError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, sentinel := range []error{
		ErrDuplicateCompany, ErrDuplicateUsername, ErrInvalidCredentials,
		ErrTokenExpired, ErrTokenInvalid, ErrMissingAuth, ErrInvalidTokenPayload,
		ErrNoTenantContext, ErrUserNotFound, ErrCompanyNotFound,
		ErrClientNotFound, ErrInvoiceNotFound, ErrProfileNotFound, ErrUserNotLinked,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
