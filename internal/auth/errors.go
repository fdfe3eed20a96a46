package auth

import "errors"

// Failure kinds of the session core. Every kind except ErrInternalFailure
// is the caller's fault and is rendered as the same 401.
var (
	ErrUnauthenticated     = errors.New("no credential presented")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("expired credential")
	ErrRevokedCredential   = errors.New("revoked credential")
	ErrInternalFailure     = errors.New("internal failure")
)

// Kind names an auth failure for logs and metrics.
type Kind string

const (
	KindNone            Kind = ""
	KindUnauthenticated Kind = "unauthenticated"
	KindMalformed       Kind = "malformed_credential"
	KindExpired         Kind = "expired_credential"
	KindRevoked         Kind = "revoked_credential"
	KindInternal        Kind = "internal_failure"
)

// KindOf classifies err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrMalformedCredential):
		return KindMalformed
	case errors.Is(err, ErrExpiredCredential):
		return KindExpired
	case errors.Is(err, ErrRevokedCredential):
		return KindRevoked
	default:
		return KindInternal
	}
}

// IsClientError reports whether err is one of the user-facing kinds.
func IsClientError(err error) bool {
	k := KindOf(err)
	return k != KindNone && k != KindInternal
}
