package evmwallet

import "errors"

// Error taxonomy surfaced at the host boundary. Each is a sentinel so
// callers can match with errors.Is; wrapping preserves the inner cause.
var (
	ErrInvalidEnvelope  = errors.New("invalid envelope")
	ErrInvalidHex       = errors.New("invalid hex")
	ErrInvalidLength    = errors.New("invalid length")
	ErrInvalidKey       = errors.New("invalid key")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnknownPrincipal = errors.New("unknown principal")
	ErrRecoveryFailed   = errors.New("recovery failed")
	ErrNotSigned        = errors.New("not signed")
)

// ECDSAError wraps a rejection from the external threshold-ECDSA service.
type ECDSAError struct {
	Inner error
}

func (e *ECDSAError) Error() string {
	return "ecdsa service failed: " + e.Inner.Error()
}

func (e *ECDSAError) Unwrap() error {
	return e.Inner
}

func newECDSAError(err error) error {
	return &ECDSAError{Inner: err}
}
