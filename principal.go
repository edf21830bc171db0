package evmwallet

import "encoding/hex"

// Principal is the opaque caller identity used both as the tenant-isolation
// key and, verbatim, as the single element of the derivation path passed
// to the external threshold-ECDSA service.
type Principal []byte

// Key returns the lowercase-hex string form of the principal, used as the
// map key into State.Users.
func (p Principal) Key() string {
	return hex.EncodeToString(p)
}

// DerivationPath returns the single-element derivation path this
// principal maps to.
func (p Principal) DerivationPath() [][]byte {
	return [][]byte{[]byte(p)}
}
