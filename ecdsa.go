package evmwallet

import (
	"context"
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ModChain/secp256k1"
)

// EcdsaCurve names the curve requested of the threshold-ECDSA service.
// secp256k1 is the only curve this library uses.
type EcdsaCurve string

const EcdsaCurveSecp256k1 EcdsaCurve = "secp256k1"

// EcdsaKeyId identifies which threshold key the service should derive
// from / sign with, per Config's key_name.
type EcdsaKeyId struct {
	Curve EcdsaCurve
	Name  string
}

// ECDSAPublicKeyRequest requests the derived public key for a derivation
// path (the caller's principal bytes, as a single path element).
type ECDSAPublicKeyRequest struct {
	CanisterID     []byte
	DerivationPath [][]byte
	KeyID          EcdsaKeyId
}

// ECDSAPublicKeyReply carries the 33-byte compressed point back.
type ECDSAPublicKeyReply struct {
	PublicKey []byte
	ChainCode []byte
}

// SignDigestRequest asks the threshold-ECDSA service to sign a 32-byte
// message digest for a given derivation path, paying Cycles for the call.
type SignDigestRequest struct {
	MessageHash    []byte
	DerivationPath [][]byte
	KeyID          EcdsaKeyId
	Cycles         uint64
}

// SignDigestReply carries the raw 64-byte (r||s) signature back.
type SignDigestReply struct {
	Signature []byte
}

// ECDSAClient is the external threshold-ECDSA collaborator. The runtime
// that embeds this library supplies a concrete implementation that talks
// to the platform's signing subsystem; MockECDSAClient below is a
// deterministic single-key stand-in for tests.
type ECDSAClient interface {
	DerivePublicKey(ctx context.Context, req *ECDSAPublicKeyRequest) (*ECDSAPublicKeyReply, error)
	SignDigest(ctx context.Context, req *SignDigestRequest) (*SignDigestReply, error)
}

// MockECDSAClient signs every request with a single fixed secp256k1
// private key, regardless of derivation path. It exists for tests and
// for local development against the Development environment, mirroring
// the fixed-key mock the original canister used in its own test suite.
type MockECDSAClient struct {
	key *secp256k1.PrivateKey
}

// NewMockECDSAClient builds a MockECDSAClient from a hex-encoded 32-byte
// secp256k1 private key.
func NewMockECDSAClient(privateKeyHex string) (*MockECDSAClient, error) {
	b, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: private key must be 32 bytes, got %d", ErrInvalidKey, len(b))
	}
	key := secp256k1.PrivKeyFromBytes(b)
	return &MockECDSAClient{key: key}, nil
}

// DefaultTestPrivateKeyHex is the fixed secret key scenarios in this
// library's test suite sign against; it is not a credential and must
// never be used outside of Development/test environments.
const DefaultTestPrivateKeyHex = "5c86d3784f39013aa50aada6d97f9bad733636d57bf6bb18b0bca1ffcff374b4"

func (m *MockECDSAClient) DerivePublicKey(ctx context.Context, req *ECDSAPublicKeyRequest) (*ECDSAPublicKeyReply, error) {
	pub := m.key.PubKey()
	return &ECDSAPublicKeyReply{
		PublicKey: pub.SerializeCompressed(),
		ChainCode: []byte{0, 1},
	}, nil
}

// SignDigest signs a 32-byte digest and returns a raw 64-byte (r||s)
// signature. The real threshold-ECDSA service returns signatures in this
// same raw form; recovery id reconstruction happens separately (§4.4.4),
// never inside the signing call itself.
func (m *MockECDSAClient) SignDigest(ctx context.Context, req *SignDigestRequest) (*SignDigestReply, error) {
	if len(req.MessageHash) != 32 {
		return nil, fmt.Errorf("%w: message hash must be 32 bytes, got %d", ErrInvalidLength, len(req.MessageHash))
	}
	der, err := m.key.Sign(rand.Reader, req.MessageHash, crypto.Hash(0))
	if err != nil {
		return nil, err
	}
	sig, err := secp256k1.ParseDERSignature(der)
	if err != nil {
		return nil, err
	}
	r, s, _ := sig.Export()
	return &SignDigestReply{Signature: append(pad32(r.Bytes()), pad32(s.Bytes())...)}, nil
}
