package evmwallet

import (
	"bytes"
	"fmt"

	"github.com/ModChain/secp256k1"
)

// RecoverV finds the 0..3 recovery id for a raw 64-byte (r||s) signature
// over digest, given the expected 33-byte compressed public key. It
// delegates the search itself to Signature.BruteforceRecoveryCode, the
// same call the teacher's own signing path uses (evmtx.go's Sign, via
// sigO.BruteforceRecoveryCode(h, pubkey) followed by .Export()), then
// confirms the result recovers the expected key before trusting it.
func RecoverV(digest, sig []byte, expectedPubkeyCompressed []byte) (byte, error) {
	if len(digest) != 32 {
		return 0, fmt.Errorf("%w: digest must be 32 bytes, got %d", ErrInvalidLength, len(digest))
	}
	if len(sig) != 64 {
		return 0, fmt.Errorf("%w: signature must be 64 bytes, got %d", ErrInvalidLength, len(sig))
	}

	pub, err := secp256k1.ParsePubKey(expectedPubkeyCompressed)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidKey, err)
	}

	r := new(secp256k1.ModNScalar)
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return 0, fmt.Errorf("%w: r exceeds group order", ErrInvalidLength)
	}
	s := new(secp256k1.ModNScalar)
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return 0, fmt.Errorf("%w: s exceeds group order", ErrInvalidLength)
	}

	sigO := secp256k1.NewSignatureWithRecoveryCode(r, s, 0)
	sigO.BruteforceRecoveryCode(digest, pub)

	_, _, recoveryID := sigO.Export()
	recovered, err := sigO.RecoverPublicKey(digest)
	if err != nil || !bytes.Equal(recovered.SerializeCompressed(), expectedPubkeyCompressed) {
		return 0, ErrRecoveryFailed
	}
	return recoveryID, nil
}
