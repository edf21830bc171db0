package evmwallet_test

import (
	"context"
	"testing"

	"github.com/ModChain/evmwallet"
)

func TestRecoverVMatchesMockKey(t *testing.T) {
	client := mockClient(t)
	digest := evmwallet.Keccak256([]byte("recovery id search"))

	sig, err := client.SignDigest(context.Background(), &evmwallet.SignDigestRequest{MessageHash: digest})
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}
	pub, err := client.DerivePublicKey(context.Background(), &evmwallet.ECDSAPublicKeyRequest{})
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}

	recID, err := evmwallet.RecoverV(digest, sig.Signature, pub.PublicKey)
	if err != nil {
		t.Fatalf("RecoverV: %v", err)
	}
	if recID > 3 {
		t.Fatalf("recovery id out of range: %d", recID)
	}
}

func TestRecoverVRejectsWrongLengthInputs(t *testing.T) {
	if _, err := evmwallet.RecoverV(make([]byte, 31), make([]byte, 64), make([]byte, 33)); err == nil {
		t.Fatal("expected an error for a short digest")
	}
	if _, err := evmwallet.RecoverV(make([]byte, 32), make([]byte, 63), make([]byte, 33)); err == nil {
		t.Fatal("expected an error for a short signature")
	}
}

func TestRecoverVFailsForMismatchedKey(t *testing.T) {
	client := mockClient(t)
	digest := evmwallet.Keccak256([]byte("mismatched key"))
	sig, err := client.SignDigest(context.Background(), &evmwallet.SignDigestRequest{MessageHash: digest})
	if err != nil {
		t.Fatalf("SignDigest: %v", err)
	}

	other, err := evmwallet.NewMockECDSAClient("0101010101010101010101010101010101010101010101010101010101010101")
	if err != nil {
		t.Fatalf("NewMockECDSAClient: %v", err)
	}
	otherPub, err := other.DerivePublicKey(context.Background(), &evmwallet.ECDSAPublicKeyRequest{})
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}

	if _, err := evmwallet.RecoverV(digest, sig.Signature, otherPub.PublicKey); err != evmwallet.ErrRecoveryFailed {
		t.Fatalf("expected ErrRecoveryFailed, got %v", err)
	}
}
