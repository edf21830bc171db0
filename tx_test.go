package evmwallet_test

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ModChain/evmwallet"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// zeroLegacy builds the Legacy fixture used by scenario S2: all fields
// zero except chain_id=1 and data=0x00.
func zeroLegacy(chainID uint64) *evmwallet.TransactionLegacy {
	return &evmwallet.TransactionLegacy{
		ChainID:  chainID,
		Nonce:    0,
		GasPrice: new(big.Int),
		GasLimit: 0,
		To:       "0000000000000000000000000000000000000000",
		Value:    new(big.Int),
		Data:     "00",
	}
}

func zeroEIP2930(chainID uint64) *evmwallet.TransactionEIP2930 {
	return &evmwallet.TransactionEIP2930{
		ChainID:  chainID,
		Nonce:    0,
		GasPrice: new(big.Int),
		GasLimit: 0,
		To:       "0000000000000000000000000000000000000000",
		Value:    new(big.Int),
		Data:     "00",
	}
}

func zeroEIP1559(chainID uint64) *evmwallet.TransactionEIP1559 {
	return &evmwallet.TransactionEIP1559{
		ChainID:              chainID,
		Nonce:                0,
		MaxPriorityFeePerGas: new(big.Int),
		MaxFeePerGas:         new(big.Int),
		GasLimit:             0,
		To:                   "0000000000000000000000000000000000000000",
		Value:                new(big.Int),
		Data:                 "00",
	}
}

func mockClient(t *testing.T) *evmwallet.MockECDSAClient {
	t.Helper()
	c, err := evmwallet.NewMockECDSAClient(evmwallet.DefaultTestPrivateKeyHex)
	if err != nil {
		t.Fatalf("NewMockECDSAClient: %v", err)
	}
	return c
}

func signWithMock(t *testing.T, tx evmwallet.Transaction, client *evmwallet.MockECDSAClient) []byte {
	t.Helper()
	digest := must(tx.GetMessageToSign())
	pubReply := must(client.DerivePublicKey(context.Background(), &evmwallet.ECDSAPublicKeyRequest{}))
	reply := must(client.SignDigest(context.Background(), &evmwallet.SignDigestRequest{MessageHash: digest}))
	recID := must(evmwallet.RecoverV(digest, reply.Signature, pubReply.PublicKey))
	if err := tx.ApplySignature(reply.Signature, recID); err != nil {
		t.Fatalf("ApplySignature: %v", err)
	}
	return reply.Signature
}

// TestLegacySignScenarioS2 follows scenario S2 from the specification.
func TestLegacySignScenarioS2(t *testing.T) {
	client := mockClient(t)
	tx := zeroLegacy(1)

	digest := must(tx.GetMessageToSign())
	if got := hex.EncodeToString(digest); got != "eb86127620fbc047c6b6c2fcedea010143538e452dc7cb67a7fb1f8a00abdbd9" {
		t.Fatalf("unexpected digest: %s", got)
	}

	signWithMock(t, tx, client)

	sig := must(tx.GetSignature())
	if got := hex.EncodeToString(sig); got != "c9e2682ec5084986365523c4268c5956c064c1ee85dc208364cb71e93edabab612ffab0eaed3e34865b225e9f349945599f8641cd806dc43029e0f92fdca23cb" {
		t.Fatalf("unexpected signature: %s", got)
	}

	recID := must(tx.GetRecoveryID())
	if recID != 0 {
		t.Fatalf("expected recovery id 0, got %d", recID)
	}
}

func TestEIP2930SignScenarioS3(t *testing.T) {
	client := mockClient(t)
	tx := zeroEIP2930(1)

	digest := must(tx.GetMessageToSign())
	if got := hex.EncodeToString(digest); got != "1db9b0174e2b28a2073c88acbc792a5445407c5a8bf7bc5c65a047d45885eb89" {
		t.Fatalf("unexpected digest: %s", got)
	}

	signWithMock(t, tx, client)

	sig := must(tx.GetSignature())
	if got := hex.EncodeToString(sig); got != "31cf08411809b04f8a82d2b07d6c33f7aa46d805e833f832464fd237c00a11d35104f49a601cf90fd5fe6297ec403959b7f649b5125ea3bcde084e9893fee5c6" {
		t.Fatalf("unexpected signature: %s", got)
	}

	recID := must(tx.GetRecoveryID())
	if recID != 1 {
		t.Fatalf("expected recovery id 1, got %d", recID)
	}
}

func TestEIP1559SignScenarioS4(t *testing.T) {
	client := mockClient(t)
	tx := zeroEIP1559(1)

	digest := must(tx.GetMessageToSign())
	if got := hex.EncodeToString(digest); got != "79965df63d7d9364f4bc8ed54ffd1c267042d4db673e129e3c459afbcb73a6f1" {
		t.Fatalf("unexpected digest: %s", got)
	}

	signWithMock(t, tx, client)

	sig := must(tx.GetSignature())
	if got := hex.EncodeToString(sig); got != "29edd4e1d65e1b778b464112d2febc6e97bb677aba5034408fd27b49921beca94c4e5b904d58553bcd9c788360e0bd55c513922cf1f33a6386033e886cd4f77f" {
		t.Fatalf("unexpected signature: %s", got)
	}

	recID := must(tx.GetRecoveryID())
	if recID != 0 {
		t.Fatalf("expected recovery id 0, got %d", recID)
	}
}

// TestRoundTripCodec checks property S1 (round-trip codec) for all three
// variants, both unsigned and signed.
func TestRoundTripCodec(t *testing.T) {
	client := mockClient(t)

	cases := []func() evmwallet.Transaction{
		func() evmwallet.Transaction { return zeroLegacy(1) },
		func() evmwallet.Transaction { return zeroEIP2930(1) },
		func() evmwallet.Transaction { return zeroEIP1559(1) },
	}

	for _, build := range cases {
		tx := build()
		raw := must(tx.Serialize())
		reparsed := must(evmwallet.ParseTransaction(raw, 1))
		raw2 := must(reparsed.Serialize())
		if hex.EncodeToString(raw) != hex.EncodeToString(raw2) {
			t.Fatalf("unsigned round-trip mismatch: %x != %x", raw, raw2)
		}

		signWithMock(t, tx, client)
		signedRaw := must(tx.Serialize())
		reparsedSigned := must(evmwallet.ParseTransaction(signedRaw, 1))
		signedRaw2 := must(reparsedSigned.Serialize())
		if hex.EncodeToString(signedRaw) != hex.EncodeToString(signedRaw2) {
			t.Fatalf("signed round-trip mismatch: %x != %x", signedRaw, signedRaw2)
		}
		if !reparsedSigned.IsSigned() {
			t.Fatalf("expected reparsed signed transaction to report signed")
		}
	}
}

// TestInvalidEnvelopeScenarioS6 checks that an unrecognised leading byte
// fails InvalidEnvelope without touching any shared state.
func TestInvalidEnvelopeScenarioS6(t *testing.T) {
	_, err := evmwallet.ParseTransaction([]byte{0x03, 0x00}, 1)
	if err == nil {
		t.Fatal("expected an error for leading byte 0x03")
	}
}

func TestMessageToSignIsDeterministic(t *testing.T) {
	tx := zeroEIP1559(5)
	a := must(tx.GetMessageToSign())
	b := must(tx.GetMessageToSign())
	if hex.EncodeToString(a) != hex.EncodeToString(b) {
		t.Fatalf("GetMessageToSign is not deterministic: %x != %x", a, b)
	}
	if tx.IsSigned() {
		t.Fatal("GetMessageToSign must not mutate the transaction's signed status")
	}
}

func TestUnsignedAccessorsFailNotSigned(t *testing.T) {
	tx := zeroEIP1559(1)
	if _, err := tx.GetSignature(); err == nil {
		t.Fatal("expected GetSignature on unsigned tx to fail")
	}
	if _, err := tx.GetRecoveryID(); err == nil {
		t.Fatal("expected GetRecoveryID on unsigned tx to fail")
	}
	if tx.IsSigned() {
		t.Fatal("freshly built transaction must not report signed")
	}
}
