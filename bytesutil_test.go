package evmwallet_test

import (
	"context"
	"testing"

	"github.com/ModChain/evmwallet"
)

func TestHexRoundTrip(t *testing.T) {
	b := []byte{0xde, 0xad, 0xbe, 0xef}
	s := evmwallet.BytesToHex(b)
	if s != "0xdeadbeef" {
		t.Fatalf("unexpected hex string: %s", s)
	}
	back, err := evmwallet.HexToBytes(s)
	if err != nil {
		t.Fatalf("HexToBytes: %v", err)
	}
	if string(back) != string(b) {
		t.Fatalf("round trip mismatch: %x != %x", back, b)
	}
}

func TestHexToBytesWithoutPrefix(t *testing.T) {
	b, err := evmwallet.HexToBytes("deadbeef")
	if err != nil {
		t.Fatalf("HexToBytes: %v", err)
	}
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(b))
	}
}

func TestHexToBytesRejectsOddLength(t *testing.T) {
	if _, err := evmwallet.HexToBytes("0xabc"); err == nil {
		t.Fatal("expected an error for odd-length hex")
	}
}

func TestU64ToBETrimmedZeroIsEmpty(t *testing.T) {
	if got := evmwallet.U64ToBETrimmed(0); len(got) != 0 {
		t.Fatalf("expected empty slice for zero, got %x", got)
	}
}

func TestU64BETrimmedRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 255, 256, 65536, 1 << 40} {
		trimmed := evmwallet.U64ToBETrimmed(n)
		back, err := evmwallet.BEToU64(trimmed)
		if err != nil {
			t.Fatalf("BEToU64(%x): %v", trimmed, err)
		}
		if back != n {
			t.Fatalf("round trip mismatch for %d: got %d", n, back)
		}
	}
}

func TestKeccak256IsDeterministicAnd32Bytes(t *testing.T) {
	a := evmwallet.Keccak256([]byte("evmwallet"))
	b := evmwallet.Keccak256([]byte("evmwallet"))
	if len(a) != 32 {
		t.Fatalf("expected a 32-byte digest, got %d", len(a))
	}
	if evmwallet.BytesToHex(a) != evmwallet.BytesToHex(b) {
		t.Fatalf("Keccak256 is not deterministic: %x != %x", a, b)
	}
	if evmwallet.BytesToHex(evmwallet.Keccak256([]byte("other"))) == evmwallet.BytesToHex(a) {
		t.Fatal("distinct inputs produced the same digest")
	}
}

func TestDeriveAddressAndChecksumAgree(t *testing.T) {
	client := mockClient(t)
	pub, err := client.DerivePublicKey(context.Background(), &evmwallet.ECDSAPublicKeyRequest{})
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}

	addr, err := evmwallet.DeriveAddress(pub.PublicKey)
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	if len(addr) != 42 {
		t.Fatalf("expected a 42-character address, got %d: %s", len(addr), addr)
	}

	raw, err := evmwallet.HexToBytes(addr)
	if err != nil {
		t.Fatalf("HexToBytes: %v", err)
	}
	checksummed := evmwallet.ChecksumAddress(raw)
	if len(checksummed) != 42 {
		t.Fatalf("expected a 42-character checksummed address, got %d: %s", len(checksummed), checksummed)
	}
	if err := evmwallet.ValidateAddress(checksummed); err != nil {
		t.Fatalf("ValidateAddress rejected ChecksumAddress's own output: %v", err)
	}
}
