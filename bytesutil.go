package evmwallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/KarpelesLab/cryptutil"
	"github.com/ModChain/secp256k1"
	"golang.org/x/crypto/sha3"
)

// BytesToHex encodes b as a lowercase, 0x-prefixed hex string.
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexToBytes decodes s, tolerating an optional 0x/0X prefix. Odd-length
// input (after prefix removal) is rejected.
func HexToBytes(s string) ([]byte, error) {
	s = trimHexPrefix(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length hex string", ErrInvalidHex)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHex, err)
	}
	return b, nil
}

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// trimLeadingZeros drops leading 0x00 bytes, returning an empty slice for
// an all-zero input. This is RLP's canonical big-endian-trimmed form.
func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// U64ToBETrimmed returns n as big-endian bytes with leading zero bytes
// stripped; zero encodes as an empty slice, RLP's canonical zero.
func U64ToBETrimmed(n uint64) []byte {
	var buf [8]byte
	buf[0] = byte(n >> 56)
	buf[1] = byte(n >> 48)
	buf[2] = byte(n >> 40)
	buf[3] = byte(n >> 32)
	buf[4] = byte(n >> 24)
	buf[5] = byte(n >> 16)
	buf[6] = byte(n >> 8)
	buf[7] = byte(n)
	return trimLeadingZeros(buf[:])
}

// BEToU64 decodes a big-endian trimmed byte slice back to a uint64,
// rejecting inputs longer than 8 bytes.
func BEToU64(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: value does not fit in 64 bits", ErrInvalidLength)
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// Keccak256 returns the 32-byte Keccak-256 digest of data.
func Keccak256(data []byte) []byte {
	return cryptutil.Hash(data, sha3.NewLegacyKeccak256)
}

// DeriveAddress computes the lowercase 0x-prefixed Ethereum address for a
// 33-byte compressed secp256k1 public key: parse the point, serialise it
// uncompressed, and hash it with the chained etherHash (Keccak-256 over
// the 64 bytes following the 0x04 tag, truncated to the trailing 20
// bytes).
func DeriveAddress(pubkeyCompressed []byte) (string, error) {
	pub, err := secp256k1.ParsePubKey(pubkeyCompressed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, err)
	}
	uncompressed := pub.SerializeUncompressed()
	h := newEtherHash()
	h.Write(uncompressed)
	return BytesToHex(h.Sum(nil)), nil
}

// ChecksumAddress applies the EIP-55 mixed-case checksum to a 20-byte
// address. It is an additive accessor on top of the spec-mandated,
// all-lowercase DeriveAddress output.
func ChecksumAddress(addr []byte) string {
	return eip55(addr)
}
