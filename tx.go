package evmwallet

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ModChain/rlp"
)

// Transaction is the capability set shared by the three Ethereum envelope
// variants this library signs. Variants do not share fields meaningfully
// (gas pricing differs between Legacy and the fee-market types), so this
// is a tagged-variant interface rather than a shared base struct.
type Transaction interface {
	// Serialize returns the canonical wire encoding: the bare RLP list
	// (type-prefixed for EIP-2930/1559) when unsigned, or the full
	// signed envelope once a signature has been applied.
	Serialize() ([]byte, error)
	// GetMessageToSign returns the 32-byte Keccak-256 pre-image digest
	// fed to ECDSA. It never mutates the transaction.
	GetMessageToSign() ([]byte, error)
	// ApplySignature sets v/r/s from a raw 64-byte (r||s) signature and
	// a 0..3 recovery id, marking the transaction signed.
	ApplySignature(sig []byte, recoveryID byte) error
	// GetSignature returns the 64-byte r||s signature of a signed
	// transaction, or ErrNotSigned.
	GetSignature() ([]byte, error)
	// GetRecoveryID returns the 0..3 recovery id of a signed
	// transaction, or ErrNotSigned.
	GetRecoveryID() (byte, error)
	// IsSigned reports whether both r and s are non-empty.
	IsSigned() bool
	// GetNonce returns the transaction's nonce field.
	GetNonce() uint64
}

// hexField decodes an optionally 0x-prefixed hex string, treating an
// empty string as an empty byte slice (used for "to" on contract
// creation, and for unset v/r/s).
func hexField(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return HexToBytes(s)
}

func hexFieldOrEmpty(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return hex.EncodeToString(b)
}

func bigIntOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// accessListValue decodes a raw, already-RLP-encoded access list back
// into the structured form rlp.EncodeValue needs to re-embed it without
// re-framing it as a byte string (RLP's append_raw semantics). An empty
// raw value yields the canonical empty list.
func accessListValue(raw []byte) (any, error) {
	if len(raw) == 0 {
		return []any{}, nil
	}
	dec, err := rlp.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid access list: %w", err)
	}
	if len(dec) != 1 {
		return nil, fmt.Errorf("invalid access list: expected a single RLP item")
	}
	return dec[0], nil
}

// encodeAccessList re-encodes a decoded access list value back to its
// raw RLP bytes, the form this library stores it in.
func encodeAccessList(v any) ([]byte, error) {
	return rlp.EncodeValue(v)
}

func toByteSlices(items []any) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, it := range items {
		b, ok := it.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: expected byte string at index %d", ErrInvalidEnvelope, i)
		}
		out[i] = b
	}
	return out, nil
}

func decodeList(buf []byte) ([]any, error) {
	dec, err := rlp.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvelope, err)
	}
	if len(dec) != 1 {
		return nil, fmt.Errorf("%w: expected a single top-level RLP list", ErrInvalidEnvelope)
	}
	list, ok := dec[0].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an RLP list", ErrInvalidEnvelope)
	}
	return list, nil
}

// ParseTransaction inspects the leading byte of raw and dispatches to the
// matching envelope variant. chainID is supplied externally: the wire
// encoding of an unsigned Legacy transaction carries no chain id field,
// so the caller's chain id is threaded into the in-memory representation.
func ParseTransaction(raw []byte, chainID uint64) (Transaction, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidEnvelope)
	}
	switch {
	case raw[0] >= 0xc0:
		return parseLegacy(raw, chainID)
	case raw[0] == 0x01:
		return parseEIP2930(raw[1:])
	case raw[0] == 0x02:
		return parseEIP1559(raw[1:])
	default:
		return nil, fmt.Errorf("%w: unrecognised leading byte 0x%02x", ErrInvalidEnvelope, raw[0])
	}
}

// ---- Legacy ----

// TransactionLegacy is the pre-EIP-2718 Ethereum transaction envelope.
type TransactionLegacy struct {
	ChainID  uint64
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       string // hex, no 0x; empty for contract creation
	Value    *big.Int
	Data     string // hex, no 0x
	V, R, S  string // hex, no 0x; empty means unsigned
}

func parseLegacy(raw []byte, chainID uint64) (*TransactionLegacy, error) {
	list, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	fields, err := toByteSlices(list)
	if err != nil {
		return nil, err
	}
	if len(fields) != 6 && len(fields) != 9 {
		return nil, fmt.Errorf("%w: legacy transaction must have 6 or 9 fields, got %d", ErrInvalidEnvelope, len(fields))
	}
	nonce, err := BEToU64(fields[0])
	if err != nil {
		return nil, err
	}
	gasLimit, err := BEToU64(fields[2])
	if err != nil {
		return nil, err
	}
	tx := &TransactionLegacy{
		ChainID:  chainID,
		Nonce:    nonce,
		GasPrice: new(big.Int).SetBytes(fields[1]),
		GasLimit: gasLimit,
		To:       hexFieldOrEmpty(fields[3]),
		Value:    new(big.Int).SetBytes(fields[4]),
		Data:     hexFieldOrEmpty(fields[5]),
	}
	if len(fields) == 9 {
		tx.V = hexFieldOrEmpty(fields[6])
		tx.R = hexFieldOrEmpty(fields[7])
		tx.S = hexFieldOrEmpty(fields[8])
	}
	return tx, nil
}

func (tx *TransactionLegacy) rlpFields() ([]any, error) {
	to, err := hexField(tx.To)
	if err != nil {
		return nil, err
	}
	data, err := hexField(tx.Data)
	if err != nil {
		return nil, err
	}
	return []any{tx.Nonce, bigIntOrZero(tx.GasPrice), tx.GasLimit, to, bigIntOrZero(tx.Value), data}, nil
}

func (tx *TransactionLegacy) Serialize() ([]byte, error) {
	fields, err := tx.rlpFields()
	if err != nil {
		return nil, err
	}
	if !tx.IsSigned() {
		return rlp.EncodeValue(fields)
	}
	v, err := hexField(tx.V)
	if err != nil {
		return nil, err
	}
	r, err := hexField(tx.R)
	if err != nil {
		return nil, err
	}
	s, err := hexField(tx.S)
	if err != nil {
		return nil, err
	}
	fields = append(fields, trimLeadingZeros(v), trimLeadingZeros(r), trimLeadingZeros(s))
	return rlp.EncodeValue(fields)
}

func (tx *TransactionLegacy) GetMessageToSign() ([]byte, error) {
	fields, err := tx.rlpFields()
	if err != nil {
		return nil, err
	}
	fields = append(fields, tx.ChainID, 0, 0)
	buf, err := rlp.EncodeValue(fields)
	if err != nil {
		return nil, err
	}
	return Keccak256(buf), nil
}

func (tx *TransactionLegacy) ApplySignature(sig []byte, recoveryID byte) error {
	if len(sig) != 64 {
		return fmt.Errorf("%w: signature must be 64 bytes, got %d", ErrInvalidLength, len(sig))
	}
	tx.R = hex.EncodeToString(sig[:32])
	tx.S = hex.EncodeToString(sig[32:])
	v := tx.ChainID*2 + 35 + uint64(recoveryID)
	tx.V = hex.EncodeToString(U64ToBETrimmed(v))
	return nil
}

func (tx *TransactionLegacy) GetSignature() ([]byte, error) {
	if !tx.IsSigned() {
		return nil, ErrNotSigned
	}
	r, err := hexField(tx.R)
	if err != nil {
		return nil, err
	}
	s, err := hexField(tx.S)
	if err != nil {
		return nil, err
	}
	return append(pad32(r), pad32(s)...), nil
}

func (tx *TransactionLegacy) GetRecoveryID() (byte, error) {
	if !tx.IsSigned() {
		return 0, ErrNotSigned
	}
	vBytes, err := hexField(tx.V)
	if err != nil {
		return 0, err
	}
	v, err := BEToU64(vBytes)
	if err != nil {
		return 0, err
	}
	floor := tx.ChainID*2 + 35
	if v < floor {
		return 0, fmt.Errorf("%w: v=%d inconsistent with chain id %d", ErrInvalidLength, v, tx.ChainID)
	}
	return byte(v - floor), nil
}

func (tx *TransactionLegacy) IsSigned() bool  { return tx.R != "" && tx.S != "" }
func (tx *TransactionLegacy) GetNonce() uint64 { return tx.Nonce }

// ---- EIP-2930 ----

// TransactionEIP2930 is the EIP-2930 (type 0x01) access-list transaction.
type TransactionEIP2930 struct {
	ChainID    uint64
	Nonce      uint64
	GasPrice   *big.Int
	GasLimit   uint64
	To         string
	Value      *big.Int
	Data       string
	AccessList []byte // raw, already-RLP-encoded; nil/empty means the canonical empty list
	V, R, S    string
}

func parseEIP2930(body []byte) (*TransactionEIP2930, error) {
	list, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	if len(list) != 8 && len(list) != 11 {
		return nil, fmt.Errorf("%w: EIP-2930 transaction must have 8 or 11 fields, got %d", ErrInvalidEnvelope, len(list))
	}
	scalars, err := toByteSlices(list[:7])
	if err != nil {
		return nil, err
	}
	chainID, err := BEToU64(scalars[0])
	if err != nil {
		return nil, err
	}
	nonce, err := BEToU64(scalars[1])
	if err != nil {
		return nil, err
	}
	gasLimit, err := BEToU64(scalars[3])
	if err != nil {
		return nil, err
	}
	accessListRaw, err := encodeAccessList(list[7])
	if err != nil {
		return nil, err
	}
	tx := &TransactionEIP2930{
		ChainID:    chainID,
		Nonce:      nonce,
		GasPrice:   new(big.Int).SetBytes(scalars[2]),
		GasLimit:   gasLimit,
		To:         hexFieldOrEmpty(scalars[4]),
		Value:      new(big.Int).SetBytes(scalars[5]),
		Data:       hexFieldOrEmpty(scalars[6]),
		AccessList: accessListRaw,
	}
	if len(list) == 11 {
		sig, err := toByteSlices(list[8:])
		if err != nil {
			return nil, err
		}
		tx.V = hexFieldOrEmpty(sig[0])
		tx.R = hexFieldOrEmpty(sig[1])
		tx.S = hexFieldOrEmpty(sig[2])
	}
	return tx, nil
}

func (tx *TransactionEIP2930) rlpFields() ([]any, error) {
	to, err := hexField(tx.To)
	if err != nil {
		return nil, err
	}
	data, err := hexField(tx.Data)
	if err != nil {
		return nil, err
	}
	al, err := accessListValue(tx.AccessList)
	if err != nil {
		return nil, err
	}
	return []any{tx.ChainID, tx.Nonce, bigIntOrZero(tx.GasPrice), tx.GasLimit, to, bigIntOrZero(tx.Value), data, al}, nil
}

func (tx *TransactionEIP2930) envelope(fields []any) ([]byte, error) {
	buf, err := rlp.EncodeValue(fields)
	if err != nil {
		return nil, err
	}
	return append([]byte{0x01}, buf...), nil
}

func (tx *TransactionEIP2930) Serialize() ([]byte, error) {
	fields, err := tx.rlpFields()
	if err != nil {
		return nil, err
	}
	if !tx.IsSigned() {
		return tx.envelope(fields)
	}
	v, err := hexField(tx.V)
	if err != nil {
		return nil, err
	}
	r, err := hexField(tx.R)
	if err != nil {
		return nil, err
	}
	s, err := hexField(tx.S)
	if err != nil {
		return nil, err
	}
	fields = append(fields, trimLeadingZeros(v), trimLeadingZeros(r), trimLeadingZeros(s))
	return tx.envelope(fields)
}

func (tx *TransactionEIP2930) GetMessageToSign() ([]byte, error) {
	fields, err := tx.rlpFields()
	if err != nil {
		return nil, err
	}
	buf, err := tx.envelope(fields)
	if err != nil {
		return nil, err
	}
	return Keccak256(buf), nil
}

func (tx *TransactionEIP2930) ApplySignature(sig []byte, recoveryID byte) error {
	if len(sig) != 64 {
		return fmt.Errorf("%w: signature must be 64 bytes, got %d", ErrInvalidLength, len(sig))
	}
	tx.R = hex.EncodeToString(sig[:32])
	tx.S = hex.EncodeToString(sig[32:])
	if recoveryID == 0 {
		tx.V = ""
	} else {
		tx.V = hex.EncodeToString(U64ToBETrimmed(uint64(recoveryID)))
	}
	return nil
}

func (tx *TransactionEIP2930) GetSignature() ([]byte, error) {
	if !tx.IsSigned() {
		return nil, ErrNotSigned
	}
	r, err := hexField(tx.R)
	if err != nil {
		return nil, err
	}
	s, err := hexField(tx.S)
	if err != nil {
		return nil, err
	}
	return append(pad32(r), pad32(s)...), nil
}

func (tx *TransactionEIP2930) GetRecoveryID() (byte, error) {
	if !tx.IsSigned() {
		return 0, ErrNotSigned
	}
	if tx.V == "" {
		return 0, nil
	}
	return 1, nil
}

func (tx *TransactionEIP2930) IsSigned() bool  { return tx.R != "" && tx.S != "" }
func (tx *TransactionEIP2930) GetNonce() uint64 { return tx.Nonce }

// ---- EIP-1559 ----

// TransactionEIP1559 is the EIP-1559 (type 0x02) dynamic-fee transaction.
type TransactionEIP1559 struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   string
	Value                *big.Int
	Data                 string
	AccessList           []byte
	V, R, S              string
}

func parseEIP1559(body []byte) (*TransactionEIP1559, error) {
	list, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	if len(list) != 9 && len(list) != 12 {
		return nil, fmt.Errorf("%w: EIP-1559 transaction must have 9 or 12 fields, got %d", ErrInvalidEnvelope, len(list))
	}
	scalars, err := toByteSlices(list[:8])
	if err != nil {
		return nil, err
	}
	chainID, err := BEToU64(scalars[0])
	if err != nil {
		return nil, err
	}
	nonce, err := BEToU64(scalars[1])
	if err != nil {
		return nil, err
	}
	gasLimit, err := BEToU64(scalars[4])
	if err != nil {
		return nil, err
	}
	accessListRaw, err := encodeAccessList(list[8])
	if err != nil {
		return nil, err
	}
	tx := &TransactionEIP1559{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: new(big.Int).SetBytes(scalars[2]),
		MaxFeePerGas:         new(big.Int).SetBytes(scalars[3]),
		GasLimit:             gasLimit,
		To:                   hexFieldOrEmpty(scalars[5]),
		Value:                new(big.Int).SetBytes(scalars[6]),
		Data:                 hexFieldOrEmpty(scalars[7]),
		AccessList:           accessListRaw,
	}
	if len(list) == 12 {
		sig, err := toByteSlices(list[9:])
		if err != nil {
			return nil, err
		}
		tx.V = hexFieldOrEmpty(sig[0])
		tx.R = hexFieldOrEmpty(sig[1])
		tx.S = hexFieldOrEmpty(sig[2])
	}
	return tx, nil
}

func (tx *TransactionEIP1559) rlpFields() ([]any, error) {
	to, err := hexField(tx.To)
	if err != nil {
		return nil, err
	}
	data, err := hexField(tx.Data)
	if err != nil {
		return nil, err
	}
	al, err := accessListValue(tx.AccessList)
	if err != nil {
		return nil, err
	}
	return []any{
		tx.ChainID, tx.Nonce, bigIntOrZero(tx.MaxPriorityFeePerGas), bigIntOrZero(tx.MaxFeePerGas),
		tx.GasLimit, to, bigIntOrZero(tx.Value), data, al,
	}, nil
}

func (tx *TransactionEIP1559) envelope(fields []any) ([]byte, error) {
	buf, err := rlp.EncodeValue(fields)
	if err != nil {
		return nil, err
	}
	return append([]byte{0x02}, buf...), nil
}

func (tx *TransactionEIP1559) Serialize() ([]byte, error) {
	fields, err := tx.rlpFields()
	if err != nil {
		return nil, err
	}
	if !tx.IsSigned() {
		return tx.envelope(fields)
	}
	v, err := hexField(tx.V)
	if err != nil {
		return nil, err
	}
	r, err := hexField(tx.R)
	if err != nil {
		return nil, err
	}
	s, err := hexField(tx.S)
	if err != nil {
		return nil, err
	}
	fields = append(fields, trimLeadingZeros(v), trimLeadingZeros(r), trimLeadingZeros(s))
	return tx.envelope(fields)
}

func (tx *TransactionEIP1559) GetMessageToSign() ([]byte, error) {
	fields, err := tx.rlpFields()
	if err != nil {
		return nil, err
	}
	buf, err := tx.envelope(fields)
	if err != nil {
		return nil, err
	}
	return Keccak256(buf), nil
}

func (tx *TransactionEIP1559) ApplySignature(sig []byte, recoveryID byte) error {
	if len(sig) != 64 {
		return fmt.Errorf("%w: signature must be 64 bytes, got %d", ErrInvalidLength, len(sig))
	}
	tx.R = hex.EncodeToString(sig[:32])
	tx.S = hex.EncodeToString(sig[32:])
	if recoveryID == 0 {
		tx.V = ""
	} else {
		tx.V = hex.EncodeToString(U64ToBETrimmed(uint64(recoveryID)))
	}
	return nil
}

func (tx *TransactionEIP1559) GetSignature() ([]byte, error) {
	if !tx.IsSigned() {
		return nil, ErrNotSigned
	}
	r, err := hexField(tx.R)
	if err != nil {
		return nil, err
	}
	s, err := hexField(tx.S)
	if err != nil {
		return nil, err
	}
	return append(pad32(r), pad32(s)...), nil
}

func (tx *TransactionEIP1559) GetRecoveryID() (byte, error) {
	if !tx.IsSigned() {
		return 0, ErrNotSigned
	}
	if tx.V == "" {
		return 0, nil
	}
	return 1, nil
}

func (tx *TransactionEIP1559) IsSigned() bool  { return tx.R != "" && tx.S != "" }
func (tx *TransactionEIP1559) GetNonce() uint64 { return tx.Nonce }

// pad32 left-pads b with zero bytes to 32 bytes; b longer than 32 bytes
// is returned as-is (should not occur for valid r/s values).
func pad32(b []byte) []byte {
	if len(b) >= 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
