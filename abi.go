package evmwallet

import (
	"fmt"
	"math/big"

	"github.com/BottleFmt/gobottle"
	"golang.org/x/crypto/sha3"
)

// methodSelector returns the 4-byte Keccak-256 method selector for an ABI
// signature such as "transfer(address,uint256)".
func methodSelector(signature string) []byte {
	h := gobottle.Hash([]byte(signature), sha3.NewLegacyKeccak256)
	return h[:4]
}

// erc20TransferSignature is the canonical ERC-20 transfer method; its
// calldata layout (selector, then two 32-byte left-padded parameters) is
// fixed by the ABI spec, not configurable.
const erc20TransferSignature = "transfer(address,uint256)"

// ERC20TransferData builds calldata for an ERC-20 transfer(address,uint256)
// call: a 4-byte method selector followed by the recipient address and
// value, each left-padded to 32 bytes. Earlier revisions of this logic
// mis-encoded value with a single-byte hex expansion instead of full
// 256-bit padding; this implementation always emits the full 32 bytes for
// both parameters, matching the EVM ABI exactly.
func ERC20TransferData(recipient string, value *big.Int) ([]byte, error) {
	addrBytes, err := HexToBytes(recipient)
	if err != nil {
		return nil, err
	}
	if len(addrBytes) != 20 {
		return nil, fmt.Errorf("%w: ethereum address must be 20 bytes, got %d", ErrInvalidLength, len(addrBytes))
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: transfer value must not be negative", ErrInvalidLength)
	}

	data := make([]byte, 0, 4+32+32)
	data = append(data, methodSelector(erc20TransferSignature)...)
	data = append(data, pad32(addrBytes)...)
	if value.BitLen() > 256 {
		return nil, fmt.Errorf("%w: transfer value exceeds 256 bits", ErrInvalidLength)
	}
	valBuf := make([]byte, 32)
	value.FillBytes(valBuf)
	data = append(data, valBuf...)
	return data, nil
}
