package evmwallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ValidateAddress checks that address is a syntactically valid Ethereum
// address: 42 characters, 0x-prefixed, and, if it contains any uppercase
// hex character, a correct EIP-55 checksum. All-lowercase addresses skip
// the checksum check, matching how wallets commonly accept unchecksummed
// input. This accessor has no equivalent in the original canister, which
// never validated its recipient/contract_address arguments before use.
func ValidateAddress(address string) error {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return fmt.Errorf("%w: ethereum addresses must be 42 characters long and start with 0x", ErrInvalidHex)
	}
	data, err := hex.DecodeString(address[2:])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidHex, err)
	}
	if address != strings.ToLower(address) {
		if address != eip55(data) {
			return errors.New("bad checksum on ethereum address")
		}
	}
	return nil
}
