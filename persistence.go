package evmwallet

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// stateBlobVersion guards against silently restoring a blob produced by
// an incompatible layout across an upgrade.
const stateBlobVersion = 1

type stateBlob struct {
	Version int    `cbor:"version"`
	State   *State `cbor:"state"`
}

// PreUpgrade serialises State to a versioned CBOR blob suitable for the
// host's stable-storage save call. It never fails for a well-formed State.
func (s *State) PreUpgrade() ([]byte, error) {
	blob := stateBlob{Version: stateBlobVersion, State: s}
	buf, err := cbor.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise state for upgrade: %w", err)
	}
	return buf, nil
}

// PostUpgrade restores a State previously produced by PreUpgrade. Per the
// upgrade-safety contract, a failure to deserialise is fatal to the
// caller: there is no partial or best-effort restore.
func PostUpgrade(buf []byte) (*State, error) {
	var blob stateBlob
	if err := cbor.Unmarshal(buf, &blob); err != nil {
		return nil, fmt.Errorf("fatal: failed to restore state from upgrade blob: %w", err)
	}
	if blob.Version != stateBlobVersion {
		return nil, fmt.Errorf("fatal: unsupported state blob version %d", blob.Version)
	}
	if blob.State == nil {
		return nil, fmt.Errorf("fatal: upgrade blob contained no state")
	}
	if blob.State.Users == nil {
		blob.State.Users = make(map[string]*UserRecord)
	}
	return blob.State, nil
}
