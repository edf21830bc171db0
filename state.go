package evmwallet

// UserRecord is the per-principal record: an immutable public key set once
// at creation, and one journal per chain the principal has signed on.
type UserRecord struct {
	PublicKey []byte                   `cbor:"public_key"`
	Journals  map[uint64]*ChainJournal `cbor:"journals"`
}

// ChainJournal tracks the next expected nonce and signing history for one
// (principal, chain) pair. It is lazily created on the first successful
// sign for that pair.
type ChainJournal struct {
	Nonce        uint64         `cbor:"nonce"`
	Transactions []SignedRecord `cbor:"transactions"`
}

// SignedRecord is one entry in a ChainJournal: the raw signed transaction
// bytes, ready for broadcast, and the host-clock timestamp at insertion.
type SignedRecord struct {
	Data      []byte `cbor:"data"`
	Timestamp uint64 `cbor:"timestamp"`
}

// State is the single process-wide store: every principal's user record
// plus the active Config. Core serialises all access to it through its
// mutex; State itself does no locking.
type State struct {
	Users  map[string]*UserRecord `cbor:"users"`
	Config Config                 `cbor:"config"`
}

// NewState returns an empty State for the given environment.
func NewState(env Environment) *State {
	return &State{
		Users:  make(map[string]*UserRecord),
		Config: NewConfig(env),
	}
}

// CallerData is the result of GetCallerData: a principal's address and
// its journal for one chain, or an empty journal if none exists yet.
type CallerData struct {
	Address string
	Journal ChainJournal
}
