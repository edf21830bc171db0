package evmwallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Core is the signing pipeline and state store: it owns the process-wide
// State, talks to an ECDSAClient for key derivation and signing, and
// serialises access to State behind a mutex since, unlike the original
// single-threaded cooperative host, Go goroutines are not implicitly
// serialised.
type Core struct {
	mu    sync.Mutex
	state *State
	ecdsa ECDSAClient
	log   *zap.Logger
	now   func() uint64
}

// NewCore builds a Core around an empty State for env, talking to client.
// A nil logger defaults to a no-op logger.
func NewCore(env Environment, client ECDSAClient, logger *zap.Logger) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Core{
		state: NewState(env),
		ecdsa: client,
		log:   logger,
		now:   func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

// CreateAddress derives a fresh secp256k1 key for principal via the
// external ECDSA service and records the new user. Fails AlreadyExists if
// the principal already has a user record.
func (c *Core) CreateAddress(ctx context.Context, principal Principal) (string, error) {
	c.mu.Lock()
	key := principal.Key()
	if _, exists := c.state.Users[key]; exists {
		c.mu.Unlock()
		return "", ErrAlreadyExists
	}
	keyID := c.state.Config.KeyID()
	c.mu.Unlock()

	reply, err := c.ecdsa.DerivePublicKey(ctx, &ECDSAPublicKeyRequest{
		DerivationPath: principal.DerivationPath(),
		KeyID:          keyID,
	})
	if err != nil {
		c.log.Warn("derive_public_key failed", zap.String("principal", key), zap.Error(err))
		return "", newECDSAError(err)
	}

	address, err := DeriveAddress(reply.PublicKey)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.state.Users[key]; exists {
		return "", ErrAlreadyExists
	}
	c.state.Users[key] = &UserRecord{
		PublicKey: reply.PublicKey,
		Journals:  make(map[uint64]*ChainJournal),
	}
	c.log.Info("address created", zap.String("principal", key), zap.String("address", address))
	return address, nil
}

// SignTransaction parses rawTx as chainID's envelope, signs it via the
// external ECDSA service, reconstructs the recovery id, and appends the
// signed envelope to the caller's per-chain journal.
func (c *Core) SignTransaction(ctx context.Context, principal Principal, rawTx []byte, chainID uint64) ([]byte, error) {
	key := principal.Key()

	c.mu.Lock()
	user, ok := c.state.Users[key]
	if !ok {
		c.mu.Unlock()
		return nil, ErrUnknownPrincipal
	}
	pubkey := append([]byte(nil), user.PublicKey...)
	keyID := c.state.Config.KeyID()
	cycles := c.state.Config.SignCycles
	c.mu.Unlock()

	tx, err := ParseTransaction(rawTx, chainID)
	if err != nil {
		return nil, err
	}
	digest, err := tx.GetMessageToSign()
	if err != nil {
		return nil, err
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("%w: digest must be 32 bytes, got %d", ErrInvalidLength, len(digest))
	}

	reply, err := c.ecdsa.SignDigest(ctx, &SignDigestRequest{
		MessageHash:    digest,
		DerivationPath: principal.DerivationPath(),
		KeyID:          keyID,
		Cycles:         cycles,
	})
	if err != nil {
		c.log.Warn("sign_digest failed", zap.String("principal", key), zap.Error(err))
		return nil, newECDSAError(err)
	}

	recoveryID, err := RecoverV(digest, reply.Signature, pubkey)
	if err != nil {
		c.log.Warn("recovery id search failed", zap.String("principal", key))
		return nil, err
	}

	if err := tx.ApplySignature(reply.Signature, recoveryID); err != nil {
		return nil, err
	}
	signed, err := tx.Serialize()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok = c.state.Users[key]
	if !ok {
		return nil, ErrUnknownPrincipal
	}
	journal, ok := user.Journals[chainID]
	if !ok {
		journal = &ChainJournal{}
		user.Journals[chainID] = journal
	}
	journal.Transactions = append(journal.Transactions, SignedRecord{Data: signed, Timestamp: c.now()})
	journal.Nonce = tx.GetNonce() + 1

	c.log.Info("transaction signed",
		zap.String("principal", key),
		zap.Uint64("chain_id", chainID),
		zap.Uint64("nonce", tx.GetNonce()),
		zap.Uint8("recovery_id", recoveryID),
	)
	return signed, nil
}

func (c *Core) nextNonce(principal Principal, chainID uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.state.Users[principal.Key()]
	if !ok {
		return 0
	}
	journal, ok := user.Journals[chainID]
	if !ok {
		return 0
	}
	return journal.Nonce
}

// DeployContract builds and signs an EIP-1559 contract-creation
// transaction: to is empty, value is zero, data is the contract bytecode.
func (c *Core) DeployContract(ctx context.Context, principal Principal, bytecode []byte, chainID uint64, maxPriorityFee, maxFee *big.Int, gasLimit uint64) ([]byte, error) {
	tx := &TransactionEIP1559{
		ChainID:              chainID,
		Nonce:                c.nextNonce(principal, chainID),
		MaxPriorityFeePerGas: maxPriorityFee,
		MaxFeePerGas:         maxFee,
		GasLimit:             gasLimit,
		To:                   "",
		Value:                new(big.Int),
		Data:                 hexFieldOrEmpty(bytecode),
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	return c.SignTransaction(ctx, principal, raw, chainID)
}

// TransferERC20 builds and signs an EIP-1559 transaction calling
// transfer(address,uint256) on contractAddress.
func (c *Core) TransferERC20(ctx context.Context, principal Principal, chainID uint64, maxPriorityFee, maxFee *big.Int, gasLimit uint64, recipient string, value *big.Int, contractAddress string) ([]byte, error) {
	if err := ValidateAddress(recipient); err != nil {
		return nil, err
	}
	if err := ValidateAddress(contractAddress); err != nil {
		return nil, err
	}
	data, err := ERC20TransferData(recipient, value)
	if err != nil {
		return nil, err
	}
	contractBytes, err := HexToBytes(contractAddress)
	if err != nil {
		return nil, err
	}
	tx := &TransactionEIP1559{
		ChainID:              chainID,
		Nonce:                c.nextNonce(principal, chainID),
		MaxPriorityFeePerGas: maxPriorityFee,
		MaxFeePerGas:         maxFee,
		GasLimit:             gasLimit,
		To:                   hexFieldOrEmpty(contractBytes),
		Value:                new(big.Int),
		Data:                 hexFieldOrEmpty(data),
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	return c.SignTransaction(ctx, principal, raw, chainID)
}

// GetCallerData returns principal's address and its journal for chainID,
// or an empty journal if the principal has never signed on that chain.
func (c *Core) GetCallerData(principal Principal, chainID uint64) (*CallerData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.state.Users[principal.Key()]
	if !ok {
		return nil, ErrUnknownPrincipal
	}
	address, err := DeriveAddress(user.PublicKey)
	if err != nil {
		return nil, err
	}
	journal, ok := user.Journals[chainID]
	if !ok {
		return &CallerData{Address: address}, nil
	}
	return &CallerData{Address: address, Journal: *journal}, nil
}

// ClearHistory empties a principal's transaction history for chainID
// while preserving its nonce counter.
func (c *Core) ClearHistory(principal Principal, chainID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	user, ok := c.state.Users[principal.Key()]
	if !ok {
		return ErrUnknownPrincipal
	}
	journal, ok := user.Journals[chainID]
	if !ok {
		return nil
	}
	journal.Transactions = nil
	return nil
}

// PreUpgrade checkpoints the current state to a stable blob.
func (c *Core) PreUpgrade() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.PreUpgrade()
}

// PostUpgrade restores state from a stable blob previously produced by
// PreUpgrade. A failure here is fatal per the upgrade-safety contract.
func (c *Core) PostUpgrade(blob []byte) error {
	state, err := PostUpgrade(blob)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	return nil
}
