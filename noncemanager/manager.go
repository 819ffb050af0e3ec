package noncemanager

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/incognitochain/merklemine-workers/utils"
)

const (
	NonceKeyPrefix = "nonce-"
)

// LedgerReader reports the number of transactions the ledger has confirmed for an account
type LedgerReader interface {
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
}

// Cache persists the next usable nonce per sender across process restarts
type Cache interface {
	Get(key string) (uint64, bool, error)
	Set(key string, value uint64) error
}

// NonceManager reconciles the ledger transaction count with the last nonce this
// process broadcast. The ledger count lags while a previous tx is pending, so the
// cached value wins when it is ahead; the ledger count is the floor.
//
// One NonceManager serves one sender driven by one sequential submitter. Two
// submitters calling NextNonce before either calls Advance get the same nonce.
type NonceManager struct {
	ledger LedgerReader
	cache  Cache
	mux    sync.Mutex
}

func NewNonceManager(ledger LedgerReader, cache Cache) *NonceManager {
	return &NonceManager{
		ledger: ledger,
		cache:  cache,
	}
}

func cacheKey(sender common.Address) string {
	return NonceKeyPrefix + utils.NormalizeAddress(sender)
}

// NextNonce returns max(ledger count, cached nonce) for sender without changing any state
func (m *NonceManager) NextNonce(ctx context.Context, sender common.Address) (uint64, error) {
	ledgerNonce, err := m.ledger.NonceAt(ctx, sender, nil)
	if err != nil {
		return 0, fmt.Errorf("Could not get transaction count of %v - with err: %w", utils.NormalizeAddress(sender), err)
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	cachedNonce, isExisted, err := m.cache.Get(cacheKey(sender))
	if err != nil {
		return 0, fmt.Errorf("Could not read cached nonce of %v - with err: %w", utils.NormalizeAddress(sender), err)
	}
	if isExisted && cachedNonce > ledgerNonce {
		return cachedNonce, nil
	}
	return ledgerNonce, nil
}

// Advance records that usedNonce was accepted by the ledger. The cached value only moves forward.
func (m *NonceManager) Advance(sender common.Address, usedNonce uint64) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	key := cacheKey(sender)
	cachedNonce, isExisted, err := m.cache.Get(key)
	if err != nil {
		return fmt.Errorf("Could not read cached nonce of %v - with err: %w", utils.NormalizeAddress(sender), err)
	}
	if isExisted && cachedNonce > usedNonce+1 {
		return nil
	}
	return m.cache.Set(key, usedNonce+1)
}
