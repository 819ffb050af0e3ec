package utils

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrSignerLocked = errors.New("signer is locked")

// KeystoreSigner signs transactions for a single account of a geth keystore directory
type KeystoreSigner struct {
	ks       *keystore.KeyStore
	account  accounts.Account
	unlocked bool
	mux      sync.Mutex
}

// NewKeystoreSigner opens keyDir and looks up the key file of address
func NewKeystoreSigner(keyDir string, address common.Address) (*KeystoreSigner, error) {
	return newKeystoreSigner(keystore.NewKeyStore(keyDir, keystore.StandardScryptN, keystore.StandardScryptP), address)
}

func newKeystoreSigner(ks *keystore.KeyStore, address common.Address) (*KeystoreSigner, error) {
	account, err := ks.Find(accounts.Account{Address: address})
	if err != nil {
		return nil, fmt.Errorf("Could not find key for %v - with err: %w", NormalizeAddress(address), err)
	}
	return &KeystoreSigner{ks: ks, account: account}, nil
}

func (s *KeystoreSigner) Address() common.Address {
	return s.account.Address
}

// Unlock decrypts the key with password and keeps it in memory until the process exits
func (s *KeystoreSigner) Unlock(password string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.ks.Unlock(s.account, password); err != nil {
		return fmt.Errorf("Could not unlock key for %v - with err: %w", NormalizeAddress(s.account.Address), err)
	}
	s.unlocked = true
	return nil
}

func (s *KeystoreSigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	s.mux.Lock()
	unlocked := s.unlocked
	s.mux.Unlock()
	if !unlocked {
		return nil, ErrSignerLocked
	}
	return s.ks.SignTx(s.account, tx, chainID)
}
