package workers

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/incognitochain/merklemine-workers/entities"
)

// Verifier reports whether the allocation of an address was already generated
type Verifier interface {
	IsGenerated(ctx context.Context, recipient common.Address) (bool, error)
}

// ProofSource looks up the merkle proof of an address
type ProofSource interface {
	Proof(addr common.Address) (entities.Proof, error)
}

// Signer unlocks a key and signs transactions with it
type Signer interface {
	Unlock(password string) error
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Ledger is the part of the json-rpc client the submitter needs. *ethclient.Client satisfies it.
type Ledger interface {
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// NonceCoordinator hands out the next nonce of a sender and records used ones
type NonceCoordinator interface {
	NextNonce(ctx context.Context, sender common.Address) (uint64, error)
	Advance(sender common.Address, usedNonce uint64) error
}
