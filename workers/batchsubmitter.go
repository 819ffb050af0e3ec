package workers

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/incognitochain/merklemine-workers/contracts"
	"github.com/incognitochain/merklemine-workers/entities"
	"github.com/incognitochain/merklemine-workers/utils"
	"github.com/sirupsen/logrus"
)

var ErrEmptyBatch = errors.New("claim batch is empty")

// BatchSubmitter turns a claim batch into one signed multiGenerate transaction and broadcasts it
type BatchSubmitter struct {
	ledger         Ledger
	merkleMine     common.Address
	merkleMineBulk common.Address
	gasPerAddress  uint64
	timeout        time.Duration
	logger         *logrus.Entry
}

func NewBatchSubmitter(
	ledger Ledger, merkleMine common.Address, merkleMineBulk common.Address,
	gasPerAddress uint64, timeout time.Duration, logger *logrus.Entry,
) *BatchSubmitter {
	return &BatchSubmitter{
		ledger:         ledger,
		merkleMine:     merkleMine,
		merkleMineBulk: merkleMineBulk,
		gasPerAddress:  gasPerAddress,
		timeout:        timeout,
		logger:         logger,
	}
}

// Submit signs and broadcasts the claim of batch at the sender's next nonce.
// The nonce is advanced only once the ledger accepted the transaction; on any
// earlier failure the coordinator is left untouched so the nonce is reused.
func (s *BatchSubmitter) Submit(
	ctx context.Context,
	sender common.Address,
	batch *entities.ClaimBatch,
	signer Signer,
	gasPrice *big.Int,
	coordinator NonceCoordinator,
) (common.Hash, error) {
	if batch.Len() == 0 {
		return common.Hash{}, ErrEmptyBatch
	}
	s.logger.Infof("Generating txn for %d addresses", batch.Len())

	proofs := utils.EncodeBatch(batch.ProofBytes())
	data, err := contracts.PackMultiGenerate(s.merkleMine, batch.Addresses, proofs)
	if err != nil {
		return common.Hash{}, fmt.Errorf("Could not encode multiGenerate call - with err: %w", err)
	}

	callCtx, cancel := s.callContext(ctx)
	nonce, err := coordinator.NextNonce(callCtx, sender)
	cancel()
	if err != nil {
		return common.Hash{}, fmt.Errorf("Could not get next nonce - with err: %w", err)
	}

	callCtx, cancel = s.callContext(ctx)
	chainID, err := s.ledger.ChainID(callCtx)
	cancel()
	if err != nil {
		return common.Hash{}, fmt.Errorf("Could not get chain id - with err: %w", err)
	}

	to := s.merkleMineBulk
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      s.gasPerAddress * uint64(batch.Len()),
		To:       &to,
		Value:    big.NewInt(0),
		Data:     data,
	})

	s.logger.Infof("signing tx at nonce %d", nonce)
	signedTx, err := signer.SignTx(tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("Could not sign tx at nonce %d - with err: %w", nonce, err)
	}

	callCtx, cancel = s.callContext(ctx)
	err = s.ledger.SendTransaction(callCtx, signedTx)
	cancel()
	if err != nil {
		return common.Hash{}, fmt.Errorf("Could not broadcast tx at nonce %d - with err: %w", nonce, err)
	}

	txHash := signedTx.Hash()
	s.logger.Infof("Submitted tx %v to generate allocation for %d addresses from %v",
		txHash.Hex(), batch.Len(), utils.NormalizeAddress(sender))

	// the ledger already has the tx, its own count catches up if the cache write is lost
	if err := coordinator.Advance(sender, nonce); err != nil {
		s.logger.Errorf("Could not cache nonce %d - with err: %v", nonce+1, err)
	}
	lastNonce.Set(float64(nonce))
	return txHash, nil
}

func (s *BatchSubmitter) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
