package workers

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/incognitochain/merklemine-workers/entities"
	"github.com/incognitochain/merklemine-workers/utils"
	"github.com/sirupsen/logrus"
)

// AllocationFilter picks the candidates whose allocation is still unclaimed
type AllocationFilter struct {
	verifier Verifier
	timeout  time.Duration
	logger   *logrus.Entry
}

func NewAllocationFilter(verifier Verifier, timeout time.Duration, logger *logrus.Entry) *AllocationFilter {
	return &AllocationFilter{
		verifier: verifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// BuildClaimBatch checks candidates in order until maxBatchSize of them are queued.
// A candidate whose check or proof lookup fails is skipped; it never aborts the batch.
// Candidates after the batch is full are left unchecked for a later round.
func (f *AllocationFilter) BuildClaimBatch(
	ctx context.Context, candidates []common.Address, proofs ProofSource, maxBatchSize int,
) *entities.ClaimBatch {
	batch := entities.NewClaimBatch(maxBatchSize)
	if maxBatchSize <= 0 {
		return batch
	}

	for _, candidate := range candidates {
		if batch.IsFull(maxBatchSize) || ctx.Err() != nil {
			break
		}
		hexAddr := utils.NormalizeAddress(candidate)

		generated, err := f.isGenerated(ctx, candidate)
		if err != nil {
			addressesSkipped.WithLabelValues(skipReasonVerifier).Inc()
			f.logger.Warnf("Could not check allocation for %v - with err: %v", hexAddr, err)
			continue
		}
		if generated {
			addressesSkipped.WithLabelValues(skipReasonGenerated).Inc()
			f.logger.Infof("Allocation for %v already generated!", hexAddr)
			continue
		}

		proof, err := proofs.Proof(candidate)
		if err != nil {
			addressesSkipped.WithLabelValues(skipReasonProof).Inc()
			f.logger.Warnf("Could not get merkle proof for %v - with err: %v", hexAddr, err)
			continue
		}

		batch.Add(candidate, proof)
		addressesQueued.Inc()
		f.logger.Infof("Allocation for %v *NOT* already generated! Queued (%d/%d)", hexAddr, batch.Len(), maxBatchSize)
	}
	return batch
}

func (f *AllocationFilter) isGenerated(ctx context.Context, candidate common.Address) (bool, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.verifier.IsGenerated(ctx, candidate)
}
