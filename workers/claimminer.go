package workers

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/incognitochain/merklemine-workers/contracts"
	"github.com/incognitochain/merklemine-workers/noncemanager"
	"github.com/incognitochain/merklemine-workers/utils"
)

type candidateSource interface {
	FetchCandidates(ctx context.Context) ([]common.Address, error)
}

// ClaimMiner repeatedly discovers candidates, filters out generated allocations
// and claims the rest in one multiGenerate transaction per round.
// Rounds never overlap, which is what keeps a single NonceManager consistent.
type ClaimMiner struct {
	WorkerAbs
	sender     common.Address
	merkleMine common.Address
	gasPrice   *big.Int
	rounds     int
	batchSize  int

	source    candidateSource
	filter    *AllocationFilter
	submitter *BatchSubmitter
	nonces    NonceCoordinator
	signer    Signer
	proofs    ProofSource

	closers  []func()
	mux      sync.Mutex
	txHashes []common.Hash
}

// Init connects to the ledger, opens the nonce cache and unlocks the sender key
func (b *ClaimMiner) Init(id int, name string, cfg *ClaimConfig, notifier *utils.SlackNotifier) error {
	b.WorkerAbs.Init(id, name, cfg.Frequency, cfg.Network, notifier)

	ethClient, err := utils.BuildEthClient(cfg.EthRPCURL, cfg.NetworkTimeout)
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not connect to ledger %v - with err: %v", cfg.EthRPCURL, err))
		return err
	}
	b.closers = append(b.closers, ethClient.Close)

	cache, err := noncemanager.OpenLevelDBCache(cfg.NonceDBPath)
	if err != nil {
		b.ExportErrorLog(err.Error())
		b.Close()
		return err
	}
	b.closers = append(b.closers, func() { cache.Close() })

	signer, err := utils.NewKeystoreSigner(cfg.KeyLocation, cfg.Sender)
	if err != nil {
		b.ExportErrorLog(err.Error())
		b.Close()
		return err
	}

	proofs, err := utils.LoadFileProofSource(cfg.ProofFile)
	if err != nil {
		b.ExportErrorLog(err.Error())
		b.Close()
		return err
	}
	b.Logger.Infof("Loaded %d merkle proofs from %v", proofs.Len(), cfg.ProofFile)

	err = b.wire(
		cfg,
		NewAccountSource(cfg.AccountsEndpoint, cfg.NetworkTimeout, cfg.DiscoveryRetryInterval, b.Logger),
		ethClient,
		contracts.NewMerkleMineVerifier(cfg.MerkleMine, ethClient),
		proofs,
		signer,
		noncemanager.NewNonceManager(ethClient, cache),
	)
	if err != nil {
		b.Close()
		return err
	}
	return nil
}

func (b *ClaimMiner) wire(
	cfg *ClaimConfig,
	source candidateSource,
	ledger Ledger,
	verifier Verifier,
	proofs ProofSource,
	signer Signer,
	nonces NonceCoordinator,
) error {
	b.sender = cfg.Sender
	b.merkleMine = cfg.MerkleMine
	b.gasPrice = cfg.GasPrice
	b.rounds = cfg.Rounds
	b.batchSize = cfg.BatchSize

	b.source = source
	b.filter = NewAllocationFilter(verifier, cfg.NetworkTimeout, b.Logger)
	b.submitter = NewBatchSubmitter(ledger, cfg.MerkleMine, cfg.MerkleMineBulk, cfg.GasPerAddress, cfg.NetworkTimeout, b.Logger)
	b.nonces = nonces
	b.signer = signer
	b.proofs = proofs

	if err := signer.Unlock(cfg.KeyPassword); err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not unlock signer - with err: %v", err))
		return err
	}
	return nil
}

func (b *ClaimMiner) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Run claims for the given number of rounds with the configured proof source.
// A nil gasPrice falls back to the configured one.
func (b *ClaimMiner) Run(ctx context.Context, rounds int, gasPrice *big.Int) ([]common.Hash, error) {
	return b.RunWithProofs(ctx, rounds, gasPrice, nil)
}

// RunWithProofs is Run with a proof source overriding the configured one when not nil.
// Discovery exhaustion and submission failures end the run; the hashes broadcast
// before that are returned with the error.
func (b *ClaimMiner) RunWithProofs(ctx context.Context, rounds int, gasPrice *big.Int, proofs ProofSource) ([]common.Hash, error) {
	if gasPrice == nil {
		gasPrice = b.gasPrice
	}
	if proofs == nil {
		proofs = b.proofs
	}
	b.Logger.Infof("Using the %v network, Merkle Mine contract: %v", b.Network, utils.NormalizeAddress(b.merkleMine))

	txHashes := []common.Hash{}
	for round := 1; round <= rounds; round++ {
		if err := ctx.Err(); err != nil {
			return txHashes, err
		}

		candidates, err := b.source.FetchCandidates(ctx)
		if err != nil {
			return txHashes, err
		}

		batch := b.filter.BuildClaimBatch(ctx, candidates, proofs, b.batchSize)
		if err := ctx.Err(); err != nil {
			return txHashes, err
		}
		if batch.Len() == 0 {
			b.Logger.Infof("Round %d/%d: no unclaimed allocation among %d candidates, nothing to submit", round, rounds, len(candidates))
			continue
		}

		b.Logger.Infof("Round %d/%d: submitting with gas price of %v", round, rounds, gasPrice)
		txHash, err := b.submitter.Submit(ctx, b.sender, batch, b.signer, gasPrice, b.nonces)
		if err != nil {
			txFailed.Inc()
			return txHashes, fmt.Errorf("round %d: %w", round, err)
		}
		txSubmitted.Inc()
		txHashes = append(txHashes, txHash)
	}
	return txHashes, nil
}

func (b *ClaimMiner) Execute(ctx context.Context) {
	b.Logger.Info("Merkle mine claimer is executing...")

	txHashes, err := b.Run(ctx, b.rounds, nil)
	b.mux.Lock()
	b.txHashes = append(b.txHashes, txHashes...)
	b.mux.Unlock()

	switch {
	case err == nil:
		b.ExportInfoLog(fmt.Sprintf("Claim run finished with %d txs: %v", len(txHashes), joinHashes(txHashes)))
	case errors.Is(err, ErrDiscoveryExhausted):
		b.ExportErrorLog(fmt.Sprintf("Tried to fetch accounts %d times without success; try again later - with err: %v",
			DiscoveryMaxAttempts, err))
		b.reportFatal(err)
	case ctx.Err() != nil:
		b.Logger.Infof("Claim run interrupted after %d txs: %v", len(txHashes), err)
	default:
		b.ExportErrorLog(fmt.Sprintf("Claim run stopped after %d txs [%v] - with err: %v",
			len(txHashes), joinHashes(txHashes), err))
	}
}

// TxHashes returns every hash broadcast since the worker started
func (b *ClaimMiner) TxHashes() []common.Hash {
	b.mux.Lock()
	defer b.mux.Unlock()
	return append([]common.Hash{}, b.txHashes...)
}

func joinHashes(hashes []common.Hash) string {
	strs := make([]string, 0, len(hashes))
	for _, h := range hashes {
		strs = append(strs, h.Hex())
	}
	return strings.Join(strs, ", ")
}
