package workers

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/incognitochain/merklemine-workers/noncemanager"
	"github.com/stretchr/testify/require"
)

type claimMinerFixture struct {
	miner    *ClaimMiner
	ledger   *fakeLedger
	verifier *fakeVerifier
	signer   *fakeSigner
	cache    *noncemanager.MemoryCache
}

func newClaimMinerFixture(t *testing.T, cfg *ClaimConfig, source candidateSource, proofs ProofSource) *claimMinerFixture {
	f := &claimMinerFixture{
		miner:    &ClaimMiner{},
		ledger:   newFakeLedger(5),
		verifier: &fakeVerifier{generated: map[common.Address]bool{}},
		signer:   newFakeSigner(t),
		cache:    noncemanager.NewMemoryCache(),
	}
	require.NoError(t, f.miner.WorkerAbs.Init(ClaimMinerWorkerID, ClaimMinerWorkerName, cfg.Frequency, cfg.Network, nil))
	require.NoError(t, f.miner.wire(cfg, source, f.ledger, f.verifier, proofs, f.signer, noncemanager.NewNonceManager(f.ledger, f.cache)))
	return f
}

func allProofs(n int) fakeProofs {
	proofs := fakeProofs{}
	for i := 0; i < n; i++ {
		proofs[addr(i)] = proofFor(i)
	}
	return proofs
}

func TestRunSequentialRounds(t *testing.T) {
	source := &fakeCandidates{rounds: [][]common.Address{
		{addr(1), addr(2)},
		{addr(3)},
		{addr(4), addr(5), addr(6)},
	}}
	cfg := testConfig()
	f := newClaimMinerFixture(t, cfg, source, allProofs(10))
	// round 2 has nothing left to claim
	f.verifier.generated[addr(3)] = true

	txHashes, err := f.miner.Run(context.Background(), 3, nil)
	require.NoError(t, err)
	require.Len(t, txHashes, 2)
	require.Equal(t, 3, source.calls)

	sent := f.ledger.Sent()
	require.Len(t, sent, 2)
	// the ledger never confirms, the cache keeps nonces moving
	require.Equal(t, uint64(5), sent[0].Nonce())
	require.Equal(t, uint64(6), sent[1].Nonce())
	require.Equal(t, uint64(2*DefaultGasPerAddress), sent[0].Gas())
	require.Equal(t, uint64(3*DefaultGasPerAddress), sent[1].Gas())
	require.Equal(t, sent[0].Hash(), txHashes[0])
	require.Equal(t, sent[1].Hash(), txHashes[1])
}

func TestRunAbortsOnSubmissionFailure(t *testing.T) {
	source := &fakeCandidates{rounds: [][]common.Address{{addr(1)}, {addr(2)}, {addr(3)}}}
	f := newClaimMinerFixture(t, testConfig(), source, allProofs(10))
	f.ledger.failFrom = 2

	txHashes, err := f.miner.Run(context.Background(), 3, nil)
	require.Error(t, err)
	require.Len(t, txHashes, 1)
	require.Equal(t, 2, source.calls)

	// the failed nonce is handed out again
	next, err := noncemanager.NewNonceManager(f.ledger, f.cache).NextNonce(context.Background(), testSender)
	require.NoError(t, err)
	require.Equal(t, uint64(6), next)
}

func TestRunDiscoveryExhaustedIsFatal(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Rounds = 3
	source := NewAccountSource(server.URL, time.Second, 0, testLogger())
	f := newClaimMinerFixture(t, cfg, source, allProofs(1))

	txHashes, err := f.miner.Run(context.Background(), cfg.Rounds, nil)
	require.ErrorIs(t, err, ErrDiscoveryExhausted)
	require.Empty(t, txHashes)
	require.Equal(t, int32(DiscoveryMaxAttempts), atomic.LoadInt32(&hits))
	require.Equal(t, 0, f.ledger.calls)

	f.miner.Execute(context.Background())
	select {
	case fatalErr := <-f.miner.GetFatalChan():
		require.ErrorIs(t, fatalErr, ErrDiscoveryExhausted)
	default:
		t.Fatal("discovery exhaustion was not reported as fatal")
	}
}

func TestRunWithOverrides(t *testing.T) {
	source := &fakeCandidates{rounds: [][]common.Address{{addr(1), addr(50)}}}
	f := newClaimMinerFixture(t, testConfig(), source, allProofs(2))

	override := fakeProofs{addr(50): proofFor(50)}
	gasPrice := big.NewInt(77)
	txHashes, err := f.miner.RunWithProofs(context.Background(), 1, gasPrice, override)
	require.NoError(t, err)
	require.Len(t, txHashes, 1)

	tx := f.ledger.Sent()[0]
	require.Zero(t, gasPrice.Cmp(tx.GasPrice()))
	// addr(1) has no proof in the override source
	require.Equal(t, uint64(DefaultGasPerAddress), tx.Gas())
}

func TestRunCancelled(t *testing.T) {
	source := &fakeCandidates{rounds: [][]common.Address{{addr(1)}}}
	f := newClaimMinerFixture(t, testConfig(), source, allProofs(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	txHashes, err := f.miner.Run(ctx, 2, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, txHashes)
	require.Equal(t, 0, source.calls)
}

func TestExecuteRecordsTxHashes(t *testing.T) {
	cfg := testConfig()
	cfg.Rounds = 2
	source := &fakeCandidates{rounds: [][]common.Address{{addr(1)}, {addr(2)}}}
	f := newClaimMinerFixture(t, cfg, source, allProofs(3))

	f.miner.Execute(context.Background())
	require.Len(t, f.miner.TxHashes(), 2)
	select {
	case err := <-f.miner.GetFatalChan():
		t.Fatalf("unexpected fatal error: %v", err)
	default:
	}
}

func TestWireFailsOnWrongPassword(t *testing.T) {
	cfg := testConfig()
	cfg.KeyPassword = "nope"
	miner := &ClaimMiner{}
	require.NoError(t, miner.WorkerAbs.Init(ClaimMinerWorkerID, ClaimMinerWorkerName, 0, "testnet", nil))

	ledger := newFakeLedger(0)
	err := miner.wire(cfg, &fakeCandidates{}, ledger, &fakeVerifier{}, fakeProofs{}, newFakeSigner(t),
		noncemanager.NewNonceManager(ledger, noncemanager.NewMemoryCache()))
	require.Error(t, err)
}
