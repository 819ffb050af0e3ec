package workers

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/incognitochain/merklemine-workers/entities"
	"github.com/incognitochain/merklemine-workers/utils"
	"github.com/stretchr/testify/require"
)

var (
	testSender     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testMerkleMine = common.HexToAddress(DefaultMerkleMine)
	testBulk       = common.HexToAddress(DefaultMerkleMineBulk)
)

type fakeVerifier struct {
	generated map[common.Address]bool
	failing   map[common.Address]error
	checked   []common.Address
}

var _ Verifier = &fakeVerifier{}

func (v *fakeVerifier) IsGenerated(_ context.Context, recipient common.Address) (bool, error) {
	v.checked = append(v.checked, recipient)
	if err := v.failing[recipient]; err != nil {
		return false, err
	}
	return v.generated[recipient], nil
}

type fakeProofs map[common.Address]entities.Proof

var _ ProofSource = fakeProofs{}

func (p fakeProofs) Proof(addr common.Address) (entities.Proof, error) {
	proof, ok := p[addr]
	if !ok {
		return nil, utils.ErrProofNotFound
	}
	return proof, nil
}

type fakeLedger struct {
	mux      sync.Mutex
	chainID  *big.Int
	nonce    uint64
	chainErr error
	sendErr  error
	failFrom int // SendTransaction fails from this call on (1-based), 0 never
	calls    int
	sent     []*types.Transaction
}

var _ Ledger = &fakeLedger{}

func newFakeLedger(nonce uint64) *fakeLedger {
	return &fakeLedger{chainID: big.NewInt(1), nonce: nonce}
}

func (l *fakeLedger) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.nonce, nil
}

func (l *fakeLedger) ChainID(context.Context) (*big.Int, error) {
	if l.chainErr != nil {
		return nil, l.chainErr
	}
	return l.chainID, nil
}

func (l *fakeLedger) SendTransaction(_ context.Context, tx *types.Transaction) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.calls++
	if l.sendErr != nil {
		return l.sendErr
	}
	if l.failFrom > 0 && l.calls >= l.failFrom {
		return errors.New("replacement transaction underpriced")
	}
	l.sent = append(l.sent, tx)
	return nil
}

func (l *fakeLedger) Sent() []*types.Transaction {
	l.mux.Lock()
	defer l.mux.Unlock()
	return append([]*types.Transaction{}, l.sent...)
}

type fakeSigner struct {
	key      *ecdsa.PrivateKey
	password string
	unlocked bool
	err      error
}

var _ Signer = &fakeSigner{}

func newFakeSigner(t *testing.T) *fakeSigner {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &fakeSigner{key: key, password: "pw"}
}

func (s *fakeSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *fakeSigner) Unlock(password string) error {
	if password != s.password {
		return errors.New("could not decrypt key with given password")
	}
	s.unlocked = true
	return nil
}

func (s *fakeSigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.unlocked {
		return nil, utils.ErrSignerLocked
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

type fakeCoordinator struct {
	next       uint64
	nextErr    error
	advanceErr error
	advanced   []uint64
}

var _ NonceCoordinator = &fakeCoordinator{}

func (c *fakeCoordinator) NextNonce(context.Context, common.Address) (uint64, error) {
	return c.next, c.nextErr
}

func (c *fakeCoordinator) Advance(_ common.Address, usedNonce uint64) error {
	if c.advanceErr != nil {
		return c.advanceErr
	}
	c.advanced = append(c.advanced, usedNonce)
	c.next = usedNonce + 1
	return nil
}

type fakeCandidates struct {
	rounds [][]common.Address
	calls  int
}

func (c *fakeCandidates) FetchCandidates(context.Context) ([]common.Address, error) {
	res := c.rounds[c.calls%len(c.rounds)]
	c.calls++
	return res, nil
}

func addr(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(0x1000 + i)))
}

func proofFor(i int) entities.Proof {
	return entities.Proof{
		common.BigToHash(big.NewInt(int64(i))),
		common.BigToHash(big.NewInt(int64(i * 7))),
	}
}

func testConfig() *ClaimConfig {
	return &ClaimConfig{
		Network:        "testnet",
		Sender:         testSender,
		KeyPassword:    "pw",
		GasPrice:       big.NewInt(1e9),
		GasPerAddress:  DefaultGasPerAddress,
		Rounds:         1,
		BatchSize:      10,
		MerkleMine:     testMerkleMine,
		MerkleMineBulk: testBulk,
		NetworkTimeout: time.Second,
	}
}
