package entities

import (
	"github.com/ethereum/go-ethereum/common"
)

// ClaimBatch holds the addresses to claim in one multiGenerate call and their proofs.
// Addresses[i] is proven by Proofs[i]; insertion order is the on-chain processing order.
type ClaimBatch struct {
	Addresses []common.Address
	Proofs    []Proof
}

func NewClaimBatch(capacity int) *ClaimBatch {
	if capacity < 0 {
		capacity = 0
	}
	return &ClaimBatch{
		Addresses: make([]common.Address, 0, capacity),
		Proofs:    make([]Proof, 0, capacity),
	}
}

func (b *ClaimBatch) Add(addr common.Address, proof Proof) {
	b.Addresses = append(b.Addresses, addr)
	b.Proofs = append(b.Proofs, proof)
}

func (b *ClaimBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Addresses)
}

func (b *ClaimBatch) IsFull(maxSize int) bool {
	return b.Len() >= maxSize
}

// ProofBytes returns the raw bytes of every proof, in address order
func (b *ClaimBatch) ProofBytes() [][]byte {
	res := make([][]byte, 0, len(b.Proofs))
	for _, p := range b.Proofs {
		res = append(res, p.Bytes())
	}
	return res
}
