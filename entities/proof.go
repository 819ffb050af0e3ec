package entities

import (
	"github.com/ethereum/go-ethereum/common"
)

// Proof is a Merkle inclusion path: sibling hashes ordered from the leaf up
type Proof []common.Hash

// Bytes concatenates the proof hashes in order
func (p Proof) Bytes() []byte {
	res := make([]byte, 0, len(p)*common.HashLength)
	for _, h := range p {
		res = append(res, h.Bytes()...)
	}
	return res
}
