package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/incognitochain/merklemine-workers/entities"
)

var ErrProofNotFound = errors.New("no merkle proof for address")

// FileProofSource serves proofs precomputed from the MerkleMine tree.
// The file maps addresses to their 0x-prefixed sibling hashes:
//
//	{"0xabc...": ["0x11...", "0x22..."]}
type FileProofSource struct {
	proofs map[common.Address]entities.Proof
}

func LoadFileProofSource(path string) (*FileProofSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Could not read proof file %v - with err: %w", path, err)
	}
	return ParseProofSource(raw)
}

func ParseProofSource(raw []byte) (*FileProofSource, error) {
	var entries map[string][]common.Hash
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("Could not parse proofs: %w", err)
	}

	proofs := make(map[common.Address]entities.Proof, len(entries))
	for addrStr, hashes := range entries {
		addr, err := ParseAddress(addrStr)
		if err != nil {
			return nil, err
		}
		proofs[addr] = entities.Proof(hashes)
	}
	return &FileProofSource{proofs: proofs}, nil
}

func (s *FileProofSource) Proof(addr common.Address) (entities.Proof, error) {
	proof, ok := s.proofs[addr]
	if !ok {
		return nil, fmt.Errorf("%w %v", ErrProofNotFound, NormalizeAddress(addr))
	}
	return proof, nil
}

func (s *FileProofSource) Len() int {
	return len(s.proofs)
}
