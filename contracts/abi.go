package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const MerkleMineABI = `[
	{
		"constant": true,
		"inputs": [{"name": "", "type": "address"}],
		"name": "generated",
		"outputs": [{"name": "", "type": "bool"}],
		"payable": false,
		"stateMutability": "view",
		"type": "function"
	}
]`

const MerkleMineBulkABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "_merkleMineContract", "type": "address"},
			{"name": "_recipients", "type": "address[]"},
			{"name": "_merkleProofs", "type": "bytes"}
		],
		"name": "multiGenerate",
		"outputs": [],
		"payable": false,
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const (
	GeneratedMethod     = "generated"
	MultiGenerateMethod = "multiGenerate"
)

var (
	merkleMineABI     = mustParseABI(MerkleMineABI)
	merkleMineBulkABI = mustParseABI(MerkleMineBulkABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

func MerkleMine() abi.ABI {
	return merkleMineABI
}

func MerkleMineBulk() abi.ABI {
	return merkleMineBulkABI
}
