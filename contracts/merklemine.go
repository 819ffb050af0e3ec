package contracts

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// MerkleMineVerifier answers whether an allocation was already generated on-chain
type MerkleMineVerifier struct {
	contract *bind.BoundContract
}

func NewMerkleMineVerifier(address common.Address, caller bind.ContractCaller) *MerkleMineVerifier {
	return &MerkleMineVerifier{
		contract: bind.NewBoundContract(address, merkleMineABI, caller, nil, nil),
	}
}

func (v *MerkleMineVerifier) IsGenerated(ctx context.Context, recipient common.Address) (bool, error) {
	var out []interface{}
	err := v.contract.Call(&bind.CallOpts{Context: ctx}, &out, GeneratedMethod, recipient)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("unexpected %d return values from %v", len(out), GeneratedMethod)
	}
	generated, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected return type %T from %v", out[0], GeneratedMethod)
	}
	return generated, nil
}

// PackMultiGenerate builds the call data of MerkleMineBulk.multiGenerate
func PackMultiGenerate(merkleMine common.Address, recipients []common.Address, merkleProofs []byte) ([]byte, error) {
	return merkleMineBulkABI.Pack(MultiGenerateMethod, merkleMine, recipients, merkleProofs)
}
