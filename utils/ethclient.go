package utils

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// BuildEthClient dials the ledger json-rpc endpoint
func BuildEthClient(rpcURL string, timeout time.Duration) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return ethclient.DialContext(ctx, rpcURL)
}
