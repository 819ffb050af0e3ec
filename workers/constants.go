package workers

import "time"

const (
	// DiscoveryMaxAttempts is the total number of tries of one account discovery, first one included
	DiscoveryMaxAttempts = 5

	DefaultGasPerAddress  = 170000
	DefaultBatchSize      = 20
	DefaultRounds         = 1
	DefaultNetworkTimeout = 60 * time.Second
	DefaultEthRPCURL      = "https://mainnet.infura.io"
	DefaultNonceDBPath    = "db/nonce"
	DefaultMerkleMine     = "0x8e306b005773bee6ba6a6e8972bc79d766cc15c8"
	DefaultMerkleMineBulk = "0x182EBF4C80B28efc45AD992ecBb9f730e31e8c7F"
	ClaimMinerWorkerID    = 1
	ClaimMinerWorkerName  = "Merkle Mine Claimer"
)
