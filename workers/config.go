package workers

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/incognitochain/merklemine-workers/utils"
)

// ClaimConfig is everything the claim miner needs; components never read the environment themselves
type ClaimConfig struct {
	AccountsEndpoint string
	EthRPCURL        string
	Network          string

	Sender      common.Address
	KeyLocation string
	KeyPassword string

	GasPrice      *big.Int
	GasPerAddress uint64
	Rounds        int
	BatchSize     int

	MerkleMine     common.Address
	MerkleMineBulk common.Address

	ProofFile   string
	NonceDBPath string

	DiscoveryRetryInterval time.Duration
	NetworkTimeout         time.Duration
	Frequency              int // in sec

	AlertWebhookURL string
	InfoWebhookURL  string
	MetricsAddr     string
}

// LoadClaimConfig reads the config through getenv, usually os.Getenv after godotenv.Load
func LoadClaimConfig(getenv func(string) string) (*ClaimConfig, error) {
	var err error
	cfg := &ClaimConfig{
		AccountsEndpoint: getenv("ACCOUNTS_ENDPOINT"),
		EthRPCURL:        stringOr(getenv("ETH_RPC_URL"), DefaultEthRPCURL),
		Network:          stringOr(getenv("ETH_NETWORK"), "mainnet"),
		KeyLocation:      getenv("KEY_LOCATION"),
		KeyPassword:      getenv("KEY_PASSWORD"),
		ProofFile:        getenv("PROOF_FILE"),
		NonceDBPath:      stringOr(getenv("NONCE_DB_PATH"), DefaultNonceDBPath),
		AlertWebhookURL:  getenv("ALERT_WEBHOOK_URL"),
		InfoWebhookURL:   getenv("INFO_WEBHOOK_URL"),
		MetricsAddr:      getenv("METRICS_ADDR"),
	}

	for name, value := range map[string]string{
		"ACCOUNTS_ENDPOINT": cfg.AccountsEndpoint,
		"KEY_LOCATION":      cfg.KeyLocation,
		"PROOF_FILE":        cfg.ProofFile,
	} {
		if value == "" {
			return nil, fmt.Errorf("%v is required", name)
		}
	}

	if cfg.Sender, err = requireAddress(getenv, "YOUR_ADDRESS", ""); err != nil {
		return nil, err
	}
	if cfg.MerkleMine, err = requireAddress(getenv, "MERKLE_MINE_ADDRESS", DefaultMerkleMine); err != nil {
		return nil, err
	}
	if cfg.MerkleMineBulk, err = requireAddress(getenv, "MERKLE_MINE_BULK_ADDRESS", DefaultMerkleMineBulk); err != nil {
		return nil, err
	}

	gasPriceStr := getenv("GAS_PRICE")
	gasPrice, ok := new(big.Int).SetString(gasPriceStr, 10)
	if !ok || gasPrice.Sign() <= 0 {
		return nil, fmt.Errorf("GAS_PRICE must be a positive integer in wei, got %q", gasPriceStr)
	}
	cfg.GasPrice = gasPrice

	if cfg.Rounds, err = intOr(getenv, "NUMBER_OF_LOOPS", DefaultRounds, 0); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = intOr(getenv, "NUMBER_ADDRESS_PER_TXN", DefaultBatchSize, 1); err != nil {
		return nil, err
	}
	if cfg.Frequency, err = intOr(getenv, "WORKER_FREQUENCY", 0, 0); err != nil {
		return nil, err
	}
	gasPerAddress, err := intOr(getenv, "GAS_PER_ADDRESS", DefaultGasPerAddress, 1)
	if err != nil {
		return nil, err
	}
	cfg.GasPerAddress = uint64(gasPerAddress)

	if cfg.DiscoveryRetryInterval, err = durationOr(getenv, "DISCOVERY_RETRY_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.NetworkTimeout, err = durationOr(getenv, "NETWORK_TIMEOUT", DefaultNetworkTimeout); err != nil {
		return nil, err
	}
	if cfg.NetworkTimeout <= 0 {
		return nil, fmt.Errorf("NETWORK_TIMEOUT must be positive")
	}

	return cfg, nil
}

func stringOr(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func requireAddress(getenv func(string) string, name string, def string) (common.Address, error) {
	value := stringOr(getenv(name), def)
	if value == "" {
		return common.Address{}, fmt.Errorf("%v is required", name)
	}
	addr, err := utils.ParseAddress(value)
	if err != nil {
		return common.Address{}, fmt.Errorf("%v: %w", name, err)
	}
	return addr, nil
}

func intOr(getenv func(string) string, name string, def int, min int) (int, error) {
	value := getenv(name)
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%v must be an integer, got %q", name, value)
	}
	if n < min {
		return 0, fmt.Errorf("%v must be at least %d, got %d", name, min, n)
	}
	return n, nil
}

func durationOr(getenv func(string) string, name string, def time.Duration) (time.Duration, error) {
	value := getenv(name)
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%v must be a duration, got %q", name, value)
	}
	if d < 0 {
		return 0, fmt.Errorf("%v must not be negative", name)
	}
	return d, nil
}
