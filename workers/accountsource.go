package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	resty "github.com/go-resty/resty/v2"
	"github.com/incognitochain/merklemine-workers/entities"
	"github.com/incognitochain/merklemine-workers/utils"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// ErrDiscoveryExhausted means no candidate list could be fetched; the claim run cannot go on
var ErrDiscoveryExhausted = errors.New("account discovery exhausted")

// AccountSource pulls batches of candidate addresses from the discovery endpoint
type AccountSource struct {
	endpoint      string
	client        *resty.Client
	maxAttempts   int
	retryInterval time.Duration
	logger        *logrus.Entry
}

func NewAccountSource(endpoint string, timeout time.Duration, retryInterval time.Duration, logger *logrus.Entry) *AccountSource {
	return &AccountSource{
		endpoint:      endpoint,
		client:        resty.New().SetTimeout(timeout),
		maxAttempts:   DiscoveryMaxAttempts,
		retryInterval: retryInterval,
		logger:        logger,
	}
}

// FetchCandidates tries the endpoint up to DiscoveryMaxAttempts times in a row.
// Exhausting the attempts returns an error wrapping ErrDiscoveryExhausted.
func (s *AccountSource) FetchCandidates(ctx context.Context) ([]common.Address, error) {
	constant := retry.BackoffFunc(func() (time.Duration, bool) {
		return s.retryInterval, false
	})
	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), constant)

	var accounts []common.Address
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		res, err := s.fetchAndParse(ctx)
		if err != nil {
			discoveryFailures.Inc()
			s.logger.Warnf("Could not fetch and parse accounts (attempt %d/%d), endpoint probably returned bad data or failed to respond - with err: %v",
				attempt, s.maxAttempts, err)
			return retry.RetryableError(err)
		}
		accounts = res
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
		}
		return nil, fmt.Errorf("%w: tried %d times - last err: %v", ErrDiscoveryExhausted, attempt, err)
	}

	candidatesFound.Add(float64(len(accounts)))
	s.logger.Infof("Got %d accounts to mine.", len(accounts))
	return accounts, nil
}

func (s *AccountSource) fetchAndParse(ctx context.Context) ([]common.Address, error) {
	response, err := s.client.R().SetContext(ctx).Get(s.endpoint)
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("Response status code: %v", response.StatusCode())
	}

	rawAccounts, err := parseAccountList(response.Body())
	if err != nil {
		return nil, err
	}

	accounts := make([]common.Address, 0, len(rawAccounts))
	for _, raw := range rawAccounts {
		addr, err := utils.ParseAddress(raw)
		if err != nil {
			s.logger.Warnf("Dropping candidate: %v", err)
			continue
		}
		accounts = append(accounts, addr)
	}
	return accounts, nil
}

// parseAccountList accepts either a bare JSON array of addresses or the
// API gateway envelope whose body field holds that array as a string
func parseAccountList(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	var accounts []string
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &accounts); err != nil {
			return nil, fmt.Errorf("Could not parse response: %v", err)
		}
		return accounts, nil
	}

	var envelope entities.RandomAccountsRes
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("Could not parse response: %v", err)
	}
	if envelope.Body == "" {
		return nil, errors.New("Response has no account list")
	}
	if err := json.Unmarshal([]byte(envelope.Body), &accounts); err != nil {
		return nil, fmt.Errorf("Could not parse response body: %v", err)
	}
	return accounts, nil
}
