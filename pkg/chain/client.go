package chain

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/metrics"
)

const (
	headRetryAttempts = 3
	headRetryDelay    = 250 * time.Millisecond
)

// Client is the slice of the Ethereum RPC surface the indexer needs.
// *ethclient.Client satisfies it.
type Client interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- ethtypes.Log) (ethereum.Subscription, error)
}

// Dial connects to an Ethereum endpoint (HTTP for the sync paths, WS for
// the live subscription).
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "could not dial eth endpoint %s", endpoint)
	}
	return client, nil
}

// HeadBlock fetches the current chain head with a small bounded retry so
// one flaky RPC response does not abort a whole sync cycle.
func HeadBlock(ctx context.Context, client Client, logger *zap.SugaredLogger) (uint64, error) {
	var head uint64
	err := retry.Do(
		func() error {
			var err error
			head, err = client.BlockNumber(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(headRetryAttempts),
		retry.Delay(headRetryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			metrics.RPCRetries.Inc()
			logger.Warnw("retrying head fetch", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return 0, errors.Wrap(err, "could not fetch chain head")
	}
	return head, nil
}
