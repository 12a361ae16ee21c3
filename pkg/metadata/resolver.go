package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/metrics"
	"github.com/veilmarket/market-indexer/pkg/types"
)

const (
	clientTimeout  = 10 * time.Second
	retryAttempts  = 3
	retryBaseDelay = 200 * time.Millisecond
)

// Resolver fetches descriptive metadata for one token. A failed lookup
// for any token in a record causes the whole record to be skipped, so
// implementations must return an error rather than partial data.
type Resolver interface {
	Resolve(ctx context.Context, contract string, tokenID string) (*types.TokenMetadata, error)
}

type tokenInfo struct {
	Name string `json:"name"`
}

type response struct {
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Token       tokenInfo `json:"token"`
}

type HTTPResolver struct {
	endpoint string
	client   *http.Client
	logger   *zap.SugaredLogger
}

func NewHTTPResolver(endpoint string, zapLogger *zap.Logger) *HTTPResolver {
	return &HTTPResolver{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: clientTimeout,
		},
		logger: zapLogger.Sugar(),
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, contract string, tokenID string) (*types.TokenMetadata, error) {
	url := fmt.Sprintf("%s/%s/%s", r.endpoint, contract, tokenID)

	var decoded response
	err := retry.Do(
		func() error {
			return r.fetch(ctx, url, &decoded)
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryBaseDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			metrics.MetadataRetries.Inc()
			r.logger.Warnw("retrying metadata lookup", "url", url, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		metrics.MetadataFailures.Inc()
		return nil, errors.Wrapf(err, "could not resolve metadata for %s/%s", contract, tokenID)
	}

	return &types.TokenMetadata{
		Name:        decoded.Name,
		Image:       decoded.Image,
		Description: decoded.Description,
		Collection:  decoded.Token.Name,
	}, nil
}

func (r *HTTPResolver) fetch(ctx context.Context, url string, out *response) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata resolver returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
