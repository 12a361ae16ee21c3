// Package indexer is the composition root: it wires the chain clients,
// store, metadata resolver, backfill engines, live subscriber, and API
// server into one service with an explicit start/stop lifecycle.
package indexer

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/api"
	"github.com/veilmarket/market-indexer/pkg/chain"
	"github.com/veilmarket/market-indexer/pkg/index"
	"github.com/veilmarket/market-indexer/pkg/live"
	"github.com/veilmarket/market-indexer/pkg/metadata"
	"github.com/veilmarket/market-indexer/pkg/store"
	"github.com/veilmarket/market-indexer/pkg/syncer"
)

var ErrAlreadyStarted = errors.New("indexer service was already started")

type Service struct {
	logger        *zap.Logger
	networkConfig *NetworkConfig
	syncConfig    *SyncConfig

	store         *store.PostgresStore
	apiServer     *api.Server
	auctionEngine *syncer.Engine
	marketEngine  *syncer.Engine
	subscriber    *live.Subscriber

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	fatal   chan error
}

func New(ctx context.Context, config *Config, zapLogger *zap.Logger) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	logger := zapLogger.Sugar()

	rpcClient, err := chain.Dial(ctx, config.Eth.RPCEndpoint)
	if err != nil {
		return nil, err
	}
	wsClient, err := chain.Dial(ctx, config.Eth.WSEndpoint)
	if err != nil {
		return nil, err
	}

	pgStore, err := store.NewPostgresStore(config.Store.Dsn, zapLogger)
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to postgres")
	}

	resolver, err := metadata.NewCachingResolver(
		metadata.NewHTTPResolver(config.Metadata.Endpoint, zapLogger),
		config.Metadata.CacheSize,
	)
	if err != nil {
		return nil, err
	}

	auctionAddress := common.HexToAddress(config.Contracts.Auction)
	marketAddress := common.HexToAddress(config.Contracts.Market)

	auctionIndexer := index.NewAuctionIndexer(pgStore, resolver, zapLogger)
	marketIndexer := index.NewMarketIndexer(pgStore, resolver, zapLogger)

	chunkDelay := time.Duration(0)
	if config.Sync != nil {
		chunkDelay = config.Sync.ChunkDelay
	}

	service := &Service{
		logger:        zapLogger,
		networkConfig: config.Network,
		syncConfig:    config.Sync,
		store:         pgStore,
		apiServer:     api.New(config.Api, zapLogger),
		auctionEngine: syncer.NewEngine(rpcClient, pgStore, auctionIndexer, auctionAddress, chunkDelay, zapLogger),
		marketEngine:  syncer.NewEngine(rpcClient, pgStore, marketIndexer, marketAddress, chunkDelay, zapLogger),
		subscriber: live.NewSubscriber(wsClient, map[common.Address]live.Handler{
			auctionAddress: auctionIndexer,
			marketAddress:  marketIndexer,
		}, zapLogger),
		done:  make(chan struct{}),
		fatal: make(chan error, 1),
	}

	logger.Infof("indexer configured for %s network", config.Network.Name)
	return service, nil
}

// Start launches the API server, the startup full sync, the incremental
// timers, and the live subscription. It returns immediately; fatal
// runtime failures are delivered on Err.
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		err := s.apiServer.Run(runCtx)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(errors.Wrap(err, "API server failed"))
		}
	}()
	go s.run(runCtx)

	return nil
}

// Stop cancels all activities and waits for them to drain.
func (s *Service) Stop() {
	if !s.running.Load() {
		return
	}
	s.cancel()
	if err := s.apiServer.Shutdown(); err != nil {
		s.logger.Sugar().Warnf("error shutting down API server: %v", err)
	}
	<-s.done
	s.running.Store(false)
}

func (s *Service) Running() bool {
	return s.running.Load()
}

// Err delivers the first fatal runtime error. Recovery is external:
// the process exits non-zero and supervision restarts it.
func (s *Service) Err() <-chan error {
	return s.fatal
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)
	logger := s.logger.Sugar()

	// Catch up before the live path takes over steady state. A failed
	// chunk left the cursor behind it, so the next cycle retries the
	// same range.
	if err := s.auctionEngine.FullSync(ctx); err != nil {
		logger.Warnf("auction full sync aborted: %v", err)
	}
	if err := s.marketEngine.FullSync(ctx); err != nil {
		logger.Warnf("market full sync aborted: %v", err)
	}

	go s.runIncremental(ctx, s.auctionEngine, 0)
	go s.runIncremental(ctx, s.marketEngine, s.syncConfig.marketStagger())

	if err := s.subscriber.Run(ctx); err != nil {
		s.fail(errors.Wrap(err, "live subscription lost"))
	}
}

func (s *Service) runIncremental(ctx context.Context, engine *syncer.Engine, stagger time.Duration) {
	logger := s.logger.Sugar()

	if stagger > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(stagger):
		}
	}

	ticker := time.NewTicker(s.syncConfig.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := engine.IncrementalSync(ctx); err != nil {
				logger.Warnf("incremental sync cycle failed: %v", err)
			}
		}
	}
}

func (s *Service) fail(err error) {
	select {
	case s.fatal <- err:
	default:
	}
}
