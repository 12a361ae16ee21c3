// Package live maintains the push-based path: a standing log
// subscription to both contracts, feeding a bounded queue drained by a
// fixed pool of handler workers. The live path advances no cursor; a
// dropped event is recovered by the next backfill cycle.
package live

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/chain"
)

const (
	defaultQueueSize = 64
	defaultWorkers   = 4
)

// Handler applies one decoded contract log to the read-model.
type Handler interface {
	HandleLog(ctx context.Context, lg ethtypes.Log, skipExisting bool) error
}

type Subscriber struct {
	client    chain.Client
	handlers  map[common.Address]Handler
	queueSize int
	workers   int
	logger    *zap.SugaredLogger
}

func NewSubscriber(client chain.Client, handlers map[common.Address]Handler, zapLogger *zap.Logger) *Subscriber {
	return &Subscriber{
		client:    client,
		handlers:  handlers,
		queueSize: defaultQueueSize,
		workers:   defaultWorkers,
		logger:    zapLogger.Sugar(),
	}
}

// Run blocks until the context is cancelled or the subscription dies.
// A dead subscription is fatal: the caller exits and process supervision
// restarts us, at which point the full sync covers the gap.
func (s *Subscriber) Run(ctx context.Context) error {
	addresses := make([]common.Address, 0, len(s.handlers))
	for address := range s.handlers {
		addresses = append(addresses, address)
	}

	incoming := make(chan ethtypes.Log, s.queueSize)
	sub, err := s.client.SubscribeFilterLogs(ctx, ethereum.FilterQuery{Addresses: addresses}, incoming)
	if err != nil {
		return errors.Wrap(err, "could not subscribe to contract logs")
	}
	defer sub.Unsubscribe()

	// The queue between the subscription and the workers is bounded, so
	// an event burst backs up into the channel instead of fanning out
	// unbounded concurrent metadata fetches and writes.
	queue := make(chan ethtypes.Log, s.queueSize)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work(ctx, queue)
		}()
	}
	defer wg.Wait()
	defer close(queue)

	s.logger.Infow("live subscriber running", "contracts", len(addresses), "workers", s.workers)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return errors.Wrap(err, "log subscription failed")
		case lg := <-incoming:
			select {
			case queue <- lg:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (s *Subscriber) work(ctx context.Context, queue <-chan ethtypes.Log) {
	for lg := range queue {
		if lg.Removed {
			continue
		}
		handler, ok := s.handlers[lg.Address]
		if !ok {
			s.logger.Warnw("log from unexpected address", "address", lg.Address.Hex())
			continue
		}
		// Failures here are logged and dropped; the record stays absent
		// until a backfill cycle re-attempts it.
		if err := handler.HandleLog(ctx, lg, false); err != nil {
			s.logger.Warnw("could not apply live event", "address", lg.Address.Hex(), "block", lg.BlockNumber, "error", err)
		}
	}
}
