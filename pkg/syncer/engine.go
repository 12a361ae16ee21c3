// Package syncer implements the pull-based backfill path: it replays
// historical contract logs in bounded chunks and advances a durable
// per-service cursor as each chunk lands.
package syncer

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/chain"
	"github.com/veilmarket/market-indexer/pkg/metrics"
	"github.com/veilmarket/market-indexer/pkg/store"
)

const (
	// QuerySpan is the upstream RPC ceiling on eth_getLogs block ranges.
	QuerySpan uint64 = 90
	// CoarseSpan bounds one cursor-advance stride during the startup
	// full sync; each coarse stride is re-split into QuerySpan queries.
	CoarseSpan uint64 = 10_000
	// IncrementalSpan bounds how many blocks one timer-driven sync cycle
	// may cover. A larger gap is drained over successive cycles.
	IncrementalSpan uint64 = 100
	// SeedLag seeds a fresh cursor to head-SeedLag so the initial
	// backfill cost is bounded.
	SeedLag uint64 = 1000

	defaultChunkDelay = 200 * time.Millisecond
)

// Handler applies one decoded contract log to the read-model.
type Handler interface {
	Service() string
	HandleLog(ctx context.Context, lg ethtypes.Log, skipExisting bool) error
}

// Engine reconciles one contract's history for one service name.
type Engine struct {
	service    string
	client     chain.Client
	store      store.Storer
	handler    Handler
	contract   common.Address
	chunkDelay time.Duration
	logger     *zap.SugaredLogger
}

func NewEngine(client chain.Client, storer store.Storer, handler Handler, contract common.Address, chunkDelay time.Duration, zapLogger *zap.Logger) *Engine {
	if chunkDelay <= 0 {
		chunkDelay = defaultChunkDelay
	}
	return &Engine{
		service:    handler.Service(),
		client:     client,
		store:      storer,
		handler:    handler,
		contract:   contract,
		chunkDelay: chunkDelay,
		logger:     zapLogger.Sugar(),
	}
}

// FullSync walks the whole gap between the cursor and the current head.
// Used once at process start before the live subscription takes over.
func (e *Engine) FullSync(ctx context.Context) error {
	head, last, err := e.bounds(ctx)
	if err != nil {
		return err
	}
	if head <= last {
		return nil
	}

	e.logger.Infow("full sync starting", "service", e.service, "from", last+1, "to", head)
	for _, stride := range SplitRange(last+1, head, CoarseSpan) {
		if err := e.syncRange(ctx, stride.From, stride.To); err != nil {
			return err
		}
	}
	return nil
}

// IncrementalSync corrects steady-state drift alongside the live
// subscriber, at most IncrementalSpan blocks per cycle. The cycle always
// resumes at the cursor, never past it: a gap left by an aborted startup
// sync is drained cycle by cycle instead of being skipped.
func (e *Engine) IncrementalSync(ctx context.Context) error {
	head, last, err := e.bounds(ctx)
	if err != nil {
		return err
	}
	if head <= last {
		return nil
	}

	to := head
	if to > last+IncrementalSpan {
		to = last + IncrementalSpan
	}
	return e.syncRange(ctx, last+1, to)
}

// bounds fetches the chain head and the cursor, seeding the cursor on
// first contact.
func (e *Engine) bounds(ctx context.Context) (head uint64, last uint64, err error) {
	head, err = chain.HeadBlock(ctx, e.client, e.logger)
	if err != nil {
		return 0, 0, err
	}

	last, ok, err := e.store.LastSyncedBlock(ctx, e.service)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		last = 0
		if head > SeedLag {
			last = head - SeedLag
		}
		if err := e.store.SeedCursor(ctx, e.service, last); err != nil {
			return 0, 0, err
		}
	}

	metrics.SyncLag.WithLabelValues(e.service).Set(float64(head - last))
	return head, last, nil
}

// syncRange processes [from, to] in ascending QuerySpan chunks. The
// cursor is advanced to each chunk's upper bound only after its writes
// land, so a crash mid-range resumes at the first unprocessed chunk. Any
// error aborts the range without advancing past the failed chunk; the
// next cycle retries the same blocks.
func (e *Engine) syncRange(ctx context.Context, from, to uint64) error {
	for _, chunk := range SplitRange(from, to, QuerySpan) {
		if err := e.processChunk(ctx, chunk); err != nil {
			return errors.Wrapf(err, "chunk [%d, %d] failed for service %s", chunk.From, chunk.To, e.service)
		}

		if err := e.store.AdvanceCursor(ctx, e.service, chunk.To); err != nil {
			return err
		}
		metrics.ChunksProcessed.WithLabelValues(e.service).Inc()

		// Pause between queries so the upstream does not rate-limit us.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.chunkDelay):
		}
	}
	return nil
}

func (e *Engine) processChunk(ctx context.Context, chunk Chunk) error {
	start := time.Now()

	logs, err := e.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(chunk.From),
		ToBlock:   new(big.Int).SetUint64(chunk.To),
		Addresses: []common.Address{e.contract},
	})
	if err != nil {
		return errors.Wrap(err, "could not query logs")
	}

	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		if err := e.handler.HandleLog(ctx, lg, true); err != nil {
			return err
		}
	}

	metrics.ChunkDuration.Observe(time.Since(start).Seconds())
	e.logger.Debugw("chunk processed", "service", e.service, "from", chunk.From, "to", chunk.To, "logs", len(logs))
	return nil
}
