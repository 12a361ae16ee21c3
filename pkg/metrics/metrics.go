package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_indexer",
		Name:      "events_processed_total",
		Help:      "Events applied to the read-model, by service and event name",
	}, []string{"service", "event"})

	ChunksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_indexer",
		Name:      "sync_chunks_processed_total",
		Help:      "Backfill chunks fully processed, by service",
	}, []string{"service"})

	SyncLag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "market_indexer",
		Name:      "sync_lag_blocks",
		Help:      "Distance between the chain head and the sync cursor, by service",
	}, []string{"service"})

	ChunkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "market_indexer",
		Name:      "sync_chunk_duration_seconds",
		Help:      "Histogram for time to query and apply one backfill chunk",
		Buckets:   prometheus.DefBuckets,
	})

	MetadataRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market_indexer",
		Name:      "metadata_retries_total",
		Help:      "Retried metadata resolver calls",
	})

	MetadataFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market_indexer",
		Name:      "metadata_failures_total",
		Help:      "Metadata lookups that failed after all retry attempts",
	})

	RPCRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market_indexer",
		Name:      "rpc_retries_total",
		Help:      "Retried chain RPC calls",
	})

	SnipeExtensions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market_indexer",
		Name:      "snipe_extensions_total",
		Help:      "Auction end times extended by the anti-snipe rule",
	})
)
