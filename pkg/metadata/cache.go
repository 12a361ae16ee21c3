package metadata

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/veilmarket/market-indexer/pkg/types"
)

const defaultCacheSize = 4096

// CachingResolver memoizes successful lookups. Failures are never
// cached, so the next cycle re-attempts them.
type CachingResolver struct {
	inner Resolver
	cache *lru.Cache
}

func NewCachingResolver(inner Resolver, size int) (*CachingResolver, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachingResolver{inner: inner, cache: cache}, nil
}

func (r *CachingResolver) Resolve(ctx context.Context, contract string, tokenID string) (*types.TokenMetadata, error) {
	key := contract + "/" + tokenID
	if cached, ok := r.cache.Get(key); ok {
		meta := cached.(types.TokenMetadata)
		return &meta, nil
	}

	meta, err := r.inner.Resolve(ctx, contract, tokenID)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, *meta)
	return meta, nil
}
