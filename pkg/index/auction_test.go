package index_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/index"
	"github.com/veilmarket/market-indexer/pkg/store"
	"github.com/veilmarket/market-indexer/pkg/types"
)

func newAuctionFixture() (*index.AuctionIndexer, *store.MemoryStore, *fakeResolver) {
	memStore := store.NewMemoryStore()
	resolver := &fakeResolver{}
	return index.NewAuctionIndexer(memStore, resolver, zap.NewNop()), memStore, resolver
}

func TestAuctionTypeMapping(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	end := time.Now().Unix() + 3600
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 42, 0, 7, nil, eth(1), end, "single piece"), false))
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 42, 1, 0, []uint64{7, 8}, eth(3), end, "the bundle"), false))

	// The same numeric id yields two independent rows, one per type.
	single, err := memStore.GetAuction(ctx, 42, types.AuctionTypeSingle)
	require.NoError(t, err)
	require.NotNil(t, single)
	require.Equal(t, []string{"7"}, single.TokenIDs)
	require.Equal(t, "1", single.StartingPrice)
	require.Equal(t, "single piece", single.Title)
	require.Equal(t, types.AuctionStatusActive, single.Status)

	bundle, err := memStore.GetAuction(ctx, 42, types.AuctionTypeBundle)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	require.Equal(t, []string{"7", "8"}, bundle.TokenIDs)
	require.Len(t, bundle.Items, 2)
	require.Equal(t, 2, memStore.AuctionCount())
}

func TestAuctionCreatedReplayKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	ix, memStore, resolver := newAuctionFixture()

	end := time.Now().Unix() + 3600
	lg := auctionCreatedLog(t, 9, 0, 3, nil, eth(2), end, "replayed")

	// Once via the live path, once via a backfill replay.
	require.NoError(t, ix.HandleLog(ctx, lg, false))
	require.NoError(t, ix.HandleLog(ctx, lg, true))
	require.Equal(t, 1, memStore.AuctionCount())

	// The backfill short-circuit must not have re-fetched metadata.
	require.Equal(t, 1, resolver.calls)

	// Even without the short-circuit the insert stays conflict-safe.
	require.NoError(t, ix.HandleLog(ctx, lg, false))
	require.Equal(t, 1, memStore.AuctionCount())
}

func TestMetadataFailureSkipsAuction(t *testing.T) {
	ctx := context.Background()
	ix, memStore, resolver := newAuctionFixture()
	resolver.fail = map[string]bool{"3": true}

	end := time.Now().Unix() + 3600
	err := ix.HandleLog(ctx, auctionCreatedLog(t, 5, 0, 3, nil, eth(1), end, "unresolvable"), false)
	require.Error(t, err)
	require.Equal(t, 0, memStore.AuctionCount())
}

func TestBundleMetadataFailureWritesNoPartialAuction(t *testing.T) {
	ctx := context.Background()
	ix, memStore, resolver := newAuctionFixture()
	resolver.fail = map[string]bool{"8": true}

	end := time.Now().Unix() + 3600
	err := ix.HandleLog(ctx, auctionCreatedLog(t, 6, 1, 0, []uint64{7, 8, 9}, eth(3), end, "bundle"), false)
	require.Error(t, err)
	require.Equal(t, 0, memStore.AuctionCount())

	exists, err := memStore.AuctionExists(ctx, 6, types.AuctionTypeBundle)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestEmptyBundleAuctionIsSkipped(t *testing.T) {
	ctx := context.Background()
	ix, memStore, resolver := newAuctionFixture()

	// A bundle with no token ids can never resolve; it is dropped
	// instead of failing the same backfill chunk forever.
	end := time.Now().Unix() + 3600
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 30, 1, 0, nil, eth(1), end, "empty bundle"), false))
	require.Equal(t, 0, memStore.AuctionCount())
	require.Equal(t, 0, resolver.calls)
}

func TestBidInsideWindowExtendsEndTime(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	now := time.Now().Unix()
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 11, 0, 1, nil, eth(1), now+300, "closing soon"), false))

	require.NoError(t, ix.HandleLog(ctx, bidPlacedLog(t, 11, now), false))

	auction, err := memStore.GetAuction(ctx, 11, types.AuctionTypeSingle)
	require.NoError(t, err)
	require.Equal(t, now+600, auction.EndTime)
	require.Equal(t, uint64(1), auction.TotalBids)
}

func TestBidOutsideWindowOnlyCounts(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	now := time.Now().Unix()
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 12, 0, 1, nil, eth(1), now+900, "plenty of time"), false))

	require.NoError(t, ix.HandleLog(ctx, bidPlacedLog(t, 12, now), false))

	auction, err := memStore.GetAuction(ctx, 12, types.AuctionTypeSingle)
	require.NoError(t, err)
	require.Equal(t, now+900, auction.EndTime)
	require.Equal(t, uint64(1), auction.TotalBids)
}

func TestBidWithoutActiveAuctionIsAbsorbed(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	require.NoError(t, ix.HandleLog(ctx, bidPlacedLog(t, 404, time.Now().Unix()), false))
	require.Equal(t, 0, memStore.AuctionCount())
}

func TestFinalizeStopsBidCounting(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	now := time.Now().Unix()
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 13, 0, 1, nil, eth(1), now+300, "ending"), false))
	require.NoError(t, ix.HandleLog(ctx, auctionFinalizedLog(t, 13, eth(2)), false))

	auction, err := memStore.GetAuction(ctx, 13, types.AuctionTypeSingle)
	require.NoError(t, err)
	require.Equal(t, types.AuctionStatusFinalized, auction.Status)
	require.NotNil(t, auction.ReclaimNFT)

	// A late bid against a finalized auction must not mutate the row.
	require.NoError(t, ix.HandleLog(ctx, bidPlacedLog(t, 13, now), false))
	auction, err = memStore.GetAuction(ctx, 13, types.AuctionTypeSingle)
	require.NoError(t, err)
	require.Equal(t, uint64(0), auction.TotalBids)
	require.Equal(t, now+300, auction.EndTime)
}

func TestClaimFlags(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	now := time.Now().Unix()
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 14, 0, 1, nil, eth(1), now+300, "claims"), false))
	require.NoError(t, ix.HandleLog(ctx, auctionFinalizedLog(t, 14, eth(2)), false))
	require.NoError(t, ix.HandleLog(ctx, nftClaimedLog(t, 14, eth(2)), false))
	require.NoError(t, ix.HandleLog(ctx, nftReclaimedLog(t, 14), false))

	auction, err := memStore.GetAuction(ctx, 14, types.AuctionTypeSingle)
	require.NoError(t, err)
	require.True(t, auction.NFTClaimed)
	require.True(t, auction.NFTReclaimed)
}

func TestCancelRemovesBothTypeRows(t *testing.T) {
	ctx := context.Background()
	ix, memStore, _ := newAuctionFixture()

	end := time.Now().Unix() + 3600
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 21, 0, 5, nil, eth(1), end, "s"), false))
	require.NoError(t, ix.HandleLog(ctx, auctionCreatedLog(t, 21, 1, 0, []uint64{5, 6}, eth(2), end, "b"), false))
	require.Equal(t, 2, memStore.AuctionCount())

	require.NoError(t, ix.HandleLog(ctx, auctionCancelledLog(t, 21, "seller changed mind"), false))
	require.Equal(t, 0, memStore.AuctionCount())

	// Cancelling an id with no rows is a no-op, not an error.
	require.NoError(t, ix.HandleLog(ctx, auctionCancelledLog(t, 21, "again"), false))
}
