// Package index holds the per-event handlers shared by the live
// subscriber and the backfill engine. Every handler is order-independent
// and safe to replay: inserts are conflict-ignoring, everything else is
// an unconditional update or delete.
package index

import (
	"context"
	"time"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/contracts"
	"github.com/veilmarket/market-indexer/pkg/metadata"
	"github.com/veilmarket/market-indexer/pkg/metrics"
	"github.com/veilmarket/market-indexer/pkg/store"
	"github.com/veilmarket/market-indexer/pkg/types"
)

type AuctionIndexer struct {
	store    store.Storer
	resolver metadata.Resolver
	logger   *zap.SugaredLogger
}

func NewAuctionIndexer(storer store.Storer, resolver metadata.Resolver, zapLogger *zap.Logger) *AuctionIndexer {
	return &AuctionIndexer{
		store:    storer,
		resolver: resolver,
		logger:   zapLogger.Sugar(),
	}
}

func (ix *AuctionIndexer) Service() string {
	return store.ServiceAuction
}

// HandleLog decodes one auction-contract log and applies it. With
// skipExisting set (backfill), records already present are skipped before
// any metadata fetch. Errors propagate to the caller, which decides
// whether to drop the event (live path) or abort the chunk (backfill).
func (ix *AuctionIndexer) HandleLog(ctx context.Context, lg ethtypes.Log, skipExisting bool) error {
	decoded, err := contracts.DecodeAuctionLog(lg)
	if err != nil {
		return err
	}

	switch ev := decoded.(type) {
	case *contracts.AuctionCreated:
		return ix.handleCreated(ctx, ev, skipExisting)
	case *contracts.BidPlaced:
		return ix.handleBid(ctx, ev)
	case *contracts.AuctionFinalized:
		return ix.handleFinalized(ctx, ev)
	case *contracts.AuctionCancelled:
		return ix.handleCancelled(ctx, ev)
	case *contracts.NFTClaimed:
		return ix.handleClaimed(ctx, ev)
	case *contracts.NFTReclaimed:
		return ix.handleReclaimed(ctx, ev)
	default:
		return errors.Errorf("unhandled auction event %T", decoded)
	}
}

func (ix *AuctionIndexer) handleCreated(ctx context.Context, ev *contracts.AuctionCreated, skipExisting bool) error {
	id := ev.AuctionId.Uint64()
	auctionType, err := types.AuctionTypeFromChain(ev.AuctionType)
	if err != nil {
		return err
	}

	if skipExisting {
		exists, err := ix.store.AuctionExists(ctx, id, auctionType)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	var tokenIDs []string
	if auctionType == types.AuctionTypeBundle {
		for _, tokenID := range ev.TokenIds {
			tokenIDs = append(tokenIDs, tokenID.String())
		}
	} else {
		tokenIDs = []string{ev.TokenId.String()}
	}
	if len(tokenIDs) == 0 {
		// Permanently malformed: retrying can never populate the token
		// list, so dropping it beats stalling the cursor behind it.
		ix.logger.Warnw("auction has no token ids, skipped", "auction_id", id, "auction_type", auctionType)
		return nil
	}

	contract := ev.NftContract.Hex()
	items, err := resolveItems(ctx, ix.resolver, contract, tokenIDs)
	if err != nil {
		return errors.Wrapf(err, "auction %d (%s) skipped", id, auctionType)
	}

	auction := &types.Auction{
		AuctionID:      id,
		AuctionType:    auctionType,
		Seller:         ev.Seller.Hex(),
		NFTContract:    contract,
		TokenIDs:       tokenIDs,
		StartingPrice:  types.WeiToDecimal(ev.StartingPrice),
		EndTime:        ev.EndTime.Int64(),
		Title:          ev.Title,
		CollectionName: items[0].Metadata.Collection,
		ImageURL:       items[0].Metadata.Image,
		Description:    items[0].Metadata.Description,
		Items:          items,
		Status:         types.AuctionStatusActive,
	}

	inserted, err := ix.store.InsertAuction(ctx, auction)
	if err != nil {
		return err
	}
	if inserted {
		metrics.EventsProcessed.WithLabelValues(store.ServiceAuction, "AuctionCreated").Inc()
	}
	return nil
}

func (ix *AuctionIndexer) handleBid(ctx context.Context, ev *contracts.BidPlaced) error {
	err := ix.store.ApplyBid(ctx, ev.AuctionId.Uint64(), ev.Timestamp.Int64())
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(store.ServiceAuction, "BidPlaced").Inc()
	return nil
}

func (ix *AuctionIndexer) handleFinalized(ctx context.Context, ev *contracts.AuctionFinalized) error {
	err := ix.store.FinalizeAuction(ctx, ev.AuctionId.Uint64(), time.Now().UTC())
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(store.ServiceAuction, "AuctionFinalized").Inc()
	return nil
}

func (ix *AuctionIndexer) handleCancelled(ctx context.Context, ev *contracts.AuctionCancelled) error {
	err := ix.store.DeleteAuction(ctx, ev.AuctionId.Uint64())
	if err != nil {
		return err
	}
	ix.logger.Infow("auction cancelled", "auction_id", ev.AuctionId.Uint64(), "reason", ev.Reason)
	metrics.EventsProcessed.WithLabelValues(store.ServiceAuction, "AuctionCancelled").Inc()
	return nil
}

func (ix *AuctionIndexer) handleClaimed(ctx context.Context, ev *contracts.NFTClaimed) error {
	err := ix.store.MarkNFTClaimed(ctx, ev.AuctionId.Uint64())
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(store.ServiceAuction, "NFTClaimed").Inc()
	return nil
}

func (ix *AuctionIndexer) handleReclaimed(ctx context.Context, ev *contracts.NFTReclaimed) error {
	err := ix.store.MarkNFTReclaimed(ctx, ev.AuctionId.Uint64())
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(store.ServiceAuction, "NFTReclaimed").Inc()
	return nil
}

// resolveItems fetches metadata for every token, all-or-nothing: a single
// failure skips the whole record so no partial row is ever written.
func resolveItems(ctx context.Context, resolver metadata.Resolver, contract string, tokenIDs []string) ([]types.NFTItem, error) {
	items := make([]types.NFTItem, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		meta, err := resolver.Resolve(ctx, contract, tokenID)
		if err != nil {
			return nil, errors.Wrapf(err, "metadata unavailable for token %s", tokenID)
		}
		items = append(items, types.NFTItem{TokenID: tokenID, Metadata: *meta})
	}
	return items, nil
}
