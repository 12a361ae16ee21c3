package index

import (
	"context"
	"math/big"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/contracts"
	"github.com/veilmarket/market-indexer/pkg/metadata"
	"github.com/veilmarket/market-indexer/pkg/metrics"
	"github.com/veilmarket/market-indexer/pkg/store"
	"github.com/veilmarket/market-indexer/pkg/types"
)

type MarketIndexer struct {
	store    store.Storer
	resolver metadata.Resolver
	logger   *zap.SugaredLogger
}

func NewMarketIndexer(storer store.Storer, resolver metadata.Resolver, zapLogger *zap.Logger) *MarketIndexer {
	return &MarketIndexer{
		store:    storer,
		resolver: resolver,
		logger:   zapLogger.Sugar(),
	}
}

func (ix *MarketIndexer) Service() string {
	return store.ServiceMarket
}

func (ix *MarketIndexer) HandleLog(ctx context.Context, lg ethtypes.Log, skipExisting bool) error {
	decoded, err := contracts.DecodeMarketLog(lg)
	if err != nil {
		return err
	}

	switch ev := decoded.(type) {
	case *contracts.NFTListed:
		return ix.handleListed(ctx, ev, skipExisting)
	case *contracts.CollectionBundleListed:
		return ix.handleBundleListed(ctx, ev, skipExisting)
	case *contracts.PriceUpdated:
		return ix.updatePrice(ctx, "PriceUpdated", ev.ListingId.Uint64(), types.ListingTypeSingle, ev.NewPrice)
	case *contracts.BundlePriceUpdated:
		return ix.updatePrice(ctx, "BundlePriceUpdated", ev.CollectionId.Uint64(), types.ListingTypeBundle, ev.NewPrice)
	case *contracts.ListingCancelled:
		return ix.removeListing(ctx, "ListingCancelled", ev.ListingId.Uint64(), ev.ListingType)
	case *contracts.CollectionCancelled:
		return ix.removeListing(ctx, "CollectionCancelled", ev.CollectionId.Uint64(), ev.ListingType)
	case *contracts.NFTSold:
		return ix.removeListing(ctx, "NFTSold", ev.ListingId.Uint64(), ev.ListingType)
	case *contracts.CollectionBundleSold:
		// Bundle sales carry no type argument; the row is always the
		// bundle representation.
		err = ix.store.DeleteListing(ctx, ev.CollectionId.Uint64(), types.ListingTypeBundle)
		if err != nil {
			return err
		}
		metrics.EventsProcessed.WithLabelValues(store.ServiceMarket, "CollectionBundleSold").Inc()
		return nil
	default:
		return errors.Errorf("unhandled market event %T", decoded)
	}
}

func (ix *MarketIndexer) handleListed(ctx context.Context, ev *contracts.NFTListed, skipExisting bool) error {
	id := ev.ListingId.Uint64()
	listingType, err := types.ListingTypeFromChain(ev.ListingType)
	if err != nil {
		return err
	}

	if skipExisting {
		exists, err := ix.store.ListingExists(ctx, id, listingType)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	contract := ev.NftContract.Hex()
	tokenIDs := []string{ev.TokenId.String()}
	items, err := resolveItems(ctx, ix.resolver, contract, tokenIDs)
	if err != nil {
		return errors.Wrapf(err, "listing %d (%s) skipped", id, listingType)
	}

	listing := &types.Listing{
		ListingID:      id,
		ListingType:    listingType,
		NFTContract:    contract,
		Seller:         ev.Seller.Hex(),
		TokenIDs:       tokenIDs,
		Price:          types.WeiToDecimal(ev.Price),
		CollectionName: items[0].Metadata.Collection,
		ImageURL:       items[0].Metadata.Image,
		Description:    items[0].Metadata.Description,
		Name:           items[0].Metadata.Name,
		Items:          items,
	}

	inserted, err := ix.store.InsertListing(ctx, listing)
	if err != nil {
		return err
	}
	if inserted {
		metrics.EventsProcessed.WithLabelValues(store.ServiceMarket, "NFTListed").Inc()
	}
	return nil
}

func (ix *MarketIndexer) handleBundleListed(ctx context.Context, ev *contracts.CollectionBundleListed, skipExisting bool) error {
	id := ev.CollectionId.Uint64()

	if skipExisting {
		exists, err := ix.store.ListingExists(ctx, id, types.ListingTypeBundle)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	var tokenIDs []string
	for _, tokenID := range ev.TokenIds {
		tokenIDs = append(tokenIDs, tokenID.String())
	}
	if len(tokenIDs) == 0 {
		ix.logger.Warnw("bundle listing has no token ids, skipped", "listing_id", id)
		return nil
	}

	contract := ev.NftContract.Hex()
	items, err := resolveItems(ctx, ix.resolver, contract, tokenIDs)
	if err != nil {
		return errors.Wrapf(err, "bundle listing %d skipped", id)
	}

	listing := &types.Listing{
		ListingID:      id,
		ListingType:    types.ListingTypeBundle,
		NFTContract:    contract,
		Seller:         ev.Seller.Hex(),
		TokenIDs:       tokenIDs,
		Price:          types.WeiToDecimal(ev.BundlePrice),
		CollectionName: ev.CollectionName,
		ImageURL:       items[0].Metadata.Image,
		Description:    items[0].Metadata.Description,
		Name:           ev.CollectionName,
		Items:          items,
	}

	inserted, err := ix.store.InsertListing(ctx, listing)
	if err != nil {
		return err
	}
	if inserted {
		metrics.EventsProcessed.WithLabelValues(store.ServiceMarket, "CollectionBundleListed").Inc()
	}
	return nil
}

func (ix *MarketIndexer) updatePrice(ctx context.Context, event string, id uint64, listingType types.ListingType, newPrice *big.Int) error {
	price := types.WeiToDecimal(newPrice)
	err := ix.store.UpdateListingPrice(ctx, id, listingType, price)
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(store.ServiceMarket, event).Inc()
	return nil
}

func (ix *MarketIndexer) removeListing(ctx context.Context, event string, id uint64, rawType uint8) error {
	listingType, err := types.ListingTypeFromChain(rawType)
	if err != nil {
		return err
	}
	err = ix.store.DeleteListing(ctx, id, listingType)
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(store.ServiceMarket, event).Inc()
	return nil
}
