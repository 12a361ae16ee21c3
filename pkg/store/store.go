package store

import (
	"context"
	"time"

	"github.com/veilmarket/market-indexer/pkg/types"
)

// Service names for the sync cursor rows.
const (
	ServiceAuction = "auction"
	ServiceMarket  = "market"
)

// SnipeWindowSeconds is the trailing window before an auction's close in
// which a bid extends the close time, and also the size of the extension.
const SnipeWindowSeconds int64 = 600

// Storer is the single sink shared by the live and backfill paths. All
// inserts are atomic insert-if-absent; updates and deletes are
// unconditional and safe to replay.
type Storer interface {
	// InsertAuction writes the record unless a row with the same
	// (auction_id, auction_type) already exists. Reports whether a row
	// was actually inserted.
	InsertAuction(ctx context.Context, auction *types.Auction) (bool, error)
	AuctionExists(ctx context.Context, id uint64, auctionType types.AuctionType) (bool, error)
	GetAuction(ctx context.Context, id uint64, auctionType types.AuctionType) (*types.Auction, error)
	// ApplyBid runs the anti-snipe rule for every type-row sharing the
	// auction id: inside one transaction per row, extend end_time to
	// bidTime+600 if the bid landed within 600s of the close, and
	// increment total_bid either way. Rows not in `active` status are
	// silently skipped.
	ApplyBid(ctx context.Context, id uint64, bidTime int64) error
	FinalizeAuction(ctx context.Context, id uint64, reclaimAt time.Time) error
	MarkNFTClaimed(ctx context.Context, id uint64) error
	MarkNFTReclaimed(ctx context.Context, id uint64) error
	// DeleteAuction removes every type-row for the id; a no-op if none exist.
	DeleteAuction(ctx context.Context, id uint64) error

	InsertListing(ctx context.Context, listing *types.Listing) (bool, error)
	ListingExists(ctx context.Context, id uint64, listingType types.ListingType) (bool, error)
	GetListing(ctx context.Context, id uint64, listingType types.ListingType) (*types.Listing, error)
	UpdateListingPrice(ctx context.Context, id uint64, listingType types.ListingType, price string) error
	DeleteListing(ctx context.Context, id uint64, listingType types.ListingType) error

	// LastSyncedBlock reports the cursor for a service; ok is false when
	// no cursor row exists yet.
	LastSyncedBlock(ctx context.Context, service string) (block uint64, ok bool, err error)
	SeedCursor(ctx context.Context, service string, block uint64) error
	// AdvanceCursor moves the cursor forward; it never moves it back.
	AdvanceCursor(ctx context.Context, service string, block uint64) error
}
