package store

import (
	"context"
	"sync"
	"time"

	"github.com/veilmarket/market-indexer/pkg/types"
)

type auctionKey struct {
	id          uint64
	auctionType types.AuctionType
}

type listingKey struct {
	id          uint64
	listingType types.ListingType
}

// MemoryStore mirrors the Postgres semantics for tests: conflict-ignoring
// inserts, unconditional updates, non-decreasing cursors, and the
// transactional anti-snipe rule (serialized by the store mutex here).
type MemoryStore struct {
	mu       sync.Mutex
	auctions map[auctionKey]*types.Auction
	listings map[listingKey]*types.Listing
	cursors  map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[auctionKey]*types.Auction),
		listings: make(map[listingKey]*types.Listing),
		cursors:  make(map[string]uint64),
	}
}

func (s *MemoryStore) InsertAuction(ctx context.Context, auction *types.Auction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := auctionKey{auction.AuctionID, auction.AuctionType}
	if _, ok := s.auctions[key]; ok {
		return false, nil
	}
	clone := *auction
	s.auctions[key] = &clone
	return true, nil
}

func (s *MemoryStore) AuctionExists(ctx context.Context, id uint64, auctionType types.AuctionType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.auctions[auctionKey{id, auctionType}]
	return ok, nil
}

func (s *MemoryStore) GetAuction(ctx context.Context, id uint64, auctionType types.AuctionType) (*types.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	auction, ok := s.auctions[auctionKey{id, auctionType}]
	if !ok {
		return nil, nil
	}
	clone := *auction
	return &clone, nil
}

func (s *MemoryStore) ApplyBid(ctx context.Context, id uint64, bidTime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, auctionType := range types.AuctionTypes {
		auction, ok := s.auctions[auctionKey{id, auctionType}]
		if !ok || auction.Status != types.AuctionStatusActive {
			continue
		}
		remaining := auction.EndTime - bidTime
		if remaining > 0 && remaining <= SnipeWindowSeconds {
			auction.EndTime = bidTime + SnipeWindowSeconds
		}
		auction.TotalBids++
	}
	return nil
}

func (s *MemoryStore) FinalizeAuction(ctx context.Context, id uint64, reclaimAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, auctionType := range types.AuctionTypes {
		auction, ok := s.auctions[auctionKey{id, auctionType}]
		if !ok || auction.Status != types.AuctionStatusActive {
			continue
		}
		auction.Status = types.AuctionStatusFinalized
		at := reclaimAt
		auction.ReclaimNFT = &at
	}
	return nil
}

func (s *MemoryStore) MarkNFTClaimed(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, auctionType := range types.AuctionTypes {
		if auction, ok := s.auctions[auctionKey{id, auctionType}]; ok {
			auction.NFTClaimed = true
		}
	}
	return nil
}

func (s *MemoryStore) MarkNFTReclaimed(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, auctionType := range types.AuctionTypes {
		if auction, ok := s.auctions[auctionKey{id, auctionType}]; ok {
			auction.NFTReclaimed = true
		}
	}
	return nil
}

func (s *MemoryStore) DeleteAuction(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, auctionType := range types.AuctionTypes {
		delete(s.auctions, auctionKey{id, auctionType})
	}
	return nil
}

func (s *MemoryStore) InsertListing(ctx context.Context, listing *types.Listing) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey{listing.ListingID, listing.ListingType}
	if _, ok := s.listings[key]; ok {
		return false, nil
	}
	clone := *listing
	s.listings[key] = &clone
	return true, nil
}

func (s *MemoryStore) ListingExists(ctx context.Context, id uint64, listingType types.ListingType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.listings[listingKey{id, listingType}]
	return ok, nil
}

func (s *MemoryStore) GetListing(ctx context.Context, id uint64, listingType types.ListingType) (*types.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[listingKey{id, listingType}]
	if !ok {
		return nil, nil
	}
	clone := *listing
	return &clone, nil
}

func (s *MemoryStore) UpdateListingPrice(ctx context.Context, id uint64, listingType types.ListingType, price string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing, ok := s.listings[listingKey{id, listingType}]; ok {
		listing.Price = price
	}
	return nil
}

func (s *MemoryStore) DeleteListing(ctx context.Context, id uint64, listingType types.ListingType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listings, listingKey{id, listingType})
	return nil
}

func (s *MemoryStore) LastSyncedBlock(ctx context.Context, service string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, ok := s.cursors[service]
	return block, ok, nil
}

func (s *MemoryStore) SeedCursor(ctx context.Context, service string, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cursors[service]; !ok {
		s.cursors[service] = block
	}
	return nil
}

func (s *MemoryStore) AdvanceCursor(ctx context.Context, service string, block uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if block > s.cursors[service] {
		s.cursors[service] = block
	}
	return nil
}

// AuctionCount reports the number of auction rows; used by tests
// checking idempotence.
func (s *MemoryStore) AuctionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.auctions)
}

// ListingCount reports the number of listing rows.
func (s *MemoryStore) ListingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}
