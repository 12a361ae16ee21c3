package store

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/metrics"
	"github.com/veilmarket/market-indexer/pkg/types"
)

type PostgresStore struct {
	DB *sqlx.DB

	nstmtInsertAuction *sqlx.NamedStmt
	nstmtInsertListing *sqlx.NamedStmt

	logger *zap.SugaredLogger
}

func NewPostgresStore(dsn string, zapLogger *zap.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.DB.SetMaxOpenConns(50)
	db.DB.SetMaxIdleConns(10)
	db.DB.SetConnMaxIdleTime(0)

	if os.Getenv("DB_DONT_APPLY_SCHEMA") == "" {
		_, err = db.Exec(schema)
		if err != nil {
			return nil, err
		}
	}

	store := &PostgresStore{DB: db, logger: zapLogger.Sugar()} //nolint:exhaustruct
	err = store.prepareNamedQueries()
	return store, err
}

func (store *PostgresStore) prepareNamedQueries() (err error) {
	// Insert auction. The composite-key conflict guard makes replays from
	// either path (live, backfill) a no-op instead of an aborted chunk.
	query := `INSERT INTO ` + TableAuctions + `
	(auction_id, auction_type, seller_address, nft_contract_address, token_ids, starting_price, end_time, title, collection_name, image_url, description, nft_individual, status, nft_claimed, nft_reclaimed, total_bid, reclaim_nft) VALUES
	(:auction_id, :auction_type, :seller_address, :nft_contract_address, :token_ids, :starting_price, :end_time, :title, :collection_name, :image_url, :description, :nft_individual, :status, :nft_claimed, :nft_reclaimed, :total_bid, :reclaim_nft)
	ON CONFLICT (auction_id, auction_type) DO NOTHING`
	store.nstmtInsertAuction, err = store.DB.PrepareNamed(query)
	if err != nil {
		return err
	}

	// Insert market listing.
	query = `INSERT INTO ` + TableListings + `
	(listing_id, listing_type, nft_contract_address, seller_address, token_ids, price, collection_name, image_url, description, name, nft_individual, love_count) VALUES
	(:listing_id, :listing_type, :nft_contract_address, :seller_address, :token_ids, :price, :collection_name, :image_url, :description, :name, :nft_individual, :love_count)
	ON CONFLICT (listing_id, listing_type) DO NOTHING`
	store.nstmtInsertListing, err = store.DB.PrepareNamed(query)

	return err
}

func (store *PostgresStore) Close() error {
	return store.DB.Close()
}

func (store *PostgresStore) InsertAuction(ctx context.Context, auction *types.Auction) (bool, error) {
	entry, err := AuctionToEntry(auction)
	if err != nil {
		return false, err
	}

	res, err := store.nstmtInsertAuction.ExecContext(ctx, entry)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		store.logger.Debugw("auction already present, insert skipped", "auction_id", auction.AuctionID, "auction_type", auction.AuctionType)
		return false, nil
	}
	store.logger.Infow("saved auction to db", "auction_id", auction.AuctionID, "auction_type", auction.AuctionType)
	return true, nil
}

func (store *PostgresStore) AuctionExists(ctx context.Context, id uint64, auctionType types.AuctionType) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + TableAuctions + ` WHERE auction_id=$1 AND auction_type=$2)`
	err := store.DB.GetContext(ctx, &exists, query, id, string(auctionType))
	return exists, err
}

func (store *PostgresStore) GetAuction(ctx context.Context, id uint64, auctionType types.AuctionType) (*types.Auction, error) {
	query := `SELECT * FROM ` + TableAuctions + ` WHERE auction_id=$1 AND auction_type=$2`

	entry := &AuctionEntry{}
	err := store.DB.GetContext(ctx, entry, query, id, string(auctionType))
	if errors.Cause(err) == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return EntryToAuction(entry)
}

func (store *PostgresStore) ApplyBid(ctx context.Context, id uint64, bidTime int64) error {
	for _, auctionType := range types.AuctionTypes {
		if err := store.applyBidForType(ctx, id, auctionType, bidTime); err != nil {
			return err
		}
	}
	return nil
}

// applyBidForType holds the row lock for the whole read-modify-write so
// two bids for the same auction cannot race each other into a lost
// update, whichever paths they arrive on.
func (store *PostgresStore) applyBidForType(ctx context.Context, id uint64, auctionType types.AuctionType, bidTime int64) error {
	tx, err := store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var endTime int64
	query := `SELECT end_time FROM ` + TableAuctions + ` WHERE auction_id=$1 AND auction_type=$2 AND status=$3 FOR UPDATE`
	err = tx.GetContext(ctx, &endTime, query, id, string(auctionType), string(types.AuctionStatusActive))
	if errors.Cause(err) == sql.ErrNoRows {
		// No active row for this representation; the bid is absorbed.
		return nil
	} else if err != nil {
		return err
	}

	remaining := endTime - bidTime
	if remaining > 0 && remaining <= SnipeWindowSeconds {
		newEnd := bidTime + SnipeWindowSeconds
		_, err = tx.ExecContext(ctx, `UPDATE `+TableAuctions+` SET end_time=$3, total_bid=total_bid+1 WHERE auction_id=$1 AND auction_type=$2`, id, string(auctionType), newEnd)
		if err != nil {
			return err
		}
		metrics.SnipeExtensions.Inc()
		store.logger.Infow("anti-snipe extension applied", "auction_id", id, "auction_type", auctionType, "end_time", newEnd)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE `+TableAuctions+` SET total_bid=total_bid+1 WHERE auction_id=$1 AND auction_type=$2`, id, string(auctionType))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (store *PostgresStore) FinalizeAuction(ctx context.Context, id uint64, reclaimAt time.Time) error {
	query := `UPDATE ` + TableAuctions + ` SET status=$2, reclaim_nft=$3 WHERE auction_id=$1 AND status=$4`
	_, err := store.DB.ExecContext(ctx, query, id, string(types.AuctionStatusFinalized), reclaimAt, string(types.AuctionStatusActive))
	if err != nil {
		return err
	}
	store.logger.Infow("auction finalized", "auction_id", id)
	return nil
}

func (store *PostgresStore) MarkNFTClaimed(ctx context.Context, id uint64) error {
	_, err := store.DB.ExecContext(ctx, `UPDATE `+TableAuctions+` SET nft_claimed=true WHERE auction_id=$1`, id)
	return err
}

func (store *PostgresStore) MarkNFTReclaimed(ctx context.Context, id uint64) error {
	_, err := store.DB.ExecContext(ctx, `UPDATE `+TableAuctions+` SET nft_reclaimed=true WHERE auction_id=$1`, id)
	return err
}

func (store *PostgresStore) DeleteAuction(ctx context.Context, id uint64) error {
	_, err := store.DB.ExecContext(ctx, `DELETE FROM `+TableAuctions+` WHERE auction_id=$1`, id)
	if err != nil {
		return err
	}
	store.logger.Infow("auction rows deleted", "auction_id", id)
	return nil
}

func (store *PostgresStore) InsertListing(ctx context.Context, listing *types.Listing) (bool, error) {
	entry, err := ListingToEntry(listing)
	if err != nil {
		return false, err
	}

	res, err := store.nstmtInsertListing.ExecContext(ctx, entry)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		store.logger.Debugw("listing already present, insert skipped", "listing_id", listing.ListingID, "listing_type", listing.ListingType)
		return false, nil
	}
	store.logger.Infow("saved listing to db", "listing_id", listing.ListingID, "listing_type", listing.ListingType)
	return true, nil
}

func (store *PostgresStore) ListingExists(ctx context.Context, id uint64, listingType types.ListingType) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM ` + TableListings + ` WHERE listing_id=$1 AND listing_type=$2)`
	err := store.DB.GetContext(ctx, &exists, query, id, string(listingType))
	return exists, err
}

func (store *PostgresStore) GetListing(ctx context.Context, id uint64, listingType types.ListingType) (*types.Listing, error) {
	query := `SELECT * FROM ` + TableListings + ` WHERE listing_id=$1 AND listing_type=$2`

	entry := &ListingEntry{}
	err := store.DB.GetContext(ctx, entry, query, id, string(listingType))
	if errors.Cause(err) == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return EntryToListing(entry)
}

func (store *PostgresStore) UpdateListingPrice(ctx context.Context, id uint64, listingType types.ListingType, price string) error {
	query := `UPDATE ` + TableListings + ` SET price=$3 WHERE listing_id=$1 AND listing_type=$2`
	_, err := store.DB.ExecContext(ctx, query, id, string(listingType), price)
	if err != nil {
		return err
	}
	store.logger.Infow("listing price updated", "listing_id", id, "listing_type", listingType, "price", price)
	return nil
}

func (store *PostgresStore) DeleteListing(ctx context.Context, id uint64, listingType types.ListingType) error {
	query := `DELETE FROM ` + TableListings + ` WHERE listing_id=$1 AND listing_type=$2`
	_, err := store.DB.ExecContext(ctx, query, id, string(listingType))
	if err != nil {
		return err
	}
	store.logger.Infow("listing row deleted", "listing_id", id, "listing_type", listingType)
	return nil
}

func (store *PostgresStore) LastSyncedBlock(ctx context.Context, service string) (uint64, bool, error) {
	var block uint64
	query := `SELECT last_synced_block FROM ` + TableSyncStatus + ` WHERE service=$1`
	err := store.DB.GetContext(ctx, &block, query, service)
	if errors.Cause(err) == sql.ErrNoRows {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	return block, true, nil
}

func (store *PostgresStore) SeedCursor(ctx context.Context, service string, block uint64) error {
	query := `INSERT INTO ` + TableSyncStatus + ` (service, last_synced_block) VALUES ($1, $2)
	ON CONFLICT (service) DO NOTHING`
	_, err := store.DB.ExecContext(ctx, query, service, block)
	if err != nil {
		return err
	}
	store.logger.Infow("sync cursor seeded", "service", service, "block", block)
	return nil
}

func (store *PostgresStore) AdvanceCursor(ctx context.Context, service string, block uint64) error {
	// GREATEST keeps the cursor non-decreasing even if an overlapping
	// cycle finished out of order.
	query := `UPDATE ` + TableSyncStatus + ` SET last_synced_block=GREATEST(last_synced_block, $2), updated_at=NOW() WHERE service=$1`
	_, err := store.DB.ExecContext(ctx, query, service, block)
	return err
}
