package store

import (
	"database/sql"
	"time"
)

type AuctionEntry struct {
	ID         int64     `db:"id"`
	InsertedAt time.Time `db:"inserted_at"`

	AuctionID          uint64 `db:"auction_id"`
	AuctionType        string `db:"auction_type"`
	SellerAddress      string `db:"seller_address"`
	NFTContractAddress string `db:"nft_contract_address"`
	TokenIDs           string `db:"token_ids"`
	StartingPrice      string `db:"starting_price"`
	EndTime            int64  `db:"end_time"`
	Title              string `db:"title"`
	CollectionName     string `db:"collection_name"`
	ImageURL           string `db:"image_url"`
	Description        string `db:"description"`
	NFTIndividual      string `db:"nft_individual"`
	Status             string `db:"status"`
	NFTClaimed         bool   `db:"nft_claimed"`
	NFTReclaimed       bool   `db:"nft_reclaimed"`
	TotalBid           uint64 `db:"total_bid"`

	ReclaimNFT sql.NullTime `db:"reclaim_nft"`
}

type ListingEntry struct {
	ID         int64     `db:"id"`
	InsertedAt time.Time `db:"inserted_at"`

	ListingID          uint64 `db:"listing_id"`
	ListingType        string `db:"listing_type"`
	NFTContractAddress string `db:"nft_contract_address"`
	SellerAddress      string `db:"seller_address"`
	TokenIDs           string `db:"token_ids"`
	Price              string `db:"price"`
	CollectionName     string `db:"collection_name"`
	ImageURL           string `db:"image_url"`
	Description        string `db:"description"`
	Name               string `db:"name"`
	NFTIndividual      string `db:"nft_individual"`
	LoveCount          uint64 `db:"love_count"`
}

type SyncStatusEntry struct {
	ID        int64     `db:"id"`
	Service   string    `db:"service"`
	LastBlock uint64    `db:"last_synced_block"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
