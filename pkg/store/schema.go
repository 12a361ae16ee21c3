package store

const (
	TableAuctions   = "auctions"
	TableListings   = "market_listings"
	TableSyncStatus = "sync_status"
)

var schema = `
CREATE TABLE IF NOT EXISTS ` + TableAuctions + ` (
	id bigint GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	inserted_at timestamp NOT NULL default current_timestamp,

	auction_id bigint NOT NULL,
	auction_type text NOT NULL,
	seller_address text NOT NULL,
	nft_contract_address text NOT NULL,
	token_ids json NOT NULL,
	starting_price numeric NOT NULL,
	end_time bigint NOT NULL,
	title text NOT NULL,
	collection_name text NOT NULL,
	image_url text NOT NULL,
	description text NOT NULL,
	nft_individual json NOT NULL,
	status text NOT NULL default 'active',
	nft_claimed boolean NOT NULL default false,
	nft_reclaimed boolean NOT NULL default false,
	total_bid bigint NOT NULL default 0,
	reclaim_nft timestamp,

	UNIQUE (auction_id, auction_type)
);

CREATE TABLE IF NOT EXISTS ` + TableListings + ` (
	id bigint GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	inserted_at timestamp NOT NULL default current_timestamp,

	listing_id bigint NOT NULL,
	listing_type text NOT NULL,
	nft_contract_address text NOT NULL,
	seller_address text NOT NULL,
	token_ids json NOT NULL,
	price numeric NOT NULL,
	collection_name text NOT NULL,
	image_url text NOT NULL,
	description text NOT NULL,
	name text NOT NULL,
	nft_individual json NOT NULL,
	love_count bigint NOT NULL default 0,

	UNIQUE (listing_id, listing_type)
);

CREATE TABLE IF NOT EXISTS ` + TableSyncStatus + ` (
	id bigint GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	service text NOT NULL UNIQUE,
	last_synced_block bigint NOT NULL,
	created_at timestamp NOT NULL default current_timestamp,
	updated_at timestamp NOT NULL default current_timestamp
);
`
