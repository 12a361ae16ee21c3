package types

import (
	"fmt"
	"time"
)

// AuctionType distinguishes the two independent representations an
// on-chain auction id can take. The same numeric id can exist once as a
// `single` auction and once as a `bundle` auction, and the two are
// tracked as separate rows.
type AuctionType string

const (
	AuctionTypeSingle AuctionType = "single"
	AuctionTypeBundle AuctionType = "bundle"
)

// AuctionTypes lists every representation a given auction id may have.
var AuctionTypes = []AuctionType{AuctionTypeSingle, AuctionTypeBundle}

func AuctionTypeFromChain(v uint8) (AuctionType, error) {
	switch v {
	case 0:
		return AuctionTypeSingle, nil
	case 1:
		return AuctionTypeBundle, nil
	default:
		return "", fmt.Errorf("unknown auction type %d", v)
	}
}

type ListingType string

const (
	ListingTypeSingle ListingType = "single"
	ListingTypeBundle ListingType = "bundle"
)

func ListingTypeFromChain(v uint8) (ListingType, error) {
	switch v {
	case 0:
		return ListingTypeSingle, nil
	case 1:
		return ListingTypeBundle, nil
	default:
		return "", fmt.Errorf("unknown listing type %d", v)
	}
}

type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusFinalized AuctionStatus = "finalized"
)

// TokenMetadata is the descriptive metadata resolved for a single token.
type TokenMetadata struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Collection  string `json:"collection"`
}

// NFTItem pairs a token id with the metadata snapshot taken when the
// record was first written.
type NFTItem struct {
	TokenID  string        `json:"token_id"`
	Metadata TokenMetadata `json:"metadata"`
}

// Auction is one row of the auction read-model. The pair
// (AuctionID, AuctionType) is the only legitimate primary key.
type Auction struct {
	AuctionID      uint64
	AuctionType    AuctionType
	Seller         string
	NFTContract    string
	TokenIDs       []string
	StartingPrice  string
	EndTime        int64
	Title          string
	CollectionName string
	ImageURL       string
	Description    string
	Items          []NFTItem
	Status         AuctionStatus
	NFTClaimed     bool
	NFTReclaimed   bool
	TotalBids      uint64
	ReclaimNFT     *time.Time
}

// Listing is one row of the marketplace read-model, keyed by
// (ListingID, ListingType).
type Listing struct {
	ListingID      uint64
	ListingType    ListingType
	NFTContract    string
	Seller         string
	TokenIDs       []string
	Price          string
	CollectionName string
	ImageURL       string
	Description    string
	Name           string
	Items          []NFTItem
	LoveCount      uint64
}
