package store

import (
	"encoding/json"

	"github.com/veilmarket/market-indexer/pkg/types"
)

func AuctionToEntry(auction *types.Auction) (*AuctionEntry, error) {
	tokenIDs, err := json.Marshal(auction.TokenIDs)
	if err != nil {
		return nil, err
	}
	items, err := json.Marshal(auction.Items)
	if err != nil {
		return nil, err
	}

	entry := &AuctionEntry{
		AuctionID:          auction.AuctionID,
		AuctionType:        string(auction.AuctionType),
		SellerAddress:      auction.Seller,
		NFTContractAddress: auction.NFTContract,
		TokenIDs:           string(tokenIDs),
		StartingPrice:      auction.StartingPrice,
		EndTime:            auction.EndTime,
		Title:              auction.Title,
		CollectionName:     auction.CollectionName,
		ImageURL:           auction.ImageURL,
		Description:        auction.Description,
		NFTIndividual:      string(items),
		Status:             string(auction.Status),
		NFTClaimed:         auction.NFTClaimed,
		NFTReclaimed:       auction.NFTReclaimed,
		TotalBid:           auction.TotalBids,
	}
	if auction.ReclaimNFT != nil {
		entry.ReclaimNFT.Time = *auction.ReclaimNFT
		entry.ReclaimNFT.Valid = true
	}
	return entry, nil
}

func EntryToAuction(entry *AuctionEntry) (*types.Auction, error) {
	var tokenIDs []string
	if err := json.Unmarshal([]byte(entry.TokenIDs), &tokenIDs); err != nil {
		return nil, err
	}
	var items []types.NFTItem
	if err := json.Unmarshal([]byte(entry.NFTIndividual), &items); err != nil {
		return nil, err
	}

	auction := &types.Auction{
		AuctionID:      entry.AuctionID,
		AuctionType:    types.AuctionType(entry.AuctionType),
		Seller:         entry.SellerAddress,
		NFTContract:    entry.NFTContractAddress,
		TokenIDs:       tokenIDs,
		StartingPrice:  entry.StartingPrice,
		EndTime:        entry.EndTime,
		Title:          entry.Title,
		CollectionName: entry.CollectionName,
		ImageURL:       entry.ImageURL,
		Description:    entry.Description,
		Items:          items,
		Status:         types.AuctionStatus(entry.Status),
		NFTClaimed:     entry.NFTClaimed,
		NFTReclaimed:   entry.NFTReclaimed,
		TotalBids:      entry.TotalBid,
	}
	if entry.ReclaimNFT.Valid {
		t := entry.ReclaimNFT.Time
		auction.ReclaimNFT = &t
	}
	return auction, nil
}

func ListingToEntry(listing *types.Listing) (*ListingEntry, error) {
	tokenIDs, err := json.Marshal(listing.TokenIDs)
	if err != nil {
		return nil, err
	}
	items, err := json.Marshal(listing.Items)
	if err != nil {
		return nil, err
	}

	return &ListingEntry{
		ListingID:          listing.ListingID,
		ListingType:        string(listing.ListingType),
		NFTContractAddress: listing.NFTContract,
		SellerAddress:      listing.Seller,
		TokenIDs:           string(tokenIDs),
		Price:              listing.Price,
		CollectionName:     listing.CollectionName,
		ImageURL:           listing.ImageURL,
		Description:        listing.Description,
		Name:               listing.Name,
		NFTIndividual:      string(items),
		LoveCount:          listing.LoveCount,
	}, nil
}

func EntryToListing(entry *ListingEntry) (*types.Listing, error) {
	var tokenIDs []string
	if err := json.Unmarshal([]byte(entry.TokenIDs), &tokenIDs); err != nil {
		return nil, err
	}
	var items []types.NFTItem
	if err := json.Unmarshal([]byte(entry.NFTIndividual), &items); err != nil {
		return nil, err
	}

	return &types.Listing{
		ListingID:      entry.ListingID,
		ListingType:    types.ListingType(entry.ListingType),
		NFTContract:    entry.NFTContractAddress,
		Seller:         entry.SellerAddress,
		TokenIDs:       tokenIDs,
		Price:          entry.Price,
		CollectionName: entry.CollectionName,
		ImageURL:       entry.ImageURL,
		Description:    entry.Description,
		Name:           entry.Name,
		Items:          items,
		LoveCount:      entry.LoveCount,
	}, nil
}
