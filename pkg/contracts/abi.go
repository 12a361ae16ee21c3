package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments for the two event producers. Only events are declared:
// the indexer never calls into either contract, it only decodes logs.

const auctionABIJSON = `[
	{"type":"event","name":"AuctionCreated","inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":true},
		{"name":"nftContract","type":"address","indexed":false},
		{"name":"auctionType","type":"uint8","indexed":false},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"tokenIds","type":"uint256[]","indexed":false},
		{"name":"startingPrice","type":"uint256","indexed":false},
		{"name":"endTime","type":"uint256","indexed":false},
		{"name":"title","type":"string","indexed":false}]},
	{"type":"event","name":"BidPlaced","inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"bidder","type":"address","indexed":true},
		{"name":"timestamp","type":"uint256","indexed":false}]},
	{"type":"event","name":"AuctionFinalized","inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"winner","type":"address","indexed":true},
		{"name":"finalPrice","type":"uint256","indexed":false},
		{"name":"platformFeeAmount","type":"uint256","indexed":false},
		{"name":"sellerAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"AuctionCancelled","inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":true},
		{"name":"reason","type":"string","indexed":false}]},
	{"type":"event","name":"NFTClaimed","inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"winner","type":"address","indexed":true},
		{"name":"amountPaid","type":"uint256","indexed":false}]},
	{"type":"event","name":"NFTReclaimed","inputs":[
		{"name":"auctionId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":true}]}
]`

const marketABIJSON = `[
	{"type":"event","name":"NFTListed","inputs":[
		{"name":"listingId","type":"uint256","indexed":true},
		{"name":"nftContract","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"seller","type":"address","indexed":false},
		{"name":"price","type":"uint256","indexed":false},
		{"name":"listingType","type":"uint8","indexed":false}]},
	{"type":"event","name":"CollectionBundleListed","inputs":[
		{"name":"collectionId","type":"uint256","indexed":true},
		{"name":"nftContract","type":"address","indexed":true},
		{"name":"seller","type":"address","indexed":false},
		{"name":"tokenIds","type":"uint256[]","indexed":false},
		{"name":"bundlePrice","type":"uint256","indexed":false},
		{"name":"collectionName","type":"string","indexed":false}]},
	{"type":"event","name":"PriceUpdated","inputs":[
		{"name":"listingId","type":"uint256","indexed":true},
		{"name":"oldPrice","type":"uint256","indexed":false},
		{"name":"newPrice","type":"uint256","indexed":false}]},
	{"type":"event","name":"BundlePriceUpdated","inputs":[
		{"name":"collectionId","type":"uint256","indexed":true},
		{"name":"oldPrice","type":"uint256","indexed":false},
		{"name":"newPrice","type":"uint256","indexed":false}]},
	{"type":"event","name":"ListingCancelled","inputs":[
		{"name":"listingId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":true},
		{"name":"listingType","type":"uint8","indexed":false}]},
	{"type":"event","name":"CollectionCancelled","inputs":[
		{"name":"collectionId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":true},
		{"name":"listingType","type":"uint8","indexed":false}]},
	{"type":"event","name":"NFTSold","inputs":[
		{"name":"listingId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":false},
		{"name":"buyer","type":"address","indexed":false},
		{"name":"price","type":"uint256","indexed":false},
		{"name":"listingType","type":"uint8","indexed":false}]},
	{"type":"event","name":"CollectionBundleSold","inputs":[
		{"name":"collectionId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":false},
		{"name":"buyer","type":"address","indexed":false},
		{"name":"tokenIds","type":"uint256[]","indexed":false},
		{"name":"bundlePrice","type":"uint256","indexed":false}]}
]`

var (
	AuctionABI = mustABI(auctionABIJSON)
	MarketABI  = mustABI(marketABIJSON)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
