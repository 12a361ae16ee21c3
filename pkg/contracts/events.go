package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

type AuctionCreated struct {
	AuctionId     *big.Int
	Seller        common.Address
	NftContract   common.Address
	AuctionType   uint8
	TokenId       *big.Int
	TokenIds      []*big.Int
	StartingPrice *big.Int
	EndTime       *big.Int
	Title         string
	Raw           ethtypes.Log
}

type BidPlaced struct {
	AuctionId *big.Int
	Bidder    common.Address
	Timestamp *big.Int
	Raw       ethtypes.Log
}

type AuctionFinalized struct {
	AuctionId         *big.Int
	Winner            common.Address
	FinalPrice        *big.Int
	PlatformFeeAmount *big.Int
	SellerAmount      *big.Int
	Raw               ethtypes.Log
}

type AuctionCancelled struct {
	AuctionId *big.Int
	Seller    common.Address
	Reason    string
	Raw       ethtypes.Log
}

type NFTClaimed struct {
	AuctionId  *big.Int
	Winner     common.Address
	AmountPaid *big.Int
	Raw        ethtypes.Log
}

type NFTReclaimed struct {
	AuctionId *big.Int
	Seller    common.Address
	Raw       ethtypes.Log
}

type NFTListed struct {
	ListingId   *big.Int
	NftContract common.Address
	TokenId     *big.Int
	Seller      common.Address
	Price       *big.Int
	ListingType uint8
	Raw         ethtypes.Log
}

type CollectionBundleListed struct {
	CollectionId   *big.Int
	NftContract    common.Address
	Seller         common.Address
	TokenIds       []*big.Int
	BundlePrice    *big.Int
	CollectionName string
	Raw            ethtypes.Log
}

type PriceUpdated struct {
	ListingId *big.Int
	OldPrice  *big.Int
	NewPrice  *big.Int
	Raw       ethtypes.Log
}

type BundlePriceUpdated struct {
	CollectionId *big.Int
	OldPrice     *big.Int
	NewPrice     *big.Int
	Raw          ethtypes.Log
}

type ListingCancelled struct {
	ListingId   *big.Int
	Seller      common.Address
	ListingType uint8
	Raw         ethtypes.Log
}

type CollectionCancelled struct {
	CollectionId *big.Int
	Seller       common.Address
	ListingType  uint8
	Raw          ethtypes.Log
}

type NFTSold struct {
	ListingId   *big.Int
	Seller      common.Address
	Buyer       common.Address
	Price       *big.Int
	ListingType uint8
	Raw         ethtypes.Log
}

type CollectionBundleSold struct {
	CollectionId *big.Int
	Seller       common.Address
	Buyer        common.Address
	TokenIds     []*big.Int
	BundlePrice  *big.Int
	Raw          ethtypes.Log
}

var (
	auctionContract = bind.NewBoundContract(common.Address{}, AuctionABI, nil, nil, nil)
	marketContract  = bind.NewBoundContract(common.Address{}, MarketABI, nil, nil, nil)
)

// DecodeAuctionLog maps a raw log from the auction contract to its typed
// event struct. Unknown topics are an error so callers notice ABI drift.
func DecodeAuctionLog(lg ethtypes.Log) (interface{}, error) {
	return decode(AuctionABI, auctionContract, lg)
}

// DecodeMarketLog maps a raw log from the marketplace contract to its
// typed event struct.
func DecodeMarketLog(lg ethtypes.Log) (interface{}, error) {
	return decode(MarketABI, marketContract, lg)
}

func decode(contractABI abi.ABI, bound *bind.BoundContract, lg ethtypes.Log) (interface{}, error) {
	if len(lg.Topics) == 0 {
		return nil, errors.New("log has no topics")
	}
	event, err := contractABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, errors.Wrapf(err, "unknown event topic %s", lg.Topics[0])
	}

	out := newEvent(event.Name)
	if out == nil {
		return nil, errors.Errorf("no decoder for event %s", event.Name)
	}
	if err := bound.UnpackLog(out, event.Name, lg); err != nil {
		return nil, errors.Wrapf(err, "could not unpack %s log", event.Name)
	}
	setRaw(out, lg)
	return out, nil
}

func newEvent(name string) interface{} {
	switch name {
	case "AuctionCreated":
		return new(AuctionCreated)
	case "BidPlaced":
		return new(BidPlaced)
	case "AuctionFinalized":
		return new(AuctionFinalized)
	case "AuctionCancelled":
		return new(AuctionCancelled)
	case "NFTClaimed":
		return new(NFTClaimed)
	case "NFTReclaimed":
		return new(NFTReclaimed)
	case "NFTListed":
		return new(NFTListed)
	case "CollectionBundleListed":
		return new(CollectionBundleListed)
	case "PriceUpdated":
		return new(PriceUpdated)
	case "BundlePriceUpdated":
		return new(BundlePriceUpdated)
	case "ListingCancelled":
		return new(ListingCancelled)
	case "CollectionCancelled":
		return new(CollectionCancelled)
	case "NFTSold":
		return new(NFTSold)
	case "CollectionBundleSold":
		return new(CollectionBundleSold)
	default:
		return nil
	}
}

func setRaw(out interface{}, lg ethtypes.Log) {
	switch ev := out.(type) {
	case *AuctionCreated:
		ev.Raw = lg
	case *BidPlaced:
		ev.Raw = lg
	case *AuctionFinalized:
		ev.Raw = lg
	case *AuctionCancelled:
		ev.Raw = lg
	case *NFTClaimed:
		ev.Raw = lg
	case *NFTReclaimed:
		ev.Raw = lg
	case *NFTListed:
		ev.Raw = lg
	case *CollectionBundleListed:
		ev.Raw = lg
	case *PriceUpdated:
		ev.Raw = lg
	case *BundlePriceUpdated:
		ev.Raw = lg
	case *ListingCancelled:
		ev.Raw = lg
	case *CollectionCancelled:
		ev.Raw = lg
	case *NFTSold:
		ev.Raw = lg
	case *CollectionBundleSold:
		ev.Raw = lg
	}
}
