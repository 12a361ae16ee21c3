package index_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/veilmarket/market-indexer/pkg/contracts"
	"github.com/veilmarket/market-indexer/pkg/types"
)

var (
	auctionContract = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	marketContract  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	nftContract     = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	seller          = common.HexToAddress("0x00000000000000000000000000000000000000d4")
	buyer           = common.HexToAddress("0x00000000000000000000000000000000000000e5")
)

// fakeResolver returns deterministic metadata, failing for the token ids
// listed in fail. All lookups are counted so tests can assert the
// backfill short-circuit skips external calls.
type fakeResolver struct {
	fail  map[string]bool
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, contract string, tokenID string) (*types.TokenMetadata, error) {
	r.calls++
	if r.fail[tokenID] {
		return nil, errors.Errorf("no metadata for token %s", tokenID)
	}
	return &types.TokenMetadata{
		Name:        "Token #" + tokenID,
		Image:       "ipfs://image/" + tokenID,
		Description: "token " + tokenID,
		Collection:  "Test Collection",
	}, nil
}

func idTopic(id uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(id))
}

func addrTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func bigIDs(ids []uint64) []*big.Int {
	out := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		out = append(out, new(big.Int).SetUint64(id))
	}
	return out
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

func auctionCreatedLog(t *testing.T, id uint64, auctionType uint8, tokenID uint64, tokenIDs []uint64, price *big.Int, endTime int64, title string) ethtypes.Log {
	t.Helper()
	ev := contracts.AuctionABI.Events["AuctionCreated"]
	data, err := ev.Inputs.NonIndexed().Pack(nftContract, auctionType, new(big.Int).SetUint64(tokenID), bigIDs(tokenIDs), price, big.NewInt(endTime), title)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: auctionContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(seller)},
		Data:    data,
	}
}

func bidPlacedLog(t *testing.T, id uint64, timestamp int64) ethtypes.Log {
	t.Helper()
	ev := contracts.AuctionABI.Events["BidPlaced"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(timestamp))
	require.NoError(t, err)
	return ethtypes.Log{
		Address: auctionContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(buyer)},
		Data:    data,
	}
}

func auctionFinalizedLog(t *testing.T, id uint64, finalPrice *big.Int) ethtypes.Log {
	t.Helper()
	ev := contracts.AuctionABI.Events["AuctionFinalized"]
	data, err := ev.Inputs.NonIndexed().Pack(finalPrice, big.NewInt(0), finalPrice)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: auctionContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(buyer)},
		Data:    data,
	}
}

func auctionCancelledLog(t *testing.T, id uint64, reason string) ethtypes.Log {
	t.Helper()
	ev := contracts.AuctionABI.Events["AuctionCancelled"]
	data, err := ev.Inputs.NonIndexed().Pack(reason)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: auctionContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(seller)},
		Data:    data,
	}
}

func nftClaimedLog(t *testing.T, id uint64, amount *big.Int) ethtypes.Log {
	t.Helper()
	ev := contracts.AuctionABI.Events["NFTClaimed"]
	data, err := ev.Inputs.NonIndexed().Pack(amount)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: auctionContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(buyer)},
		Data:    data,
	}
}

func nftReclaimedLog(t *testing.T, id uint64) ethtypes.Log {
	t.Helper()
	ev := contracts.AuctionABI.Events["NFTReclaimed"]
	return ethtypes.Log{
		Address: auctionContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(seller)},
	}
}

func nftListedLog(t *testing.T, id uint64, tokenID uint64, price *big.Int, listingType uint8) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["NFTListed"]
	data, err := ev.Inputs.NonIndexed().Pack(new(big.Int).SetUint64(tokenID), seller, price, listingType)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(nftContract)},
		Data:    data,
	}
}

func bundleListedLog(t *testing.T, id uint64, tokenIDs []uint64, price *big.Int, collection string) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["CollectionBundleListed"]
	data, err := ev.Inputs.NonIndexed().Pack(seller, bigIDs(tokenIDs), price, collection)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(nftContract)},
		Data:    data,
	}
}

func priceUpdatedLog(t *testing.T, id uint64, oldPrice, newPrice *big.Int) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["PriceUpdated"]
	data, err := ev.Inputs.NonIndexed().Pack(oldPrice, newPrice)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id)},
		Data:    data,
	}
}

func bundlePriceUpdatedLog(t *testing.T, id uint64, oldPrice, newPrice *big.Int) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["BundlePriceUpdated"]
	data, err := ev.Inputs.NonIndexed().Pack(oldPrice, newPrice)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id)},
		Data:    data,
	}
}

func listingCancelledLog(t *testing.T, id uint64, listingType uint8) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["ListingCancelled"]
	data, err := ev.Inputs.NonIndexed().Pack(listingType)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id), addrTopic(seller)},
		Data:    data,
	}
}

func nftSoldLog(t *testing.T, id uint64, price *big.Int, listingType uint8) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["NFTSold"]
	data, err := ev.Inputs.NonIndexed().Pack(seller, buyer, price, listingType)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id)},
		Data:    data,
	}
}

func bundleSoldLog(t *testing.T, id uint64, tokenIDs []uint64, price *big.Int) ethtypes.Log {
	t.Helper()
	ev := contracts.MarketABI.Events["CollectionBundleSold"]
	data, err := ev.Inputs.NonIndexed().Pack(seller, buyer, bigIDs(tokenIDs), price)
	require.NoError(t, err)
	return ethtypes.Log{
		Address: marketContract,
		Topics:  []common.Hash{ev.ID, idTopic(id)},
		Data:    data,
	}
}
