package indexer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/veilmarket/market-indexer/pkg/api"
)

type NetworkConfig struct {
	Name string `yaml:"name"`
}

type EthConfig struct {
	RPCEndpoint string `yaml:"rpc_endpoint"`
	WSEndpoint  string `yaml:"ws_endpoint"`
}

type ContractsConfig struct {
	Auction string `yaml:"auction"`
	Market  string `yaml:"market"`
}

type StoreConfig struct {
	Dsn string `yaml:"dsn"`
}

type MetadataConfig struct {
	Endpoint  string `yaml:"endpoint"`
	CacheSize int    `yaml:"cache_size"`
}

type SyncConfig struct {
	// Interval between incremental sync cycles.
	Interval time.Duration `yaml:"interval"`
	// MarketStagger offsets the market service's timer from the auction
	// one so the two do not hit the RPC endpoint in lockstep.
	MarketStagger time.Duration `yaml:"market_stagger"`
	// ChunkDelay is the pause between consecutive log queries.
	ChunkDelay time.Duration `yaml:"chunk_delay"`
}

type Config struct {
	Network   *NetworkConfig   `yaml:"network"`
	Eth       *EthConfig       `yaml:"eth"`
	Contracts *ContractsConfig `yaml:"contracts"`
	Store     *StoreConfig     `yaml:"store"`
	Metadata  *MetadataConfig  `yaml:"metadata"`
	Sync      *SyncConfig      `yaml:"sync"`
	Api       *api.Config      `yaml:"api"`
}

// validate rejects a config file missing a required section before any
// connection is attempted, so a bad file fails through the normal error
// path instead of a nil dereference. The sync section is optional.
func (c *Config) validate() error {
	switch {
	case c.Network == nil:
		return errors.New("config is missing the network section")
	case c.Eth == nil:
		return errors.New("config is missing the eth section")
	case c.Contracts == nil:
		return errors.New("config is missing the contracts section")
	case c.Store == nil:
		return errors.New("config is missing the store section")
	case c.Metadata == nil:
		return errors.New("config is missing the metadata section")
	case c.Api == nil:
		return errors.New("config is missing the api section")
	}
	return nil
}

const defaultSyncInterval = time.Minute

func (c *SyncConfig) interval() time.Duration {
	if c == nil || c.Interval <= 0 {
		return defaultSyncInterval
	}
	return c.Interval
}

func (c *SyncConfig) marketStagger() time.Duration {
	if c == nil || c.MarketStagger <= 0 {
		return c.interval() / 2
	}
	return c.MarketStagger
}
