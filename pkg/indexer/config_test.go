package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/api"
)

func fullConfig() *Config {
	return &Config{
		Network:   &NetworkConfig{Name: "sepolia"},
		Eth:       &EthConfig{RPCEndpoint: "http://localhost:8545", WSEndpoint: "ws://localhost:8546"},
		Contracts: &ContractsConfig{Auction: "0x1", Market: "0x2"},
		Store:     &StoreConfig{Dsn: "postgres://localhost/indexer"},
		Metadata:  &MetadataConfig{Endpoint: "http://localhost:9000"},
		Api:       &api.Config{Host: "0.0.0.0", Port: 8080},
	}
}

func TestConfigValidation(t *testing.T) {
	require.NoError(t, fullConfig().validate())

	cases := []struct {
		section string
		mutate  func(c *Config)
	}{
		{"network", func(c *Config) { c.Network = nil }},
		{"eth", func(c *Config) { c.Eth = nil }},
		{"contracts", func(c *Config) { c.Contracts = nil }},
		{"store", func(c *Config) { c.Store = nil }},
		{"metadata", func(c *Config) { c.Metadata = nil }},
		{"api", func(c *Config) { c.Api = nil }},
	}
	for _, tc := range cases {
		config := fullConfig()
		tc.mutate(config)
		err := config.validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), tc.section)
	}
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	config := fullConfig()
	config.Store = nil

	_, err := New(context.Background(), config, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "store")
}

func TestSyncConfigDefaults(t *testing.T) {
	var config *SyncConfig
	require.Equal(t, time.Minute, config.interval())
	require.Equal(t, 30*time.Second, config.marketStagger())

	config = &SyncConfig{Interval: 2 * time.Minute}
	require.Equal(t, 2*time.Minute, config.interval())
	require.Equal(t, time.Minute, config.marketStagger())

	config.MarketStagger = 10 * time.Second
	require.Equal(t, 10*time.Second, config.marketStagger())
}
