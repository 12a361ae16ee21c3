package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/veilmarket/market-indexer/pkg/api"
)

const (
	fakeHost = "localhost"
	fakePort = 18091
)

func TestNew(t *testing.T) {
	api.New(&api.Config{}, zap.NewNop())
}

func TestHealthEndpoints(t *testing.T) {
	s := api.New(&api.Config{
		Host: fakeHost,
		Port: fakePort,
	}, zap.NewExample())

	go func() {
		_ = s.Run(context.Background())
	}()
	defer func() {
		require.NoError(t, s.Shutdown())
	}()

	base := fmt.Sprintf("http://%s:%d", fakeHost, fakePort)
	client := &http.Client{Timeout: time.Second}

	var resp *http.Response
	var err error
	for i := 0; i < 20; i++ {
		resp, err = client.Get(base + "/health")
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
