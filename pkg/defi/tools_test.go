package defi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gtonic/defillama-mcp/pkg/defillama"
	"github.com/gtonic/defillama-mcp/pkg/tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	*httptest.Server

	calls atomic.Int64
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	t.Helper()

	u := &upstream{}

	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		handler(w, r)
	}))

	t.Cleanup(u.Close)

	return u
}

func newClient(t *testing.T, u *upstream) *defillama.Client {
	t.Helper()

	client, err := defillama.New(
		defillama.WithTVLBase(u.URL),
		defillama.WithCoinsBase(u.URL),
		defillama.WithYieldsBase(u.URL),
	)
	require.NoError(t, err)

	return client
}

func TestProtocolsProjectionAndLimit(t *testing.T) {
	var list []map[string]any

	for i := 0; i < 25; i++ {
		list = append(list, map[string]any{
			"id":     fmt.Sprintf("%d", i),
			"name":   fmt.Sprintf("protocol-%d", i),
			"symbol": "P",
			"chain":  "Ethereum",
			"tvl":    float64(i),
			"audits": "2",
			"logo":   "https://example.com/logo.png",
		})
	}

	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(list)
	})

	result, err := Protocols(newClient(t, u), DefaultLimits()).Execute(context.Background(), nil)
	require.NoError(t, err)

	protocols, ok := result.([]defillama.Protocol)
	require.True(t, ok)

	require.Len(t, protocols, 20)
	assert.Equal(t, "protocol-0", protocols[0].Name)

	data, err := json.Marshal(protocols[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"0","name":"protocol-0","symbol":"P","chain":"Ethereum","tvl":0}`, string(data))
}

func TestProtocolTVLFlattensAndSums(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/protocol/aave", r.URL.Path)

		w.Write([]byte(`{"name":"AAVE","currentChainTvls":{"ethereum":3240000000,"polygon":980000000}}`))
	})

	result, err := ProtocolTVL(newClient(t, u)).Execute(context.Background(), map[string]any{"protocol": "aave"})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		"ethereum": 3240000000,
		"polygon":  980000000,
		"total":    4220000000,
	}, result)
}

func TestProtocolTVLEmptyBreakdown(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"AAVE","currentChainTvls":{}}`))
	})

	result, err := ProtocolTVL(newClient(t, u)).Execute(context.Background(), map[string]any{"protocol": "aave"})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"total": 0}, result)
}

func TestProtocolTVLMissingBreakdown(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"AAVE"}`))
	})

	_, err := ProtocolTVL(newClient(t, u)).Execute(context.Background(), map[string]any{"protocol": "aave"})

	var upstreamErr *defillama.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestChainTVLOrderAndDates(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/historicalChainTvl/ethereum", r.URL.Path)

		w.Write([]byte(`[{"date":1609459200,"tvl":1.5},{"date":1609545600,"tvl":2.5},{"date":1609632000,"tvl":2}]`))
	})

	result, err := ChainTVL(newClient(t, u), DefaultLimits()).Execute(context.Background(), map[string]any{"chain": "ethereum"})
	require.NoError(t, err)

	assert.Equal(t, []SeriesPoint{
		{Date: "2021-01-01", TVL: 1.5},
		{Date: "2021-01-02", TVL: 2.5},
		{Date: "2021-01-03", TVL: 2},
	}, result)
}

func TestChainTVLLimit(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		var series []map[string]any

		for i := 0; i < 100; i++ {
			series = append(series, map[string]any{"date": 1609459200 + i*86400, "tvl": float64(i)})
		}

		json.NewEncoder(w).Encode(series)
	})

	result, err := ChainTVL(newClient(t, u), DefaultLimits()).Execute(context.Background(), map[string]any{"chain": "ethereum"})
	require.NoError(t, err)

	points, ok := result.([]SeriesPoint)
	require.True(t, ok)

	require.Len(t, points, 30)
	assert.Equal(t, "2021-01-01", points[0].Date)
}

func TestTokenPrices(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coins":{"coingecko:ethereum":{"symbol":"ETH","price":2000,"decimals":18}}}`))
	})

	result, err := TokenPrices(newClient(t, u)).Execute(context.Background(), map[string]any{"token": "coingecko:ethereum"})
	require.NoError(t, err)

	prices, ok := result.(map[string]defillama.TokenPrice)
	require.True(t, ok)

	assert.Equal(t, float64(2000), prices["coingecko:ethereum"].Price)
}

func TestPoolsLimit(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		var pools []map[string]any

		for i := 0; i < 40; i++ {
			pools = append(pools, map[string]any{"pool": fmt.Sprintf("%d", i)})
		}

		json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": pools})
	})

	result, err := Pools(newClient(t, u), DefaultLimits()).Execute(context.Background(), nil)
	require.NoError(t, err)

	pools, ok := result.([]json.RawMessage)
	require.True(t, ok)

	assert.Len(t, pools, 30)
}

func TestPoolTVLShape(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/747c1d2a-c668-4682-b9f9-296708a3dd90", r.URL.Path)

		w.Write([]byte(`{"status":"success","data":[{"timestamp":"2021-01-01","tvlUsd":100}]}`))
	})

	result, err := PoolTVL(newClient(t, u), DefaultLimits()).Execute(context.Background(), map[string]any{"pool": "747c1d2a-c668-4682-b9f9-296708a3dd90"})
	require.NoError(t, err)

	chart, ok := result.(PoolChart)
	require.True(t, ok)

	assert.Equal(t, "747c1d2a-c668-4682-b9f9-296708a3dd90", chart.PoolID)
	require.Len(t, chart.Data, 1)

	data, err := json.Marshal(chart)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pool_id":"747c1d2a-c668-4682-b9f9-296708a3dd90","data":[{"timestamp":"2021-01-01","tvlUsd":100}]}`, string(data))
}

func TestValidationSkipsUpstream(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	client := newClient(t, u)

	cases := []tool.Tool{
		ProtocolTVL(client),
		ChainTVL(client, DefaultLimits()),
		TokenPrices(client),
		PoolTVL(client, DefaultLimits()),
	}

	for _, tl := range cases {
		_, err := tl.Execute(context.Background(), map[string]any{})

		var validation *tool.ValidationError
		require.ErrorAs(t, err, &validation, tl.Name)
	}

	assert.Zero(t, u.calls.Load())
}

func TestToolsRegistryComplete(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})

	tools := Tools(newClient(t, u), DefaultLimits())

	var names []string

	for _, tl := range tools {
		names = append(names, tl.Name)
		assert.NotEmpty(t, tl.Description, tl.Name)
		assert.NotNil(t, tl.Schema, tl.Name)
		assert.NotNil(t, tl.Execute, tl.Name)
	}

	assert.Equal(t, []string{
		"get_protocols",
		"get_protocol_tvl",
		"get_chain_tvl",
		"get_token_prices",
		"get_pools",
		"get_pool_tvl",
	}, names)
}
