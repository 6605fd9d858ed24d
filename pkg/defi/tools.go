// Package defi maps the DeFi Llama operations onto tools: each tool validates
// its parameters, issues exactly one upstream call and reshapes the response
// into the documented output.
package defi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gtonic/defillama-mcp/pkg/defillama"
	"github.com/gtonic/defillama-mcp/pkg/tool"
)

// Limits caps list-shaped results. Zero means no truncation.
type Limits struct {
	Protocols   int
	Pools       int
	ChartPoints int
}

func DefaultLimits() Limits {
	return Limits{
		Protocols:   20,
		Pools:       30,
		ChartPoints: 30,
	}
}

// Tools returns the full tool set backed by the given client.
func Tools(client *defillama.Client, limits Limits) []tool.Tool {
	return []tool.Tool{
		Protocols(client, limits),
		ProtocolTVL(client),
		ChainTVL(client, limits),
		TokenPrices(client),
		Pools(client, limits),
		PoolTVL(client, limits),
	}
}

func Protocols(client *defillama.Client, limits Limits) tool.Tool {
	return tool.Tool{
		Name:        "get_protocols",
		Description: "Retrieve a list of DeFi protocols from DeFi Llama, limited to the first " + strconv.Itoa(limits.Protocols) + " results",

		Schema: emptySchema(),

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			protocols, err := client.Protocols(ctx)

			if err != nil {
				return nil, err
			}

			return truncate(protocols, limits.Protocols), nil
		},
	}
}

func ProtocolTVL(client *defillama.Client) tool.Tool {
	return tool.Tool{
		Name:        "get_protocol_tvl",
		Description: "Get Total Value Locked (TVL) for a DeFi protocol as a per-chain breakdown plus a total",

		Schema: tool.Schema{
			"type": "object",

			"properties": map[string]any{
				"protocol": map[string]any{
					"type":        "string",
					"description": "Protocol slug, e.g. \"aave\" or \"uniswap\"",
				},
			},

			"required": []string{"protocol"},
		},

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			protocol, err := tool.String(args, "protocol")

			if err != nil {
				return nil, err
			}

			detail, err := client.Protocol(ctx, protocol)

			if err != nil {
				return nil, err
			}

			if detail.CurrentChainTVLs == nil {
				return nil, &defillama.UpstreamError{
					Status:  http.StatusOK,
					Message: "protocol detail is missing the currentChainTvls breakdown",
				}
			}

			return FlattenChainTVLs(detail.CurrentChainTVLs), nil
		},
	}
}

func ChainTVL(client *defillama.Client, limits Limits) tool.Tool {
	return tool.Tool{
		Name:        "get_chain_tvl",
		Description: "Retrieve historical Total Value Locked (TVL) data for a blockchain, oldest first",

		Schema: tool.Schema{
			"type": "object",

			"properties": map[string]any{
				"chain": map[string]any{
					"type":        "string",
					"description": "Chain name, e.g. \"ethereum\" or \"bsc\"",
				},
			},

			"required": []string{"chain"},
		},

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			chain, err := tool.String(args, "chain")

			if err != nil {
				return nil, err
			}

			series, err := client.ChainTVL(ctx, chain)

			if err != nil {
				return nil, err
			}

			return FormatSeries(truncate(series, limits.ChartPoints)), nil
		},
	}
}

func TokenPrices(client *defillama.Client) tool.Tool {
	return tool.Tool{
		Name:        "get_token_prices",
		Description: "Get current prices for one or more token identifiers (comma-separated), e.g. \"ethereum:0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2\" or \"coingecko:ethereum\"",

		Schema: tool.Schema{
			"type": "object",

			"properties": map[string]any{
				"token": map[string]any{
					"type":        "string",
					"description": "Token identifier(s) in <chain>:<address> or coingecko:<id> form, comma-separated",
				},
			},

			"required": []string{"token"},
		},

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			token, err := tool.String(args, "token")

			if err != nil {
				return nil, err
			}

			return client.TokenPrices(ctx, token)
		},
	}
}

func Pools(client *defillama.Client, limits Limits) tool.Tool {
	return tool.Tool{
		Name:        "get_pools",
		Description: "Retrieve a list of liquidity pools from DeFi Llama, limited to the first " + strconv.Itoa(limits.Pools) + " results",

		Schema: emptySchema(),

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			pools, err := client.Pools(ctx)

			if err != nil {
				return nil, err
			}

			return truncate(pools, limits.Pools), nil
		},
	}
}

func PoolTVL(client *defillama.Client, limits Limits) tool.Tool {
	return tool.Tool{
		Name:        "get_pool_tvl",
		Description: "Get chart data for a liquidity pool by its ID",

		Schema: tool.Schema{
			"type": "object",

			"properties": map[string]any{
				"pool": map[string]any{
					"type":        "string",
					"description": "Pool ID, e.g. \"747c1d2a-c668-4682-b9f9-296708a3dd90\"",
				},
			},

			"required": []string{"pool"},
		},

		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			pool, err := tool.String(args, "pool")

			if err != nil {
				return nil, err
			}

			chart, err := client.PoolChart(ctx, pool)

			if err != nil {
				return nil, err
			}

			return PoolChart{
				PoolID: pool,
				Data:   truncate(chart, limits.ChartPoints),
			}, nil
		},
	}
}

func emptySchema() tool.Schema {
	return tool.Schema{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": false,
	}
}

func truncate[T any](list []T, limit int) []T {
	if list == nil {
		return []T{}
	}

	if limit > 0 && len(list) > limit {
		return list[:limit]
	}

	return list
}
