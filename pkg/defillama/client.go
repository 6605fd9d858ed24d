// Package defillama is a minimal client for the public DeFi Llama REST APIs.
// Every method performs a single GET with a bounded timeout and returns the
// decoded body or an *UpstreamError. There are no retries and no caching.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTVLBase    = "https://api.llama.fi"
	DefaultCoinsBase  = "https://coins.llama.fi"
	DefaultYieldsBase = "https://yields.llama.fi"

	DefaultUserAgent = "defillama-mcp/1.0"
	DefaultTimeout   = 30 * time.Second
)

type Client struct {
	client *http.Client

	tvlBase    string
	coinsBase  string
	yieldsBase string

	userAgent string
}

type Option func(*Client)

func New(options ...Option) (*Client, error) {
	c := &Client{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},

		tvlBase:    DefaultTVLBase,
		coinsBase:  DefaultCoinsBase,
		yieldsBase: DefaultYieldsBase,

		userAgent: DefaultUserAgent,
	}

	for _, o := range options {
		o(c)
	}

	for _, base := range []string{c.tvlBase, c.coinsBase, c.yieldsBase} {
		url, err := url.Parse(base)

		if err != nil {
			return nil, err
		}

		if !url.IsAbs() || url.Host == "" {
			return nil, fmt.Errorf("invalid base URL %q", base)
		}
	}

	return c, nil
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithTVLBase(base string) Option {
	return func(c *Client) {
		c.tvlBase = base
	}
}

func WithCoinsBase(base string) Option {
	return func(c *Client) {
		c.coinsBase = base
	}
}

func WithYieldsBase(base string) Option {
	return func(c *Client) {
		c.yieldsBase = base
	}
}

func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// Protocols lists all protocol summaries known to DeFi Llama.
func (c *Client) Protocols(ctx context.Context) ([]Protocol, error) {
	var result []Protocol

	if err := c.get(ctx, c.tvlBase, "/protocols", &result); err != nil {
		return nil, err
	}

	return result, nil
}

// Protocol returns the detail record for a protocol slug, including the
// per-chain TVL breakdown.
func (c *Client) Protocol(ctx context.Context, slug string) (*ProtocolDetail, error) {
	var result ProtocolDetail

	if err := c.get(ctx, c.tvlBase, "/protocol/"+url.PathEscape(slug), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ChainTVL returns the historical TVL series for a chain, oldest first, as
// reported by the upstream.
func (c *Client) ChainTVL(ctx context.Context, chain string) ([]ChainTVLPoint, error) {
	var result []ChainTVLPoint

	if err := c.get(ctx, c.tvlBase, "/v2/historicalChainTvl/"+url.PathEscape(chain), &result); err != nil {
		return nil, err
	}

	return result, nil
}

// TokenPrices returns current prices for one or more token identifiers
// (comma-separated, e.g. "ethereum:0x...,coingecko:ethereum"), keyed by
// identifier.
func (c *Client) TokenPrices(ctx context.Context, tokens string) (map[string]TokenPrice, error) {
	var result struct {
		Coins map[string]TokenPrice `json:"coins"`
	}

	if err := c.get(ctx, c.coinsBase, "/prices/current/"+escapeTokens(tokens), &result); err != nil {
		return nil, err
	}

	if result.Coins == nil {
		return map[string]TokenPrice{}, nil
	}

	return result.Coins, nil
}

// Pools lists pool summaries from the yields API. Individual summaries are
// passed through verbatim since their field set varies per pool.
func (c *Client) Pools(ctx context.Context) ([]json.RawMessage, error) {
	return c.getData(ctx, c.yieldsBase, "/pools")
}

// PoolChart returns the TVL/APY chart for a pool id.
func (c *Client) PoolChart(ctx context.Context, pool string) ([]json.RawMessage, error) {
	return c.getData(ctx, c.yieldsBase, "/chart/"+url.PathEscape(pool))
}

// getData decodes the yields API envelope {"status": ..., "data": [...]},
// falling back to a bare array when the envelope is absent.
func (c *Client) getData(ctx context.Context, base, path string) ([]json.RawMessage, error) {
	var raw json.RawMessage

	if err := c.get(ctx, base, path, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var list []json.RawMessage

	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	return nil, &UpstreamError{Message: fmt.Sprintf("unexpected response shape for %s", path)}
}

func (c *Client) get(ctx context.Context, base, path string, out any) error {
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return &UpstreamError{Message: err.Error()}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)

	if err != nil {
		return &UpstreamError{Message: err.Error()}
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return &UpstreamError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Message: fmt.Sprintf("%s returned %s", path, resp.Status)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed response for %s: %s", path, err)}
	}

	return nil
}

// escapeTokens escapes each comma-separated token identifier individually so
// the commas survive as upstream list separators.
func escapeTokens(tokens string) string {
	parts := strings.Split(tokens, ",")

	for i, p := range parts {
		parts[i] = url.PathEscape(strings.TrimSpace(p))
	}

	return strings.Join(parts, ",")
}
