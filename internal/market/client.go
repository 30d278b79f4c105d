// Package market provides the market-data adapter: bulk token status from a
// DexScreener-style pair API and a third-party risk report feed.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.dexscreener.com"
	DefaultTimeout   = 15 * time.Second
	DefaultBatchSize = 30 // pair API accepts up to 30 mints per request

	// DeadLiquidityUSD is the threshold below which a token with a known
	// pair is considered dead.
	DeadLiquidityUSD = 100.0
)

// TokenStatus is the market snapshot for one token. Tokens absent from the
// API response get no entry: their status is unknown, not dead.
type TokenStatus struct {
	Alive         bool
	LiquidityUSD  float64
	PriceUSD      *float64
	Volume24hUSD  *float64
	FDVUSD        *float64
	PairCreatedAt *int64 // unix seconds
	Name          string
	Symbol        string
}

// Client talks to the pair API over HTTP.
type Client struct {
	baseURL   string
	client    *http.Client
	batchSize int
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithBatchSize sets mints per bulk request.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// NewClient creates a market data client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: DefaultTimeout},
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BulkTokenStatus fetches pair status for all mints, batched to respect the
// upstream per-request limit. Partial upstream failures fail the whole call;
// the orchestrator decides how to degrade.
func (c *Client) BulkTokenStatus(ctx context.Context, mints []string) (map[string]TokenStatus, error) {
	out := make(map[string]TokenStatus, len(mints))

	for start := 0; start < len(mints); start += c.batchSize {
		end := start + c.batchSize
		if end > len(mints) {
			end = len(mints)
		}

		batch, err := c.fetchBatch(ctx, mints[start:end])
		if err != nil {
			return nil, fmt.Errorf("bulk status batch %d: %w", start/c.batchSize, err)
		}
		for mint, status := range batch {
			out[mint] = status
		}
	}

	return out, nil
}

// TokenPrice fetches the live USD price for one mint. Returns nil when no
// pair exists.
func (c *Client) TokenPrice(ctx context.Context, mint string) (*float64, error) {
	statuses, err := c.fetchBatch(ctx, []string{mint})
	if err != nil {
		return nil, err
	}
	status, ok := statuses[mint]
	if !ok {
		return nil, nil
	}
	return status.PriceUSD, nil
}

func (c *Client) fetchBatch(ctx context.Context, mints []string) (map[string]TokenStatus, error) {
	url := c.baseURL + "/latest/dex/tokens/" + strings.Join(mints, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed pairsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal pairs: %w", err)
	}

	// Keep the most liquid pair per mint.
	out := make(map[string]TokenStatus)
	for _, pair := range parsed.Pairs {
		mint := pair.BaseToken.Address
		if mint == "" {
			continue
		}

		status := TokenStatus{
			Name:   pair.BaseToken.Name,
			Symbol: pair.BaseToken.Symbol,
		}
		if pair.Liquidity != nil {
			status.LiquidityUSD = pair.Liquidity.USD
		}
		status.Alive = status.LiquidityUSD >= DeadLiquidityUSD
		if pair.PriceUSD != "" {
			if p, err := strconv.ParseFloat(pair.PriceUSD, 64); err == nil {
				status.PriceUSD = &p
			}
		}
		if pair.Volume != nil {
			v := pair.Volume.H24
			status.Volume24hUSD = &v
		}
		if pair.FDV != nil {
			status.FDVUSD = pair.FDV
		}
		if pair.PairCreatedAt > 0 {
			createdAt := pair.PairCreatedAt / 1000 // API reports milliseconds
			status.PairCreatedAt = &createdAt
		}

		if existing, ok := out[mint]; !ok || status.LiquidityUSD > existing.LiquidityUSD {
			out[mint] = status
		}
	}

	return out, nil
}

// pairsResponse mirrors the upstream JSON shape; only fields the scanner
// needs are declared so upstream drift stays isolated here.
type pairsResponse struct {
	Pairs []pairEntry `json:"pairs"`
}

type pairEntry struct {
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity *struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume *struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	FDV           *float64 `json:"fdv"`
	PairCreatedAt int64    `json:"pairCreatedAt"`
}
