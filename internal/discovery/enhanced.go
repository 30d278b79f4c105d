// Package discovery resolves token deployers and enumerates a deployer's
// full token history, preferring an indexed DAS-style API with a raw-ledger
// RPC fallback.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// EnhancedClient talks to a DAS-style indexed asset API (Helius-compatible
// JSON-RPC). It is optional: when unconfigured, discovery falls back to raw
// ledger scans.
type EnhancedClient struct {
	endpoint  string
	client    *http.Client
	pageLimit int
	requestID atomic.Uint64
}

// DAS page size; the API caps pages at 1000 items.
const dasPageLimit = 1000

// NewEnhancedClient creates a DAS API client.
func NewEnhancedClient(endpoint string, client *http.Client) *EnhancedClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &EnhancedClient{
		endpoint:  endpoint,
		client:    client,
		pageLimit: dasPageLimit,
	}
}

// Asset is the subset of a DAS asset the scanner needs.
type Asset struct {
	ID      string // mint address
	Name    string
	Symbol  string
	Creator string // first verified creator, or update authority
}

// GetAsset fetches one asset by mint. Returns nil when the indexer does not
// know the mint.
func (c *EnhancedClient) GetAsset(ctx context.Context, mint string) (*Asset, error) {
	var result dasAsset
	err := c.call(ctx, "getAsset", map[string]interface{}{"id": mint}, &result)
	if err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, nil
	}
	asset := convertAsset(&result)
	return &asset, nil
}

// AssetsByCreator lists assets created by a wallet, one page at a time.
// Pages are 1-based. Returns the page items and the indexer's total count.
func (c *EnhancedClient) AssetsByCreator(ctx context.Context, wallet string, page int) ([]Asset, int, error) {
	params := map[string]interface{}{
		"creatorAddress": wallet,
		"onlyVerified":   true,
		"page":           page,
		"limit":          c.pageLimit,
	}

	var result struct {
		Total int        `json:"total"`
		Items []dasAsset `json:"items"`
	}
	if err := c.call(ctx, "getAssetsByCreator", params, &result); err != nil {
		return nil, 0, err
	}

	assets := make([]Asset, 0, len(result.Items))
	for i := range result.Items {
		assets = append(assets, convertAsset(&result.Items[i]))
	}
	return assets, result.Total, nil
}

func convertAsset(raw *dasAsset) Asset {
	asset := Asset{ID: raw.ID}
	if raw.Content != nil {
		asset.Name = raw.Content.Metadata.Name
		asset.Symbol = raw.Content.Metadata.Symbol
	}
	for _, cr := range raw.Creators {
		if cr.Verified {
			asset.Creator = cr.Address
			break
		}
	}
	if asset.Creator == "" && len(raw.Authorities) > 0 {
		asset.Creator = raw.Authorities[0].Address
	}
	return asset
}

// call performs a single DAS JSON-RPC request.
func (c *EnhancedClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      c.requestID.Add(1),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("DAS error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if result != nil && parsed.Result != nil {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// dasAsset mirrors the upstream DAS asset shape.
type dasAsset struct {
	ID      string `json:"id"`
	Content *struct {
		Metadata struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"metadata"`
	} `json:"content"`
	Authorities []struct {
		Address string `json:"address"`
	} `json:"authorities"`
	Creators []struct {
		Address  string `json:"address"`
		Verified bool   `json:"verified"`
	} `json:"creators"`
}
