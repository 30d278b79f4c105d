package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultRiskReportBaseURL is the rugcheck-style report API.
const DefaultRiskReportBaseURL = "https://api.rugcheck.xyz"

// RiskReport is a third-party risk summary for a token. Advisory only.
type RiskReport struct {
	Score int
	Risks []string
}

// RiskReportClient fetches third-party risk reports.
type RiskReportClient struct {
	baseURL string
	client  *http.Client
}

// NewRiskReportClient creates a risk report client.
func NewRiskReportClient(baseURL string, client *http.Client) *RiskReportClient {
	if baseURL == "" {
		baseURL = DefaultRiskReportBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RiskReportClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Report fetches the risk summary for a mint. Returns nil, nil when the
// upstream has no report for the token.
func (c *RiskReportClient) Report(ctx context.Context, mint string) (*RiskReport, error) {
	url := c.baseURL + "/v1/tokens/" + mint + "/report/summary"

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

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Score int `json:"score"`
		Risks []struct {
			Name string `json:"name"`
		} `json:"risks"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}

	report := &RiskReport{Score: parsed.Score}
	for _, r := range parsed.Risks {
		if r.Name != "" {
			report.Risks = append(report.Risks, r.Name)
		}
	}
	return report, nil
}
