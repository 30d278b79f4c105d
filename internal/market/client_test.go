package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBulkTokenStatus_PartitionsAliveAndDead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two pairs returned, third mint absent entirely.
		fmt.Fprint(w, `{"pairs":[
			{"baseToken":{"address":"MintAAAA","name":"Alive Token","symbol":"ALIVE"},
			 "priceUsd":"0.5","liquidity":{"usd":25000},"volume":{"h24":1200},"fdv":500000,"pairCreatedAt":1700000000000},
			{"baseToken":{"address":"MintBBBB","name":"Dead Token","symbol":"DEAD"},
			 "priceUsd":"0.0001","liquidity":{"usd":3},"pairCreatedAt":1700000000000}
		]}`)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	statuses, err := client.BulkTokenStatus(context.Background(), []string{"MintAAAA", "MintBBBB", "MintCCCC"})
	if err != nil {
		t.Fatalf("BulkTokenStatus failed: %v", err)
	}

	alive, ok := statuses["MintAAAA"]
	if !ok || !alive.Alive {
		t.Errorf("expected MintAAAA alive, got %+v", alive)
	}
	if alive.PriceUSD == nil || *alive.PriceUSD != 0.5 {
		t.Errorf("expected price 0.5, got %v", alive.PriceUSD)
	}
	if alive.PairCreatedAt == nil || *alive.PairCreatedAt != 1700000000 {
		t.Errorf("expected pair created at 1700000000 seconds, got %v", alive.PairCreatedAt)
	}

	dead, ok := statuses["MintBBBB"]
	if !ok || dead.Alive {
		t.Errorf("expected MintBBBB dead, got %+v", dead)
	}

	// Absent mint stays unknown: no entry at all.
	if _, ok := statuses["MintCCCC"]; ok {
		t.Error("expected no entry for mint with no pairs")
	}
}

func TestBulkTokenStatus_KeepsMostLiquidPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pairs":[
			{"baseToken":{"address":"MintAAAA","symbol":"A"},"liquidity":{"usd":500}},
			{"baseToken":{"address":"MintAAAA","symbol":"A"},"liquidity":{"usd":9000}}
		]}`)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	statuses, err := client.BulkTokenStatus(context.Background(), []string{"MintAAAA"})
	if err != nil {
		t.Fatalf("BulkTokenStatus failed: %v", err)
	}
	if statuses["MintAAAA"].LiquidityUSD != 9000 {
		t.Errorf("expected most liquid pair (9000), got %f", statuses["MintAAAA"].LiquidityUSD)
	}
}

func TestBulkTokenStatus_Batches(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		fmt.Fprint(w, `{"pairs":[]}`)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithBatchSize(2))
	mints := []string{"m1", "m2", "m3", "m4", "m5"}
	if _, err := client.BulkTokenStatus(context.Background(), mints); err != nil {
		t.Fatalf("BulkTokenStatus failed: %v", err)
	}

	if len(requests) != 3 {
		t.Fatalf("expected 3 batched requests, got %d", len(requests))
	}
	if !strings.HasSuffix(requests[0], "m1,m2") {
		t.Errorf("unexpected first batch: %s", requests[0])
	}
	if !strings.HasSuffix(requests[2], "m5") {
		t.Errorf("unexpected last batch: %s", requests[2])
	}
}

func TestBulkTokenStatus_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.BulkTokenStatus(context.Background(), []string{"m1"}); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
