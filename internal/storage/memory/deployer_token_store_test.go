package memory

import (
	"context"
	"testing"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/storage"
)

func i64(v int64) *int64 { return &v }

func TestDeployerTokenStore_UpsertRefreshes(t *testing.T) {
	store := NewDeployerTokenStore()
	ctx := context.Background()

	err := store.Upsert(ctx, &domain.DeployerTokenRecord{
		Deployer:      "DeployerA",
		Token:         "MintA",
		Status:        domain.StatusAlive,
		CreatedAt:     i64(1700000000),
		LastCheckedAt: 1700001000,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Refresh without created_at: status changes, creation time survives.
	err = store.Upsert(ctx, &domain.DeployerTokenRecord{
		Deployer:      "DeployerA",
		Token:         "MintA",
		Status:        domain.StatusDead,
		LastCheckedAt: 1700050000,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	records, err := store.GetByDeployer(ctx, "DeployerA")
	if err != nil {
		t.Fatalf("GetByDeployer failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != domain.StatusDead {
		t.Errorf("expected dead status, got %s", records[0].Status)
	}
	if records[0].CreatedAt == nil || *records[0].CreatedAt != 1700000000 {
		t.Errorf("creation time must survive refresh, got %v", records[0].CreatedAt)
	}
}

func TestDeployerTokenStore_OrderingAndStale(t *testing.T) {
	store := NewDeployerTokenStore()
	ctx := context.Background()

	err := store.UpsertBulk(ctx, []*domain.DeployerTokenRecord{
		{Deployer: "D", Token: "MintOld", Status: domain.StatusDead, CreatedAt: i64(100), LastCheckedAt: 500},
		{Deployer: "D", Token: "MintNew", Status: domain.StatusAlive, CreatedAt: i64(300), LastCheckedAt: 2000},
		{Deployer: "D", Token: "MintNoTime", Status: domain.StatusUnknown, LastCheckedAt: 2000},
	})
	if err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	records, _ := store.GetByDeployer(ctx, "D")
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Token != "MintNew" || records[2].Token != "MintNoTime" {
		t.Errorf("unexpected order: %s, %s, %s", records[0].Token, records[1].Token, records[2].Token)
	}

	stale, _ := store.GetStale(ctx, "D", 1000)
	if len(stale) != 1 || stale[0].Token != "MintOld" {
		t.Errorf("expected only MintOld stale, got %v", stale)
	}
}

func TestDeployerTokenStore_Counts(t *testing.T) {
	store := NewDeployerTokenStore()
	ctx := context.Background()

	_ = store.UpsertBulk(ctx, []*domain.DeployerTokenRecord{
		{Deployer: "D", Token: "M1", Status: domain.StatusDead, LastCheckedAt: 1},
		{Deployer: "D", Token: "M2", Status: domain.StatusAlive, LastCheckedAt: 1},
	})

	tokens, deaths, err := store.DeployerCounts(ctx, "D")
	if err != nil {
		t.Fatalf("DeployerCounts failed: %v", err)
	}
	if tokens != 2 || deaths != 1 {
		t.Errorf("expected 2/1, got %d/%d", tokens, deaths)
	}

	tokens, deaths, _ = store.DeployerCounts(ctx, "Unseen")
	if tokens != 0 || deaths != 0 {
		t.Errorf("unseen wallet should count 0/0, got %d/%d", tokens, deaths)
	}
}

func TestDeployerTokenStore_InvalidInput(t *testing.T) {
	store := NewDeployerTokenStore()

	if err := store.Upsert(context.Background(), nil); err != storage.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := store.Upsert(context.Background(), &domain.DeployerTokenRecord{Token: "M"}); err != storage.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScanLogStore_AppendAndQuery(t *testing.T) {
	store := NewScanLogStore()
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		err := store.Append(ctx, &domain.ScanLogEntry{
			Address:   "Mint",
			Deployer:  "D",
			Verdict:   domain.VerdictClean,
			Caller:    "key-1",
			ScannedAt: 1000 + i,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	recent, err := store.RecentByDeployer(ctx, "D", 2)
	if err != nil {
		t.Fatalf("RecentByDeployer failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ScannedAt != 1002 {
		t.Errorf("expected 2 newest-first entries, got %+v", recent)
	}

	count, err := store.CountSince(ctx, "key-1", 1001)
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 entries since cutoff, got %d", count)
	}
}
