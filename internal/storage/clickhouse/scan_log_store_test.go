package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-rugscan/internal/domain"
	"solana-rugscan/internal/storage"
)

func TestScanLogStore_AppendAndRecent(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScanLogStore(conn)
	ctx := context.Background()

	entries := []*domain.ScanLogEntry{
		{Address: "MintA", Deployer: "DeployerA", Verdict: domain.VerdictClean, Score: 82, Source: "api", Caller: "key-1", ScannedAt: 1700000100},
		{Address: "MintB", Deployer: "DeployerA", Verdict: domain.VerdictSuspicious, Score: 45, Source: "api", Caller: "key-1", ScannedAt: 1700000200},
		{Address: "MintC", Deployer: "DeployerB", Verdict: domain.VerdictSerialRugger, Score: 12, Source: "cli", Caller: "key-2", ScannedAt: 1700000300},
	}
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}

	recent, err := store.RecentByDeployer(ctx, "DeployerA", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, "MintB", recent[0].Address, "newest first")
	assert.Equal(t, domain.VerdictSuspicious, recent[0].Verdict)
	assert.Equal(t, 45, recent[0].Score)
	assert.Equal(t, "MintA", recent[1].Address)
}

func TestScanLogStore_RecentLimit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScanLogStore(conn)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, store.Append(ctx, &domain.ScanLogEntry{
			Address:   "Mint",
			Deployer:  "DeployerA",
			Verdict:   domain.VerdictClean,
			Score:     80,
			ScannedAt: 1700000000 + i,
		}))
	}

	recent, err := store.RecentByDeployer(ctx, "DeployerA", 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestScanLogStore_CountSince(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScanLogStore(conn)
	ctx := context.Background()

	for i := int64(0); i < 4; i++ {
		require.NoError(t, store.Append(ctx, &domain.ScanLogEntry{
			Address:   "Mint",
			Deployer:  "DeployerA",
			Verdict:   domain.VerdictClean,
			Caller:    "key-1",
			ScannedAt: 1700000000 + i*100,
		}))
	}
	require.NoError(t, store.Append(ctx, &domain.ScanLogEntry{
		Address:   "Mint",
		Deployer:  "DeployerA",
		Verdict:   domain.VerdictClean,
		Caller:    "key-other",
		ScannedAt: 1700000400,
	}))

	count, err := store.CountSince(ctx, "key-1", 1700000200)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestScanLogStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScanLogStore(conn)
	err := store.Append(context.Background(), &domain.ScanLogEntry{Address: ""})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
