package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

func quoteWithTotal(label, total string, at time.Time) *StoredQuote {
	q := NewStoredQuote(label, "", nil, types.Configuration{}, &types.CalculationResult{
		GrandTotal:      decimal.RequireFromString(total),
		AverageUnitCost: decimal.RequireFromString(total),
	})
	q.CreatedAt = at
	return q
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := quoteWithTotal("january shoes", "765.899296", base)
	second := quoteWithTotal("february shoes", "979.307488", base.Add(time.Hour))
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))
	require.NotEmpty(t, first.ID)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, got.GrandTotal().Equal(decimal.RequireFromString("765.899296")))

	list, err := s.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)

	list, err = s.List(ctx, &ListFilter{Label: "JANUARY"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	cmp, err := Compare(ctx, s, first.ID, second.ID)
	require.NoError(t, err)
	require.Equal(t, "213.408192", cmp.Delta.String())
	require.True(t, cmp.DeltaPercent.IsPositive())

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.Get(ctx, first.ID)
	require.True(t, errors.IsType(err, errors.TypeNotFound))
	require.True(t, errors.IsType(s.Delete(ctx, first.ID), errors.TypeNotFound))
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	testStore(t, s)

	// Stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	list, err := s.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestStoreFactory(t *testing.T) {
	s, err := StoreFactory(BackendMemory, "")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	_, err = StoreFactory(Backend("s3"), "")
	require.True(t, errors.IsType(err, errors.TypeNotSupported))
}
