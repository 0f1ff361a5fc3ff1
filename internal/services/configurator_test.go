package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gitshopapp/merchconfig/internal/cache"
	"github.com/gitshopapp/merchconfig/internal/catalog"
)

func TestConfiguratorService_CatalogHonoursTTL(t *testing.T) {
	t.Parallel()

	repo := newCountingRepository()
	svc, clock := newTestConfiguratorService(repo, nil, nil)
	ctx := context.Background()

	first, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	second, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if first != second {
		t.Fatal("expected the same snapshot within the TTL")
	}
	if got := repo.loads.Load(); got != 1 {
		t.Fatalf("loads = %d, want 1", got)
	}

	clock.Advance(2 * time.Minute)
	third, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if third == first {
		t.Fatal("expected a new snapshot after the TTL")
	}
	if got := repo.loads.Load(); got != 2 {
		t.Fatalf("loads = %d, want 2", got)
	}
}

func TestConfiguratorService_CatalogFailures(t *testing.T) {
	t.Parallel()

	repo := newCountingRepository()
	repo.fail.Store(true)
	svc, clock := newTestConfiguratorService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Catalog(ctx)
	var loadErr *catalog.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Catalog() error = %v, want *catalog.LoadError", err)
	}
	if loadErr.Table != "categories" || !loadErr.Retryable() {
		t.Fatalf("unexpected load error %+v", loadErr)
	}

	repo.fail.Store(false)
	good, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() retry error = %v", err)
	}

	repo.fail.Store(true)
	clock.Advance(2 * time.Minute)
	stale, err := svc.Catalog(ctx)
	if err != nil {
		t.Fatalf("expected previous snapshot while reload fails, got %v", err)
	}
	if stale != good {
		t.Fatal("expected the previous snapshot to be served")
	}

	if _, err := svc.Refresh(ctx); err == nil {
		t.Fatal("expected Refresh to report the failure")
	}
}

func TestConfiguratorService_SharedCache(t *testing.T) {
	t.Parallel()

	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	ctx := context.Background()

	warm := NewConfiguratorService(catalog.NewLoader(newCountingRepository(), nil, time.Second), provider, nil, nil, ConfiguratorConfig{}, nil)
	if _, err := warm.Catalog(ctx); err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}

	cold := newCountingRepository()
	cold.fail.Store(true)
	replica := NewConfiguratorService(catalog.NewLoader(cold, nil, time.Second), provider, nil, nil, ConfiguratorConfig{}, nil)
	snapshot, err := replica.Catalog(ctx)
	if err != nil {
		t.Fatalf("expected cached catalog, got %v", err)
	}
	if got := cold.loads.Load(); got != 0 {
		t.Fatalf("repository loads = %d, want 0", got)
	}
	if diff := cmp.Diff(testCatalogData().Categories, snapshot.Categories()); diff != "" {
		t.Fatalf("cached categories mismatch (-want +got):\n%s", diff)
	}

	if _, err := replica.Refresh(ctx); err == nil {
		t.Fatal("expected Refresh to skip the cache and hit the failing repository")
	}
	if _, err := provider.Get(ctx, cache.CatalogKey()); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected Refresh to drop the cached entry, got %v", err)
	}
}

func TestConfiguratorService_Quote(t *testing.T) {
	t.Parallel()

	svc, _ := newTestConfiguratorService(newCountingRepository(), nil, nil)

	tests := []struct {
		name          string
		selection     catalog.Selection
		wantSelection catalog.Selection
		wantUnit      int64
		wantTotal     int64
		wantSubmit    bool
		wantSmall     bool
	}{
		{
			name: "orderable with extras",
			selection: catalog.Selection{
				CategoryID: 1, FitID: 10, MaterialID: 20, ColorID: 51,
				PrintFrontID: 31, PrintBackID: 30, CustomizationIDs: []int64{40}, Quantity: 100,
			},
			wantSelection: catalog.Selection{
				CategoryID: 1, FitID: 10, MaterialID: 20, ColorID: 51,
				PrintFrontID: 31, PrintBackID: 30, CustomizationIDs: []int64{40}, Quantity: 100,
			},
			wantUnit:   1170,
			wantTotal:  117000,
			wantSubmit: true,
		},
		{
			name:      "unoffered ids are dropped",
			selection: catalog.Selection{CategoryID: 1, FitID: 11, MaterialID: 20, ColorID: 99, Quantity: 5},
			wantSelection: catalog.Selection{
				CategoryID: 1, CustomizationIDs: []int64{}, Quantity: 5,
			},
			wantSmall: true,
		},
		{
			name:      "coming soon category",
			selection: catalog.Selection{CategoryID: 2, Quantity: 0},
			wantSelection: catalog.Selection{
				CategoryID: 2, CustomizationIDs: []int64{}, Quantity: 1,
			},
			wantSmall: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := svc.Quote(context.Background(), tc.selection)
			if err != nil {
				t.Fatalf("Quote() error = %v", err)
			}
			if diff := cmp.Diff(tc.wantSelection, got.Selection); diff != "" {
				t.Fatalf("selection mismatch (-want +got):\n%s", diff)
			}
			if got.Quote.UnitPrice != tc.wantUnit || got.Quote.Total != tc.wantTotal {
				t.Fatalf("quote = %d/%d, want %d/%d", got.Quote.UnitPrice, got.Quote.Total, tc.wantUnit, tc.wantTotal)
			}
			if got.CanSubmit != tc.wantSubmit {
				t.Fatalf("CanSubmit = %v, want %v", got.CanSubmit, tc.wantSubmit)
			}
			if got.SmallBatch != tc.wantSmall {
				t.Fatalf("SmallBatch = %v, want %v", got.SmallBatch, tc.wantSmall)
			}
		})
	}
}

func TestConfiguratorService_QuoteOptions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestConfiguratorService(newCountingRepository(), nil, nil)
	got, err := svc.Quote(context.Background(), catalog.Selection{CategoryID: 1, FitID: 10, MaterialID: 20, Quantity: 100})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	orderable := map[int64]bool{}
	for _, category := range got.Options.Categories {
		orderable[category.ID] = category.Orderable
	}
	if diff := cmp.Diff(map[int64]bool{1: true, 2: false}, orderable); diff != "" {
		t.Fatalf("orderable flags mismatch (-want +got):\n%s", diff)
	}

	if len(got.Options.Colors) != 2 || !got.Options.Colors[0].VeryDark || got.Options.Colors[1].VeryDark {
		t.Fatalf("unexpected colour options %+v", got.Options.Colors)
	}
	if len(got.Options.Customizations) != 1 || got.Options.Customizations[0].EffectivePrice != 150 {
		t.Fatalf("expected category override price, got %+v", got.Options.Customizations)
	}
	if got.Selection.PrintFrontID != 30 || got.Selection.PrintBackID != 30 {
		t.Fatalf("expected free print defaults, got %d/%d", got.Selection.PrintFrontID, got.Selection.PrintBackID)
	}
}
