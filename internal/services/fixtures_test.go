package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/models"
)

func intPtr(v int) *int {
	return &v
}

func tier(minQty int, maxQty *int, multiplier string) models.QuantityTier {
	return models.QuantityTier{MinQty: minQty, MaxQty: maxQty, Multiplier: decimal.RequireFromString(multiplier)}
}

func testCatalogData() catalog.Data {
	cotton := int64(20)
	return catalog.Data{
		Categories: []models.Category{
			{ID: 1, Name: "T-shirt", Active: true, SortOrder: 1},
			{ID: 2, Name: "Bomber", Active: true, SortOrder: 2},
		},
		Fits:      []models.Fit{{ID: 10, Name: "Regular"}, {ID: 11, Name: "Oversize"}},
		Materials: []models.Material{{ID: 20, Name: "Cotton"}},
		ProductVariants: []models.ProductVariant{
			{ID: 1, CategoryID: 1, FitID: 10, MaterialID: 20, BasePrice: 1550},
		},
		PrintMethods: []models.PrintMethod{
			{ID: 30, Name: "No print", Price: 0, SortOrder: 1},
			{ID: 31, Name: "Screen print", Price: 250, SortOrder: 2},
		},
		Customizations: []models.Customization{
			{ID: 40, Name: "Neck label", Price: 200, Active: true},
		},
		CategoryCustomizationPrices: []models.CustomizationPriceOverride{
			{CategoryID: 1, CustomizationID: 40, Price: 150},
		},
		QuantityTiers: []models.QuantityTier{
			tier(1, intPtr(9), "2.0"),
			tier(10, intPtr(99), "0.7"),
			tier(100, intPtr(999), "0.6"),
			tier(1000, nil, "0.4"),
		},
		ColorPalettes: []models.ColorPaletteEntry{
			{ID: 50, MaterialID: &cotton, ColorName: "Black", HexCode: "#000000", Active: true},
			{ID: 51, MaterialID: &cotton, ColorName: "White", HexCode: "#FFFFFF", Active: true},
		},
	}
}

// countingRepository counts full catalog loads and can be switched to fail.
type countingRepository struct {
	*catalog.StaticRepository
	loads atomic.Int32
	fail  atomic.Bool
}

func newCountingRepository() *countingRepository {
	return &countingRepository{StaticRepository: catalog.NewStaticRepository(testCatalogData())}
}

func (r *countingRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	r.loads.Add(1)
	if r.fail.Load() {
		return nil, errors.New("connection refused")
	}
	return r.StaticRepository.ListCategories(ctx)
}

type fakeOrderSubmitter struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (f *fakeOrderSubmitter) SubmitOrder(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)
	return nil
}

type fakeNotifier struct {
	notified []uuid.UUID
	err      error
}

func (f *fakeNotifier) NotifyNewOrder(_ context.Context, _ *catalog.Snapshot, order *models.Order) error {
	f.notified = append(f.notified, order.ID)
	return f.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestConfiguratorService(repo catalog.Repository, orders *fakeOrderSubmitter, notifier OrderNotifier) (*ConfiguratorService, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewConfiguratorService(
		catalog.NewLoader(repo, nil, time.Second),
		nil,
		orders,
		notifier,
		ConfiguratorConfig{CatalogTTL: time.Minute},
		nil,
	)
	svc.now = clock.Now
	return svc, clock
}
