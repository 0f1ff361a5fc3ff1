package configurator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/models"
)

var (
	fixedTime = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	fixedID   = uuid.MustParse("9f6d7c2e-8a3b-4c1d-9e5f-0a1b2c3d4e5f")
)

type fakeSubmitter struct {
	orders []*models.Order
	err    error
}

func (f *fakeSubmitter) SubmitOrder(_ context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)
	return nil
}

func intPtr(v int) *int {
	return &v
}

func tier(minQty int, maxQty *int, multiplier string) models.QuantityTier {
	return models.QuantityTier{MinQty: minQty, MaxQty: maxQty, Multiplier: decimal.RequireFromString(multiplier)}
}

func testSnapshot() *catalog.Snapshot {
	cotton := int64(20)
	return catalog.NewSnapshot(catalog.Data{
		Categories: []models.Category{
			{ID: 1, Name: "T-shirt", Active: true, SortOrder: 1},
			{ID: 3, Name: "Cap", Active: true, SortOrder: 2},
		},
		Fits:      []models.Fit{{ID: 10, Name: "Regular"}, {ID: 11, Name: "Oversize"}},
		Materials: []models.Material{{ID: 20, Name: "Cotton"}, {ID: 21, Name: "Linen"}},
		ProductVariants: []models.ProductVariant{
			{ID: 1, CategoryID: 1, FitID: 10, MaterialID: 20, BasePrice: 1550},
			{ID: 2, CategoryID: 1, FitID: 11, MaterialID: 20, BasePrice: 0},
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
			tier(10, intPtr(19), "0.9"),
			tier(20, intPtr(49), "0.8"),
			tier(50, intPtr(99), "0.7"),
			tier(100, intPtr(199), "0.6"),
			tier(200, intPtr(499), "0.5"),
			tier(500, intPtr(999), "0.45"),
			tier(1000, nil, "0.4"),
		},
		ColorPalettes: []models.ColorPaletteEntry{
			{ID: 50, MaterialID: &cotton, ColorName: "White", Active: true},
		},
	})
}

func newTestController(submitter OrderSubmitter) *Controller {
	return NewController(
		catalog.NewStore(testSnapshot()),
		submitter,
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() uuid.UUID { return fixedID }),
	)
}

func orderableSelection() catalog.Selection {
	return catalog.Selection{
		CategoryID:       1,
		FitID:            10,
		MaterialID:       20,
		ColorID:          50,
		PrintFrontID:     31,
		PrintBackID:      30,
		CustomizationIDs: []int64{40},
		Quantity:         100,
	}
}

func TestController_Quote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		qty       int
		wantUnit  int64
		wantTotal int64
	}{
		// subtotal 1550 + 250 + 0 + 150 = 1950
		{name: "hundred pieces", qty: 100, wantUnit: 1170, wantTotal: 117000},
		{name: "small batch", qty: 3, wantUnit: 3900, wantTotal: 11700},
		{name: "open-ended tier", qty: 1000, wantUnit: 780, wantTotal: 780000},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestController(nil)
			sel := orderableSelection()
			sel.Quantity = tc.qty
			c.ApplySelection(sel)

			q := c.Quote()
			if q.Subtotal != 1950 {
				t.Fatalf("Subtotal = %d, want 1950", q.Subtotal)
			}
			if q.UnitPrice != tc.wantUnit || q.Total != tc.wantTotal {
				t.Fatalf("Quote() = %d/%d, want %d/%d", q.UnitPrice, q.Total, tc.wantUnit, tc.wantTotal)
			}
		})
	}
}

func TestController_CanSubmit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sel  catalog.Selection
		want bool
	}{
		{name: "orderable", sel: orderableSelection(), want: true},
		{name: "nothing selected", sel: catalog.Selection{Quantity: 1}, want: false},
		{name: "category without variants", sel: catalog.Selection{CategoryID: 3, FitID: 10, MaterialID: 20, Quantity: 1}, want: false},
		{name: "zero base price", sel: catalog.Selection{CategoryID: 1, FitID: 11, MaterialID: 20, Quantity: 1}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestController(nil)
			c.Store().Update(catalog.Patch{
				CategoryID: &tc.sel.CategoryID,
				FitID:      &tc.sel.FitID,
				MaterialID: &tc.sel.MaterialID,
			})
			if got := c.CanSubmit(); got != tc.want {
				t.Fatalf("CanSubmit() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestController_ApplySelectionDropsUnofferedIDs(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	c.ApplySelection(catalog.Selection{
		CategoryID:       1,
		FitID:            10,
		MaterialID:       21,
		ColorID:          50,
		PrintFrontID:     99,
		CustomizationIDs: []int64{40, 40, 77},
		Quantity:         0,
	})

	want := catalog.Selection{
		CategoryID:       1,
		FitID:            10,
		CustomizationIDs: []int64{40},
		Quantity:         1,
	}
	if diff := cmp.Diff(want, c.Store().State()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestController_ApplySelectionDefaultsPrints(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	sel := orderableSelection()
	sel.PrintFrontID = 0
	sel.PrintBackID = 0
	c.ApplySelection(sel)

	got := c.Store().State()
	if got.PrintFrontID != 30 || got.PrintBackID != 30 {
		t.Fatalf("prints = %d/%d, want free method 30", got.PrintFrontID, got.PrintBackID)
	}
}

func TestController_Submit(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	c := newTestController(submitter)
	c.ApplySelection(orderableSelection())

	order, err := c.Submit(context.Background(), CustomerInput{
		Name:    "  Anna  ",
		Contact: "@anna_merch ",
		Comment: " black tag please ",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	want := &models.Order{
		ID:              fixedID,
		CustomerName:    "Anna",
		CustomerContact: "@anna_merch",
		CustomerComment: "black tag please",
		Configuration: models.OrderConfiguration{
			CategoryID:         1,
			FitID:              10,
			MaterialID:         20,
			ColorID:            50,
			PrintFrontID:       31,
			PrintBackID:        30,
			CustomizationIDs:   []int64{40},
			Quantity:           100,
			UnitPrice:          1170,
			CustomizationPrice: 150,
			Multiplier:         decimal.RequireFromString("0.6"),
		},
		Quantity:        100,
		CalculatedPrice: 117000,
		Status:          models.StatusNew,
		CreatedAt:       fixedTime,
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if len(submitter.orders) != 1 || submitter.orders[0] != order {
		t.Fatalf("submitter received %d orders", len(submitter.orders))
	}

	c.Store().ToggleCustomization(40, false)
	c.Store().SetQuantity(5)
	if order.Configuration.Quantity != 100 || len(order.Configuration.CustomizationIDs) != 1 {
		t.Fatalf("order configuration is not frozen: %+v", order.Configuration)
	}
}

func TestController_SubmittedOrderIgnoresLaterPriceChanges(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeSubmitter{})
	c.ApplySelection(orderableSelection())

	order, err := c.Submit(context.Background(), CustomerInput{Name: "Anna", Contact: "anna@example.com"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	frozen := order.Configuration
	frozenTotal := order.CalculatedPrice

	repriced := testSnapshot().Data()
	repriced.ProductVariants[0].BasePrice = 3000
	repriced.PrintMethods[1].Price = 900
	repriced.CategoryCustomizationPrices[0].Price = 500
	repriced.QuantityTiers[4].Multiplier = decimal.RequireFromString("0.95")
	c.Store().SetCatalogSnapshot(catalog.NewSnapshot(repriced))

	// subtotal 3000 + 900 + 0 + 500 = 4400, x0.95 at 100 pieces
	if got := c.Quote(); got.UnitPrice != 4180 || got.Total != 418000 {
		t.Fatalf("live quote = %d/%d, want 4180/418000", got.UnitPrice, got.Total)
	}

	if diff := cmp.Diff(frozen, order.Configuration); diff != "" {
		t.Fatalf("stored configuration changed (-want +got):\n%s", diff)
	}
	if order.Configuration.UnitPrice != 1170 || order.CalculatedPrice != frozenTotal || frozenTotal != 117000 {
		t.Fatalf("stored prices = %d/%d, want 1170/117000", order.Configuration.UnitPrice, order.CalculatedPrice)
	}
	if !order.Configuration.Multiplier.Equal(decimal.RequireFromString("0.6")) {
		t.Fatalf("stored multiplier = %s, want 0.6", order.Configuration.Multiplier)
	}
	if order.Configuration.CustomizationPrice != 150 {
		t.Fatalf("stored customization price = %d, want 150", order.Configuration.CustomizationPrice)
	}
}

func TestController_SubmitRejectsInvalidCustomer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   CustomerInput
	}{
		{name: "missing name", in: CustomerInput{Name: "   ", Contact: "+7 900 000 00 00"}},
		{name: "missing contact", in: CustomerInput{Name: "Anna"}},
		{name: "comment too long", in: CustomerInput{Name: "Anna", Contact: "a@b.c", Comment: strings.Repeat("x", 2001)}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			submitter := &fakeSubmitter{}
			c := newTestController(submitter)
			c.ApplySelection(orderableSelection())

			_, err := c.Submit(context.Background(), tc.in)
			if !errors.Is(err, ErrInvalidCustomer) {
				t.Fatalf("expected ErrInvalidCustomer, got %v", err)
			}
			if len(submitter.orders) != 0 {
				t.Fatal("submitter called for invalid customer")
			}
		})
	}
}

func TestController_SubmitNotOrderable(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	c := newTestController(submitter)
	c.ApplySelection(catalog.Selection{CategoryID: 3, Quantity: 10})

	_, err := c.Submit(context.Background(), CustomerInput{Name: "Anna", Contact: "anna@example.com"})
	if !errors.Is(err, ErrNotOrderable) {
		t.Fatalf("expected ErrNotOrderable, got %v", err)
	}
	if len(submitter.orders) != 0 {
		t.Fatal("submitter called for unorderable selection")
	}
}

func TestController_SubmitFailureKeepsSelection(t *testing.T) {
	t.Parallel()

	cause := errors.New(`new row violates row-level security policy for table "orders"`)
	c := newTestController(&fakeSubmitter{err: cause})
	c.ApplySelection(orderableSelection())
	before := c.Store().State()

	_, err := c.Submit(context.Background(), CustomerInput{Name: "Anna", Contact: "anna@example.com"})

	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected *SubmissionError, got %T: %v", err, err)
	}
	if subErr.Error() != cause.Error() {
		t.Fatalf("Error() = %q, want raw message %q", subErr.Error(), cause.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("SubmissionError does not unwrap to cause")
	}
	if diff := cmp.Diff(before, c.Store().State()); diff != "" {
		t.Fatalf("selection changed on failure (-before +after):\n%s", diff)
	}
}

func TestController_SubmitWithoutSubmitter(t *testing.T) {
	t.Parallel()

	c := newTestController(nil)
	c.ApplySelection(orderableSelection())

	_, err := c.Submit(context.Background(), CustomerInput{Name: "Anna", Contact: "anna@example.com"})
	var subErr *SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected *SubmissionError, got %v", err)
	}
}
