package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/db"
	"github.com/gitshopapp/merchconfig/internal/models"
)

type fakeCatalogStore struct {
	calls []string
	err   error
}

func (f *fakeCatalogStore) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCatalogStore) UpsertCustomizationPrice(_ context.Context, categoryID, customizationID, price int64) error {
	return f.record(fmt.Sprintf("upsert_customization_price %d %d %d", categoryID, customizationID, price))
}

func (f *fakeCatalogStore) DeleteCustomizationPrice(_ context.Context, categoryID, customizationID int64) error {
	return f.record(fmt.Sprintf("delete_customization_price %d %d", categoryID, customizationID))
}

func (f *fakeCatalogStore) UpsertVariantPrice(_ context.Context, categoryID, fitID, materialID, price int64) error {
	return f.record(fmt.Sprintf("upsert_variant %d %d %d %d", categoryID, fitID, materialID, price))
}

func (f *fakeCatalogStore) DeleteVariant(_ context.Context, categoryID, fitID, materialID int64) error {
	return f.record(fmt.Sprintf("delete_variant %d %d %d", categoryID, fitID, materialID))
}

func (f *fakeCatalogStore) CopyCategoryBindings(_ context.Context, from, to int64) error {
	return f.record(fmt.Sprintf("copy_bindings %d %d", from, to))
}

type fakeOrderStore struct {
	orders    map[uuid.UUID]*models.Order
	listed    models.OrderStatus
	updateErr error
}

func (f *fakeOrderStore) GetByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderStore) List(_ context.Context, status models.OrderStatus, _ int) ([]*models.Order, error) {
	f.listed = status
	out := make([]*models.Order, 0, len(f.orders))
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, orderID uuid.UUID, next models.OrderStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return db.ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(next) {
		return db.ErrInvalidStatusTransition
	}
	order.Status = next
	return nil
}

type fakeCatalogSource struct {
	snapshot  *catalog.Snapshot
	err       error
	refreshes int
}

func (f *fakeCatalogSource) Catalog(context.Context) (*catalog.Snapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeCatalogSource) Refresh(context.Context) (*catalog.Snapshot, error) {
	f.refreshes++
	return f.snapshot, f.err
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw        string
		wantPrice  int64
		wantRemove bool
		wantErr    bool
	}{
		{raw: "", wantRemove: true},
		{raw: "   ", wantRemove: true},
		{raw: "0", wantPrice: 0},
		{raw: " 1550 ", wantPrice: 1550},
		{raw: "-5", wantErr: true},
		{raw: "12.5", wantErr: true},
		{raw: "abc", wantErr: true},
	}
	for _, tc := range tests {
		price, remove, err := ParsePrice(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPrice) {
				t.Fatalf("ParsePrice(%q) error = %v, want ErrInvalidPrice", tc.raw, err)
			}
			continue
		}
		if err != nil || price != tc.wantPrice || remove != tc.wantRemove {
			t.Fatalf("ParsePrice(%q) = %d, %v, %v", tc.raw, price, remove, err)
		}
	}
}

func TestAdminService_PriceWrites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		run       func(s *AdminService) error
		wantCalls []string
		wantErr   error
	}{
		{
			name:      "customization override saved",
			run:       func(s *AdminService) error { return s.SetCustomizationPrice(context.Background(), 1, 40, "180") },
			wantCalls: []string{"upsert_customization_price 1 40 180"},
		},
		{
			name:      "empty override deletes",
			run:       func(s *AdminService) error { return s.SetCustomizationPrice(context.Background(), 1, 40, " ") },
			wantCalls: []string{"delete_customization_price 1 40"},
		},
		{
			name:    "invalid override rejected",
			run:     func(s *AdminService) error { return s.SetCustomizationPrice(context.Background(), 1, 40, "free") },
			wantErr: ErrInvalidPrice,
		},
		{
			name:      "variant price saved",
			run:       func(s *AdminService) error { return s.SetVariantPrice(context.Background(), 1, 10, 20, "1600") },
			wantCalls: []string{"upsert_variant 1 10 20 1600"},
		},
		{
			name:      "empty variant price deletes",
			run:       func(s *AdminService) error { return s.SetVariantPrice(context.Background(), 1, 10, 20, "") },
			wantCalls: []string{"delete_variant 1 10 20"},
		},
		{
			name:    "variant needs every id",
			run:     func(s *AdminService) error { return s.SetVariantPrice(context.Background(), 1, 0, 20, "100") },
			wantErr: ErrInvalidArgument,
		},
		{
			name:      "bindings copied",
			run:       func(s *AdminService) error { return s.CopyCategoryBindings(context.Background(), 1, 2) },
			wantCalls: []string{"copy_bindings 1 2"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeCatalogStore{}
			source := &fakeCatalogSource{snapshot: catalog.NewSnapshot(testCatalogData())}
			svc := NewAdminService(store, &fakeOrderStore{}, source, nil)

			err := tc.run(svc)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				if len(store.calls) != 0 || source.refreshes != 0 {
					t.Fatal("rejected input must not write or refresh")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if diff := cmp.Diff(tc.wantCalls, store.calls); diff != "" {
				t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
			}
			if source.refreshes != 1 {
				t.Fatalf("refreshes = %d, want 1", source.refreshes)
			}
		})
	}
}

func TestAdminService_WriteFailureSkipsRefresh(t *testing.T) {
	t.Parallel()

	store := &fakeCatalogStore{err: errors.New("permission denied")}
	source := &fakeCatalogSource{}
	svc := NewAdminService(store, &fakeOrderStore{}, source, nil)

	if err := svc.SetVariantPrice(context.Background(), 1, 10, 20, "100"); err == nil {
		t.Fatal("expected store error")
	}
	if source.refreshes != 0 {
		t.Fatal("failed writes must not refresh the catalog")
	}
}

func TestAdminService_Orders(t *testing.T) {
	t.Parallel()

	orderID := uuid.MustParse("1b4e28ba-2fa1-41d2-883f-0016d3cca427")
	newStore := func() *fakeOrderStore {
		return &fakeOrderStore{orders: map[uuid.UUID]*models.Order{
			orderID: {
				ID:            orderID,
				Status:        models.StatusNew,
				Quantity:      50,
				Configuration: models.OrderConfiguration{CategoryID: 1, FitID: 10, MaterialID: 20, Quantity: 50},
			},
		}}
	}

	t.Run("list describes configurations", func(t *testing.T) {
		t.Parallel()
		svc := NewAdminService(&fakeCatalogStore{}, newStore(), &fakeCatalogSource{snapshot: catalog.NewSnapshot(testCatalogData())}, nil)

		views, err := svc.ListOrders(context.Background(), "new", 0)
		if err != nil {
			t.Fatalf("ListOrders() error = %v", err)
		}
		if len(views) != 1 || views[0].Lines[0] != (catalog.ConfigLine{Label: "Category", Value: "T-shirt"}) {
			t.Fatalf("unexpected views %+v", views)
		}
	})

	t.Run("list without catalog falls back to ids", func(t *testing.T) {
		t.Parallel()
		svc := NewAdminService(&fakeCatalogStore{}, newStore(), &fakeCatalogSource{err: errors.New("catalog down")}, nil)

		views, err := svc.ListOrders(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("ListOrders() error = %v", err)
		}
		if views[0].Lines[0].Value != "ID 1" {
			t.Fatalf("expected id fallback, got %+v", views[0].Lines[0])
		}
	})

	t.Run("unknown status filter", func(t *testing.T) {
		t.Parallel()
		svc := NewAdminService(&fakeCatalogStore{}, newStore(), nil, nil)
		if _, err := svc.ListOrders(context.Background(), "shipped", 0); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("status lifecycle", func(t *testing.T) {
		t.Parallel()
		svc := NewAdminService(&fakeCatalogStore{}, newStore(), nil, nil)
		ctx := context.Background()

		view, err := svc.UpdateOrderStatus(ctx, orderID, "in_progress")
		if err != nil {
			t.Fatalf("UpdateOrderStatus() error = %v", err)
		}
		if view.Status != models.StatusInProgress {
			t.Fatalf("status = %s, want in_progress", view.Status)
		}
		if _, err := svc.UpdateOrderStatus(ctx, orderID, "done"); err != nil {
			t.Fatalf("UpdateOrderStatus(done) error = %v", err)
		}
		if _, err := svc.UpdateOrderStatus(ctx, orderID, "cancelled"); !errors.Is(err, db.ErrInvalidStatusTransition) {
			t.Fatalf("error = %v, want ErrInvalidStatusTransition", err)
		}
		if _, err := svc.UpdateOrderStatus(ctx, uuid.New(), "cancelled"); !errors.Is(err, db.ErrOrderNotFound) {
			t.Fatalf("error = %v, want ErrOrderNotFound", err)
		}
		if _, err := svc.UpdateOrderStatus(ctx, orderID, "archived"); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("error = %v, want ErrInvalidArgument", err)
		}
	})
}
