package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/config"
	"github.com/gitshopapp/merchconfig/internal/configurator"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/services"
)

const (
	testAccessKey  = "widget-key"
	testAdminToken = "admin-token-0123456789abcdef"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

type fakeConfigurator struct {
	snapshot *catalog.Snapshot
	err      error

	quote     *services.QuoteResult
	order     *models.Order
	selection catalog.Selection
	customer  configurator.CustomerInput
}

func (f *fakeConfigurator) Catalog(context.Context) (*catalog.Snapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeConfigurator) Quote(_ context.Context, sel catalog.Selection) (*services.QuoteResult, error) {
	f.selection = sel
	if f.err != nil {
		return nil, f.err
	}
	if f.quote != nil {
		return f.quote, nil
	}
	return &services.QuoteResult{Selection: sel}, nil
}

func (f *fakeConfigurator) SubmitOrder(_ context.Context, sel catalog.Selection, customer configurator.CustomerInput) (*models.Order, error) {
	f.selection = sel
	f.customer = customer
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

type fakeAdmin struct {
	err error

	orders   []services.OrderView
	order    *services.OrderView
	snapshot *catalog.Snapshot

	status string
	limit  int
	price  string
	ids    []int64
	calls  []string
}

func (f *fakeAdmin) ListOrders(_ context.Context, status string, limit int) ([]services.OrderView, error) {
	f.calls = append(f.calls, "list")
	f.status = status
	f.limit = limit
	return f.orders, f.err
}

func (f *fakeAdmin) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, status string) (*services.OrderView, error) {
	f.calls = append(f.calls, "status:"+orderID.String())
	f.status = status
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeAdmin) SetCustomizationPrice(_ context.Context, categoryID, customizationID int64, raw string) error {
	f.calls = append(f.calls, "customization_price")
	f.ids = []int64{categoryID, customizationID}
	f.price = raw
	return f.err
}

func (f *fakeAdmin) SetVariantPrice(_ context.Context, categoryID, fitID, materialID int64, raw string) error {
	f.calls = append(f.calls, "variant_price")
	f.ids = []int64{categoryID, fitID, materialID}
	f.price = raw
	return f.err
}

func (f *fakeAdmin) CopyCategoryBindings(_ context.Context, from, to int64) error {
	f.calls = append(f.calls, "copy_bindings")
	f.ids = []int64{from, to}
	return f.err
}

func (f *fakeAdmin) RefreshCatalog(context.Context) (*catalog.Snapshot, error) {
	f.calls = append(f.calls, "refresh")
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func testConfig() *config.Config {
	return &config.Config{
		WidgetAccessKey: testAccessKey,
		AdminAPIToken:   testAdminToken,
		AllowedOrigins:  []string{"https://shop.example.com"},
	}
}

func newTestHandlers(cfg *fakeConfigurator, admin *fakeAdmin) *Handlers {
	return &Handlers{
		config:       testConfig(),
		db:           fakePinger{},
		configurator: cfg,
		admin:        admin,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
