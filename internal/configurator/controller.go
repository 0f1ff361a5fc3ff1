// Package configurator drives one customer's configuration session: it
// prices the current selection and turns it into an order.
package configurator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/pricing"
)

var (
	ErrNotOrderable    = errors.New("configuration is not orderable")
	ErrInvalidCustomer = errors.New("invalid customer details")
)

// SubmissionError reports that the order could not be persisted. Its message
// is the submitter's raw error text.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// OrderSubmitter persists a new order.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order *models.Order) error
}

// CustomerInput is the contact form that accompanies an order.
type CustomerInput struct {
	Name    string `json:"customer_name" validate:"required,max=200"`
	Contact string `json:"customer_contact" validate:"required,max=200"`
	Comment string `json:"customer_comment" validate:"max=2000"`
}

func (in CustomerInput) normalized() CustomerInput {
	return CustomerInput{
		Name:    strings.TrimSpace(in.Name),
		Contact: strings.TrimSpace(in.Contact),
		Comment: strings.TrimSpace(in.Comment),
	}
}

type Option func(*Controller)

// WithClock overrides the order creation time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides how order ids are minted.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

type Controller struct {
	store     *catalog.Store
	submitter OrderSubmitter
	validate  *validator.Validate
	now       func() time.Time
	newID     func() uuid.UUID
}

func NewController(store *catalog.Store, submitter OrderSubmitter, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		submitter: submitter,
		validate:  validator.New(),
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Store() *catalog.Store {
	return c.store
}

// Quote prices the current selection against the installed snapshot only.
func (c *Controller) Quote() pricing.Quote {
	snapshot, st := c.store.View()
	return quote(snapshot, st)
}

// CanSubmit reports whether the selection names an orderable variant.
func (c *Controller) CanSubmit() bool {
	snapshot, st := c.store.View()
	return canSubmit(snapshot, st)
}

// Configuration freezes the current selection and its prices.
func (c *Controller) Configuration() (models.OrderConfiguration, pricing.Quote) {
	snapshot, st := c.store.View()
	return freeze(snapshot, st)
}

func freeze(snapshot *catalog.Snapshot, st catalog.Selection) (models.OrderConfiguration, pricing.Quote) {
	q := quote(snapshot, st)
	return models.OrderConfiguration{
		CategoryID:         st.CategoryID,
		FitID:              st.FitID,
		MaterialID:         st.MaterialID,
		ColorID:            st.ColorID,
		PrintFrontID:       st.PrintFrontID,
		PrintBackID:        st.PrintBackID,
		CustomizationIDs:   slices.Clone(st.CustomizationIDs),
		Quantity:           st.Quantity,
		UnitPrice:          q.UnitPrice,
		CustomizationPrice: snapshot.CustomizationsPrice(st.CategoryID, st.CustomizationIDs),
		Multiplier:         q.Multiplier,
	}, q
}

// Submit validates the customer, freezes the configuration and hands the
// order to the submitter. The selection is left as it was on any failure.
func (c *Controller) Submit(ctx context.Context, in CustomerInput) (*models.Order, error) {
	customer := in.normalized()
	if err := c.validate.Struct(customer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}

	snapshot, st := c.store.View()
	if !canSubmit(snapshot, st) {
		return nil, ErrNotOrderable
	}
	cfg, q := freeze(snapshot, st)

	order := &models.Order{
		ID:              c.newID(),
		CustomerName:    customer.Name,
		CustomerContact: customer.Contact,
		CustomerComment: customer.Comment,
		Configuration:   cfg,
		Quantity:        cfg.Quantity,
		CalculatedPrice: q.Total,
		Status:          models.StatusNew,
		CreatedAt:       c.now().UTC(),
	}

	if c.submitter == nil {
		return nil, &SubmissionError{Err: errors.New("order submission is not configured")}
	}
	if err := c.submitter.SubmitOrder(ctx, order); err != nil {
		return nil, &SubmissionError{Err: err}
	}
	return order, nil
}

// ApplySelection replays sel through the cascading selectors. Fit, material,
// colour, print and customization ids that are not offered at their step are
// dropped.
func (c *Controller) ApplySelection(sel catalog.Selection) {
	s := c.store
	s.SelectCategory(sel.CategoryID)

	if offered(s.AvailableFits(), sel.FitID, func(f models.Fit) int64 { return f.ID }) {
		s.SelectFit(sel.FitID)
	}
	if offered(s.AvailableMaterials(), sel.MaterialID, func(m models.Material) int64 { return m.ID }) {
		s.SelectMaterial(sel.MaterialID)
	}
	if offered(s.AvailableColors(), sel.ColorID, func(e models.ColorPaletteEntry) int64 { return e.ID }) {
		s.SelectColor(sel.ColorID)
	}

	prints := s.AvailablePrintMethods()
	printID := func(m models.PrintMethod) int64 { return m.ID }
	if offered(prints, sel.PrintFrontID, printID) {
		s.SelectPrintFront(sel.PrintFrontID)
	}
	if offered(prints, sel.PrintBackID, printID) {
		s.SelectPrintBack(sel.PrintBackID)
	}

	customizations := s.AvailableCustomizations()
	for _, id := range sel.CustomizationIDs {
		if offered(customizations, id, func(cz models.Customization) int64 { return cz.ID }) {
			s.ToggleCustomization(id, true)
		}
	}

	s.SetQuantity(sel.Quantity)
}

func offered[T any](rows []T, id int64, rowID func(T) int64) bool {
	if id == 0 {
		return false
	}
	return slices.ContainsFunc(rows, func(row T) bool { return rowID(row) == id })
}

func canSubmit(snapshot *catalog.Snapshot, st catalog.Selection) bool {
	if st.CategoryID == 0 || st.FitID == 0 || st.MaterialID == 0 {
		return false
	}
	return snapshot.BasePrice(st.CategoryID, st.FitID, st.MaterialID) > 0
}

func quote(snapshot *catalog.Snapshot, st catalog.Selection) pricing.Quote {
	return pricing.CalculatePrice(pricing.PriceInput{
		BasePrice:          snapshot.BasePrice(st.CategoryID, st.FitID, st.MaterialID),
		FrontPrintPrice:    snapshot.PrintPrice(st.PrintFrontID),
		BackPrintPrice:     snapshot.PrintPrice(st.PrintBackID),
		CustomizationPrice: snapshot.CustomizationsPrice(st.CategoryID, st.CustomizationIDs),
		Quantity:           st.Quantity,
		Tiers:              snapshot.QuantityTiers(),
	})
}
