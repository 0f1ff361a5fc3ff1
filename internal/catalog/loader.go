package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultLoadTimeout = 15 * time.Second

var ErrLoadTimeout = errors.New("catalog load timed out")

// LoadError is the single failure returned for any unsuccessful load.
// Loads are all-or-nothing and may always be retried.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("failed to load catalog (%s): %v", e.Table, e.Err)
	}
	return fmt.Sprintf("failed to load catalog: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the load gave up waiting for the repository.
func (e *LoadError) Timeout() bool {
	return errors.Is(e.Err, ErrLoadTimeout)
}

func (e *LoadError) Retryable() bool {
	return true
}

// Loader fetches every catalog table concurrently and joins them into one
// validated snapshot.
type Loader struct {
	repo      Repository
	validator *Validator
	timeout   time.Duration
}

func NewLoader(repo Repository, validator *Validator, timeout time.Duration) *Loader {
	if validator == nil {
		validator = NewValidator()
	}
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &Loader{
		repo:      repo,
		validator: validator,
		timeout:   timeout,
	}
}

func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var data Data
	g, gctx := errgroup.WithContext(ctx)
	fetch(g, gctx, "categories", l.repo.ListCategories, &data.Categories)
	fetch(g, gctx, "fits", l.repo.ListFits, &data.Fits)
	fetch(g, gctx, "materials", l.repo.ListMaterials, &data.Materials)
	fetch(g, gctx, "product_variants", l.repo.ListProductVariants, &data.ProductVariants)
	fetch(g, gctx, "category_fits", l.repo.ListCategoryFits, &data.CategoryFits)
	fetch(g, gctx, "category_materials", l.repo.ListCategoryMaterials, &data.CategoryMaterials)
	fetch(g, gctx, "print_methods", l.repo.ListPrintMethods, &data.PrintMethods)
	fetch(g, gctx, "category_print_methods", l.repo.ListCategoryPrintMethods, &data.CategoryPrintMethods)
	fetch(g, gctx, "customizations", l.repo.ListCustomizations, &data.Customizations)
	fetch(g, gctx, "category_customizations", l.repo.ListCategoryCustomizations, &data.CategoryCustomizations)
	fetch(g, gctx, "category_customization_prices", l.repo.ListCategoryCustomizationPrices, &data.CategoryCustomizationPrices)
	fetch(g, gctx, "quantity_tiers", l.repo.ListQuantityTiers, &data.QuantityTiers)
	fetch(g, gctx, "color_palettes", l.repo.ListColorPalettes, &data.ColorPalettes)

	// A repository that ignores ctx must not hold the caller past the deadline.
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, l.loadError(ctx, err)
		}
	case <-ctx.Done():
		return nil, l.loadError(ctx, ctx.Err())
	}

	if err := l.validator.Validate(&data); err != nil {
		return nil, &LoadError{Err: err}
	}
	return NewSnapshot(data), nil
}

func (l *Loader) loadError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &LoadError{Err: fmt.Errorf("%w after %s", ErrLoadTimeout, l.timeout)}
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return &LoadError{Err: err}
}

func fetch[T any](g *errgroup.Group, ctx context.Context, table string, list func(context.Context) ([]T, error), dst *[]T) {
	g.Go(func() error {
		rows, err := list(ctx)
		if err != nil {
			return &LoadError{Table: table, Err: err}
		}
		*dst = rows
		return nil
	})
}
