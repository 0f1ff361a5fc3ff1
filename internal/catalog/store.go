package catalog

import (
	"slices"
	"sync"

	"github.com/gitshopapp/merchconfig/internal/models"
	"github.com/gitshopapp/merchconfig/internal/pricing"
)

// Selection is the customer's in-progress configuration. Zero ids mean
// nothing is selected for that step.
type Selection struct {
	CategoryID       int64   `json:"category_id"`
	FitID            int64   `json:"fit_id"`
	MaterialID       int64   `json:"material_id"`
	ColorID          int64   `json:"color_id"`
	PrintFrontID     int64   `json:"print_front_id"`
	PrintBackID      int64   `json:"print_back_id"`
	CustomizationIDs []int64 `json:"customization_ids"`
	Quantity         int     `json:"quantity"`
}

// NewSelection returns the initial selection.
func NewSelection() Selection {
	return Selection{
		CustomizationIDs: []int64{},
		Quantity:         pricing.DefaultQuantity,
	}
}

func (s Selection) clone() Selection {
	s.CustomizationIDs = cloneSlice(s.CustomizationIDs)
	return s
}

// Patch is a partial update. Nil fields are left untouched; a non-nil empty
// CustomizationIDs clears the set. Repeated customization ids are kept once.
type Patch struct {
	CategoryID       *int64
	FitID            *int64
	MaterialID       *int64
	ColorID          *int64
	PrintFrontID     *int64
	PrintBackID      *int64
	CustomizationIDs []int64
	Quantity         *int
}

// Listener receives a copy of the selection after each change.
type Listener func(Selection)

type Option func(*Store)

// WithResetPrintsOnCategoryChange makes SelectCategory clear both print slots.
func WithResetPrintsOnCategoryChange(reset bool) Option {
	return func(s *Store) {
		s.resetPrintsOnCategoryChange = reset
	}
}

// WithSelection seeds the store with an initial selection.
func WithSelection(sel Selection) Option {
	return func(s *Store) {
		s.state = sel.clone()
		s.state.Quantity = pricing.ClampQuantityValue(s.state.Quantity)
	}
}

type subscription struct {
	id       uint64
	listener Listener
}

// Store owns one selection over one catalog snapshot. Derivations on the
// store always read the snapshot currently installed.
type Store struct {
	mu       sync.Mutex
	snapshot *Snapshot
	state    Selection

	subscriptions []subscription
	nextID        uint64

	resetPrintsOnCategoryChange bool
}

func NewStore(snapshot *Snapshot, opts ...Option) *Store {
	if snapshot == nil {
		snapshot = EmptySnapshot()
	}
	s := &Store{
		snapshot: snapshot,
		state:    NewSelection(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current selection.
func (s *Store) State() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Snapshot returns the installed catalog snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscriptions = append(s.subscriptions, subscription{id: id, listener: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subscriptions = slices.DeleteFunc(s.subscriptions, func(sub subscription) bool { return sub.id == id })
	}
}

// SetCatalogSnapshot swaps the whole dataset. The previous snapshot is never
// merged with the new one.
func (s *Store) SetCatalogSnapshot(snapshot *Snapshot) {
	if snapshot == nil {
		snapshot = EmptySnapshot()
	}
	s.commit(func(st *Selection) {
		s.snapshot = snapshot
		s.dropUnavailableCustomizations(st)
		s.reconcilePrints(st)
	})
}

// Update merges patch into the selection without cascading.
func (s *Store) Update(patch Patch) {
	s.commit(func(st *Selection) {
		applyPatch(st, patch)
	})
}

// SelectCategory sets the category and clears fit, material, colour and
// customizations.
func (s *Store) SelectCategory(categoryID int64) {
	s.commit(func(st *Selection) {
		st.CategoryID = categoryID
		st.FitID = 0
		st.MaterialID = 0
		st.ColorID = 0
		st.CustomizationIDs = []int64{}
		if s.resetPrintsOnCategoryChange {
			st.PrintFrontID = 0
			st.PrintBackID = 0
		}
		s.reconcilePrints(st)
	})
}

// SelectFit sets the fit and clears material and colour.
func (s *Store) SelectFit(fitID int64) {
	s.commit(func(st *Selection) {
		st.FitID = fitID
		st.MaterialID = 0
		st.ColorID = 0
		s.reconcilePrints(st)
	})
}

// SelectMaterial sets the material and clears colour.
func (s *Store) SelectMaterial(materialID int64) {
	s.commit(func(st *Selection) {
		st.MaterialID = materialID
		st.ColorID = 0
		s.reconcilePrints(st)
	})
}

func (s *Store) SelectColor(colorID int64) {
	s.Update(Patch{ColorID: &colorID})
}

func (s *Store) SelectPrintFront(printMethodID int64) {
	s.Update(Patch{PrintFrontID: &printMethodID})
}

func (s *Store) SelectPrintBack(printMethodID int64) {
	s.Update(Patch{PrintBackID: &printMethodID})
}

// SetQuantity stores qty clamped to the minimum.
func (s *Store) SetQuantity(qty int) {
	s.Update(Patch{Quantity: &qty})
}

// ToggleCustomization adds or removes one id with set semantics.
func (s *Store) ToggleCustomization(customizationID int64, enabled bool) {
	s.commit(func(st *Selection) {
		idx := slices.Index(st.CustomizationIDs, customizationID)
		switch {
		case enabled && idx < 0:
			st.CustomizationIDs = append(st.CustomizationIDs, customizationID)
		case !enabled && idx >= 0:
			st.CustomizationIDs = slices.Delete(st.CustomizationIDs, idx, idx+1)
		}
	})
}

func (s *Store) AvailableFits() []models.Fit {
	snapshot, st := s.View()
	return snapshot.AvailableFits(st.CategoryID)
}

func (s *Store) AvailableMaterials() []models.Material {
	snapshot, st := s.View()
	return snapshot.AvailableMaterials(st.CategoryID, st.FitID)
}

func (s *Store) AvailableColors() []models.ColorPaletteEntry {
	snapshot, st := s.View()
	return snapshot.AvailableColors(st.MaterialID)
}

func (s *Store) AvailablePrintMethods() []models.PrintMethod {
	snapshot, st := s.View()
	return snapshot.AvailablePrintMethods(st.CategoryID)
}

func (s *Store) AvailableCustomizations() []models.Customization {
	snapshot, st := s.View()
	return snapshot.AvailableCustomizations(st.CategoryID)
}

// BasePrice returns 0 when the selected triple is not orderable.
func (s *Store) BasePrice() int64 {
	snapshot, st := s.View()
	return snapshot.BasePrice(st.CategoryID, st.FitID, st.MaterialID)
}

func (s *Store) PrintPrice(printMethodID int64) int64 {
	snapshot, _ := s.View()
	return snapshot.PrintPrice(printMethodID)
}

func (s *Store) CustomizationsPrice(customizationIDs []int64) int64 {
	snapshot, st := s.View()
	return snapshot.CustomizationsPrice(st.CategoryID, customizationIDs)
}

// View returns the installed snapshot and a copy of the selection, read together.
func (s *Store) View() (*Snapshot, Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.state.clone()
}

// commit applies mutate under the lock and notifies listeners after it is released.
func (s *Store) commit(mutate func(*Selection)) {
	s.mu.Lock()
	mutate(&s.state)
	state := s.state.clone()
	listeners := make([]Listener, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		listeners = append(listeners, sub.listener)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state.clone())
	}
}

// reconcilePrints moves print slots that are no longer offered to the
// default method. Prints are only offered once a material is chosen.
func (s *Store) reconcilePrints(st *Selection) {
	if st.MaterialID == 0 {
		return
	}
	methods := s.snapshot.AvailablePrintMethods(st.CategoryID)
	st.PrintFrontID = reconcilePrint(methods, st.PrintFrontID)
	st.PrintBackID = reconcilePrint(methods, st.PrintBackID)
}

func reconcilePrint(methods []models.PrintMethod, current int64) int64 {
	for _, m := range methods {
		if m.ID == current && current != 0 {
			return current
		}
	}
	return DefaultPrintMethod(methods)
}

func (s *Store) dropUnavailableCustomizations(st *Selection) {
	if st.CategoryID == 0 || len(st.CustomizationIDs) == 0 {
		return
	}
	allowed := idSet{}
	for _, c := range s.snapshot.AvailableCustomizations(st.CategoryID) {
		allowed.add(c.ID)
	}
	st.CustomizationIDs = slices.DeleteFunc(st.CustomizationIDs, func(id int64) bool { return !allowed.has(id) })
}

func applyPatch(st *Selection, patch Patch) {
	if patch.CategoryID != nil {
		st.CategoryID = *patch.CategoryID
	}
	if patch.FitID != nil {
		st.FitID = *patch.FitID
	}
	if patch.MaterialID != nil {
		st.MaterialID = *patch.MaterialID
	}
	if patch.ColorID != nil {
		st.ColorID = *patch.ColorID
	}
	if patch.PrintFrontID != nil {
		st.PrintFrontID = *patch.PrintFrontID
	}
	if patch.PrintBackID != nil {
		st.PrintBackID = *patch.PrintBackID
	}
	if patch.CustomizationIDs != nil {
		st.CustomizationIDs = uniqueIDs(patch.CustomizationIDs)
	}
	if patch.Quantity != nil {
		st.Quantity = pricing.ClampQuantityValue(*patch.Quantity)
	}
}

// uniqueIDs copies ids, keeping the first occurrence of each.
func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := idSet{}
	for _, id := range ids {
		if seen.has(id) {
			continue
		}
		seen.add(id)
		out = append(out, id)
	}
	return out
}
