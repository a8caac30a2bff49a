package menu

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockMenuRepo struct {
	nextID  int64
	byID    map[int64]*Item
	deleted []int64
}

func newMockMenuRepo() *mockMenuRepo {
	return &mockMenuRepo{byID: make(map[int64]*Item)}
}

func (m *mockMenuRepo) Create(_ context.Context, it *Item) error {
	m.nextID++
	it.ID = m.nextID
	cp := *it
	m.byID[it.ID] = &cp
	return nil
}

func (m *mockMenuRepo) Get(_ context.Context, id int64) (*Item, error) {
	it, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockMenuRepo) List(_ context.Context) ([]Item, error) {
	out := make([]Item, 0, len(m.byID))
	for _, it := range m.byID {
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockMenuRepo) ListAvailable(_ context.Context) ([]Item, error) {
	var out []Item
	for _, it := range m.byID {
		if it.IsAvailable {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockMenuRepo) ListByCategory(_ context.Context, category string) ([]Item, error) {
	var out []Item
	for _, it := range m.byID {
		if it.IsAvailable && it.Category == category {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockMenuRepo) Update(_ context.Context, id int64, upd Update) (*Item, error) {
	it, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		it.Name = *upd.Name
	}
	if upd.Category != nil {
		it.Category = *upd.Category
	}
	if upd.Price != nil {
		it.Price = *upd.Price
	}
	if upd.IsAvailable != nil {
		it.IsAvailable = *upd.IsAvailable
	}
	cp := *it
	return &cp, nil
}

func (m *mockMenuRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockUsageCounter struct {
	counts map[int64]int64
}

func (m *mockUsageCounter) CountByMenuItem(_ context.Context, menuItemID int64) (int64, error) {
	return m.counts[menuItemID], nil
}

// --- Helpers ---

func newTestService(counts map[int64]int64) (*Service, *mockMenuRepo) {
	repo := newMockMenuRepo()
	return NewService(repo, &mockUsageCounter{counts: counts}), repo
}

func mustCreate(t *testing.T, svc *Service, name, category, price string, available bool) *Item {
	t.Helper()

	it, err := svc.Create(context.Background(), CreateParams{
		Name:        name,
		Category:    category,
		Price:       decimal.RequireFromString(price),
		IsAvailable: available,
	})
	require.NoError(t, err)
	return it
}

// --- Tests ---

func TestCreate_RequiresNameAndCategory(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), CreateParams{Category: "coffee", Price: decimal.NewFromInt(180)})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Create(context.Background(), CreateParams{Name: "Cappuccino", Price: decimal.NewFromInt(180)})
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestCreate_RejectsNegativePrice(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), CreateParams{
		Name:     "Cappuccino",
		Category: "coffee",
		Price:    decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestCreate_ZeroPriceAllowed(t *testing.T) {
	svc, _ := newTestService(nil)

	it := mustCreate(t, svc, "Tap Water", "drinks", "0", true)
	assert.True(t, it.Price.IsZero())
}

func TestListAvailable_ExcludesRetired(t *testing.T) {
	svc, _ := newTestService(nil)
	mustCreate(t, svc, "Cappuccino", "coffee", "180", true)
	mustCreate(t, svc, "Flat White", "coffee", "200", false)

	items, err := svc.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cappuccino", items[0].Name)
}

func TestListByCategory_ExactMatch(t *testing.T) {
	svc, _ := newTestService(nil)
	mustCreate(t, svc, "Cappuccino", "coffee", "180", true)
	mustCreate(t, svc, "Cheesecake", "dessert", "200", true)
	mustCreate(t, svc, "Flat White", "coffee", "200", false)

	items, err := svc.ListByCategory(context.Background(), "coffee")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cappuccino", items[0].Name)

	// Category matching is exact, not case-insensitive.
	items, err = svc.ListByCategory(context.Background(), "Coffee")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _ := newTestService(nil)
	it := mustCreate(t, svc, "Cappuccino", "coffee", "180", true)

	price := decimal.NewFromInt(200)
	got, err := svc.Update(context.Background(), it.ID, Update{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Cappuccino", got.Name)
	assert.True(t, price.Equal(got.Price))
	assert.True(t, got.IsAvailable)
}

func TestUpdate_RejectsNegativePrice(t *testing.T) {
	svc, _ := newTestService(nil)
	it := mustCreate(t, svc, "Cappuccino", "coffee", "180", true)

	price := decimal.NewFromInt(-5)
	_, err := svc.Update(context.Background(), it.ID, Update{Price: &price})
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	name := "Ghost"
	_, err := svc.Update(context.Background(), 404, Update{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_Unreferenced(t *testing.T) {
	svc, repo := newTestService(nil)
	it := mustCreate(t, svc, "Cappuccino", "coffee", "180", true)

	require.NoError(t, svc.Delete(context.Background(), it.ID))
	assert.Equal(t, []int64{it.ID}, repo.deleted)
}

func TestDelete_GuardedByOrderReferences(t *testing.T) {
	svc, repo := newTestService(map[int64]int64{1: 2})
	it := mustCreate(t, svc, "Cappuccino", "coffee", "180", true)

	err := svc.Delete(context.Background(), it.ID)
	require.ErrorIs(t, err, ErrInUse)
	assert.Empty(t, repo.deleted)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	err := svc.Delete(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}
