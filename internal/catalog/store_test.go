package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/backend/memstore"
	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend wraps the memory store, counts calls and can fail or intercept.
type fakeBackend struct {
	*memstore.Store

	mu           sync.Mutex
	calls        map[string]int
	failLists    error
	listProducts func(ctx context.Context) ([]models.Product, error)
}

func newFake() *fakeBackend {
	return &fakeBackend{Store: memstore.New(nil), calls: map[string]int{}}
}

func (f *fakeBackend) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.count("ListProducts")
	if f.failLists != nil {
		return nil, f.failLists
	}
	if f.listProducts != nil {
		return f.listProducts(ctx)
	}
	return f.Store.ListProducts(ctx)
}

func (f *fakeBackend) ListClients(ctx context.Context) ([]models.Client, error) {
	f.count("ListClients")
	if f.failLists != nil {
		return nil, f.failLists
	}
	return f.Store.ListClients(ctx)
}

func (f *fakeBackend) DeleteClient(ctx context.Context, id uint) error {
	f.count("DeleteClient")
	return f.Store.DeleteClient(ctx, id)
}

func (f *fakeBackend) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	f.count("GetSale")
	return f.Store.GetSale(ctx, id)
}

func loaded(t *testing.T, f *fakeBackend) *Store {
	t.Helper()
	s := New(f, nil)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestLoad(t *testing.T) {
	s := loaded(t, newFake())

	banner, ok := s.Status()
	assert.Empty(t, banner)
	assert.True(t, ok)
	assert.Len(t, s.Products(), 4)
	assert.Len(t, s.Clients(), 2)
	assert.Equal(t, "Mi Tienda", s.Company().Name)
}

func TestLoadFailureSetsBannerAndFallsBack(t *testing.T) {
	f := newFake()
	f.failLists = errors.New("connection refused")

	s := New(f, nil)
	require.Error(t, s.Load(context.Background()))
	banner, ok := s.Status()
	assert.Equal(t, LoadErrorBanner, banner)
	assert.False(t, ok)
	assert.Empty(t, s.Products())

	s = New(f, backend.Seed())
	require.Error(t, s.Load(context.Background()))
	banner, ok = s.Status()
	assert.Equal(t, LoadErrorBanner, banner)
	assert.True(t, ok)
	assert.Len(t, s.Products(), 4)

	f.failLists = nil
	require.NoError(t, s.Load(context.Background()))
	banner, _ = s.Status()
	assert.Empty(t, banner)
}

func TestDeleteWalkInClientMakesNoCall(t *testing.T) {
	f := newFake()
	s := loaded(t, f)

	err := s.DeleteClient(context.Background(), models.WalkInClientID)
	assert.ErrorIs(t, err, ErrWalkInClient)
	assert.Zero(t, f.called("DeleteClient"))
	assert.Len(t, s.Clients(), 2)

	require.NoError(t, s.DeleteClient(context.Background(), 2))
	assert.Equal(t, 1, f.called("DeleteClient"))
	assert.Len(t, s.Clients(), 1)
}

func TestMutationsRefreshCollection(t *testing.T) {
	f := newFake()
	s := loaded(t, f)
	ctx := context.Background()
	before := f.called("ListProducts")

	created, err := s.AddProduct(ctx, models.Product{Name: "  Tortillas ", Code: "7401000000042", Stock: 20, Price: decimal.RequireFromString("0.50")})
	require.NoError(t, err)
	assert.Equal(t, "Tortillas", created.Name)
	assert.Equal(t, before+1, f.called("ListProducts"))

	p, ok := s.ProductByCode("7401000000042")
	require.True(t, ok)
	assert.Equal(t, created.ID, p.ID)

	_, err = s.AddProduct(ctx, models.Product{Name: " "})
	assert.ErrorIs(t, err, models.ErrProductNameRequired)
	assert.Equal(t, before+1, f.called("ListProducts"))

	_, err = s.AddClient(ctx, models.Client{})
	assert.ErrorIs(t, err, models.ErrClientNameRequired)
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	f := newFake()
	s := loaded(t, f)

	err := s.DeleteProduct(context.Background(), 999)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Len(t, s.Products(), 4)
}

func TestSaveCompanyMarksModified(t *testing.T) {
	s := loaded(t, newFake())

	co, err := s.SaveCompany(context.Background(), models.Company{Name: "Abarrotes Ana"})
	require.NoError(t, err)
	assert.True(t, co.Modified)
	assert.Equal(t, models.CompanyID, co.ID)
	assert.Equal(t, "Abarrotes Ana", s.Company().Name)
}

func TestRegisterSaleRefreshesStockAndSales(t *testing.T) {
	f := newFake()
	s := loaded(t, f)

	sale, err := s.RegisterSale(context.Background(), models.SaleRequest{
		ClientID: 2,
		Seller:   "Ana",
		Items:    []models.SaleItemRequest{{ProductID: 3, Quantity: 4, Price: decimal.RequireFromString("1.50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.called("GetSale"))
	assert.Equal(t, "6.00", sale.Total.StringFixed(2))
	require.NotNil(t, sale.Client)

	pan, ok := s.ProductByID(3)
	require.True(t, ok)
	assert.Equal(t, 36, pan.Stock)
	assert.Len(t, s.Sales(), 1)
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	f := newFake()
	s := loaded(t, f)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.listProducts = func(ctx context.Context) ([]models.Product, error) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-release
			return []models.Product{{ID: 1, Name: "viejo"}}, nil
		}
		return []models.Product{{ID: 1, Name: "nuevo"}}, nil
	}

	done := make(chan error, 1)
	go func() { done <- s.RefreshProducts(context.Background()) }()
	<-entered

	require.NoError(t, s.RefreshProducts(context.Background()))
	close(release)
	require.NoError(t, <-done)

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "nuevo", products[0].Name)
}

func TestLookupCodeFallsBackToCache(t *testing.T) {
	f := newFake()
	s := loaded(t, f)

	p, err := s.LookupCode(context.Background(), "7401000000035")
	require.NoError(t, err)
	assert.Equal(t, uint(3), p.ID)

	_, err = s.LookupCode(context.Background(), "0000")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestBlankCodeNeverMatches(t *testing.T) {
	s := loaded(t, newFake())

	// the seed carries a product without a code
	p, ok := s.ProductByID(4)
	require.True(t, ok)
	require.Empty(t, p.Code)

	for _, code := range []string{"", "  ", "\t"} {
		_, err := s.LookupCode(context.Background(), code)
		assert.ErrorIs(t, err, backend.ErrNotFound, "%q", code)
	}
	_, ok = s.ProductByCode("")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	s := loaded(t, newFake())

	assert.Len(t, s.SearchProducts("CAFÉ"), 1)
	assert.Len(t, s.SearchProducts("740100000"), 3)
	assert.Len(t, s.SearchProducts(""), 4)
	assert.Len(t, s.SearchClients("lópez"), 1)
	assert.Len(t, s.SearchClients("c/f"), 1)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "99999999999"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
