// Package memstore keeps the catalog in process memory. It backs the seed-only
// terminal and serves as the fallback dataset when the REST service is down.
package memstore

import (
	"context"
	"sync"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/models"
)

type Store struct {
	mu   sync.RWMutex
	data *backend.Dataset
}

var _ backend.Backend = (*Store)(nil)

// New wraps a dataset; nil means the built-in seed data.
func New(data *backend.Dataset) *Store {
	if data == nil {
		data = backend.Seed()
	}
	return &Store{data: data.Clone()}
}

// Snapshot returns a copy of everything the store holds.
func (s *Store) Snapshot() *backend.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.data.Products...), nil
}

func (s *Store) ProductByCode(ctx context.Context, code string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ProductByCode(code)
}

func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateProduct(p), nil
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateProduct(p)
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DeleteProduct(id)
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Client(nil), s.data.Clients...), nil
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateClient(c), nil
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateClient(c)
}

func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DeleteClient(id)
}

func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.SortedSales(), nil
}

func (s *Store) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetSale(id)
}

// CreateSale decrements stock right away; there is no server to do it.
func (s *Store) CreateSale(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.RegisterSale(req)
}

func (s *Store) GetCompany(ctx context.Context) (models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Company, nil
}

func (s *Store) SaveCompany(ctx context.Context, c models.Company) (models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = models.CompanyID
	s.data.Company = c
	return c, nil
}
