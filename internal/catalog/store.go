// Package catalog is the terminal's in-memory mirror of the backing store.
// It is the only writer of the cached collections; every mutation goes to the
// backend first and the affected collection is re-read afterwards.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/models"

	"golang.org/x/sync/errgroup"
)

// LoadErrorBanner is shown while the last full load failed.
const LoadErrorBanner = "No se pudo conectar a la API."

var ErrWalkInClient = backend.ErrWalkInClient

type collection int

const (
	colProducts collection = iota
	colClients
	colSales
	colCompany
	numCollections
)

type Store struct {
	backend  backend.Backend
	fallback *backend.Dataset

	mu       sync.RWMutex
	products []models.Product
	clients  []models.Client
	sales    []models.Sale
	company  models.Company
	banner   string
	loaded   bool

	// issued is the last token handed out per collection, applied the last one
	// whose result was stored. A result older than applied is stale.
	issued  [numCollections]uint64
	applied [numCollections]uint64
}

// New builds an empty store. fallback, when set, replaces the catalog if the
// initial load fails (seed-data terminals).
func New(b backend.Backend, fallback *backend.Dataset) *Store {
	return &Store{
		backend:  b,
		fallback: fallback,
		company:  models.Company{ID: models.CompanyID},
	}
}

func (s *Store) begin(c collection) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[c]++
	return s.issued[c]
}

// commit runs apply under the write lock unless a newer refresh of the same
// collection already landed.
func (s *Store) commit(c collection, token uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token < s.applied[c] {
		log.Printf("catalog: stale refresh discarded (collection=%d token=%d applied=%d)", c, token, s.applied[c])
		return false
	}
	s.applied[c] = token
	apply()
	return true
}

// Load fetches every collection concurrently. On failure the banner is set and,
// if a fallback dataset exists, it is substituted.
func (s *Store) Load(ctx context.Context) error {
	var (
		products []models.Product
		clients  []models.Client
		sales    []models.Sale
		company  models.Company
	)
	tokens := [numCollections]uint64{
		s.begin(colProducts), s.begin(colClients), s.begin(colSales), s.begin(colCompany),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { company, err = s.backend.GetCompany(gctx); return })
	g.Go(func() (err error) { clients, err = s.backend.ListClients(gctx); return })
	g.Go(func() (err error) { products, err = s.backend.ListProducts(gctx); return })
	g.Go(func() (err error) { sales, err = s.backend.ListSales(gctx); return })

	if err := g.Wait(); err != nil {
		log.Printf("catalog load failed: %v", err)
		s.mu.Lock()
		s.banner = LoadErrorBanner
		if s.fallback != nil {
			log.Println("[WARN] using seed catalog instead of the backing service")
			d := s.fallback.Clone()
			s.products, s.clients, s.sales, s.company = d.Products, d.Clients, d.Sales, d.Company.Normalized()
			s.loaded = true
		}
		s.mu.Unlock()
		return fmt.Errorf("catalog load: %w", err)
	}

	s.commit(colProducts, tokens[colProducts], func() { s.products = products })
	s.commit(colClients, tokens[colClients], func() { s.clients = clients })
	s.commit(colSales, tokens[colSales], func() { s.sales = sales })
	s.commit(colCompany, tokens[colCompany], func() { s.company = company.Normalized() })

	s.mu.Lock()
	s.banner = ""
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Status: current banner (empty when fine) and whether a catalog is present.
func (s *Store) Status() (banner string, loaded bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner, s.loaded
}

func (s *Store) RefreshProducts(ctx context.Context) error {
	token := s.begin(colProducts)
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh products: %w", err)
	}
	s.commit(colProducts, token, func() { s.products = products })
	return nil
}

func (s *Store) RefreshClients(ctx context.Context) error {
	token := s.begin(colClients)
	clients, err := s.backend.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("refresh clients: %w", err)
	}
	s.commit(colClients, token, func() { s.clients = clients })
	return nil
}

func (s *Store) RefreshSales(ctx context.Context) error {
	token := s.begin(colSales)
	sales, err := s.backend.ListSales(ctx)
	if err != nil {
		return fmt.Errorf("refresh sales: %w", err)
	}
	s.commit(colSales, token, func() { s.sales = sales })
	return nil
}

func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

func (s *Store) Clients() []models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Client(nil), s.clients...)
}

func (s *Store) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Sale(nil), s.sales...)
}

func (s *Store) Company() models.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company
}

func (s *Store) ProductByID(id uint) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// ProductByCode looks the code up in the cached products only. A blank code
// never matches, even though products without a code exist.
func (s *Store) ProductByCode(code string) (models.Product, bool) {
	if code == "" {
		return models.Product{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Code == code {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) ClientByID(id uint) (models.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.ID == id {
			return c, true
		}
	}
	return models.Client{}, false
}

// SearchProducts matches name or code, case-insensitively.
func (s *Store) SearchProducts(q string) []models.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	products := s.Products()
	if q == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Code), q) {
			out = append(out, p)
		}
	}
	return out
}

// SearchClients matches tax id, first or last name, case-insensitively.
func (s *Store) SearchClients(q string) []models.Client {
	q = strings.ToLower(strings.TrimSpace(q))
	clients := s.Clients()
	if q == "" {
		return clients
	}
	out := make([]models.Client, 0, len(clients))
	for _, c := range clients {
		for _, field := range []string{c.TaxID, c.FirstName, c.LastName} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (s *Store) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	created, err := s.backend.CreateProduct(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, s.RefreshProducts(ctx)
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	updated, err := s.backend.UpdateProduct(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return updated, s.RefreshProducts(ctx)
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return s.RefreshProducts(ctx)
}

func (s *Store) AddClient(ctx context.Context, c models.Client) (models.Client, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return models.Client{}, err
	}
	created, err := s.backend.CreateClient(ctx, c)
	if err != nil {
		return models.Client{}, fmt.Errorf("create client: %w", err)
	}
	return created, s.RefreshClients(ctx)
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return models.Client{}, err
	}
	updated, err := s.backend.UpdateClient(ctx, c)
	if err != nil {
		return models.Client{}, fmt.Errorf("update client %d: %w", c.ID, err)
	}
	return updated, s.RefreshClients(ctx)
}

// DeleteClient never sends a request for the walk-in client.
func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	if id == models.WalkInClientID {
		return ErrWalkInClient
	}
	if err := s.backend.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client %d: %w", id, err)
	}
	return s.RefreshClients(ctx)
}

// SaveCompany writes the company and keeps what the backend reads back.
func (s *Store) SaveCompany(ctx context.Context, c models.Company) (models.Company, error) {
	token := s.begin(colCompany)
	if _, err := s.backend.SaveCompany(ctx, c); err != nil {
		return models.Company{}, fmt.Errorf("save company: %w", err)
	}
	fresh, err := s.backend.GetCompany(ctx)
	if err != nil {
		return models.Company{}, fmt.Errorf("reload company: %w", err)
	}
	fresh = fresh.Normalized()
	fresh.Modified = true
	s.commit(colCompany, token, func() { s.company = fresh })
	return fresh, nil
}

// GetSale reads one sale with items and client from the backend.
func (s *Store) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	sale, err := s.backend.GetSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale %d: %w", id, err)
	}
	return sale, nil
}

// RegisterSale creates the sale, reads it back in full and refreshes sales and
// products so the displayed stock reflects the server-side decrement.
func (s *Store) RegisterSale(ctx context.Context, req models.SaleRequest) (*models.Sale, error) {
	receipt, err := s.backend.CreateSale(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register sale: %w", err)
	}
	log.Printf("sale registered id=%d total=%s", receipt.ID, receipt.Total.StringFixed(2))

	sale, err := s.GetSale(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RefreshSales(gctx) })
	g.Go(func() error { return s.RefreshProducts(gctx) })
	if err := g.Wait(); err != nil {
		// the sale exists; a failed refresh only leaves stale numbers on screen
		log.Printf("[WARN] refresh after sale %d: %v", receipt.ID, err)
	}
	return sale, nil
}

// ParseID accepts the digits-only ids used in routes and lookups.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, errors.New("id inválido")
	}
	return uint(n), nil
}

// LookupCode asks the backend for a code and falls back to the cached index
// when the backend misses or fails.
func (s *Store) LookupCode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, backend.ErrNotFound
	}
	p, err := s.backend.ProductByCode(ctx, code)
	if err == nil && p != nil {
		return p, nil
	}
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		log.Printf("code lookup %q failed, using cached products: %v", code, err)
	}
	if local, ok := s.ProductByCode(code); ok {
		return &local, nil
	}
	return nil, backend.ErrNotFound
}
