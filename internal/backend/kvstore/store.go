// Package kvstore persists the terminal catalog in an embedded badger database,
// one JSON document per collection, the same shape the browser variant kept in
// localStorage.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	keyProducts = []byte("products")
	keyClients  = []byte("clients")
	keySales    = []byte("sales")
	keyCompany  = []byte("company")
)

type Store struct {
	db *badger.DB
	mu sync.Mutex // serializes read-modify-write cycles
}

var _ backend.Backend = (*Store)(nil)

// Open opens (or creates) the database at path; an empty path keeps it in memory.
// A fresh database is filled with the seed catalog.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedIfEmpty(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seedIfEmpty() error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyCompany)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		log.Println("kvstore empty, writing seed catalog")
		return save(txn, backend.Seed())
	})
}

func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, b)
}

func load(txn *badger.Txn) (*backend.Dataset, error) {
	d := &backend.Dataset{}
	if err := getJSON(txn, keyProducts, &d.Products); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	if err := getJSON(txn, keyClients, &d.Clients); err != nil {
		return nil, fmt.Errorf("read clients: %w", err)
	}
	if err := getJSON(txn, keySales, &d.Sales); err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}
	if err := getJSON(txn, keyCompany, &d.Company); err != nil {
		return nil, fmt.Errorf("read company: %w", err)
	}
	return d, nil
}

func save(txn *badger.Txn, d *backend.Dataset) error {
	if err := setJSON(txn, keyProducts, d.Products); err != nil {
		return err
	}
	if err := setJSON(txn, keyClients, d.Clients); err != nil {
		return err
	}
	if err := setJSON(txn, keySales, d.Sales); err != nil {
		return err
	}
	return setJSON(txn, keyCompany, d.Company)
}

func (s *Store) view(fn func(d *backend.Dataset) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		d, err := load(txn)
		if err != nil {
			return err
		}
		return fn(d)
	})
}

func (s *Store) update(fn func(d *backend.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		d, err := load(txn)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		return save(txn, d)
	})
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := s.view(func(d *backend.Dataset) error {
		out = d.Products
		return nil
	})
	return out, err
}

func (s *Store) ProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var out *models.Product
	err := s.view(func(d *backend.Dataset) error {
		p, err := d.ProductByCode(code)
		out = p
		return err
	})
	return out, err
}

func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := s.update(func(d *backend.Dataset) error {
		out = d.CreateProduct(p)
		return nil
	})
	return out, err
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var out models.Product
	err := s.update(func(d *backend.Dataset) error {
		var err error
		out, err = d.UpdateProduct(p)
		return err
	})
	return out, err
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.update(func(d *backend.Dataset) error {
		return d.DeleteProduct(id)
	})
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	err := s.view(func(d *backend.Dataset) error {
		out = d.Clients
		return nil
	})
	return out, err
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	var out models.Client
	err := s.update(func(d *backend.Dataset) error {
		out = d.CreateClient(c)
		return nil
	})
	return out, err
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	var out models.Client
	err := s.update(func(d *backend.Dataset) error {
		var err error
		out, err = d.UpdateClient(c)
		return err
	})
	return out, err
}

func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	return s.update(func(d *backend.Dataset) error {
		return d.DeleteClient(id)
	})
}

func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	var out []models.Sale
	err := s.view(func(d *backend.Dataset) error {
		out = d.SortedSales()
		return nil
	})
	return out, err
}

func (s *Store) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var out *models.Sale
	err := s.view(func(d *backend.Dataset) error {
		var err error
		out, err = d.GetSale(id)
		return err
	})
	return out, err
}

func (s *Store) CreateSale(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error) {
	var out models.SaleReceipt
	err := s.update(func(d *backend.Dataset) error {
		var err error
		out, err = d.RegisterSale(req)
		return err
	})
	return out, err
}

func (s *Store) GetCompany(ctx context.Context) (models.Company, error) {
	var out models.Company
	err := s.view(func(d *backend.Dataset) error {
		out = d.Company
		return nil
	})
	return out, err
}

func (s *Store) SaveCompany(ctx context.Context, c models.Company) (models.Company, error) {
	c.ID = models.CompanyID
	err := s.update(func(d *backend.Dataset) error {
		d.Company = c
		return nil
	})
	return c, err
}
