// Package sqlstore is the gorm-backed strategy (sqlite or Postgres).
package sqlstore

import (
	"context"
	"errors"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/models"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ backend.Backend = (*Store)(nil)

// New expects a migrated database (see database.Migrate).
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return backend.ErrNotFound
	}
	return err
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) ProductByCode(ctx context.Context, code string) (*models.Product, error) {
	if code == "" {
		return nil, backend.ErrNotFound
	}
	var p models.Product
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = 0
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	var existing models.Product
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", p.ID).Error; err != nil {
		return models.Product{}, notFound(err)
	}
	existing.Code = p.Code
	existing.Name = p.Name
	existing.Stock = p.Stock
	existing.Price = p.Price
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return models.Product{}, err
	}
	return existing, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Order("id asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	c.ID = 0
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return models.Client{}, err
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (models.Client, error) {
	var existing models.Client
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", c.ID).Error; err != nil {
		return models.Client{}, notFound(err)
	}
	existing.TaxID = c.TaxID
	existing.FirstName = c.FirstName
	existing.LastName = c.LastName
	existing.Phone = c.Phone
	existing.Address = c.Address
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return models.Client{}, err
	}
	return existing, nil
}

func (s *Store) DeleteClient(ctx context.Context, id uint) error {
	if id == models.WalkInClientID {
		return backend.ErrWalkInClient
	}
	res := s.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Items").
		Order("id desc").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Items").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// CreateSale checks and decrements stock inside one transaction.
func (s *Store) CreateSale(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error) {
	var receipt models.SaleReceipt

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", req.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return backend.ErrUnknownClient
			}
			return err
		}

		ids := make([]uint, 0, len(req.Items))
		for _, it := range req.Items {
			ids = append(ids, it.ProductID)
		}
		var products []models.Product
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
				return err
			}
		}

		sale, err := backend.BuildSale(req, products)
		if err != nil {
			return err
		}

		wanted := make(map[uint]int)
		for _, it := range sale.Items {
			wanted[it.ProductID] += it.Quantity
		}
		for productID, qty := range wanted {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", productID, qty).
				UpdateColumn("stock", gorm.Expr("stock - ?", qty))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return backend.ErrInsufficientStock
			}
		}

		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		receipt = models.SaleReceipt{ID: sale.ID, Total: sale.Total, Date: sale.Date}
		return nil
	})

	return receipt, err
}

func (s *Store) GetCompany(ctx context.Context) (models.Company, error) {
	var c models.Company
	if err := s.db.WithContext(ctx).First(&c, "id = ?", models.CompanyID).Error; err != nil {
		return models.Company{}, notFound(err)
	}
	return c, nil
}

func (s *Store) SaveCompany(ctx context.Context, c models.Company) (models.Company, error) {
	c.ID = models.CompanyID
	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return models.Company{}, err
	}
	return c, nil
}
