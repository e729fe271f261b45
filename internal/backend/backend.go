package backend

import (
	"context"
	"errors"

	"mystore-pos/internal/models"
)

var (
	ErrNotFound          = errors.New("registro no encontrado")
	ErrWalkInClient      = errors.New("no se puede eliminar el cliente C/F")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUnknownClient     = errors.New("cliente inexistente")
	ErrEmptySale         = errors.New("la venta no tiene productos")
)

// Backend: uniform persistence interface. One strategy is selected at startup
// (REST service, SQL, key/value or seed data).
type Backend interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ProductByCode(ctx context.Context, code string) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, c models.Client) (models.Client, error)
	UpdateClient(ctx context.Context, c models.Client) (models.Client, error)
	DeleteClient(ctx context.Context, id uint) error

	ListSales(ctx context.Context) ([]models.Sale, error)
	GetSale(ctx context.Context, id uint) (*models.Sale, error)
	CreateSale(ctx context.Context, req models.SaleRequest) (models.SaleReceipt, error)

	GetCompany(ctx context.Context) (models.Company, error)
	SaveCompany(ctx context.Context, c models.Company) (models.Company, error)
}

// Kind names the configured strategy.
type Kind string

const (
	KindAPI  Kind = "api"
	KindSQL  Kind = "sql"
	KindKV   Kind = "kv"
	KindSeed Kind = "seed"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindAPI, KindSQL, KindKV, KindSeed:
		return k, true
	}
	return "", false
}
