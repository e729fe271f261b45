// Package backendtest holds the behaviour every local backend strategy shares.
package backendtest

import (
	"context"
	"testing"
	"time"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh backend produced by open. The backend must hold the
// walk-in client and may hold other seed data.
func Run(t *testing.T, open func(t *testing.T) backend.Backend) {
	t.Run("products", func(t *testing.T) { products(t, open(t)) })
	t.Run("clients", func(t *testing.T) { clients(t, open(t)) })
	t.Run("sales", func(t *testing.T) { sales(t, open(t)) })
	t.Run("company", func(t *testing.T) { company(t, open(t)) })
}

func stockOf(t *testing.T, b backend.Backend, id uint) int {
	t.Helper()
	list, err := b.ListProducts(context.Background())
	require.NoError(t, err)
	for _, p := range list {
		if p.ID == id {
			return p.Stock
		}
	}
	t.Fatalf("product %d not listed", id)
	return 0
}

func products(t *testing.T, b backend.Backend) {
	ctx := context.Background()

	p, err := b.CreateProduct(ctx, models.Product{
		Code: "TEST-0001", Name: "Galletas", Stock: 5, Price: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	found, err := b.ProductByCode(ctx, "TEST-0001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = b.ProductByCode(ctx, "TEST-none")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	p.Stock = 7
	_, err = b.UpdateProduct(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 7, stockOf(t, b, p.ID))

	_, err = b.UpdateProduct(ctx, models.Product{ID: 9999, Name: "x"})
	assert.ErrorIs(t, err, backend.ErrNotFound)

	require.NoError(t, b.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, b.DeleteProduct(ctx, p.ID), backend.ErrNotFound)
}

func clients(t *testing.T, b backend.Backend) {
	ctx := context.Background()

	assert.ErrorIs(t, b.DeleteClient(ctx, models.WalkInClientID), backend.ErrWalkInClient)

	c, err := b.CreateClient(ctx, models.Client{TaxID: "555-1", FirstName: "Luis", LastName: "Pérez"})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	assert.NotEqual(t, models.WalkInClientID, c.ID)

	c.Address = "Zona 10"
	updated, err := b.UpdateClient(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "Zona 10", updated.Address)

	list, err := b.ListClients(ctx)
	require.NoError(t, err)
	var walkIn bool
	for _, cl := range list {
		walkIn = walkIn || cl.ID == models.WalkInClientID
	}
	assert.True(t, walkIn, "walk-in client must exist")

	require.NoError(t, b.DeleteClient(ctx, c.ID))
	assert.ErrorIs(t, b.DeleteClient(ctx, c.ID), backend.ErrNotFound)
}

func sales(t *testing.T, b backend.Backend) {
	ctx := context.Background()

	p1, err := b.CreateProduct(ctx, models.Product{Name: "Leche", Stock: 3, Price: decimal.RequireFromString("2.50")})
	require.NoError(t, err)
	p2, err := b.CreateProduct(ctx, models.Product{Name: "Jabón", Stock: 10, Price: decimal.RequireFromString("1")})
	require.NoError(t, err)

	at := time.Date(2025, 10, 14, 18, 0, 0, 0, time.UTC)
	receipt, err := b.CreateSale(ctx, models.SaleRequest{
		ClientID:  models.WalkInClientID,
		Seller:    "Ana",
		Timestamp: at,
		Items: []models.SaleItemRequest{
			{ProductID: p1.ID, Quantity: 2, Price: p1.Price},
			{ProductID: p2.ID, Quantity: 3, Price: p2.Price},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, receipt.ID)
	assert.Equal(t, "8.00", receipt.Total.StringFixed(2))
	assert.Equal(t, 1, stockOf(t, b, p1.ID))
	assert.Equal(t, 7, stockOf(t, b, p2.ID))

	sale, err := b.GetSale(ctx, receipt.ID)
	require.NoError(t, err)
	assert.True(t, sale.HasDetail())
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, "Leche", sale.Items[0].Name)
	assert.True(t, sale.Total.Equal(sale.ItemsTotal()))
	assert.True(t, sale.Date.Equal(at))

	// nothing changes when any line exceeds stock, merged per product
	_, err = b.CreateSale(ctx, models.SaleRequest{
		ClientID: models.WalkInClientID,
		Items: []models.SaleItemRequest{
			{ProductID: p2.ID, Quantity: 1, Price: p2.Price},
			{ProductID: p1.ID, Quantity: 1, Price: p1.Price},
			{ProductID: p1.ID, Quantity: 1, Price: p1.Price},
		},
	})
	assert.ErrorIs(t, err, backend.ErrInsufficientStock)
	assert.Equal(t, 1, stockOf(t, b, p1.ID))
	assert.Equal(t, 7, stockOf(t, b, p2.ID))

	_, err = b.CreateSale(ctx, models.SaleRequest{
		ClientID: 9999,
		Items:    []models.SaleItemRequest{{ProductID: p2.ID, Quantity: 1, Price: p2.Price}},
	})
	assert.ErrorIs(t, err, backend.ErrUnknownClient)

	_, err = b.CreateSale(ctx, models.SaleRequest{ClientID: models.WalkInClientID})
	assert.ErrorIs(t, err, backend.ErrEmptySale)

	second, err := b.CreateSale(ctx, models.SaleRequest{
		ClientID: models.WalkInClientID,
		Items:    []models.SaleItemRequest{{ProductID: p2.ID, Quantity: 1, Price: p2.Price}},
	})
	require.NoError(t, err)

	list, err := b.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = b.GetSale(ctx, 9999)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func company(t *testing.T, b backend.Backend) {
	ctx := context.Background()

	_, err := b.SaveCompany(ctx, models.Company{Name: "Abarrotes Ana", Location: "Antigua", Phone: "7777-0000"})
	require.NoError(t, err)

	got, err := b.GetCompany(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyID, got.ID)
	assert.Equal(t, "Abarrotes Ana", got.Name)
	assert.Equal(t, "Antigua", got.Location)
}
