package backend

import (
	"testing"
	"time"

	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSale(t *testing.T) {
	products := Seed().Products
	at := time.Date(2025, 10, 14, 9, 30, 0, 0, time.FixedZone("CST", -6*60*60))

	sale, err := BuildSale(models.SaleRequest{
		ClientID:  2,
		Seller:    "Ana",
		Timestamp: at,
		Items: []models.SaleItemRequest{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("4.50")},
			{ProductID: 4, Quantity: 4, Price: decimal.RequireFromString("0.25")},
		},
	}, products)
	require.NoError(t, err)
	assert.Equal(t, "10.00", sale.Total.StringFixed(2))
	assert.Equal(t, "Agua pura 600ml", sale.Items[0].Name)
	assert.Equal(t, time.UTC, sale.Date.Location())
	assert.True(t, sale.Date.Equal(at))
}

func TestBuildSaleRejects(t *testing.T) {
	products := Seed().Products

	_, err := BuildSale(models.SaleRequest{}, products)
	assert.ErrorIs(t, err, ErrEmptySale)

	_, err = BuildSale(models.SaleRequest{Items: []models.SaleItemRequest{{ProductID: 77, Quantity: 1}}}, products)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = BuildSale(models.SaleRequest{Items: []models.SaleItemRequest{{ProductID: 3, Quantity: 41}}}, products)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = BuildSale(models.SaleRequest{Items: []models.SaleItemRequest{{ProductID: 3, Quantity: 0}}}, products)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRegisterSaleIsAllOrNothing(t *testing.T) {
	d := Seed()

	_, err := d.RegisterSale(models.SaleRequest{
		ClientID: 1,
		Items: []models.SaleItemRequest{
			{ProductID: 1, Quantity: 1},
			{ProductID: 3, Quantity: 50},
		},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 100, d.Products[0].Stock)
	assert.Empty(t, d.Sales)

	receipt, err := d.RegisterSale(models.SaleRequest{
		ClientID: 1,
		Items:    []models.SaleItemRequest{{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("4.50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), receipt.ID)
	assert.Equal(t, 99, d.Products[0].Stock)
}

func TestWalkInClientCannotBeDeleted(t *testing.T) {
	d := Seed()
	assert.ErrorIs(t, d.DeleteClient(models.WalkInClientID), ErrWalkInClient)
	assert.Len(t, d.Clients, 2)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("kv")
	assert.True(t, ok)
	assert.Equal(t, KindKV, k)

	_, ok = ParseKind("redis")
	assert.False(t, ok)
}
