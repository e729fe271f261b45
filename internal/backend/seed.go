package backend

import (
	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
)

// Seed returns the demo catalog used by the seed strategy and as load fallback.
func Seed() *Dataset {
	return &Dataset{
		Company: models.Company{
			ID:       models.CompanyID,
			Name:     "Mi Tienda",
			Location: "Ciudad de Guatemala",
			Phone:    "2222-0000",
		},
		Clients: []models.Client{
			{ID: models.WalkInClientID, TaxID: "C/F", FirstName: "Consumidor", LastName: "Final"},
			{ID: 2, TaxID: "1234567-8", FirstName: "María", LastName: "López", Phone: "5555-1234", Address: "Zona 1"},
		},
		Products: []models.Product{
			{ID: 1, Code: "7401000000011", Name: "Agua pura 600ml", Stock: 100, Price: decimal.RequireFromString("4.50")},
			{ID: 2, Code: "7401000000028", Name: "Café molido 250g", Stock: 60, Price: decimal.RequireFromString("18.00")},
			{ID: 3, Code: "7401000000035", Name: "Pan dulce", Stock: 40, Price: decimal.RequireFromString("1.50")},
			{ID: 4, Code: "", Name: "Bolsa plástica", Stock: 500, Price: decimal.RequireFromString("0.25")},
		},
	}
}
