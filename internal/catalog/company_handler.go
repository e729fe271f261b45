package catalog

import (
	"mystore-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CompanyRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

// GET /api/company
func GetCompanyHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.Company())
	}
}

// PUT /api/company
func UpdateCompanyHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		saved, err := store.SaveCompany(c.UserContext(), models.Company{
			ID:       models.CompanyID,
			Name:     body.Name,
			Location: body.Location,
			Phone:    body.Phone,
		})
		if err != nil {
			return HTTPError(err)
		}
		return c.JSON(saved)
	}
}
