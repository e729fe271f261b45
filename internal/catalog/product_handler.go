package catalog

import (
	"mystore-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Stock int             `json:"stock"`
	Price decimal.Decimal `json:"price"`
}

func (r ProductRequest) product() models.Product {
	return models.Product{Code: r.Code, Name: r.Name, Stock: r.Stock, Price: r.Price}
}

// GET /api/products?q=agua
func ListProductsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.SearchProducts(c.Query("q")))
	}
}

// GET /api/products/code/:code
func ProductByCodeHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := store.LookupCode(c.UserContext(), c.Params("code"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}
		return c.JSON(p)
	}
}

// POST /api/products
func CreateProductHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		created, err := store.AddProduct(c.UserContext(), body.product())
		// a refresh failure after a successful create still returns the record
		if err != nil && created.ID == 0 {
			return HTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/products/:id
func UpdateProductHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IDParam(c, "id")
		if err != nil {
			return err
		}
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		p := body.product()
		p.ID = id
		updated, err := store.UpdateProduct(c.UserContext(), p)
		if err != nil && updated.ID == 0 {
			return HTTPError(err)
		}
		return c.JSON(updated)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IDParam(c, "id")
		if err != nil {
			return err
		}
		if err := store.DeleteProduct(c.UserContext(), id); err != nil {
			return HTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
