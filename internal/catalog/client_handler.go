package catalog

import (
	"mystore-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ClientRequest struct {
	TaxID     string `json:"taxId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (r ClientRequest) client() models.Client {
	return models.Client{
		TaxID:     r.TaxID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

// GET /api/clients?q=
func ListClientsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.SearchClients(c.Query("q")))
	}
}

// POST /api/clients
func CreateClientHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		created, err := store.AddClient(c.UserContext(), body.client())
		// a refresh failure after a successful create still returns the record
		if err != nil && created.ID == 0 {
			return HTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/clients/:id
func UpdateClientHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IDParam(c, "id")
		if err != nil {
			return err
		}
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		cl := body.client()
		cl.ID = id
		updated, err := store.UpdateClient(c.UserContext(), cl)
		if err != nil && updated.ID == 0 {
			return HTTPError(err)
		}
		return c.JSON(updated)
	}
}

// DELETE /api/clients/:id
// The walk-in client (id 1) is refused without contacting the backend.
func DeleteClientHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IDParam(c, "id")
		if err != nil {
			return err
		}
		if err := store.DeleteClient(c.UserContext(), id); err != nil {
			return HTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
