package catalog

import (
	"context"
	"errors"
	"log"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/backend/restapi"
	"mystore-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

var badRequest = []error{
	models.ErrProductNameRequired,
	models.ErrNegativeStock,
	models.ErrNegativePrice,
	models.ErrClientNameRequired,
}

// HTTPError maps store and backend errors to the response the UI shows.
// Unknown errors become 502: the cached state was not touched.
func HTTPError(err error) error {
	if err == nil {
		return nil
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return fiber.NewError(fiber.StatusBadRequest, target.Error())
		}
	}

	var se *restapi.StatusError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Registro no encontrado.")
	case errors.Is(err, backend.ErrWalkInClient):
		return fiber.NewError(fiber.StatusBadRequest, "No se puede eliminar el cliente C/F.")
	case errors.Is(err, backend.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, "Stock insuficiente.")
	case errors.Is(err, backend.ErrUnknownClient):
		return fiber.NewError(fiber.StatusBadRequest, "Cliente inexistente.")
	case errors.Is(err, backend.ErrEmptySale):
		return fiber.NewError(fiber.StatusBadRequest, "La venta no tiene productos.")
	case errors.Is(err, context.DeadlineExceeded):
		log.Println("backend timeout:", err)
		return fiber.NewError(fiber.StatusGatewayTimeout, "La API no respondió a tiempo.")
	case errors.As(err, &se):
		log.Println("backend error:", err)
		return fiber.NewError(fiber.StatusBadGateway, "La API respondió "+se.Error()+".")
	}

	log.Println("backend error:", err)
	return fiber.NewError(fiber.StatusBadGateway, LoadErrorBanner)
}

// IDParam reads a positive numeric route parameter.
func IDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := ParseID(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "ID inválido")
	}
	return id, nil
}
