package sale

import (
	"context"
	"errors"
	"fmt"

	"mystore-pos/internal/cart"
	"mystore-pos/internal/catalog"
	"mystore-pos/internal/input"

	"github.com/gofiber/fiber/v2"
)

// AddLineRequest: an absent quantity means one unit.
type AddLineRequest struct {
	Input    string `json:"input"`
	Quantity *int   `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ClientRequest struct {
	ClientID uint `json:"clientId"`
}

type SellerRequest struct {
	Seller string `json:"seller"`
}

type LineResponse struct {
	Line    cart.Line `json:"line"`
	Warning string    `json:"warning,omitempty"`
	View    View      `json:"view"`
}

type KeyResponse struct {
	Outcome input.Outcome `json:"outcome"`
	View    View          `json:"view"`
}

var conflicts = []error{
	cart.ErrOutOfStock,
	ErrAlreadyPaid,
	ErrNotPaid,
	ErrNothingToReset,
	ErrBusy,
}

var badRequests = []error{
	ErrEmptyInput,
	ErrNothingToPay,
	ErrUnknownClient,
	cart.ErrInvalidQuantity,
}

func workflowError(err error) error {
	for _, target := range conflicts {
		if errors.Is(err, target) {
			return fiber.NewError(fiber.StatusConflict, target.Error())
		}
	}
	for _, target := range badRequests {
		if errors.Is(err, target) {
			return fiber.NewError(fiber.StatusBadRequest, target.Error())
		}
	}
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
	case errors.Is(err, cart.ErrLineNotFound):
		return fiber.NewError(fiber.StatusNotFound, cart.ErrLineNotFound.Error())
	}
	return catalog.HTTPError(err)
}

func quantityOrOne(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}

// NewKeyDispatcher wires the "add" scope to the cart: a wedge scanner types a
// code and Enter into the add form.
func NewKeyDispatcher(w *Workflow) *input.Dispatcher {
	d := input.NewDispatcher()
	d.Handle(input.ScopeAdd, func(ctx context.Context, ev input.Event) error {
		_, err := w.Add(ctx, ev.Value, quantityOrOne(ev.Quantity))
		return err
	})
	return d
}

// GET /api/sale
func ViewHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(w.View())
	}
}

// POST /api/sale/lines
func AddLineHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddLineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		l, err := w.Add(c.UserContext(), body.Input, quantityOrOne(body.Quantity))
		if err != nil {
			return workflowError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(LineResponse{Line: l, View: w.View()})
	}
}

// PUT /api/sale/lines/:productId
// The quantity is clamped to [1, stock]; a warning tells the UI when it was capped.
func UpdateLineHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := catalog.IDParam(c, "productId")
		if err != nil {
			return err
		}
		var body QuantityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		l, capped, err := w.SetQuantity(id, body.Quantity)
		if err != nil {
			return workflowError(err)
		}
		res := LineResponse{Line: l, View: w.View()}
		if capped {
			res.Warning = fmt.Sprintf("Cantidad ajustada al stock disponible (%d).", l.Quantity)
		}
		return c.JSON(res)
	}
}

// DELETE /api/sale/lines/:productId
func RemoveLineHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := catalog.IDParam(c, "productId")
		if err != nil {
			return err
		}
		if err := w.Remove(id); err != nil {
			return workflowError(err)
		}
		return c.JSON(w.View())
	}
}

// PUT /api/sale/client
func SetClientHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if err := w.SetClient(body.ClientID); err != nil {
			return workflowError(err)
		}
		return c.JSON(w.View())
	}
}

// PUT /api/sale/seller
func SetSellerHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SellerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if err := w.SetSeller(body.Seller); err != nil {
			return workflowError(err)
		}
		return c.JSON(w.View())
	}
}

// POST /api/sale/pay
func PayHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := w.Pay(c.UserContext()); err != nil {
			return workflowError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(w.View())
	}
}

// POST /api/sale/invoice
func InvoiceHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, err := w.Invoice(c.UserContext())
		if err != nil {
			return workflowError(err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", inv.Filename))
		return c.Send(inv.Content)
	}
}

// POST /api/sale/reset
func ResetHandler(w *Workflow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := w.Reset(); err != nil {
			return workflowError(err)
		}
		return c.JSON(w.View())
	}
}

// POST /api/sale/keys
func KeyHandler(w *Workflow, d *input.Dispatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev input.Event
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		outcome, err := d.Dispatch(c.UserContext(), ev)
		if err != nil {
			return workflowError(err)
		}
		return c.JSON(KeyResponse{Outcome: outcome, View: w.View()})
	}
}
