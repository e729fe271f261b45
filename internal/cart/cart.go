// Package cart holds the line items of the sale being built.
package cart

import (
	"errors"

	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("producto no encontrado")
	ErrInvalidQuantity = errors.New("cantidad inválida")
	ErrOutOfStock      = errors.New("producto sin existencias")
	ErrLineNotFound    = errors.New("el producto no está en el carrito")
)

// Line: one product in the cart. Price and Stock are snapshots taken when the
// product was last added.
type Line struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps insertion order and at most one line per product.
// It is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID uint) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into the product's line, capped at the product's stock.
// A new line takes the product's current name and price.
func (c *Cart) Add(p *models.Product, quantity int) (Line, error) {
	if p == nil {
		return Line{}, ErrProductNotFound
	}
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	if i := c.index(p.ID); i >= 0 {
		l := &c.lines[i]
		l.Quantity = min(p.Stock, l.Quantity+quantity)
		l.Stock = p.Stock
		if l.Quantity < 1 {
			// stock dropped to zero since the line was added
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return Line{}, ErrOutOfStock
		}
		return *l, nil
	}

	qty := min(p.Stock, quantity)
	if qty < 1 {
		return Line{}, ErrOutOfStock
	}
	l := Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  qty,
		Stock:     p.Stock,
	}
	c.lines = append(c.lines, l)
	return l, nil
}

// SetQuantity sets a line's quantity, clamped to at least 1 and at most the
// stock snapshot. capped reports whether the stock limit was applied.
func (c *Cart) SetQuantity(productID uint, quantity int) (l Line, capped bool, err error) {
	i := c.index(productID)
	if i < 0 {
		return Line{}, false, ErrLineNotFound
	}
	quantity = max(1, quantity)
	if quantity > c.lines[i].Stock {
		quantity = max(1, c.lines[i].Stock)
		capped = true
	}
	c.lines[i].Quantity = quantity
	return c.lines[i], capped, nil
}

// Remove drops the product's line; false when there was none.
func (c *Cart) Remove(productID uint) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// Total: Σ quantity×price
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Items projects the lines into sale request items.
func (c *Cart) Items() []models.SaleItemRequest {
	items := make([]models.SaleItemRequest, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.SaleItemRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	return items
}
