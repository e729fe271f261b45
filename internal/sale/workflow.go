// Package sale drives one terminal's sale: build the cart, pay (create the sale
// on the backend), invoice (render the document) and start over.
package sale

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"mystore-pos/internal/backend"
	"mystore-pos/internal/cart"
	"mystore-pos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type State string

const (
	Building State = "building"
	Paid     State = "paid"
	Invoiced State = "invoiced"
)

const (
	StatusPaid     = "Pago registrado correctamente."
	StatusInvoiced = "Factura generada."
	DefaultSeller  = "Vendedor"
)

var (
	ErrEmptyInput     = errors.New("ingrese un ID o código de producto")
	ErrNothingToPay   = errors.New("agregue productos para pagar")
	ErrAlreadyPaid    = errors.New("la venta ya fue pagada")
	ErrNotPaid        = errors.New("primero realice el pago")
	ErrNothingToReset = errors.New("no hay venta en curso")
	ErrBusy           = errors.New("operación en curso, espere")
	ErrUnknownClient  = errors.New("cliente inexistente")
)

// Catalog is what the workflow needs from the catalog cache.
type Catalog interface {
	ProductByID(id uint) (models.Product, bool)
	ProductByCode(code string) (models.Product, bool)
	ClientByID(id uint) (models.Client, bool)
	Company() models.Company
	RegisterSale(ctx context.Context, req models.SaleRequest) (*models.Sale, error)
	GetSale(ctx context.Context, id uint) (*models.Sale, error)
}

// CodeLookup resolves scanned or typed codes on the backing service.
type CodeLookup interface {
	ProductByCode(ctx context.Context, code string) (*models.Product, error)
}

// InvoiceRenderer writes the invoice document for a confirmed sale.
type InvoiceRenderer interface {
	RenderInvoice(w io.Writer, sale models.Sale, company models.Company) error
}

// Invoice: rendered document ready to download.
type Invoice struct {
	SaleID   uint
	Filename string
	Content  []byte
}

func InvoiceFilename(saleID uint) string {
	return fmt.Sprintf("factura_%d.pdf", saleID)
}

// View is a read-only snapshot for the UI.
type View struct {
	State       State           `json:"state"`
	Lines       []cart.Line     `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	ClientID    uint            `json:"clientId"`
	Seller      string          `json:"seller"`
	Status      string          `json:"status"`
	PendingSale *models.Sale    `json:"pendingSale,omitempty"`
	CanPay      bool            `json:"canPay"`
	CanInvoice  bool            `json:"canInvoice"`
	CanReset    bool            `json:"canReset"`
}

type Workflow struct {
	catalog  Catalog
	lookup   CodeLookup
	renderer InvoiceRenderer
	now      func() time.Time

	mu       sync.Mutex
	cart     *cart.Cart
	clientID uint
	seller   string
	state    State
	pending  *models.Sale
	status   string
	draftKey uuid.UUID
	busy     bool
}

type Option func(*Workflow)

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithSeller(seller string) Option {
	return func(w *Workflow) {
		if seller != "" {
			w.seller = seller
		}
	}
}

// New starts in Building with the walk-in client selected. lookup may be nil
// when the backend has no remote code index.
func New(c Catalog, lookup CodeLookup, r InvoiceRenderer, opts ...Option) *Workflow {
	w := &Workflow{
		catalog:  c,
		lookup:   lookup,
		renderer: r,
		now:      time.Now,
		cart:     cart.New(),
		clientID: models.WalkInClientID,
		seller:   DefaultSeller,
		state:    Building,
		draftKey: uuid.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Lookup resolves an id or a code. Digits are tried against the id index first;
// anything else, or an id miss, goes to the remote code lookup and then to the
// local code index. A failing remote lookup never blocks the local match.
func (w *Workflow) Lookup(ctx context.Context, input string) (*models.Product, error) {
	val := strings.TrimSpace(input)
	if val == "" {
		return nil, ErrEmptyInput
	}

	if digitsOnly.MatchString(val) {
		if id, err := strconv.ParseUint(val, 10, 32); err == nil {
			if p, ok := w.catalog.ProductByID(uint(id)); ok {
				return &p, nil
			}
		}
	}

	if w.lookup != nil {
		p, err := w.lookup.ProductByCode(ctx, val)
		switch {
		case err == nil && p != nil:
			return p, nil
		case err != nil && !errors.Is(err, backend.ErrNotFound):
			log.Printf("code lookup %q failed, using local index: %v", val, err)
		}
	}

	if p, ok := w.catalog.ProductByCode(val); ok {
		return &p, nil
	}
	return nil, cart.ErrProductNotFound
}

// invalidate drops a confirmed-but-not-invoiced payment. Called with mu held
// after any change to what the invoice would show.
func (w *Workflow) invalidate() {
	if w.state == Paid || w.pending != nil {
		log.Printf("sale %d no longer matches the cart, payment must be repeated", w.pendingID())
		w.pending = nil
		w.status = ""
		w.state = Building
	}
	w.draftKey = uuid.New()
}

func (w *Workflow) pendingID() uint {
	if w.pending == nil {
		return 0
	}
	return w.pending.ID
}

// Add looks the input up and adds quantity of it to the cart.
func (w *Workflow) Add(ctx context.Context, input string, quantity int) (cart.Line, error) {
	p, err := w.Lookup(ctx, input)
	if err != nil {
		return cart.Line{}, err
	}
	return w.AddProduct(p, quantity)
}

func (w *Workflow) AddProduct(p *models.Product, quantity int) (cart.Line, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return cart.Line{}, ErrBusy
	}
	before := w.cart.Len()
	l, err := w.cart.Add(p, quantity)
	if err != nil {
		if w.cart.Len() != before {
			w.invalidate()
		}
		return cart.Line{}, err
	}
	w.invalidate()
	return l, nil
}

// SetQuantity edits a line; capped reports that the stock limit was applied.
func (w *Workflow) SetQuantity(productID uint, quantity int) (cart.Line, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return cart.Line{}, false, ErrBusy
	}
	l, capped, err := w.cart.SetQuantity(productID, quantity)
	if err != nil {
		return cart.Line{}, false, err
	}
	w.invalidate()
	return l, capped, nil
}

func (w *Workflow) Remove(productID uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	if !w.cart.Remove(productID) {
		return cart.ErrLineNotFound
	}
	w.invalidate()
	return nil
}

func (w *Workflow) SetClient(clientID uint) error {
	if _, ok := w.catalog.ClientByID(clientID); !ok {
		return ErrUnknownClient
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	w.clientID = clientID
	w.invalidate()
	return nil
}

func (w *Workflow) SetSeller(seller string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	w.seller = seller
	w.invalidate()
	return nil
}

func (w *Workflow) canPay() bool {
	return !w.busy && !w.cart.Empty() && w.state == Building && w.pending == nil
}

func (w *Workflow) canInvoice() bool {
	return !w.busy && w.state == Paid && w.pending != nil && w.pending.ID != 0
}

func (w *Workflow) canReset() bool {
	return !w.busy && (!w.cart.Empty() || w.pending != nil)
}

// Pay registers the cart as a sale. At most one payment is pending per cart;
// the cart is frozen while the request is in flight.
func (w *Workflow) Pay(ctx context.Context) (*models.Sale, error) {
	w.mu.Lock()
	switch {
	case w.busy:
		w.mu.Unlock()
		return nil, ErrBusy
	case w.state == Paid || w.pending != nil:
		w.mu.Unlock()
		return nil, ErrAlreadyPaid
	case w.cart.Empty():
		w.mu.Unlock()
		return nil, ErrNothingToPay
	}
	req := models.SaleRequest{
		ClientID:       w.clientID,
		Seller:         w.seller,
		Timestamp:      w.now().UTC(),
		Items:          w.cart.Items(),
		IdempotencyKey: w.draftKey.String(),
	}
	w.busy = true
	w.mu.Unlock()

	sale, err := w.catalog.RegisterSale(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if err != nil {
		return nil, err
	}
	w.pending = sale
	w.state = Paid
	w.status = StatusPaid
	log.Printf("sale %d paid, total=%s", sale.ID, sale.Total.StringFixed(2))
	return sale, nil
}

// Invoice renders the pending sale and closes it. Outside Paid it is a no-op
// returning ErrNotPaid.
func (w *Workflow) Invoice(ctx context.Context) (*Invoice, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	if !w.canInvoice() {
		w.mu.Unlock()
		return nil, ErrNotPaid
	}
	sale := *w.pending
	w.busy = true
	w.mu.Unlock()

	inv, fresh, err := w.render(ctx, sale)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if fresh != nil {
		w.pending = fresh
	}
	if err != nil {
		return nil, err
	}

	w.state = Invoiced
	log.Printf("sale %d invoiced (%s)", inv.SaleID, inv.Filename)
	w.cart.Clear()
	w.pending = nil
	w.status = StatusInvoiced
	w.state = Building
	w.draftKey = uuid.New()
	return inv, nil
}

// render re-fetches the sale when it lacks item or client detail. fresh is the
// re-fetched record, if any.
func (w *Workflow) render(ctx context.Context, sale models.Sale) (inv *Invoice, fresh *models.Sale, err error) {
	if !sale.HasDetail() {
		fresh, err = w.catalog.GetSale(ctx, sale.ID)
		if err != nil {
			return nil, nil, err
		}
		sale = *fresh
	}
	inv, err = RenderInvoice(w.renderer, sale, w.catalog.Company())
	return inv, fresh, err
}

// RenderInvoice renders any confirmed sale; also used to re-print from history.
func RenderInvoice(r InvoiceRenderer, sale models.Sale, company models.Company) (*Invoice, error) {
	var buf bytes.Buffer
	if err := r.RenderInvoice(&buf, sale, company); err != nil {
		return nil, fmt.Errorf("render invoice %d: %w", sale.ID, err)
	}
	return &Invoice{
		SaleID:   sale.ID,
		Filename: InvoiceFilename(sale.ID),
		Content:  buf.Bytes(),
	}, nil
}

// Reset clears cart, pending sale and status. Available while the cart has
// lines or a payment is pending.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrBusy
	}
	if !w.canReset() {
		return ErrNothingToReset
	}
	w.cart.Clear()
	w.pending = nil
	w.status = ""
	w.state = Building
	w.draftKey = uuid.New()
	return nil
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		State:      w.state,
		Lines:      w.cart.Lines(),
		Total:      w.cart.Total(),
		ClientID:   w.clientID,
		Seller:     w.seller,
		Status:     w.status,
		CanPay:     w.canPay(),
		CanInvoice: w.canInvoice(),
		CanReset:   w.canReset(),
	}
	if w.pending != nil {
		p := *w.pending
		v.PendingSale = &p
	}
	return v
}
