package backend

import (
	"sort"
	"time"

	"mystore-pos/internal/models"
)

// Dataset: the whole catalog held by the local strategies (memory, key/value).
// Methods mutate in place; callers own the locking.
type Dataset struct {
	Products []models.Product `json:"products"`
	Clients  []models.Client  `json:"clients"`
	Sales    []models.Sale    `json:"sales"`
	Company  models.Company   `json:"company"`
}

// Clone returns a deep enough copy for readers to keep.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Products: append([]models.Product(nil), d.Products...),
		Clients:  append([]models.Client(nil), d.Clients...),
		Sales:    make([]models.Sale, len(d.Sales)),
		Company:  d.Company,
	}
	for i, s := range d.Sales {
		out.Sales[i] = cloneSale(s)
	}
	return out
}

func cloneSale(s models.Sale) models.Sale {
	s.Items = append([]models.SaleItem(nil), s.Items...)
	if s.Client != nil {
		c := *s.Client
		s.Client = &c
	}
	return s
}

func (d *Dataset) ProductByCode(code string) (*models.Product, error) {
	for _, p := range d.Products {
		if code != "" && p.Code == code {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (d *Dataset) CreateProduct(p models.Product) models.Product {
	p.ID = d.nextProductID()
	d.Products = append(d.Products, p)
	return p
}

func (d *Dataset) UpdateProduct(p models.Product) (models.Product, error) {
	for i := range d.Products {
		if d.Products[i].ID == p.ID {
			d.Products[i] = p
			return p, nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (d *Dataset) DeleteProduct(id uint) error {
	for i := range d.Products {
		if d.Products[i].ID == id {
			d.Products = append(d.Products[:i], d.Products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (d *Dataset) CreateClient(c models.Client) models.Client {
	c.ID = d.nextClientID()
	d.Clients = append(d.Clients, c)
	return c
}

func (d *Dataset) UpdateClient(c models.Client) (models.Client, error) {
	for i := range d.Clients {
		if d.Clients[i].ID == c.ID {
			d.Clients[i] = c
			return c, nil
		}
	}
	return models.Client{}, ErrNotFound
}

func (d *Dataset) DeleteClient(id uint) error {
	if id == models.WalkInClientID {
		return ErrWalkInClient
	}
	for i := range d.Clients {
		if d.Clients[i].ID == id {
			d.Clients = append(d.Clients[:i], d.Clients[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (d *Dataset) client(id uint) (models.Client, bool) {
	for _, c := range d.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return models.Client{}, false
}

// GetSale returns the sale with its client resolved.
func (d *Dataset) GetSale(id uint) (*models.Sale, error) {
	for _, s := range d.Sales {
		if s.ID == id {
			out := cloneSale(s)
			if c, ok := d.client(s.ClientID); ok {
				out.Client = &c
			}
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// RegisterSale validates stock for every item, decrements it and appends the sale.
// Nothing is changed when any item fails.
func (d *Dataset) RegisterSale(req models.SaleRequest) (models.SaleReceipt, error) {
	sale, err := BuildSale(req, d.Products)
	if err != nil {
		return models.SaleReceipt{}, err
	}
	if _, ok := d.client(req.ClientID); !ok {
		return models.SaleReceipt{}, ErrUnknownClient
	}

	for _, it := range sale.Items {
		for i := range d.Products {
			if d.Products[i].ID == it.ProductID {
				d.Products[i].Stock -= it.Quantity
			}
		}
	}

	sale.ID = d.nextSaleID()
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
		sale.Items[i].ID = uint(i + 1)
	}
	d.Sales = append(d.Sales, sale)

	return models.SaleReceipt{ID: sale.ID, Total: sale.Total, Date: sale.Date}, nil
}

// BuildSale turns a request into a sale record against the given stock levels:
// item names resolved, quantities merged per product, total = Σ quantity×price.
func BuildSale(req models.SaleRequest, products []models.Product) (models.Sale, error) {
	if len(req.Items) == 0 {
		return models.Sale{}, ErrEmptySale
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	date := req.Timestamp
	if date.IsZero() {
		date = time.Now()
	}
	sale := models.Sale{
		ClientID: req.ClientID,
		Seller:   req.Seller,
		Date:     date.UTC(),
	}

	wanted := make(map[uint]int)
	for _, it := range req.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return models.Sale{}, ErrNotFound
		}
		if it.Quantity <= 0 {
			return models.Sale{}, ErrInsufficientStock
		}
		wanted[it.ProductID] += it.Quantity
		if wanted[it.ProductID] > p.Stock {
			return models.Sale{}, ErrInsufficientStock
		}
		item := models.SaleItem{
			ProductID: it.ProductID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
		sale.Items = append(sale.Items, item)
	}
	sale.Total = sale.ItemsTotal()
	return sale, nil
}

func (d *Dataset) nextProductID() uint {
	var max uint
	for _, p := range d.Products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func (d *Dataset) nextClientID() uint {
	var max uint
	for _, c := range d.Clients {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func (d *Dataset) nextSaleID() uint {
	var max uint
	for _, s := range d.Sales {
		if s.ID > max {
			max = s.ID
		}
	}
	return max + 1
}

// SortedSales returns sales newest first.
func (d *Dataset) SortedSales() []models.Sale {
	out := make([]models.Sale, len(d.Sales))
	for i, s := range d.Sales {
		out[i] = cloneSale(s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
