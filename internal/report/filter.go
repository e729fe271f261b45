// Package report filters the sales history and projects it for export.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"mystore-pos/internal/models"

	"github.com/shopspring/decimal"
)

var ErrNoData = errors.New("No hay datos para exportar.")

type Mode string

const (
	ModeAll   Mode = "all"
	ModeToday Mode = "today"
	ModeRange Mode = "range"
)

// ParseMode accepts the English names and the UI's Spanish ones; empty is all.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todas":
		return ModeAll, nil
	case "today", "hoy":
		return ModeToday, nil
	case "range", "rango":
		return ModeRange, nil
	}
	return "", fmt.Errorf("modo de filtro desconocido: %q", s)
}

type Filter struct {
	Mode  Mode
	From  string // YYYY-MM-DD, inclusive, optional
	To    string // YYYY-MM-DD, inclusive, optional
	Query string
}

func (f Filter) Validate() error {
	if f.From != "" && !ValidKey(f.From) {
		return fmt.Errorf("fecha inicial inválida: %q", f.From)
	}
	if f.To != "" && !ValidKey(f.To) {
		return fmt.Errorf("fecha final inválida: %q", f.To)
	}
	return nil
}

func clientIndex(clients []models.Client) map[uint]models.Client {
	idx := make(map[uint]models.Client, len(clients))
	for _, c := range clients {
		idx[c.ID] = c
	}
	return idx
}

// clientOf prefers the client embedded in the sale record.
func clientOf(s models.Sale, idx map[uint]models.Client) (models.Client, bool) {
	if s.Client != nil {
		return *s.Client, true
	}
	c, ok := idx[s.ClientID]
	return c, ok
}

func saleKey(s models.Sale, now time.Time) string {
	t := s.OccurredAt()
	if t.IsZero() {
		t = now
	}
	return DateKey(t)
}

func haystack(s models.Sale, idx map[uint]models.Client) string {
	var name, taxID string
	if c, ok := clientOf(s, idx); ok {
		name = c.FirstName + " " + c.LastName
		taxID = c.TaxID
	}
	fields := []string{
		strconv.FormatUint(uint64(s.ID), 10),
		s.Seller,
		name,
		taxID,
		FormatDate(s.OccurredAt()),
		s.Total.String(),
	}
	return strings.ToLower(strings.Join(fields, " "))
}

// Apply returns the sales matching the filter, in input order.
func Apply(sales []models.Sale, clients []models.Client, f Filter, now time.Time) []models.Sale {
	out := make([]models.Sale, 0, len(sales))

	today := TodayKey(now)
	q := strings.ToLower(strings.TrimSpace(f.Query))
	idx := clientIndex(clients)

	for _, s := range sales {
		switch f.Mode {
		case ModeToday:
			if saleKey(s, now) != today {
				continue
			}
		case ModeRange:
			key := saleKey(s, now)
			if f.From != "" && key < f.From {
				continue
			}
			if f.To != "" && key > f.To {
				continue
			}
		}
		if q != "" && !strings.Contains(haystack(s, idx), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Headers: fixed export column order (ID, Date, Client, TaxId, Seller, Total).
var Headers = []string{"ID", "Fecha", "Cliente", "NIT", "Vendedor", "Total"}

type Row struct {
	ID     uint            `json:"id"`
	Date   string          `json:"date"`
	Client string          `json:"client"`
	TaxID  string          `json:"taxId"`
	Seller string          `json:"seller"`
	Total  decimal.Decimal `json:"total"`
}

func Project(sales []models.Sale, clients []models.Client) []Row {
	idx := clientIndex(clients)
	rows := make([]Row, 0, len(sales))
	for _, s := range sales {
		r := Row{
			ID:     s.ID,
			Date:   FormatDate(s.OccurredAt()),
			Seller: s.Seller,
			Total:  s.Total,
		}
		if c, ok := clientOf(s, idx); ok {
			r.Client = c.FirstName + " " + c.LastName
			r.TaxID = c.TaxID
		}
		rows = append(rows, r)
	}
	return rows
}

type Summary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func Summarize(rows []Row) Summary {
	sum := Summary{Total: decimal.Zero}
	for _, r := range rows {
		sum.Count++
		sum.Total = sum.Total.Add(r.Total)
	}
	return sum
}

// Bucket: sales of one calendar day.
type Bucket struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Daily groups sales by day key, oldest first.
func Daily(sales []models.Sale, now time.Time) []Bucket {
	byKey := make(map[string]*Bucket)
	for _, s := range sales {
		key := saleKey(s, now)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key, Total: decimal.Zero}
			byKey[key] = b
		}
		b.Count++
		b.Total = b.Total.Add(s.Total)
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Filename: reporte_ventas_<today-key>.<ext>
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("reporte_ventas_%s.%s", TodayKey(now), ext)
}
