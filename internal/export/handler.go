package export

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"mystore-pos/internal/catalog"
	"mystore-pos/internal/models"
	"mystore-pos/internal/report"
	"mystore-pos/internal/sale"

	"github.com/gofiber/fiber/v2"
)

// now is swapped in tests.
var now = time.Now

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SalesResponse struct {
	Sales   []models.Sale  `json:"sales"`
	Summary report.Summary `json:"summary"`
}

func filterFromQuery(c *fiber.Ctx) (report.Filter, error) {
	mode, err := report.ParseMode(c.Query("mode"))
	if err != nil {
		return report.Filter{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	f := report.Filter{
		Mode:  mode,
		From:  c.Query("from"),
		To:    c.Query("to"),
		Query: c.Query("q"),
	}
	if err := f.Validate(); err != nil {
		return report.Filter{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return f, nil
}

func filtered(c *fiber.Ctx, store *catalog.Store) (report.Filter, []models.Sale, []models.Client, error) {
	f, err := filterFromQuery(c)
	if err != nil {
		return f, nil, nil, err
	}
	clients := store.Clients()
	return f, report.Apply(store.Sales(), clients, f, now()), clients, nil
}

func attachment(c *fiber.Ctx, mime, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(body)
}

func exportError(err error) error {
	if errors.Is(err, report.ErrNoData) {
		return fiber.NewError(fiber.StatusNotFound, report.ErrNoData.Error())
	}
	log.Println("export failed:", err)
	return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el archivo")
}

// GET /api/sales?mode=range&from=2025-10-01&to=2025-10-14&q=lopez
func ListSalesHandler(store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, sales, clients, err := filtered(c, store)
		if err != nil {
			return err
		}
		return c.JSON(SalesResponse{
			Sales:   sales,
			Summary: report.Summarize(report.Project(sales, clients)),
		})
	}
}

// GET /api/sales/:id
func GetSaleHandler(store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := catalog.IDParam(c, "id")
		if err != nil {
			return err
		}
		s, err := store.GetSale(c.UserContext(), id)
		if err != nil {
			return catalog.HTTPError(err)
		}
		return c.JSON(s)
	}
}

// GET /api/sales/:id/invoice
// Re-prints the invoice of any recorded sale.
func SaleInvoiceHandler(store *catalog.Store, renderer sale.InvoiceRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := catalog.IDParam(c, "id")
		if err != nil {
			return err
		}
		s, err := store.GetSale(c.UserContext(), id)
		if err != nil {
			return catalog.HTTPError(err)
		}
		inv, err := sale.RenderInvoice(renderer, *s, store.Company())
		if err != nil {
			return exportError(err)
		}
		return attachment(c, mimePDF, inv.Filename, inv.Content)
	}
}

// GET /api/reports/sales.pdf
func SalesPDFHandler(store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, sales, clients, err := filtered(c, store)
		if err != nil {
			return err
		}
		t := now()
		var buf bytes.Buffer
		if err := WriteSalesPDF(&buf, report.Project(sales, clients), ReportMeta{Filter: f, Generated: t}); err != nil {
			return exportError(err)
		}
		return attachment(c, mimePDF, report.Filename("pdf", t), buf.Bytes())
	}
}

// GET /api/reports/sales.xlsx
func SalesXLSXHandler(store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, sales, clients, err := filtered(c, store)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := WriteSalesXLSX(&buf, report.Project(sales, clients)); err != nil {
			return exportError(err)
		}
		return attachment(c, mimeXLSX, report.Filename("xlsx", now()), buf.Bytes())
	}
}

// GET /api/reports/daily?mode=range&from=2025-10-01
func DailyHandler(store *catalog.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, sales, _, err := filtered(c, store)
		if err != nil {
			return err
		}
		return c.JSON(report.Daily(sales, now()))
	}
}
