package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"mystore-pos/internal/models"
	"mystore-pos/internal/report"

	"github.com/jung-kurt/gofpdf"
)

// ReportMeta describes the filter that produced a report.
type ReportMeta struct {
	Filter    report.Filter
	Generated time.Time
}

func (m ReportMeta) describe() string {
	var s string
	switch m.Filter.Mode {
	case report.ModeToday:
		s = "Ventas de hoy (" + report.TodayKey(m.Generated) + ")"
	case report.ModeRange:
		from, to := m.Filter.From, m.Filter.To
		if from == "" {
			from = "inicio"
		}
		if to == "" {
			to = "hoy"
		}
		s = fmt.Sprintf("Rango: %s a %s", from, to)
	default:
		s = "Todas las ventas"
	}
	if m.Filter.Query != "" {
		s += fmt.Sprintf(" / Búsqueda: %q", m.Filter.Query)
	}
	return s
}

var reportWidths = []float64{20, 42, 80, 40, 50, 45}

// WriteSalesPDF writes the landscape sales report.
func WriteSalesPDF(w io.Writer, rows []report.Row, meta ReportMeta) error {
	if len(rows) == 0 {
		return report.ErrNoData
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Reporte de ventas"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(meta.describe()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Generado: "+report.FormatDate(meta.Generated)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range report.Headers {
		pdf.CellFormat(reportWidths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range rows {
		pdf.CellFormat(reportWidths[0], 7, strconv.FormatUint(uint64(r.ID), 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(reportWidths[1], 7, r.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(reportWidths[2], 7, tr(r.Client), "1", 0, "L", false, 0, "")
		pdf.CellFormat(reportWidths[3], 7, tr(r.TaxID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(reportWidths[4], 7, tr(r.Seller), "1", 0, "L", false, 0, "")
		pdf.CellFormat(reportWidths[5], 7, Money(r.Total), "1", 1, "R", false, 0, "")
	}

	sum := report.Summarize(rows)
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Ventas: %d    Total: %s", sum.Count, Money(sum.Total)), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// PDFRenderer renders invoices with gofpdf.
type PDFRenderer struct{}

func (PDFRenderer) RenderInvoice(w io.Writer, sale models.Sale, company models.Company) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// company header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, tr(company.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if company.Location != "" {
		pdf.CellFormat(0, 5, tr(company.Location), "", 1, "C", false, 0, "")
	}
	if company.Phone != "" {
		pdf.CellFormat(0, 5, tr("Tel. "+company.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("FACTURA No. %d", sale.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, "Fecha: "+report.FormatDate(sale.OccurredAt()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Vendedor: "+sale.Seller), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	var client models.Client
	if sale.Client != nil {
		client = *sale.Client
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, "Cliente", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, tr("Nombre: "+client.FullName()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Cédula/NIT: "+client.TaxID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Dirección: "+client.Address), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	widths := []float64{90, 35, 25, 40}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Producto", "Precio", "Cant.", "Subtotal"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range sale.Items {
		pdf.CellFormat(widths[0], 7, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, Money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, strconv.Itoa(it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, Money(it.Subtotal()), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, Money(sale.Total), "1", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, "Gracias por su compra.", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}
