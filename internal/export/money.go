// Package export renders the sales report (PDF, XLSX) and invoices (PDF).
package export

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats an amount in quetzales with thousands grouping: Q1,234.50
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("Q%.2f", f)
}
