package pdf

import (
	"bytes"
	"fmt"

	"hosting-storefront/internal/config"
	"hosting-storefront/internal/model"

	"github.com/go-pdf/fpdf"
)

// InvoiceRenderer lays out invoices on a single A4 page using the core
// Helvetica font. Text outside cp1252 is replaced by the font translator.
type InvoiceRenderer struct {
	companyName  string
	supportEmail string
}

func NewInvoiceRenderer(cfg config.Invoice) *InvoiceRenderer {
	return &InvoiceRenderer{
		companyName:  cfg.CompanyName,
		supportEmail: cfg.SupportEmail,
	}
}

func (r *InvoiceRenderer) Render(invoice *model.Invoice) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle("Invoice "+invoice.InvoiceNumber, true)
	doc.SetAuthor(r.companyName, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, tr(r.companyName), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(r.supportEmail), "", 1, "L", false, 0, "")
	doc.Ln(8)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, "INVOICE "+tr(invoice.InvoiceNumber), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	row := func(label, value string) {
		doc.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		doc.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}
	row("Date:", invoice.CreatedAt.Format("2006-01-02"))
	row("Order:", invoice.OrderID)
	row("Payment:", invoice.PaymentID)
	row("Status:", string(invoice.Status))
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Bill to", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	row("Name:", invoice.CustomerName)
	row("Email:", invoice.CustomerEmail)
	if invoice.CustomerPhone != "" {
		row("Phone:", invoice.CustomerPhone)
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(110, 8, "Item", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 8, "Period", "1", 0, "C", true, 0, "")
	doc.CellFormat(0, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(110, 8, tr(invoice.ProductName), "1", 0, "L", false, 0, "")
	doc.CellFormat(30, 8, string(invoice.BillingPeriod), "1", 0, "C", false, 0, "")
	doc.CellFormat(0, 8, money(invoice, invoice.Subtotal.StringFixed(2)), "1", 1, "R", false, 0, "")
	doc.Ln(4)

	total := func(label, value string, style string) {
		doc.SetFont("Helvetica", style, 10)
		doc.CellFormat(140, 7, label, "", 0, "R", false, 0, "")
		doc.CellFormat(0, 7, value, "", 1, "R", false, 0, "")
	}
	total("Subtotal", money(invoice, invoice.Subtotal.StringFixed(2)), "")
	total("Tax", money(invoice, invoice.Tax.StringFixed(2)), "")
	total("Total", money(invoice, invoice.Total.StringFixed(2)), "B")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(invoice *model.Invoice, amount string) string {
	return amount + " " + invoice.Currency
}
