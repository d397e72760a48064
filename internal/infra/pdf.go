package infra

// pdf.go renders A4 sales documents (Rechnung, Angebot, Auftragsbestätigung,
// Gutschrift) from a fully calculated document: header with both addresses,
// the position table, tax summary per rate and the payment terms.
// Output: storagePath/{number}.pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gdsanger/KManager-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var documentTitles = map[string]string{
	model.DocumentTypeInvoice:           "Rechnung",
	model.DocumentTypeQuote:             "Angebot",
	model.DocumentTypeOrderConfirmation: "Auftragsbestätigung",
	model.DocumentTypeCreditNote:        "Gutschrift",
}

// DocumentTitle returns the German title of a document type.
func DocumentTitle(documentType string) string {
	if t, ok := documentTitles[documentType]; ok {
		return t
	}
	return "Beleg"
}

// GenerateDocumentPDF writes the PDF of doc. doc.Lines, doc.Customer and
// doc.CompanyRef must be loaded; totals are taken as persisted. Returns the
// path of the written file.
func GenerateDocumentPDF(doc *model.SalesDocument, storagePath string) (string, error) {
	if doc.Customer == nil || doc.CompanyRef == nil {
		return "", fmt.Errorf("pdf: document %s without customer or company", doc.Number)
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, safeFileName(doc.Number)+".pdf")

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 for umlauts
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	company := doc.CompanyRef
	customer := doc.Customer

	// ── Sender line + recipient ──────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr(fmt.Sprintf("%s · %s · %s %s", company.Name, company.Street, company.PostalCode, company.City)), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range []string{customer.Name, customer.Street, strings.TrimSpace(customer.PostalCode + " " + customer.City), customer.Country} {
		if l != "" {
			pdf.CellFormat(contentW, 5, tr(l), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(10)

	// ── Title + meta ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(DocumentTitle(doc.DocumentType)+" "+doc.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Datum: "+doc.IssueDate.Format("02.01.2006"), "", 1, "L", false, 0, "")
	if customer.VatID != "" {
		pdf.CellFormat(contentW, 5, "USt-IdNr. Kunde: "+customer.VatID, "", 1, "L", false, 0, "")
	}
	if doc.Subject != "" {
		pdf.CellFormat(contentW, 5, tr(doc.Subject), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Positions ─────────────────────────────────────────────────────────────
	cols := []float64{12, contentW - 12 - 20 - 25 - 15 - 28, 20, 25, 15, 28}
	headers := []string{"Pos", "Beschreibung", "Menge", "Einzelpreis", "USt", "Netto"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		align := "R"
		if i == 1 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 6, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range doc.Lines {
		desc := l.Description
		if r := []rune(desc); len(r) > 60 {
			desc = string(r[:59]) + "…"
		}
		pdf.CellFormat(cols[0], 5, fmt.Sprintf("%d", l.PositionNo), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[1], 5, tr(desc), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, l.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 5, formatMoney(l.UnitPriceNet, doc.Currency), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 5, formatPercent(l.TaxRateValue), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[5], 5, formatMoney(l.LineNet, doc.Currency), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(20, pdf.GetY(), pageW-20, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	labelW := contentW - cols[5]
	pdf.CellFormat(labelW, 5, "Summe netto", "", 0, "R", false, 0, "")
	pdf.CellFormat(cols[5], 5, formatMoney(doc.TotalNet, doc.Currency), "", 1, "R", false, 0, "")
	for _, g := range taxGroups(doc.Lines) {
		pdf.CellFormat(labelW, 5, "zzgl. USt "+formatPercent(g.rate), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[5], 5, formatMoney(g.tax, doc.Currency), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 6, "Gesamtbetrag", "", 0, "R", false, 0, "")
	pdf.CellFormat(cols[5], 6, formatMoney(doc.TotalGross, doc.Currency), "", 1, "R", false, 0, "")

	// ── Payment terms ─────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	if doc.DueDate != nil {
		pdf.CellFormat(contentW, 5, tr("Zahlbar bis "+doc.DueDate.Format("02.01.2006")+" ohne Abzug."), "", 1, "L", false, 0, "")
	}
	if pt := doc.PaymentTerm; pt != nil {
		if skonto := pt.DiscountDueDate(doc.IssueDate); skonto != nil {
			pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Bei Zahlung bis %s %s%% Skonto.", skonto.Format("02.01.2006"), pt.DiscountPercent.StringFixed(2))), "", 1, "L", false, 0, "")
		}
	}
	if company.IBAN != "" {
		pdf.CellFormat(contentW, 5, "IBAN: "+company.IBAN, "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

type taxGroup struct {
	rate decimal.Decimal
	tax  decimal.Decimal
}

// taxGroups sums line taxes per rate, highest rate first.
func taxGroups(lines []model.SalesDocumentLine) []taxGroup {
	byRate := map[string]*taxGroup{}
	for _, l := range lines {
		key := l.TaxRateValue.String()
		g, ok := byRate[key]
		if !ok {
			g = &taxGroup{rate: l.TaxRateValue, tax: decimal.Zero}
			byRate[key] = g
		}
		g.tax = g.tax.Add(l.LineTax)
	}
	out := make([]taxGroup, 0, len(byRate))
	for _, g := range byRate {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rate.GreaterThan(out[j].rate) })
	return out
}

// formatMoney renders 1234.5 as "1234,50 EUR".
func formatMoney(v decimal.Decimal, currency string) string {
	return strings.Replace(v.StringFixed(2), ".", ",", 1) + " " + currency
}

func formatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(0) + " %"
}

func safeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}
