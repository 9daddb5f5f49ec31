// Package receipt renders a submitted sale as a narrow thermal-style PDF
// receipt using go-pdf/fpdf.
package receipt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"bizconsole/internal/model"
)

// Options controls the receipt header and item labels.
type Options struct {
	Business string
	// Names fills in product names the sale response omitted.
	Names map[int64]string
}

const (
	pageWidth = 74.0 // mm
	margin    = 4.0
	maxName   = 22
)

// Write renders sale as a PDF to w.
func Write(w io.Writer, sale model.Sale, opts Options) error {
	if opts.Business == "" {
		opts.Business = "Business Console"
	}
	// Height grows with the item count so long sales fit on one page.
	height := 70.0 + 5.0*float64(len(sale.Items))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()
	contentW := pageWidth - 2*margin

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, opts.Business, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Sale #%d", sale.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	if !sale.SaleDate.IsZero() {
		pdf.CellFormat(contentW, 4, sale.SaleDate.Format("2006-01-02  15:04"), "", 1, "L", false, 0, "")
	}
	if sale.SellerName != "" {
		pdf.CellFormat(contentW, 4, "Seller: "+sale.SellerName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(margin, pdf.GetY(), pageWidth-margin, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, it := range sale.Items {
		pdf.CellFormat(col1, 5, itemName(it, opts.Names), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, it.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(margin, pdf.GetY(), pageWidth-margin, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, sale.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Payment:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, string(sale.PaymentMethod), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("receipt: render: %w", err)
	}
	return nil
}

// Save writes the receipt to storagePath/receipt_{id}.pdf, creating the
// directory if needed, and returns the file path.
func Save(sale model.Sale, storagePath string, opts Options) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("receipt: create storage dir: %w", err)
	}
	path := filepath.Join(storagePath, fmt.Sprintf("receipt_%d.pdf", sale.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("receipt: create file: %w", err)
	}
	if err := Write(f, sale, opts); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("receipt: close file: %w", err)
	}
	return path, nil
}

func itemName(it model.SaleItem, names map[int64]string) string {
	name := it.ProductName
	if name == "" {
		name = names[it.ProductID]
	}
	if name == "" {
		name = fmt.Sprintf("Product %d", it.ProductID)
	}
	// core fonts are single-byte; keep to the first maxName runes
	if r := []rune(name); len(r) > maxName {
		name = string(r[:maxName-3]) + "..."
	}
	return name
}
