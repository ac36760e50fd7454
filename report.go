package ledgerxgo

import (
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Report renders a PDF summary of every account and the ledger total.
func (l *Ledger) Report(w io.Writer) error {
	accts := l.Accounts()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Ledger balance report")
	pdf.Ln(14)

	colw := []float64{80, 70, 30}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Account", "Name", "Balance"} {
		pdf.CellFormat(colw[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	total := decimal.Zero
	for _, acct := range accts {
		pdf.CellFormat(colw[0], 6, acct.AcctID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colw[1], 6, acct.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colw[2], 6, acct.Balance.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		total = total.Add(acct.Balance)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colw[0]+colw[1], 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colw[2], 7, total.StringFixed(2), "1", 0, "R", false, 0, "")

	return pdf.Output(w)
}
