package account

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/simp-lee/pension/internal/domain"
)

// StatementData is everything printed on an account statement.
type StatementData struct {
	Account      domain.Account
	Holder       string
	Transactions []domain.Transaction
	GeneratedAt  time.Time
}

// statement table columns: width in mm, header, alignment.
var statementColumns = []struct {
	width float64
	title string
	align string
}{
	{24, "Value date", "L"},
	{34, "Reference", "L"},
	{24, "Kind", "L"},
	{44, "Narration", "L"},
	{22, "Debit", "R"},
	{22, "Credit", "R"},
	{0, "Balance", "R"},
}

// RenderStatement writes data as an A4 PDF statement to w.
func RenderStatement(w io.Writer, data StatementData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Account statement "+data.Account.AccountID, true)
	pdf.SetCreator("pension-admin", false)
	pdf.SetCreationDate(data.GeneratedAt)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ACCOUNT STATEMENT")
	pdf.Ln(12)

	a := data.Account
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		"Account      : " + a.AccountID,
		"Holder       : " + orDash(data.Holder),
		"Member       : " + a.MemberID,
		"Type         : " + string(a.Type),
		"Currency     : " + a.Currency,
		"Opened       : " + a.CreatedDate.Format("2006-01-02"),
		"Generated    : " + data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range statementColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	var credits, debits int64
	for _, txn := range data.Transactions {
		debit, credit := "", ""
		if txn.Delta() < 0 {
			debit = FormatAmount(txn.Amount)
			debits += txn.Amount
		} else {
			credit = FormatAmount(txn.Amount)
			credits += txn.Amount
		}
		cells := []string{
			txn.ValueDate.Format("2006-01-02"),
			truncate(txn.Reference, 18),
			string(txn.Kind),
			truncate(txn.Narration, 26),
			debit,
			credit,
			FormatAmount(txn.BalanceAfter),
		}
		for i, col := range statementColumns {
			pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Transactions) == 0 {
		pdf.CellFormat(0, 6, "No transactions", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	for _, line := range []string{
		"Total credits   : " + FormatAmount(credits) + " " + a.Currency,
		"Total debits    : " + FormatAmount(debits) + " " + a.Currency,
		"Closing balance : " + FormatAmount(a.Balance) + " " + a.Currency,
	} {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	return pdf.Output(w)
}

// FormatAmount renders minor currency units with two decimals and thousands
// separators, e.g. 123456 -> "1,234.56".
func FormatAmount(minor int64) string {
	sign := ""
	u := uint64(minor)
	if minor < 0 {
		sign = "-"
		u = uint64(-minor)
	}
	whole := strconv.FormatUint(u/100, 10)

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s.%02d", sign, b.String(), u%100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
