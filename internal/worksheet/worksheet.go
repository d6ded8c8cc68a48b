// Package worksheet renders printable problem sheets as PDF.
package worksheet

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verte-zerg/mathdrill/internal/arith"
)

// ErrEmptySheet is returned when a sheet would have no problems.
var ErrEmptySheet = errors.New("worksheet needs at least one problem")

// MaxProblems caps a single sheet.
const MaxProblems = 200

// Sheet is a titled list of generated problems.
type Sheet struct {
	Title    string
	Problems []arith.Problem
}

// Options controls PDF layout.
type Options struct {
	Name      string
	PageSize  string
	MarginsMM float64
	Columns   int
	AnswerKey bool
}

// DefaultOptions returns A4 with two columns and an answer key.
func DefaultOptions() Options {
	return Options{PageSize: "A4", MarginsMM: 15, Columns: 2, AnswerKey: true}
}

// Build generates n problems from gen's active configuration.
func Build(gen *arith.Generator, n int) (Sheet, error) {
	if n <= 0 {
		return Sheet{}, ErrEmptySheet
	}
	if n > MaxProblems {
		return Sheet{}, fmt.Errorf("worksheet is limited to %d problems, got %d", MaxProblems, n)
	}
	ops, _ := gen.Config()
	sheet := Sheet{Title: sheetTitle(ops), Problems: make([]arith.Problem, 0, n)}
	for range n {
		sheet.Problems = append(sheet.Problems, gen.Generate())
	}
	return sheet, nil
}

func sheetTitle(ops []arith.Operation) string {
	caser := cases.Title(language.English)
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = caser.String(op.String())
	}
	return strings.Join(names, " & ") + " Practice"
}

// Write renders the sheet to path, adding an answer key page when
// opts.AnswerKey is set.
func Write(path string, sheet Sheet, opts Options) error {
	if len(sheet.Problems) == 0 {
		return ErrEmptySheet
	}
	if opts.PageSize == "" {
		opts.PageSize = "A4"
	}
	if opts.Columns <= 0 {
		opts.Columns = 1
	}

	pdf := fpdf.New("P", "mm", opts.PageSize, "")
	pdf.SetMargins(opts.MarginsMM, opts.MarginsMM, opts.MarginsMM)
	pdf.SetAutoPageBreak(true, opts.MarginsMM)
	// Core fonts are cp1252, which carries the multiplication and division signs.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := sheet.Title
	if opts.Name != "" {
		title = fmt.Sprintf("%s's %s", opts.Name, sheet.Title)
	}
	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-opts.MarginsMM)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeHeading(pdf, tr(title))
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 6, "Name: ____________________    Date: ____________", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	writeGrid(pdf, opts, sheet.Problems, func(i int, p arith.Problem) string {
		return tr(fmt.Sprintf("%d.  %d %s %d = ______", i+1, p.Operands[0], printSymbol(p.Operation), p.Operands[1]))
	})

	if opts.AnswerKey {
		pdf.AddPage()
		writeHeading(pdf, tr(title+" Answer Key"))
		writeGrid(pdf, opts, sheet.Problems, func(i int, p arith.Problem) string {
			return tr(fmt.Sprintf("%d.  %d %s %d = %d", i+1, p.Operands[0], printSymbol(p.Operation), p.Operands[1], p.Answer))
		})
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write worksheet: %w", err)
	}
	return nil
}

// printSymbol maps operators onto cp1252, which has no Unicode minus sign.
func printSymbol(op arith.Operation) string {
	if op == arith.Subtraction {
		return "-"
	}
	return op.Symbol()
}

func writeHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 14, title, "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

// writeGrid lays problems out row by row across opts.Columns columns.
func writeGrid(pdf *fpdf.Fpdf, opts Options, problems []arith.Problem, text func(int, arith.Problem) string) {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(opts.Columns)
	pdf.SetFont("Helvetica", "", 14)
	for i, p := range problems {
		ln := 0
		if (i+1)%opts.Columns == 0 || i == len(problems)-1 {
			ln = 1
		}
		pdf.CellFormat(colW, 12, text(i, p), "", ln, "L", false, 0, "")
	}
}
