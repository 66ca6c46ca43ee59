package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 6   // Line height in mm
	pdfFontSize   = 10
)

// writePDFReport renders the report as an A4 PDF with the same tables as
// the console output.
func writePDFReport(report *Report, target, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "") // Portrait, mm, A4, default font dir
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	usable := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+4)
	pdf.MultiCell(usable, pdfLineHeight+2, "Token Count Report", "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize-1)
	pdf.MultiCell(usable, pdfLineHeight, fmt.Sprintf("Target: %s", target), "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.MultiCell(usable, pdfLineHeight, fmt.Sprintf("Total tokens: %s (%s)", formatCount(report.Total), humanize.Comma(int64(report.Total))), "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize-1)
	pdf.MultiCell(usable, pdfLineHeight, fmt.Sprintf("Files counted: %d", report.FileCount()), "", "L", false)
	if n := len(report.Errors); n > 0 {
		pdf.MultiCell(usable, pdfLineHeight, fmt.Sprintf("Files skipped with errors: %d", n), "", "L", false)
	}
	pdf.Ln(pdfLineHeight)

	writePDFBreakdown(pdf, "Tokens by file extension", "Extension", report.ExtensionEntries())
	writePDFBreakdown(pdf, "Tokens by technology", "Technology", report.TechnologyEntries())
	writePDFWindows(pdf, report.Total)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

func writePDFBreakdown(pdf *gofpdf.Fpdf, title, label string, entries []CountEntry) {
	usable := float64(pdfPageWidth - 2*pdfMargin)
	widths := []float64{usable * 0.4, usable * 0.35, usable * 0.25}

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.MultiCell(usable, pdfLineHeight, title, "", "L", false)

	writePDFRow(pdf, widths, []string{label, "Tokens", "Files"}, true)
	for _, e := range entries {
		writePDFRow(pdf, widths, []string{
			e.Key,
			fmt.Sprintf("%s (%s)", formatCount(e.Tokens), humanize.Comma(int64(e.Tokens))),
			pluralFiles(e.Files),
		}, false)
	}
	pdf.Ln(pdfLineHeight)
}

func writePDFWindows(pdf *gofpdf.Fpdf, total int) {
	usable := float64(pdfPageWidth - 2*pdfMargin)
	widths := []float64{usable * 0.6, usable * 0.4}

	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.MultiCell(usable, pdfLineHeight, "Context window comparisons", "", "L", false)

	writePDFRow(pdf, widths, []string{"Model", "Context Usage"}, true)
	for _, w := range contextWindows {
		writePDFRow(pdf, widths, []string{w.Model, fmt.Sprintf("%.1f%%", windowUsage(total, w.Tokens))}, false)
	}
	pdf.Ln(pdfLineHeight)
}

func writePDFRow(pdf *gofpdf.Fpdf, widths []float64, cells []string, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, pdfFontSize-1)
	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], pdfLineHeight, cell, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
