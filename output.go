package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// formatCount renders a token count in compact form: billions and
// millions with a one-decimal suffix, smaller values with a thousands
// separator.
func formatCount(n int) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	default:
		return humanize.Comma(int64(n))
	}
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

// renderReport builds the full console report: the total, both breakdown
// tables and the context window comparison.
func renderReport(report *Report) string {
	var b strings.Builder

	b.WriteString("Results:\n")
	b.WriteString(fmt.Sprintf("Total tokens: %s (%s) across %s\n",
		formatCount(report.Total), humanize.Comma(int64(report.Total)), pluralFiles(report.FileCount())))

	b.WriteString("\nTokens by file extension\n")
	writeBreakdown(&b, "Extension", report.ExtensionEntries())

	b.WriteString("\nTokens by technology\n")
	writeBreakdown(&b, "Technology", report.TechnologyEntries())

	b.WriteString("\nContext window comparisons\n")
	writeWindows(&b, report.Total)

	return b.String()
}

func writeBreakdown(b *strings.Builder, label string, entries []CountEntry) {
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{label, "Tokens", "Files"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, e := range entries {
		table.Append([]string{
			e.Key,
			fmt.Sprintf("%s (%s)", formatCount(e.Tokens), humanize.Comma(int64(e.Tokens))),
			pluralFiles(e.Files),
		})
	}
	table.Render()
}

func writeWindows(b *strings.Builder, total int) {
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"Model", "Context Usage"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, w := range contextWindows {
		table.Append([]string{w.Model, fmt.Sprintf("%.1f%%", windowUsage(total, w.Tokens))})
	}
	table.Render()
}

// renderErrors lists the files a run had to skip. Skipped files are in no
// aggregate; this block is the only place they appear.
func renderErrors(errs []FileError) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Warning: %s could not be processed:\n", pluralFiles(len(errs))))
	for _, fe := range errs {
		b.WriteString(fmt.Sprintf("  %s: %v\n", fe.Path, fe.Err))
	}
	return b.String()
}
