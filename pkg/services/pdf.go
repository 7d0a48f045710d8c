package services

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"sales-dashboard-api/pkg/models"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfNameLimit = 40
	pdfRecLimit  = 100
	pdfMaxRecs   = 5
)

// RenderPDF renders the executive summary as a paginated PDF. The
// renderer is the least reliable part of the pipeline, so any error
// or panic is converted into a plain error for the handler to turn
// into a disabled download control; the text report stays available
// either way.
func (s *ReportService) RenderPDF(rd models.ReportData) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[report] pdf renderer panicked: %v", r)
			out = nil
			err = fmt.Errorf("pdf generation failed: %v", r)
		}
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetLeftMargin(15)
	pdf.SetRightMargin(15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Executive Summary", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, rd.GeneratedAt.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Key Metrics", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Revenue: $%s", formatCount(rd.Metrics.Revenue)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Orders: %s", formatCount(rd.Metrics.Orders)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Avg Order: $%s", formatCount(rd.Metrics.AOV)), "", 1, "L", false, 0, "")
	conv := "N/A"
	if rd.Metrics.ConvRate != nil {
		conv = fmt.Sprintf("%.1f%%", *rd.Metrics.ConvRate*100)
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Conv Rate: %s", conv), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	writeGroupSection(pdf, "Top Channels", rd.TopChannels)
	writeGroupSection(pdf, "Top Sales Reps", rd.TopReps)

	if len(rd.Recommendations) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Recommendations", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		recs := rd.Recommendations
		if len(recs) > pdfMaxRecs {
			recs = recs[:pdfMaxRecs]
		}
		for i, r := range recs {
			clean := truncate(sanitizeASCII(r), pdfRecLimit)
			pdf.CellFormat(0, 5, fmt.Sprintf("%d. %s", i+1, clean), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation failed: %w", err)
	}
	return buf.Bytes(), nil
}

// writeGroupSection prints one name/revenue list. Entries that would
// render as an empty label are skipped rather than failing the whole
// document.
func writeGroupSection(pdf *gofpdf.Fpdf, title string, groups []models.GroupSummary) {
	if len(groups) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, g := range groups {
		name := truncate(sanitizeASCII(g.Key), pdfNameLimit)
		if name == "" {
			continue
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: $%s", name, formatCount(g.Revenue)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// sanitizeASCII strips every character the core PDF fonts cannot
// encode, mirroring an ascii-ignore transcode.
func sanitizeASCII(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
