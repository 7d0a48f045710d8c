package services

import (
	"fmt"
	"strings"
	"time"

	"sales-dashboard-api/pkg/models"

	"github.com/google/uuid"
)

// ReportService assembles the executive summary. Section data is
// computed once into ReportData, then handed to the text renderer
// (always succeeds) and the PDF renderer (best effort) so both
// formats always agree.
type ReportService struct{}

// NewReportService creates a new ReportService.
func NewReportService() *ReportService {
	return &ReportService{}
}

// BuildReportData snapshots the report sections for one run.
func (s *ReportService) BuildReportData(
	metrics models.Metrics,
	topChannels []models.GroupSummary,
	topReps []models.GroupSummary,
	recommendations []string,
	meta string,
) models.ReportData {
	return models.ReportData{
		ReportID:        uuid.New().String(),
		GeneratedAt:     time.Now().UTC(),
		Metrics:         metrics,
		TopChannels:     topChannels,
		TopReps:         topReps,
		Recommendations: recommendations,
		Meta:            meta,
	}
}

// BuildMeta renders the footer metadata line: row count plus the
// covered date span ("N/A" when no date column survived the filter).
func (s *ReportService) BuildMeta(ds *models.Dataset) string {
	from, to := "N/A", "N/A"
	if lo, hi, ok := ds.DateRange(); ok {
		from = lo.Format("2006-01-02")
		to = hi.Format("2006-01-02")
	}
	return fmt.Sprintf("Rows: %d | Period: %s to %s", len(ds.Rows), from, to)
}

// RenderText produces the plain-text executive summary. Pure string
// formatting; it has no failure mode.
func (s *ReportService) RenderText(rd models.ReportData) string {
	var b strings.Builder
	line := strings.Repeat("=", 70)
	thin := strings.Repeat("-", 70)

	b.WriteString(line + "\n")
	b.WriteString("E-COMMERCE GROWTH DASHBOARD - EXECUTIVE SUMMARY\n")
	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("\nGenerated: %s\n", rd.GeneratedAt.Format("2006-01-02 15:04 UTC")))

	b.WriteString("\n\nKEY PERFORMANCE INDICATORS\n")
	b.WriteString(thin + "\n")
	b.WriteString(fmt.Sprintf("Total Revenue:        $%s\n", formatMoney(rd.Metrics.Revenue)))
	b.WriteString(fmt.Sprintf("Total Orders (est):   %s\n", formatCount(rd.Metrics.Orders)))
	b.WriteString(fmt.Sprintf("Average Order Value:  $%s\n", formatMoney(rd.Metrics.AOV)))
	conv := "N/A"
	if rd.Metrics.ConvRate != nil {
		conv = fmt.Sprintf("%.2f%%", *rd.Metrics.ConvRate*100)
	}
	b.WriteString(fmt.Sprintf("Conversion Rate:      %s\n", conv))

	if len(rd.TopChannels) > 0 {
		b.WriteString("\n\nTOP CHANNELS BY REVENUE\n")
		b.WriteString(thin + "\n")
		for _, g := range rd.TopChannels {
			b.WriteString(fmt.Sprintf("  - %s: $%s\n", g.Key, formatMoney(g.Revenue)))
		}
	}

	if len(rd.TopReps) > 0 {
		b.WriteString("\n\nTOP SALES REPRESENTATIVES\n")
		b.WriteString(thin + "\n")
		for _, g := range rd.TopReps {
			b.WriteString(fmt.Sprintf("  - %s: $%s\n", g.Key, formatMoney(g.Revenue)))
		}
	}

	if len(rd.Recommendations) > 0 {
		b.WriteString("\n\nEXECUTIVE RECOMMENDATIONS\n")
		b.WriteString(thin + "\n")
		for i, r := range rd.Recommendations {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r))
		}
	}

	b.WriteString(fmt.Sprintf("\n\n%s\n", thin))
	b.WriteString(fmt.Sprintf("Data Source: %s\n", rd.Meta))
	b.WriteString(line + "\n")

	return b.String()
}

// formatMoney renders a float with two decimals and thousands
// separators, the way the dashboard shows currency.
func formatMoney(v float64) string {
	return groupThousands(fmt.Sprintf("%.2f", v))
}

// formatCount renders an order count as a grouped integer.
func formatCount(v float64) string {
	return groupThousands(fmt.Sprintf("%.0f", v))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	out := b.String()
	if out == "" {
		out = "0"
	}
	if neg {
		out = "-" + out
	}
	return out + frac
}
