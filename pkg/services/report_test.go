package services

import (
	"strings"
	"testing"

	"sales-dashboard-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReportData() models.ReportData {
	svc := NewReportService()
	rate := 2.5
	return svc.BuildReportData(
		models.Metrics{Revenue: 1234567.891, Orders: 1200, AOV: 1028.81, ConvRate: &rate, Rows: 480},
		[]models.GroupSummary{
			{Key: "organic", Revenue: 800000},
			{Key: "paid", Revenue: 434567.89},
		},
		[]models.GroupSummary{
			{Key: "Ana", Revenue: 500000},
		},
		[]string{"Focus investment on organic - highest revenue per conversion (~60.00)."},
		"Rows: 480 | Period: 2024-01-01 to 2024-03-31",
	)
}

func TestBuildReportDataAssignsID(t *testing.T) {
	rd := sampleReportData()
	assert.NotEmpty(t, rd.ReportID)
	assert.False(t, rd.GeneratedAt.IsZero())
}

func TestRenderTextSections(t *testing.T) {
	svc := NewReportService()
	text := svc.RenderText(sampleReportData())

	assert.Contains(t, text, "E-COMMERCE GROWTH DASHBOARD - EXECUTIVE SUMMARY")
	assert.Contains(t, text, "KEY PERFORMANCE INDICATORS")
	assert.Contains(t, text, "Total Revenue:        $1,234,567.89")
	assert.Contains(t, text, "Total Orders (est):   1,200")
	assert.Contains(t, text, "Conversion Rate:      250.00%")
	assert.Contains(t, text, "TOP CHANNELS BY REVENUE")
	assert.Contains(t, text, "  - organic: $800,000.00")
	assert.Contains(t, text, "TOP SALES REPRESENTATIVES")
	assert.Contains(t, text, "EXECUTIVE RECOMMENDATIONS")
	assert.Contains(t, text, "1. Focus investment on organic")
	assert.Contains(t, text, "Data Source: Rows: 480 | Period: 2024-01-01 to 2024-03-31")
}

func TestRenderTextOmitsEmptySections(t *testing.T) {
	svc := NewReportService()
	rd := svc.BuildReportData(models.Metrics{}, nil, nil, nil, "Rows: 0 | Period: N/A to N/A")
	text := svc.RenderText(rd)

	assert.NotContains(t, text, "TOP CHANNELS BY REVENUE")
	assert.NotContains(t, text, "TOP SALES REPRESENTATIVES")
	assert.NotContains(t, text, "EXECUTIVE RECOMMENDATIONS")
	assert.Contains(t, text, "Conversion Rate:      N/A")
}

func TestBuildMeta(t *testing.T) {
	svc := NewReportService()

	ds := datasetFromRows([]string{models.ColRevenue}, map[string]string{models.ColRevenue: "1"})
	assert.Equal(t, "Rows: 1 | Period: N/A to N/A", svc.BuildMeta(ds))
}

func TestRenderPDFProducesDocument(t *testing.T) {
	svc := NewReportService()

	out, err := svc.RenderPDF(sampleReportData())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"), "output should be a PDF document")
}

func TestRenderPDFEmptyReport(t *testing.T) {
	svc := NewReportService()
	rd := svc.BuildReportData(models.Metrics{}, nil, nil, nil, "Rows: 0 | Period: N/A to N/A")

	out, err := svc.RenderPDF(rd)
	require.NoError(t, err, "a zero-row report must still render")
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestRenderPDFSanitizesAndTruncates(t *testing.T) {
	svc := NewReportService()
	longName := strings.Repeat("X", 80) + "é"
	longRec := strings.Repeat("r", 150)
	rd := svc.BuildReportData(
		models.Metrics{},
		[]models.GroupSummary{{Key: longName, Revenue: 10}},
		nil,
		[]string{longRec, "a", "b", "c", "d", "e"},
		"meta",
	)

	out, err := svc.RenderPDF(rd)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "999.99", formatMoney(999.99))
	assert.Equal(t, "1,000.00", formatMoney(1000))
	assert.Equal(t, "1,234,567.89", formatMoney(1234567.891))
	assert.Equal(t, "-1,500.00", formatMoney(-1500))
}
