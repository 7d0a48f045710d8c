package services

import (
	"strconv"
	"strings"

	"sales-dashboard-api/pkg/models"
)

// MetricsService computes the headline KPIs from a (filtered)
// dataset. Missing columns and non-numeric cells never abort the
// computation; they contribute zero or flip a metric to its fallback.
type MetricsService struct{}

// NewMetricsService creates a new MetricsService.
func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// Compute derives the Metrics record.
//
// Orders are the summed Conversions when that sum is positive,
// otherwise the row count stands in (one order per row). AOV is
// revenue/orders, falling back to the mean Average Order Size and
// then to 0. ConvRate stays nil unless the Conversions column exists
// and the dataset has rows.
func (s *MetricsService) Compute(ds *models.Dataset) models.Metrics {
	m := models.Metrics{Rows: len(ds.Rows)}

	if ds.HasColumn(models.ColRevenue) {
		m.Revenue = safeSum(ds, models.ColRevenue)
	}

	var conversions float64
	if ds.HasColumn(models.ColConversions) {
		conversions = safeSum(ds, models.ColConversions)
	}

	if conversions > 0 {
		m.Orders = conversions
	} else {
		m.Orders = float64(len(ds.Rows))
	}

	switch {
	case m.Orders > 0:
		m.AOV = m.Revenue / m.Orders
	case ds.HasColumn(models.ColAvgOrderSize):
		m.AOV = safeMean(ds, models.ColAvgOrderSize)
	}

	if ds.HasColumn(models.ColConversions) && len(ds.Rows) > 0 {
		rate := conversions / float64(len(ds.Rows))
		m.ConvRate = &rate
	}

	return m
}

// safeSum sums a numeric column, treating non-coercible cells as 0.
func safeSum(ds *models.Dataset, column string) float64 {
	var total float64
	for _, row := range ds.Rows {
		if v, ok := coerceFloat(row.Get(column)); ok {
			total += v
		}
	}
	return total
}

// safeMean averages the coercible cells of a column, 0 when none are.
func safeMean(ds *models.Dataset, column string) float64 {
	var total float64
	var count int
	for _, row := range ds.Rows {
		if v, ok := coerceFloat(row.Get(column)); ok {
			total += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// coerceFloat parses a cell as a float. Thousands separators are
// stripped first, so "1,200.50" counts as 1200.5.
func coerceFloat(value string) (float64, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
