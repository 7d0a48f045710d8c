package services

import (
	"fmt"
	"sort"
	"time"

	"sales-dashboard-api/pkg/models"
)

// MissingGroupKey labels rows whose grouping cell is empty. They form
// their own group instead of being dropped.
const MissingGroupKey = "(not set)"

// AggregatorService partitions a dataset by a categorical column and
// computes per-group totals. It imposes no ordering of its own beyond
// first-seen; chart, recommendation and report consumers sort through
// the helpers below.
type AggregatorService struct{}

// NewAggregatorService creates a new AggregatorService.
func NewAggregatorService() *AggregatorService {
	return &AggregatorService{}
}

// GroupBy aggregates rows per distinct value of the grouping column:
// summed Revenue, summed Conversions (row count when the column is
// absent), mean Average Order Size (mean Revenue when absent) and
// revenue per conversion (nil when the group's conversions are 0).
// Groups come back in first-seen row order.
func (s *AggregatorService) GroupBy(ds *models.Dataset, column string) []models.GroupSummary {
	type acc struct {
		revenue     float64
		conversions float64
		rowCount    int
		avgSum      float64
		avgCount    int
		firstSeen   int
	}

	hasConversions := ds.HasColumn(models.ColConversions)
	hasAvgOrder := ds.HasColumn(models.ColAvgOrderSize)

	groups := make(map[string]*acc)
	var order []string
	for i, row := range ds.Rows {
		key := row.Get(column)
		if key == "" {
			key = MissingGroupKey
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{firstSeen: i}
			groups[key] = g
			order = append(order, key)
		}
		g.rowCount++
		if v, ok := coerceFloat(row.Get(models.ColRevenue)); ok {
			g.revenue += v
		}
		if hasConversions {
			if v, ok := coerceFloat(row.Get(models.ColConversions)); ok {
				g.conversions += v
			}
		}
		if hasAvgOrder {
			if v, ok := coerceFloat(row.Get(models.ColAvgOrderSize)); ok {
				g.avgSum += v
				g.avgCount++
			}
		} else {
			if v, ok := coerceFloat(row.Get(models.ColRevenue)); ok {
				g.avgSum += v
				g.avgCount++
			}
		}
	}

	summaries := make([]models.GroupSummary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		gs := models.GroupSummary{
			Key:       key,
			Revenue:   g.revenue,
			FirstSeen: g.firstSeen,
		}
		if hasConversions {
			gs.Conversions = g.conversions
		} else {
			gs.Conversions = float64(g.rowCount)
		}
		if g.avgCount > 0 {
			gs.AvgOrder = g.avgSum / float64(g.avgCount)
		}
		if gs.Conversions > 0 {
			rpc := gs.Revenue / gs.Conversions
			gs.RevenuePerConversion = &rpc
		}
		summaries = append(summaries, gs)
	}
	return summaries
}

// WeeklyRevenue buckets revenue by ISO week (Monday start) and
// returns the buckets chronologically. Rows without a parsed date are
// left out of the trend, not out of the dataset.
func (s *AggregatorService) WeeklyRevenue(ds *models.Dataset) []models.WeekBucket {
	if !ds.HasColumn(models.ColDate) {
		return nil
	}
	buckets := make(map[string]*models.WeekBucket)
	for _, row := range ds.Rows {
		if !row.HasDate {
			continue
		}
		year, week := row.Date.ISOWeek()
		label := fmt.Sprintf("%d-W%02d", year, week)
		b, ok := buckets[label]
		if !ok {
			b = &models.WeekBucket{WeekStart: mondayOf(row.Date), Label: label}
			buckets[label] = b
		}
		if v, ok := coerceFloat(row.Get(models.ColRevenue)); ok {
			b.Revenue += v
		}
	}

	out := make([]models.WeekBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// TopByRevenue returns up to n groups sorted by descending revenue.
// The sort is stable over first-seen order, so ties stay predictable.
func TopByRevenue(groups []models.GroupSummary, n int) []models.GroupSummary {
	sorted := make([]models.GroupSummary, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue > sorted[j].Revenue
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SortByRevPerConv orders groups by descending revenue per
// conversion. Groups with an undefined ratio (zero conversions) sink
// to the end; ties keep first-seen order, which makes the first
// element the deterministic "best" and the last defined ratio the
// "worst".
func SortByRevPerConv(groups []models.GroupSummary) []models.GroupSummary {
	sorted := make([]models.GroupSummary, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].RevenuePerConversion, sorted[j].RevenuePerConversion
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return sorted
}

// BottomQuartileByRevenue lists up to limit groups whose revenue sits
// strictly below the 25th percentile, ascending by revenue. Nil when
// nobody falls below the threshold.
func BottomQuartileByRevenue(groups []models.GroupSummary, limit int) []models.GroupSummary {
	if len(groups) == 0 {
		return nil
	}
	revenues := make([]float64, len(groups))
	for i, g := range groups {
		revenues[i] = g.Revenue
	}
	threshold := percentile(revenues, 0.25)

	var low []models.GroupSummary
	for _, g := range groups {
		if g.Revenue < threshold {
			low = append(low, g)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Revenue < low[j].Revenue })
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	return low
}

// percentile computes the q-quantile with linear interpolation
// between closest ranks, matching the conventional dataframe default.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
