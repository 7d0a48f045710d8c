package services

import (
	"strings"
	"testing"

	"sales-dashboard-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func colset(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

func ratio(v float64) *float64 { return &v }

func TestChannelRulesSkippedWithoutColumns(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColRevenue),
		Channels: []models.GroupSummary{
			{Key: "A", Revenue: 100, RevenuePerConversion: ratio(10)},
		},
	})

	for _, r := range recs {
		assert.NotContains(t, r, "Focus investment")
		assert.NotContains(t, r, "Review or optimize")
	}
}

func TestChannelBestAndWorst(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColChannel, models.ColRevenue),
		Channels: []models.GroupSummary{
			{Key: "organic", Revenue: 300, RevenuePerConversion: ratio(60), FirstSeen: 0},
			{Key: "paid", Revenue: 100, RevenuePerConversion: ratio(20), FirstSeen: 1},
		},
	})

	require.GreaterOrEqual(t, len(recs), 2)
	assert.Equal(t, "Focus investment on organic - highest revenue per conversion (~60.00).", recs[0])
	assert.Equal(t, "Review or optimize paid - low revenue efficiency (~20.00).", recs[1])
}

func TestChannelTieBreakIsDeterministic(t *testing.T) {
	svc := NewAdvisorService()

	// Both channels at 50 revenue per conversion: first-seen is best,
	// later-seen is worst.
	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColChannel, models.ColRevenue),
		Channels: []models.GroupSummary{
			{Key: "A", Revenue: 150, Conversions: 3, RevenuePerConversion: ratio(50), FirstSeen: 0},
			{Key: "B", Revenue: 350, Conversions: 7, RevenuePerConversion: ratio(50), FirstSeen: 1},
		},
	})

	require.GreaterOrEqual(t, len(recs), 2)
	assert.Contains(t, recs[0], "Focus investment on A")
	assert.Contains(t, recs[1], "Review or optimize B")
}

func TestWorstChannelSkipsUndefinedRatios(t *testing.T) {
	svc := NewAdvisorService()

	// referral has zero conversions, so its ratio is undefined. The
	// worst channel is the lowest defined ratio, not the undefined one.
	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColChannel, models.ColRevenue),
		Channels: []models.GroupSummary{
			{Key: "organic", Revenue: 300, Conversions: 5, RevenuePerConversion: ratio(60), FirstSeen: 0},
			{Key: "paid", Revenue: 100, Conversions: 10, RevenuePerConversion: ratio(10), FirstSeen: 1},
			{Key: "referral", Revenue: 50, FirstSeen: 2},
		},
	})

	require.GreaterOrEqual(t, len(recs), 2)
	assert.Equal(t, "Review or optimize paid - low revenue efficiency (~10.00).", recs[1])
}

func TestWorstChannelAllRatiosUndefined(t *testing.T) {
	svc := NewAdvisorService()

	// With no defined ratio anywhere the later-seen channel is still
	// reported, with the ratio shown as n/a.
	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColChannel, models.ColRevenue),
		Channels: []models.GroupSummary{
			{Key: "organic", Revenue: 300, FirstSeen: 0},
			{Key: "paid", Revenue: 100, FirstSeen: 1},
		},
	})

	require.GreaterOrEqual(t, len(recs), 2)
	assert.Equal(t, "Review or optimize paid - low revenue efficiency (~n/a).", recs[1])
}

func TestPeakTimeOfDayRule(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColTimeOfDay, models.ColRevenue),
		TimesOfDay: []models.GroupSummary{
			{Key: "Morning", Revenue: 100},
			{Key: "Evening", Revenue: 400},
		},
	})

	require.NotEmpty(t, recs)
	assert.Equal(t, "Peak selling window: Evening. Schedule paid promotions or flash deals in this window.", recs[0])
}

func TestRepCoachingRule(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColSalesRep, models.ColRevenue),
		Reps: []models.GroupSummary{
			{Key: "Ana", Revenue: 5},
			{Key: "Ben", Revenue: 100},
			{Key: "Cal", Revenue: 200},
			{Key: "Dee", Revenue: 300},
		},
	})

	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], "Consider targeted coaching for lower performers: Ana.")
}

func TestRepCoachingSilentWhenNobodyBelow(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColSalesRep, models.ColRevenue),
		Reps: []models.GroupSummary{
			{Key: "Ana", Revenue: 100},
			{Key: "Ben", Revenue: 100},
		},
	})

	for _, r := range recs {
		assert.NotContains(t, r, "coaching")
	}
}

func TestInventoryNoteAlwaysFiresWithoutStockColumns(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{Columns: colset(models.ColChannel, models.ColRevenue)})
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[len(recs)-1], "Inventory & Returns data not present")
}

func TestInventoryNoteSuppressedByStockColumn(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{Columns: colset("Stock", models.ColRevenue)})
	for _, r := range recs {
		assert.NotContains(t, r, "Inventory & Returns data not present")
	}
}

func TestRuleOrderIsFixed(t *testing.T) {
	svc := NewAdvisorService()

	recs := svc.Generate(&AdviceContext{
		Columns: colset(models.ColChannel, models.ColRevenue, models.ColTimeOfDay, models.ColSalesRep),
		Channels: []models.GroupSummary{
			{Key: "A", RevenuePerConversion: ratio(60)},
			{Key: "B", RevenuePerConversion: ratio(20), FirstSeen: 1},
		},
		TimesOfDay: []models.GroupSummary{{Key: "Evening", Revenue: 10}},
		Reps: []models.GroupSummary{
			{Key: "Ana", Revenue: 1},
			{Key: "Ben", Revenue: 50},
			{Key: "Cal", Revenue: 60},
			{Key: "Dee", Revenue: 70},
		},
	})

	require.Len(t, recs, 5)
	assert.Contains(t, recs[0], "Focus investment")
	assert.Contains(t, recs[1], "Review or optimize")
	assert.Contains(t, recs[2], "Peak selling window")
	assert.Contains(t, recs[3], "targeted coaching")
	assert.Contains(t, recs[4], "Inventory & Returns")
}
