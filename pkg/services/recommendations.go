package services

import (
	"fmt"
	"strings"

	"sales-dashboard-api/pkg/models"
)

// inventoryColumns are probed (case-insensitive) to decide whether
// the upload carries any stock/returns data. The probe looks at
// column names only, never at row content.
var inventoryColumns = []string{
	"stock", "inventory", "return", "returns", "return_flag", "return_quantity",
}

// InventoryIntegrationNote is the fixed informational message shown
// alongside the dashboard regardless of rule outcomes.
const InventoryIntegrationNote = "To complete campaign ROI and stock risk analysis, integrate: " +
	"Product_ID, Stock_Quantity, Return_Flag/Return_Quantity, Return_Reason. " +
	"Once added, the dashboard will show low-stock alerts, return % by product, and root-cause charts."

// AdviceContext is the read-only aggregate snapshot the rules run
// over. Columns is the lower-cased capability set of the dataset.
type AdviceContext struct {
	Columns    map[string]bool
	Channels   []models.GroupSummary
	TimesOfDay []models.GroupSummary
	Reps       []models.GroupSummary
}

// adviceRule is one independent heuristic: a precondition over the
// context plus a message builder. Rules contribute at most one line
// each and are evaluated in a fixed order.
type adviceRule struct {
	name  string
	build func(ctx *AdviceContext) (string, bool)
}

// AdvisorService turns aggregate summaries into short advisory
// strings. Each rule degrades silently when its columns are missing.
type AdvisorService struct {
	rules []adviceRule
}

// NewAdvisorService creates an AdvisorService with the built-in rule
// set: best channel, worst channel, peak selling window, sales-rep
// coaching, inventory data reminder.
func NewAdvisorService() *AdvisorService {
	return &AdvisorService{
		rules: []adviceRule{
			{name: "channel_best", build: bestChannelRule},
			{name: "channel_worst", build: worstChannelRule},
			{name: "peak_time_of_day", build: peakTimeOfDayRule},
			{name: "rep_coaching", build: repCoachingRule},
			{name: "inventory_note", build: inventoryNoteRule},
		},
	}
}

// Generate runs every rule in order and collects the messages of
// those whose preconditions hold.
func (s *AdvisorService) Generate(ctx *AdviceContext) []string {
	var recs []string
	for _, rule := range s.rules {
		if msg, ok := rule.build(ctx); ok {
			recs = append(recs, msg)
		}
	}
	return recs
}

func hasChannelData(ctx *AdviceContext) bool {
	return ctx.Columns["channel"] && ctx.Columns["revenue"] && len(ctx.Channels) > 0
}

// bestChannelRule names the channel with the highest revenue per
// conversion. Ties resolve to the first-seen channel.
func bestChannelRule(ctx *AdviceContext) (string, bool) {
	if !hasChannelData(ctx) {
		return "", false
	}
	best := SortByRevPerConv(ctx.Channels)[0]
	return fmt.Sprintf("Focus investment on %s - highest revenue per conversion (~%s).",
		best.Key, formatRatio(best.RevenuePerConversion)), true
}

// worstChannelRule names the channel with the lowest defined revenue
// per conversion. Channels with an undefined ratio (zero conversions)
// are never picked unless every ratio is undefined. With a tie the
// later-seen channel is "worst", so best and worst never collapse
// onto the same channel when two or more exist.
func worstChannelRule(ctx *AdviceContext) (string, bool) {
	if !hasChannelData(ctx) {
		return "", false
	}
	sorted := SortByRevPerConv(ctx.Channels)
	worst := sorted[len(sorted)-1]
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].RevenuePerConversion != nil {
			worst = sorted[i]
			break
		}
	}
	return fmt.Sprintf("Review or optimize %s - low revenue efficiency (~%s).",
		worst.Key, formatRatio(worst.RevenuePerConversion)), true
}

// peakTimeOfDayRule points at the time bucket with the highest summed
// revenue.
func peakTimeOfDayRule(ctx *AdviceContext) (string, bool) {
	if !ctx.Columns["time of day"] || !ctx.Columns["revenue"] || len(ctx.TimesOfDay) == 0 {
		return "", false
	}
	top := TopByRevenue(ctx.TimesOfDay, 1)[0]
	return fmt.Sprintf("Peak selling window: %s. Schedule paid promotions or flash deals in this window.",
		top.Key), true
}

// repCoachingRule lists up to three reps below the 25th-percentile
// revenue threshold, ascending. Silent when nobody is below it.
func repCoachingRule(ctx *AdviceContext) (string, bool) {
	if !ctx.Columns["sales rep"] || !ctx.Columns["revenue"] || len(ctx.Reps) == 0 {
		return "", false
	}
	low := BottomQuartileByRevenue(ctx.Reps, 3)
	if len(low) == 0 {
		return "", false
	}
	names := make([]string, len(low))
	for i, g := range low {
		names[i] = g.Key
	}
	return fmt.Sprintf("Consider targeted coaching for lower performers: %s.",
		strings.Join(names, ", ")), true
}

// inventoryNoteRule fires when none of the stock/returns column names
// appear in the upload, whatever the rows contain.
func inventoryNoteRule(ctx *AdviceContext) (string, bool) {
	for _, col := range inventoryColumns {
		if ctx.Columns[col] {
			return "", false
		}
	}
	return "Inventory & Returns data not present. For full campaign ROI and stock risk analysis, " +
		"include product-stock & returns fields.", true
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
