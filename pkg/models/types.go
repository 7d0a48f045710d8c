package models

import (
	"strings"
	"time"
)

// Canonical column names the pipeline understands. Every one of them
// is optional; components check for presence and degrade per section.
const (
	ColDate         = "Date"
	ColTimeOfDay    = "Time of Day"
	ColChannel      = "Channel"
	ColRevenue      = "Revenue"
	ColAvgOrderSize = "Average Order Size"
	ColConversions  = "Conversions"
	ColCustomerType = "Customer Type"
	ColSalesRep     = "Sales Rep"
	ColBusiness     = "Business"
)

// Row is a single record of the uploaded file. Fields keeps the raw
// cell text per (trimmed) header name; Date is populated only when a
// Date column exists and the cell parsed.
type Row struct {
	Fields  map[string]string
	Date    time.Time
	HasDate bool
}

// Get returns the raw value for a column, "" if absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// Dataset is the parsed tabular input. Rows keep file order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contained the given column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnSet returns the capability set of present columns, keyed by
// lower-cased name. Derived features gate on membership here instead
// of re-scanning the header.
func (d *Dataset) ColumnSet() map[string]bool {
	set := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		set[strings.ToLower(c)] = true
	}
	return set
}

// DateRange returns the min/max parsed dates, ok=false when no row
// carries a date.
func (d *Dataset) DateRange() (time.Time, time.Time, bool) {
	var lo, hi time.Time
	found := false
	for _, r := range d.Rows {
		if !r.HasDate {
			continue
		}
		if !found || r.Date.Before(lo) {
			lo = r.Date
		}
		if !found || r.Date.After(hi) {
			hi = r.Date
		}
		found = true
	}
	return lo, hi, found
}

// FilterSpec narrows a dataset. Nil dates and empty sets impose no
// constraint, mirroring a "select all" multiselect.
type FilterSpec struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Channels      []string
	CustomerTypes []string
	Businesses    []string
}

// Metrics are the headline KPIs for one pipeline run. ConvRate is nil
// when the Conversions column is absent ("N/A" on screen).
type Metrics struct {
	Revenue  float64  `json:"revenue"`
	Orders   float64  `json:"orders"`
	AOV      float64  `json:"aov"`
	ConvRate *float64 `json:"conv_rate,omitempty"`
	Rows     int      `json:"rows"`
}

// GroupSummary is the aggregate for one distinct value of a grouping
// column. RevenuePerConversion is nil when the group recorded zero
// conversions. FirstSeen is the group's first row index and anchors
// deterministic tie-breaking downstream.
type GroupSummary struct {
	Key                  string   `json:"key"`
	Revenue              float64  `json:"revenue"`
	Conversions          float64  `json:"conversions"`
	AvgOrder             float64  `json:"avg_order"`
	RevenuePerConversion *float64 `json:"revenue_per_conversion,omitempty"`
	FirstSeen            int      `json:"-"`
}

// WeekBucket is one point of the weekly revenue trend, chronological.
type WeekBucket struct {
	WeekStart time.Time `json:"week_start"`
	Label     string    `json:"label"`
	Revenue   float64   `json:"revenue"`
}

// ReportData is the section data both report renderers consume. It is
// computed once so the flaky PDF backend and the always-working text
// backend cannot drift apart.
type ReportData struct {
	ReportID        string         `json:"report_id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Metrics         Metrics        `json:"metrics"`
	TopChannels     []GroupSummary `json:"top_channels"`
	TopReps         []GroupSummary `json:"top_reps"`
	Recommendations []string       `json:"recommendations"`
	Meta            string         `json:"meta"`
}

// SectionAvailability tells the UI which dashboard sections have the
// columns they need; absent sections render an informational prompt.
type SectionAvailability struct {
	Channels      bool `json:"channels"`
	WeeklyTrend   bool `json:"weekly_trend"`
	TimeOfDay     bool `json:"time_of_day"`
	SalesReps     bool `json:"sales_reps"`
	CustomerTypes bool `json:"customer_types"`
}

// FilterOptions lists the distinct values available per filterable
// dimension, for populating the filter widgets.
type FilterOptions struct {
	Channels      []string `json:"channels"`
	CustomerTypes []string `json:"customer_types"`
	Businesses    []string `json:"businesses"`
	MinDate       string   `json:"min_date,omitempty"`
	MaxDate       string   `json:"max_date,omitempty"`
}

// DashboardResponse is the full analyze payload: KPIs, every chart
// and table series, recommendations and report metadata in one shot.
type DashboardResponse struct {
	Success         bool                `json:"success"`
	Metrics         Metrics             `json:"metrics"`
	Channels        []GroupSummary      `json:"channels,omitempty"`
	WeeklyTrend     []WeekBucket        `json:"weekly_trend,omitempty"`
	TimeOfDay       []GroupSummary      `json:"time_of_day,omitempty"`
	SalesReps       []GroupSummary      `json:"sales_reps,omitempty"`
	CustomerTypes   []GroupSummary      `json:"customer_types,omitempty"`
	Recommendations []string            `json:"recommendations"`
	Sections        SectionAvailability `json:"sections"`
	FilterOptions   FilterOptions       `json:"filter_options"`
	Columns         []string            `json:"columns"`
	RowCount        int                 `json:"row_count"`
	Meta            string              `json:"meta"`
	InventoryNote   string              `json:"inventory_note"`
}
