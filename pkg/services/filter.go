package services

import (
	"sales-dashboard-api/pkg/models"
)

// FilterService narrows a dataset to the rows matching a FilterSpec.
// Dimensions combine with AND; values inside one dimension are set
// membership. An absent dimension or an empty selection passes every
// row through, so "select all" never zeroes the dataset.
type FilterService struct{}

// NewFilterService creates a new FilterService.
func NewFilterService() *FilterService {
	return &FilterService{}
}

// Apply returns a new Dataset containing the matching rows. The input
// dataset is never mutated; rows are shared, not copied.
func (s *FilterService) Apply(ds *models.Dataset, spec models.FilterSpec) *models.Dataset {
	out := &models.Dataset{Columns: ds.Columns}

	channels := toSet(spec.Channels)
	custTypes := toSet(spec.CustomerTypes)
	businesses := toSet(spec.Businesses)
	filterDates := ds.HasColumn(models.ColDate)

	for _, row := range ds.Rows {
		if filterDates && !matchesDate(row, spec) {
			continue
		}
		if !matchesSet(row, models.ColChannel, channels) {
			continue
		}
		if !matchesSet(row, models.ColCustomerType, custTypes) {
			continue
		}
		if !matchesSet(row, models.ColBusiness, businesses) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// matchesDate checks the inclusive date range. Rows without a parsed
// date fail an active date constraint; they only survive when no
// range is set. The caller skips this check entirely for datasets
// with no date column, so a range never zeroes an undated dataset.
func matchesDate(row models.Row, spec models.FilterSpec) bool {
	if spec.StartDate == nil && spec.EndDate == nil {
		return true
	}
	if !row.HasDate {
		return false
	}
	if spec.StartDate != nil && row.Date.Before(*spec.StartDate) {
		return false
	}
	if spec.EndDate != nil && row.Date.After(*spec.EndDate) {
		return false
	}
	return true
}

func matchesSet(row models.Row, column string, selected map[string]bool) bool {
	if len(selected) == 0 {
		return true
	}
	return selected[row.Get(column)]
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
