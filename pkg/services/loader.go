package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"sales-dashboard-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006/1/2",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
}

// LoaderService turns an uploaded file into a Dataset. It keeps a
// single-slot parse cache keyed by content hash, so re-analyzing the
// same upload (filter changes) skips the parse entirely. The slot is
// replaced wholesale when a different file arrives.
type LoaderService struct {
	mu       sync.Mutex
	cacheKey string
	cached   *models.Dataset
}

// NewLoaderService creates a new LoaderService.
func NewLoaderService() *LoaderService {
	return &LoaderService{}
}

// Load parses file bytes into a Dataset. The filename is used only to
// pick the parser: .xls/.xlsx goes through excelize, everything else
// is read as delimited text. A parse failure yields no dataset.
func (s *LoaderService) Load(data []byte, filename string) (*models.Dataset, error) {
	key := hashBytes(data)

	s.mu.Lock()
	if s.cacheKey == key && s.cached != nil {
		ds := s.cached
		s.mu.Unlock()
		log.Printf("[loader] parse cache hit for %s (%d rows)", filename, len(ds.Rows))
		return ds, nil
	}
	s.mu.Unlock()

	rows, err := parseRaw(data, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file %s has no header row", filename)
	}

	ds := buildDataset(rows)
	log.Printf("[loader] parsed %s: %d columns, %d rows", filename, len(ds.Columns), len(ds.Rows))

	s.mu.Lock()
	s.cacheKey = key
	s.cached = ds
	s.mu.Unlock()

	return ds, nil
}

// parseRaw reads the file into header+cells without interpretation.
func parseRaw(data []byte, filename string) ([][]string, error) {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".xlsx") {
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("could not read spreadsheet %s: %w", filename, err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("could not read sheet rows of %s: %w", filename, err)
		}
		return rows, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", filename, err)
	}
	return rows, nil
}

// buildDataset assembles rows into the column-keyed Dataset. Header
// cells are trimmed; empty headers and duplicates after the first are
// skipped. When a Date column exists its values are parsed up front;
// unparseable dates stay in the dataset as "missing date" rows.
func buildDataset(raw [][]string) *models.Dataset {
	header := raw[0]
	type colRef struct {
		name string
		idx  int
	}
	var cols []colRef
	seen := make(map[string]bool)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, colRef{name: name, idx: i})
	}

	ds := &models.Dataset{}
	for _, c := range cols {
		ds.Columns = append(ds.Columns, c.name)
	}

	hasDateCol := ds.HasColumn(models.ColDate)
	for _, cells := range raw[1:] {
		row := models.Row{Fields: make(map[string]string, len(cols))}
		for _, c := range cols {
			if c.idx < len(cells) {
				row.Fields[c.name] = strings.TrimSpace(cells[c.idx])
			}
		}
		if hasDateCol {
			if t, ok := parseDate(row.Fields[models.ColDate]); ok {
				row.Date = t
				row.HasDate = true
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FilterOptions collects the distinct values of each filterable
// dimension plus the observed date span, for the filter widgets.
func (s *LoaderService) FilterOptions(ds *models.Dataset) models.FilterOptions {
	opts := models.FilterOptions{
		Channels:      distinctValues(ds, models.ColChannel),
		CustomerTypes: distinctValues(ds, models.ColCustomerType),
		Businesses:    distinctValues(ds, models.ColBusiness),
	}
	if lo, hi, ok := ds.DateRange(); ok {
		opts.MinDate = lo.Format("2006-01-02")
		opts.MaxDate = hi.Format("2006-01-02")
	}
	return opts
}

func distinctValues(ds *models.Dataset, column string) []string {
	if !ds.HasColumn(column) {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, row := range ds.Rows {
		v := row.Get(column)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
