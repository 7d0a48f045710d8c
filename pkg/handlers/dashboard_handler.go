package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"sales-dashboard-api/pkg/models"
	"sales-dashboard-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DashboardHandler runs the full analytics pipeline for one request:
// load, filter, metrics, aggregates, recommendations, report.
type DashboardHandler struct {
	loader         *services.LoaderService
	filter         *services.FilterService
	metrics        *services.MetricsService
	aggregator     *services.AggregatorService
	advisor        *services.AdvisorService
	reports        *services.ReportService
	maxUploadBytes int64
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	loader *services.LoaderService,
	filter *services.FilterService,
	metrics *services.MetricsService,
	aggregator *services.AggregatorService,
	advisor *services.AdvisorService,
	reports *services.ReportService,
	maxUploadMB int64,
) *DashboardHandler {
	return &DashboardHandler{
		loader:         loader,
		filter:         filter,
		metrics:        metrics,
		aggregator:     aggregator,
		advisor:        advisor,
		reports:        reports,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// pipelineResult carries everything one run derived, shared by the
// analyze endpoint and both report downloads.
type pipelineResult struct {
	full     *models.Dataset
	filtered *models.Dataset
	metrics  models.Metrics
	channels []models.GroupSummary
	tod      []models.GroupSummary
	reps     []models.GroupSummary
	custs    []models.GroupSummary
	weekly   []models.WeekBucket
	recs     []string
	meta     string
}

// runPipeline reads the multipart upload and filter fields, then runs
// every stage. On failure it writes the error response itself and
// returns ok=false.
func (h *DashboardHandler) runPipeline(c *gin.Context) (*pipelineResult, bool) {
	// FormFile parses the multipart form itself; the size cap is
	// enforced below on the file body.
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "no file uploaded; attach a sales export as 'file'",
		})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "could not read upload"})
		return nil, false
	}
	if int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error":   fmt.Sprintf("upload exceeds the %dMB limit", h.maxUploadBytes>>20),
		})
		return nil, false
	}

	start := time.Now()
	ds, err := h.loader.Load(data, fileHeader.Filename)
	if err != nil {
		log.Printf("[dashboard] could not read %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Could not read file: %v", err),
		})
		return nil, false
	}

	spec := models.FilterSpec{
		StartDate:     parseDateParam(c.PostForm("start_date")),
		EndDate:       parseDateParam(c.PostForm("end_date")),
		Channels:      cleanSelection(c.PostFormArray("channel")),
		CustomerTypes: cleanSelection(c.PostFormArray("customer_type")),
		Businesses:    cleanSelection(c.PostFormArray("business")),
	}
	filtered := h.filter.Apply(ds, spec)

	res := &pipelineResult{
		full:     ds,
		filtered: filtered,
		metrics:  h.metrics.Compute(filtered),
	}

	if filtered.HasColumn(models.ColChannel) {
		res.channels = h.aggregator.GroupBy(filtered, models.ColChannel)
	}
	if filtered.HasColumn(models.ColTimeOfDay) {
		res.tod = h.aggregator.GroupBy(filtered, models.ColTimeOfDay)
	}
	if filtered.HasColumn(models.ColSalesRep) {
		res.reps = h.aggregator.GroupBy(filtered, models.ColSalesRep)
	}
	if filtered.HasColumn(models.ColCustomerType) {
		res.custs = h.aggregator.GroupBy(filtered, models.ColCustomerType)
	}
	res.weekly = h.aggregator.WeeklyRevenue(filtered)

	res.recs = h.advisor.Generate(&services.AdviceContext{
		Columns:    filtered.ColumnSet(),
		Channels:   res.channels,
		TimesOfDay: res.tod,
		Reps:       res.reps,
	})
	res.meta = h.reports.BuildMeta(filtered)

	log.Printf("[dashboard] pipeline run: %d/%d rows after filters, %d recommendations, took %v",
		len(filtered.Rows), len(ds.Rows), len(res.recs), time.Since(start))
	return res, true
}

// Analyze is the main dashboard endpoint: upload + filters in, every
// KPI, chart series, table and recommendation out.
func (h *DashboardHandler) Analyze(c *gin.Context) {
	res, ok := h.runPipeline(c)
	if !ok {
		return
	}

	cols := res.filtered.ColumnSet()
	resp := models.DashboardResponse{
		Success:         true,
		Metrics:         res.metrics,
		Channels:        services.TopByRevenue(res.channels, 0),
		WeeklyTrend:     res.weekly,
		TimeOfDay:       services.TopByRevenue(res.tod, 0),
		SalesReps:       services.TopByRevenue(res.reps, 10),
		CustomerTypes:   res.custs,
		Recommendations: res.recs,
		Sections: models.SectionAvailability{
			Channels:      cols["channel"],
			WeeklyTrend:   cols["date"],
			TimeOfDay:     cols["time of day"],
			SalesReps:     cols["sales rep"] && cols["revenue"],
			CustomerTypes: cols["customer type"],
		},
		FilterOptions: h.loader.FilterOptions(res.full),
		Columns:       res.filtered.Columns,
		RowCount:      len(res.filtered.Rows),
		Meta:          res.meta,
		InventoryNote: services.InventoryIntegrationNote,
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []string{}
	}

	c.JSON(http.StatusOK, resp)
}

// DownloadTextReport streams the plain-text executive summary.
func (h *DashboardHandler) DownloadTextReport(c *gin.Context) {
	res, ok := h.runPipeline(c)
	if !ok {
		return
	}

	rd := h.buildReportData(res)
	text := h.reports.RenderText(rd)

	c.Header("Content-Disposition", `attachment; filename="executive_summary.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// DownloadPDFReport streams the PDF executive summary. A renderer
// failure answers 503 with the error text so the client can disable
// its download control; the text report remains the fallback.
func (h *DashboardHandler) DownloadPDFReport(c *gin.Context) {
	res, ok := h.runPipeline(c)
	if !ok {
		return
	}

	rd := h.buildReportData(res)
	pdfBytes, err := h.reports.RenderPDF(rd)
	if err != nil {
		log.Printf("[dashboard] pdf unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":       false,
			"pdf_available": false,
			"error":         err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="executive_summary.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (h *DashboardHandler) buildReportData(res *pipelineResult) models.ReportData {
	return h.reports.BuildReportData(
		res.metrics,
		services.TopByRevenue(res.channels, 5),
		services.TopByRevenue(res.reps, 5),
		res.recs,
		res.meta,
	)
}
