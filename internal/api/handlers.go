package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/biomarker-insight-server/internal/charts"
	"github.com/biomarker-insight-server/internal/domain"
	"github.com/biomarker-insight-server/internal/history"
	"github.com/biomarker-insight-server/internal/ingest"
	"github.com/biomarker-insight-server/internal/repository"
	"github.com/biomarker-insight-server/internal/service"
)

// datasetSummary is the upload/load response: provenance plus the
// validator's advisory findings, never the full dataset.
type datasetSummary struct {
	Source      string                   `json:"source"`
	Generation  uint64                   `json:"generation"`
	Biomarkers  []string                 `json:"biomarkers"`
	PointCount  int                      `json:"point_count"`
	SkippedRows int                      `json:"skipped_rows"`
	Simulated   bool                     `json:"simulated"`
	Findings    []domain.ValidationError `json:"findings"`
}

func (s *Server) summarize(state service.DatasetState) datasetSummary {
	return datasetSummary{
		Source:      state.Source,
		Generation:  state.Generation,
		Biomarkers:  state.Dataset.Names(),
		PointCount:  state.Dataset.PointCount(),
		SkippedRows: state.SkippedRows,
		Simulated:   state.Simulated,
		Findings:    s.deps.Validator.Validate(state.Dataset),
	}
}

// handleUploadDataset ingests an uploaded file and replaces the
// current dataset.
func (s *Server) handleUploadDataset(c *gin.Context) {
	if s.cfg.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadSize)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, domain.NewParseError("missing file upload field", err))
		return
	}

	adapter, err := ingest.ForFile(fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, domain.NewIOError("failed to open upload", err))
		return
	}
	defer file.Close()

	result, err := adapter.Ingest(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}

	state := s.deps.Datasets.Replace(result)
	s.persistSnapshot(c, state)

	c.JSON(http.StatusCreated, s.summarize(state))
}

// handleLoadSample (re)loads the bundled sample dataset.
func (s *Server) handleLoadSample(c *gin.Context) {
	state, err := s.deps.Sample.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	s.persistSnapshot(c, state)

	c.JSON(http.StatusCreated, s.summarize(state))
}

// persistSnapshot stores the new dataset when snapshot persistence is
// configured. Failures are logged, never surfaced; persistence is a
// convenience, not part of the ingestion contract.
func (s *Server) persistSnapshot(c *gin.Context, state service.DatasetState) {
	if s.deps.Snapshots == nil {
		return
	}
	snapshot := &repository.Snapshot{
		Source:      state.Source,
		Generation:  state.Generation,
		Dataset:     state.Dataset,
		SkippedRows: state.SkippedRows,
		Simulated:   state.Simulated,
	}
	if err := s.deps.Snapshots.Create(c.Request.Context(), snapshot); err != nil {
		s.log.WithError(err).Warn("Failed to persist dataset snapshot")
	}
}

// handleGetDataset returns the current dataset with its provenance.
func (s *Server) handleGetDataset(c *gin.Context) {
	state := s.deps.Datasets.Current()
	if state.Empty() {
		abortWithError(c, http.StatusNotFound,
			domain.NewAppError(domain.ErrIO, "no dataset loaded", ""))
		return
	}
	c.JSON(http.StatusOK, state)
}

// handleValidateDataset returns the validator findings for the current
// dataset.
func (s *Server) handleValidateDataset(c *gin.Context) {
	state := s.deps.Datasets.Current()
	findings := s.deps.Validator.Validate(state.Dataset)
	c.JSON(http.StatusOK, gin.H{
		"generation": state.Generation,
		"findings":   findings,
		"valid":      len(findings) == 0,
	})
}

// biomarkerSummary is one entry in the biomarker listing.
type biomarkerSummary struct {
	Name       string           `json:"name"`
	Unit       string           `json:"unit,omitempty"`
	PointCount int              `json:"point_count"`
	Status     domain.BandLabel `json:"status"`
}

// handleListBiomarkers lists the biomarkers in the current dataset
// with their latest classification.
func (s *Server) handleListBiomarkers(c *gin.Context) {
	state := s.deps.Datasets.Current()

	summaries := make([]biomarkerSummary, 0, len(state.Dataset))
	for _, name := range state.Dataset.Names() {
		series := state.Dataset[name]
		summary := biomarkerSummary{
			Name:       name,
			PointCount: len(series),
			Status:     s.deps.Classifier.ClassifyLatest(name, series),
		}
		if entry, ok := domain.LookupRange(name); ok {
			summary.Unit = entry.Unit
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{
		"generation": state.Generation,
		"biomarkers": summaries,
	})
}

// handleBiomarkerTrend returns the two-point trend and the multi-point
// analysis for one biomarker. Both are null when the series is too
// short.
func (s *Server) handleBiomarkerTrend(c *gin.Context) {
	name := c.Param("name")
	series, ok := s.deps.Datasets.Series(name)
	if !ok {
		abortWithError(c, http.StatusNotFound,
			domain.NewAppError(domain.ErrIO, fmt.Sprintf("biomarker %q not in current dataset", name), ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"biomarker": name,
		"trend":     s.deps.Trends.Trend(series),
		"analysis":  s.deps.Trends.Analyze(name, series),
	})
}

// handleBiomarkerChart renders one biomarker's series as an HTML line
// chart.
func (s *Server) handleBiomarkerChart(c *gin.Context) {
	name := c.Param("name")
	series, ok := s.deps.Datasets.Series(name)
	if !ok {
		abortWithError(c, http.StatusNotFound,
			domain.NewAppError(domain.ErrIO, fmt.Sprintf("biomarker %q not in current dataset", name), ""))
		return
	}

	html, err := charts.RenderLine(name, series)
	if err != nil {
		respondError(c, domain.NewParseError("failed to render chart", err))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// classifyRequest is the body of POST /classify. Value is a pointer so
// a missing field is distinguishable from zero.
type classifyRequest struct {
	Biomarker string   `json:"biomarker" binding:"required"`
	Value     *float64 `json:"value" binding:"required"`
	ReadAt    string   `json:"read_at"`
}

// handleClassify classifies a single value and records the result in
// the history store when one is configured.
func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewParseError("invalid classify request", err))
		return
	}

	value := *req.Value
	status := s.deps.Classifier.Classify(req.Biomarker, value)

	unit := ""
	if entry, ok := domain.LookupRange(req.Biomarker); ok {
		unit = entry.Unit
	}

	if s.deps.History != nil && !math.IsNaN(value) {
		rec := &history.Record{
			Biomarker: req.Biomarker,
			Value:     value,
			Unit:      unit,
			Status:    status,
			ReadAt:    req.ReadAt,
			Source:    "api",
		}
		if err := s.deps.History.Save(c.Request.Context(), rec); err != nil {
			s.log.WithError(err).Warn("Failed to record classification")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"biomarker": req.Biomarker,
		"value":     value,
		"unit":      unit,
		"status":    status,
		"plausible": domain.Plausible(req.Biomarker, value),
	})
}

// handleReport returns the insight report for the current dataset,
// cached per generation.
func (s *Server) handleReport(c *gin.Context) {
	state := s.deps.Datasets.Current()
	if state.Empty() {
		abortWithError(c, http.StatusNotFound,
			domain.NewAppError(domain.ErrIO, "no dataset loaded", ""))
		return
	}

	cacheKey := fmt.Sprintf("report:%d", state.Generation)
	if s.deps.Cache != nil {
		if blob, ok, err := s.deps.Cache.Get(c.Request.Context(), cacheKey); err == nil && ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", blob)
			return
		}
	}

	report := s.deps.Reports.Generate(state)

	if s.deps.Cache != nil {
		if blob, err := json.Marshal(report); err == nil {
			if err := s.deps.Cache.Set(c.Request.Context(), cacheKey, blob); err != nil {
				s.log.WithError(err).Debug("Failed to cache report")
			}
		}
	}

	c.JSON(http.StatusOK, report)
}

// handleRanges returns the full clinical range table.
func (s *Server) handleRanges(c *gin.Context) {
	ranges := make(map[string]domain.RangeEntry, len(domain.RangeTableNames()))
	for _, name := range domain.RangeTableNames() {
		entry, _ := domain.LookupRange(name)
		ranges[name] = entry
	}
	c.JSON(http.StatusOK, gin.H{"ranges": ranges})
}

// handleExportCSV renders the current dataset as a downloadable CSV.
func (s *Server) handleExportCSV(c *gin.Context) {
	state := s.deps.Datasets.Current()
	if state.Empty() {
		abortWithError(c, http.StatusNotFound,
			domain.NewAppError(domain.ErrIO, "no dataset loaded", ""))
		return
	}

	out, err := s.deps.Exporter.CSV(state.Dataset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="biomarkers.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", out)
}

// handleHistory lists stored classification records.
func (s *Server) handleHistory(c *gin.Context) {
	if s.deps.History == nil {
		abortWithError(c, http.StatusNotImplemented,
			domain.NewAppError(domain.ErrDatabase, "history store is not configured", ""))
		return
	}

	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	var (
		records []*history.Record
		err     error
	)
	if biomarker := c.Query("biomarker"); biomarker != "" {
		records, err = s.deps.History.ListByBiomarker(c.Request.Context(), biomarker, limit)
	} else {
		records, err = s.deps.History.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		respondError(c, domain.NewAppError(domain.ErrDatabase, "failed to list history", err.Error()))
		return
	}

	if records == nil {
		records = []*history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// handleListSnapshots lists persisted dataset snapshots.
func (s *Server) handleListSnapshots(c *gin.Context) {
	if s.deps.Snapshots == nil {
		abortWithError(c, http.StatusNotImplemented,
			domain.NewAppError(domain.ErrDatabase, "snapshot persistence is not configured", ""))
		return
	}

	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	snapshots, err := s.deps.Snapshots.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, domain.NewAppError(domain.ErrDatabase, "failed to list snapshots", err.Error()))
		return
	}

	if snapshots == nil {
		snapshots = []*repository.Snapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// handleWebSocket upgrades the connection and registers it with the
// hub for dataset-replaced notifications.
func (s *Server) handleWebSocket(c *gin.Context) {
	if err := s.hub.Serve(c.Writer, c.Request); err != nil {
		s.log.WithFields(logrus.Fields{"error": err.Error()}).Warn("WebSocket upgrade failed")
	}
}
