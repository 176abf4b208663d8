/*
handlers.go - HTTP handlers for the analytics endpoints

PURPOSE:
  Each handler follows the same shape: fetch the rows of the endpoint's
  dataset through the caching layer, run the report build, stamp the
  dataset name and cache timestamp into the meta block, and write the
  envelope. Failures from the dataset layer are classified into the
  contract's error codes; computation never partially succeeds.

ENDPOINTS:
  GET  /api/v1/health                 Liveness probe
  GET  /api/v1/dashboard/filters      Option lists, pre-aggregated set
  GET  /api/v1/dashboard/summary      KPI report, pre-aggregated set
  GET  /api/v1/analytics/filters      Option lists, row-level set
  GET  /api/v1/analytics/summary      KPI report, row-level set
  GET  /api/v1/analytics/deep-dive    Accuracy report, row-level set
  GET  /api/v1/scenarios              Demo scenario catalogue
  POST /api/v1/scenarios/load         Seed a demo scenario

SEE ALSO:
  - dto.go: Envelope writers
  - query.go: Parameter parsing
  - analytics/engine.go: Report builds
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/warp/sales-analytics/analytics"
	"github.com/warp/sales-analytics/dataset"
)

// Handler serves the analytics API over a cached row source.
type Handler struct {
	source dataset.RowSource

	// Dataset identifiers, one per schema family.
	dashboardDataset string
	analyticsDataset string

	// Demo scenario support; nil when the server runs against a real
	// provider.
	demo *dataset.Memory
}

// NewHandler builds a Handler over the given row source and dataset
// identifiers. demo may be nil.
func NewHandler(source dataset.RowSource, dashboardDataset, analyticsDataset string, demo *dataset.Memory) *Handler {
	return &Handler{
		source:           source,
		dashboardDataset: dashboardDataset,
		analyticsDataset: analyticsDataset,
		demo:             demo,
	}
}

// ============================================================================
// Health
// ============================================================================

// Version is reported by the health endpoint.
const Version = "1.0.0"

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, map[string]string{"status": "ok", "version": Version})
}

// ============================================================================
// Filter options
// ============================================================================

func (h *Handler) dashboardFilters(w http.ResponseWriter, r *http.Request) {
	h.filters(w, r, h.dashboardDataset, analytics.PreAggregated)
}

func (h *Handler) analyticsFilters(w http.ResponseWriter, r *http.Request) {
	h.filters(w, r, h.analyticsDataset, analytics.RowLevel)
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request, datasetID string, schema analytics.Schema) {
	rows, _, err := h.source.Get(r.Context(), datasetID)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	opts := analytics.BuildOptions(rows, schema, parseOptionFilter(r))
	writeSuccess(w, r, opts)
}

// ============================================================================
// Summaries
// ============================================================================

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	h.summary(w, r, h.dashboardDataset, analytics.PreAggregated)
}

func (h *Handler) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	h.summary(w, r, h.analyticsDataset, analytics.RowLevel)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request, datasetID string, schema analytics.Schema) {
	rows, fetchedAt, err := h.source.Get(r.Context(), datasetID)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	sum := analytics.BuildSummary(rows, schema, parseQuery(r), time.Now())
	sum.Meta.Dataset = datasetID
	sum.Meta.RefreshedAt = fetchedAt
	writeSuccess(w, r, sum)
}

// ============================================================================
// Deep dive
// ============================================================================

func (h *Handler) deepDive(w http.ResponseWriter, r *http.Request) {
	rows, fetchedAt, err := h.source.Get(r.Context(), h.analyticsDataset)
	if err != nil {
		writeProviderError(w, r, err)
		return
	}
	dd := analytics.BuildDeepDive(rows, parseQuery(r), time.Now())
	dd.Meta.Dataset = h.analyticsDataset
	dd.Meta.RefreshedAt = fetchedAt
	writeSuccess(w, r, dd)
}

// ============================================================================
// Scenarios
// ============================================================================

func (h *Handler) listScenarios(w http.ResponseWriter, r *http.Request) {
	if h.demo == nil {
		writeError(w, r, CodeNoResults, "scenario support is not enabled")
		return
	}
	writeSuccess(w, r, scenarioCatalogue())
}

func (h *Handler) loadScenario(w http.ResponseWriter, r *http.Request) {
	if h.demo == nil {
		writeError(w, r, CodeNoResults, "scenario support is not enabled")
		return
	}
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, CodeInternalError, "invalid request body: "+err.Error())
		return
	}
	sc, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, r, CodeNoResults, "unknown scenario: "+req.ScenarioID)
		return
	}
	sc.seed(h.demo, h.dashboardDataset, h.analyticsDataset)

	// Seeded data must be visible on the next request.
	if err := h.source.Invalidate(r.Context(), h.dashboardDataset); err != nil {
		writeError(w, r, CodeInternalError, err.Error())
		return
	}
	if err := h.source.Invalidate(r.Context(), h.analyticsDataset); err != nil {
		writeError(w, r, CodeInternalError, err.Error())
		return
	}
	writeSuccess(w, r, map[string]string{"loaded": sc.ID})
}
