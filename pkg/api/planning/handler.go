package planning

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"wealth_planner/pkg/core/assumption"
	"wealth_planner/pkg/core/calc"
	"wealth_planner/pkg/core/classify"
	"wealth_planner/pkg/core/logger"
	"wealth_planner/pkg/core/pipeline"
	"wealth_planner/pkg/core/projection"
	"wealth_planner/pkg/core/report"
	"wealth_planner/pkg/core/store"
	"wealth_planner/pkg/core/validate"
	"wealth_planner/pkg/models"
)

// maxBodyBytes bounds uploaded balance sheets.
const maxBodyBytes = 4 << 20

// ProjectionRequest is the body of POST /api/projection. Items are raw
// balance-sheet records and go through the lenient normalizer.
type ProjectionRequest struct {
	Items       json.RawMessage         `json:"items"`
	Assumptions *projection.Assumptions `json:"assumptions,omitempty"`
	Highlight   map[string]bool         `json:"highlight,omitempty"`
	Adjustment  float64                 `json:"adjustment,omitempty"`
}

type ProjectionResponse struct {
	Items       []models.BalanceSheetItem `json:"items"`
	Assumptions projection.Assumptions    `json:"assumptions"`
	Rows        []models.ProjectionRow    `json:"rows"`
	Totals      *models.Totals            `json:"totals"`
}

// Handler holds dependencies for planning endpoints
type Handler struct {
	Store    store.ItemStore
	Engine   projection.Projector
	Defaults projection.Assumptions

	orchestrator *pipeline.Orchestrator
}

// NewHandler creates a new planning handler
func NewHandler(s store.ItemStore, engine projection.Projector, defaults projection.Assumptions) *Handler {
	if engine == nil {
		engine = projection.NewEngine()
	}
	return &Handler{
		Store:        s,
		Engine:       engine,
		Defaults:     defaults,
		orchestrator: pipeline.NewOrchestrator(s, engine),
	}
}

// Routes mounts every planning endpoint under /api.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/kinds", h.HandleKinds)
	r.Post("/api/projection", h.HandleProjection)
	r.Post("/api/validate", h.HandleValidate)
	r.Get("/api/assumptions", h.HandleDefaults)
	r.Route("/api/teams/{team}/clients/{client}", func(r chi.Router) {
		r.Get("/balance-sheet", h.HandleGetBalanceSheet)
		r.Put("/balance-sheet", h.HandlePutBalanceSheet)
		r.Get("/projection", h.HandleClientProjection)
		r.Post("/scenarios", h.HandleScenarios)
	})
}

// HandleKinds lists the kind catalog.
func (h *Handler) HandleKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classify.CanonicalKinds())
}

// HandleProjection projects an ad-hoc balance sheet without persisting it.
func (h *Handler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req ProjectionRequest
	if err := classify.SmartDecode(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	items, err := classify.NormalizeJSON(req.Items)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid items: %v", err), http.StatusBadRequest)
		return
	}

	a := h.Defaults
	if req.Assumptions != nil {
		a = *req.Assumptions
	}
	writeJSON(w, http.StatusOK, h.project(items, a, req.Highlight, req.Adjustment))
}

// HandleDefaults returns the assumptions applied when a request omits them.
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Defaults.Sanitized())
}

// HandleValidate reports advisory issues for an ad-hoc balance sheet and
// its assumptions. It takes the same body as HandleProjection.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req ProjectionRequest
	if err := classify.SmartDecode(body, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	items, err := classify.NormalizeJSON(req.Items)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid items: %v", err), http.StatusBadRequest)
		return
	}

	a := h.Defaults
	if req.Assumptions != nil {
		a = *req.Assumptions
	}
	issues := append(validate.Items(items), validate.Assumptions(items, a)...)
	if issues == nil {
		issues = []validate.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// HandleGetBalanceSheet returns a client's stored items.
func (h *Handler) HandleGetBalanceSheet(w http.ResponseWriter, r *http.Request) {
	items, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandlePutBalanceSheet replaces a client's items. The normalized items,
// with local ids for the editor, are echoed back.
func (h *Handler) HandlePutBalanceSheet(w http.ResponseWriter, r *http.Request) {
	team, client := chi.URLParam(r, "team"), chi.URLParam(r, "client")
	log := logger.FromContext(r.Context())

	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	items, err := classify.NormalizeJSON(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid items: %v", err), http.StatusBadRequest)
		return
	}

	// Assign ids here so the response carries the keys later requests use.
	items = store.AssignIDs(items)
	if err := h.Store.Save(r.Context(), team, client, items); err != nil {
		log.Error("failed to save balance sheet", "team", team, "client", client, "error", err)
		http.Error(w, "Failed to save balance sheet", http.StatusInternalServerError)
		return
	}
	log.Info("balance sheet saved", "team", team, "client", client, "items", len(items))
	writeJSON(w, http.StatusOK, items)
}

// HandleClientProjection projects a stored balance sheet. Assumptions come
// from the query string (years, growth, inflation, real, mode.<key>,
// growth.<key>, highlight.<key>, adjustment); format selects json
// (default), markdown, html or xlsx.
func (h *Handler) HandleClientProjection(w http.ResponseWriter, r *http.Request) {
	items, ok := h.load(w, r)
	if !ok {
		return
	}

	q, err := parseQuery(r, h.Defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := h.project(items, q.assumptions, q.highlight, q.adjustment)
	title := fmt.Sprintf("Projection for %s", chi.URLParam(r, "client"))
	rep := report.New(title, resp.Assumptions, resp.Rows, resp.Totals)

	switch q.format {
	case "", "json":
		writeJSON(w, http.StatusOK, resp)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, rep.Markdown())
	case "html":
		html, err := rep.HTML()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, html)
	case "xlsx":
		var buf bytes.Buffer
		if err := rep.WriteXLSX(&buf); err != nil {
			logger.FromContext(r.Context()).Error("failed to build workbook", "error", err)
			http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="projection.xlsx"`)
		w.Write(buf.Bytes())
	default:
		http.Error(w, fmt.Sprintf("Unknown format: %s", q.format), http.StatusBadRequest)
	}
}

// HandleScenarios runs a stored balance sheet through every scenario in the
// posted scenario set. A missing base scenario uses the service defaults.
func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	team, client := chi.URLParam(r, "team"), chi.URLParam(r, "client")

	body, err := readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	set, err := assumption.FromJSONWithBase(body, h.Defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.orchestrator.RunForClient(r.Context(), team, client, set)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("No balance sheet for client %s", client), http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("scenario run failed", "team", team, "client", client, "error", err)
		http.Error(w, "Failed to run scenarios", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) project(items []models.BalanceSheetItem, a projection.Assumptions, highlight map[string]bool, adjustment float64) ProjectionResponse {
	a = a.Sanitized()
	rows := h.Engine.Project(items, a)
	totals := calc.Aggregate(rows, &calc.AggregateParams{
		Highlight:            highlight,
		Years:                a.Years,
		InflationRatePercent: a.InflationRatePercent,
		Adjustment:           adjustment,
	})
	return ProjectionResponse{Items: items, Assumptions: a, Rows: rows, Totals: totals}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]models.BalanceSheetItem, bool) {
	team, client := chi.URLParam(r, "team"), chi.URLParam(r, "client")

	items, err := h.Store.Load(r.Context(), team, client)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, fmt.Sprintf("No balance sheet for client %s", client), http.StatusNotFound)
			return nil, false
		}
		logger.FromContext(r.Context()).Error("failed to load balance sheet", "team", team, "client", client, "error", err)
		http.Error(w, "Failed to load balance sheet", http.StatusInternalServerError)
		return nil, false
	}
	return items, true
}

type projectionQuery struct {
	assumptions projection.Assumptions
	highlight   map[string]bool
	adjustment  float64
	format      string
}

func parseQuery(r *http.Request, defaults projection.Assumptions) (projectionQuery, error) {
	values := r.URL.Query()
	q := projectionQuery{assumptions: defaults, format: strings.ToLower(values.Get("format"))}
	a := &q.assumptions

	if v := values.Get("years"); v != "" {
		years, err := strconv.Atoi(v)
		if err != nil {
			return q, fmt.Errorf("invalid years: %q", v)
		}
		a.Years = years
	}
	for key, dst := range map[string]*float64{
		"growth":     &a.GrowthRatePercent,
		"inflation":  &a.InflationRatePercent,
		"adjustment": &q.adjustment,
	} {
		if v := values.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return q, fmt.Errorf("invalid %s: %q", key, v)
			}
			*dst = f
		}
	}
	if v := values.Get("real"); v != "" {
		realTerms, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid real: %q", v)
		}
		a.RealTerms = realTerms
	}

	// Per-item entries use dotted keys: mode.<item>=rent, growth.<item>=3.
	// Copy-on-write keeps the shared defaults untouched.
	for key, vs := range values {
		prefix, item, ok := strings.Cut(key, ".")
		if !ok || item == "" || len(vs) == 0 {
			continue
		}
		v := vs[0]
		switch prefix {
		case "mode":
			modes := make(map[string]models.PropertyMode, len(a.ModeOverrides)+1)
			for k, m := range a.ModeOverrides {
				modes[k] = m
			}
			modes[item] = models.PropertyMode(strings.ToLower(v))
			a.ModeOverrides = modes
		case "growth":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return q, fmt.Errorf("invalid %s: %q", key, v)
			}
			overrides := make(map[string]projection.ItemAssumption, len(a.AssumptionOverrides)+1)
			for k, o := range a.AssumptionOverrides {
				overrides[k] = o
			}
			overrides[item] = projection.ItemAssumption{GrowthRatePercent: &f}
			a.AssumptionOverrides = overrides
		case "highlight":
			on, err := strconv.ParseBool(v)
			if err != nil {
				return q, fmt.Errorf("invalid %s: %q", key, v)
			}
			if q.highlight == nil {
				q.highlight = make(map[string]bool)
			}
			q.highlight[item] = on
		}
	}
	return q, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
