/*
handlers.go - HTTP API handlers for the cash flow projection engine

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the cashflow package.

ENDPOINTS:
  Control:
    GET    /api/control                 Control key/value map
    PUT    /api/control                 Merge keys into the control map

  Definitions:
    GET    /api/definitions             List definitions in configured order
    POST   /api/definitions             Create or replace a definition
    GET    /api/definitions/{id}        Get one definition
    DELETE /api/definitions/{id}        Delete a definition

  Projection:
    GET    /api/projection              Stamped timeline (?start=&end=)
    GET    /api/projection/production   Production curve
    GET    /api/projection/pools        Per-class pools
    GET    /api/goal                    Goal scenarios (?goal_date=)

  Scenarios:
    GET    /api/scenarios               List demo scenarios
    GET    /api/scenarios/current       Currently loaded scenario
    POST   /api/scenarios/load          Load a demo scenario
    POST   /api/scenarios/reset         Clear control and definitions

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: control map and definitions
  - Projector: runs the pipeline; its memoized calendar is shared across
    requests
  - Metrics: Prometheus collectors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: cashflow.IsClientError (bad control, bad definition, bad range)
  - 404: cashflow.IsNotFound
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/report"
	"github.com/warp/cashflow-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Projector *cashflow.Projector
	Factory   *factory.DefinitionFactory
	Metrics   *Metrics
	Log       zerolog.Logger

	// Today anchors demo scenarios; cashflow.Today when nil.
	Today func() cashflow.Date

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and projector.
func NewHandler(store *sqlite.Store, projector *cashflow.Projector, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:     store,
		Projector: projector,
		Factory:   factory.NewDefinitionFactory(),
		Metrics:   NewMetrics(),
		Log:       logger.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// CONTROL HANDLERS
// =============================================================================

// GetControl returns the raw control map.
// GET /api/control
func (h *Handler) GetControl(w http.ResponseWriter, r *http.Request) {
	kv, err := h.Store.ControlMap(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load control", err)
		return
	}
	writeJSON(w, http.StatusOK, kv)
}

// PutControl merges the body into the control map. The merged map must
// parse; otherwise nothing is written.
// PUT /api/control
func (h *Handler) PutControl(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	merged, err := h.Store.ControlMap(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load control", err)
		return
	}
	for k, v := range body {
		merged[k] = v
		if v == "" {
			delete(merged, k)
		}
	}
	if _, err := cashflow.ParseControl(merged); err != nil {
		h.writeDomainError(w, "Invalid control parameters", err)
		return
	}

	if err := h.Store.SetControl(ctx, body); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save control", err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// =============================================================================
// DEFINITION HANDLERS
// =============================================================================

// ListDefinitions returns all definitions in configured order.
// GET /api/definitions
func (h *Handler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Store.ListDefinitions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list definitions", err)
		return
	}

	dtos := make([]factory.DefinitionJSON, len(defs))
	for i, def := range defs {
		dtos[i] = factory.ToJSON(def)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDefinition validates and stores a definition. A body carrying an
// existing ID replaces that definition in place.
// POST /api/definitions
func (h *Handler) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var dj factory.DefinitionJSON
	if err := json.NewDecoder(r.Body).Decode(&dj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	def, err := h.Factory.FromJSON(dj)
	if err != nil {
		h.writeDomainError(w, "Invalid definition", err)
		return
	}

	saved, err := h.Store.SaveDefinition(r.Context(), def)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save definition", err)
		return
	}
	h.Metrics.DefinitionWrites.WithLabelValues("save").Inc()
	writeJSON(w, http.StatusCreated, factory.ToJSON(saved))
}

// GetDefinition returns one definition.
// GET /api/definitions/{id}
func (h *Handler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	def, err := h.Store.GetDefinition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to get definition", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToJSON(def))
}

// DeleteDefinition removes one definition.
// DELETE /api/definitions/{id}
func (h *Handler) DeleteDefinition(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteDefinition(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete definition", err)
		return
	}
	h.Metrics.DefinitionWrites.WithLabelValues("delete").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetProjection runs the pipeline and returns the stamped timeline.
// Without start/end it projects the control horizon.
// GET /api/projection?start=2025-01-01&end=2025-07-01
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	projection, err := h.project(r, "projection")
	if err != nil {
		h.writeDomainError(w, "Projection failed", err)
		return
	}

	dto := ProjectionDTO{
		Start:     projection.Period.Start.String(),
		End:       projection.Period.End.String(),
		State:     stateDTO(projection.State),
		Instances: toInstanceDTOs(projection.Instances),
	}
	if spare, ok := projection.SpareCapital(); ok {
		s := spare.StringFixed(2)
		dto.SpareCapital = &s
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetProduction returns the production curve with days between points.
// GET /api/projection/production
func (h *Handler) GetProduction(w http.ResponseWriter, r *http.Request) {
	projection, err := h.project(r, "production")
	if err != nil {
		h.writeDomainError(w, "Projection failed", err)
		return
	}

	points := projection.ProductionPoints()
	lines := report.ProductionLines(points, projection.Control.Now)
	dtos := make([]ProductionPointDTO, len(points))
	prev := projection.Control.Now
	for i, p := range points {
		dtos[i] = ProductionPointDTO{
			Date:      p.Date.String(),
			Name:      p.Name,
			Wiggle:    p.Wiggle().StringFixed(2),
			DaysLater: cashflow.DaysBetween(prev, p.Date),
			Line:      lines[i],
		}
		prev = p.Date
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPools returns the ALL pool and one pool per class.
// GET /api/projection/pools?instances=true
func (h *Handler) GetPools(w http.ResponseWriter, r *http.Request) {
	projection, err := h.project(r, "pools")
	if err != nil {
		h.writeDomainError(w, "Projection failed", err)
		return
	}

	withInstances := r.URL.Query().Get("instances") == "true"
	pools, err := projection.Pools()
	if err != nil {
		h.writeDomainError(w, "Pool projection failed", err)
		return
	}
	dtos := make([]PoolDTO, len(pools))
	for i, p := range pools {
		dtos[i] = PoolDTO{Name: p.Name, Count: len(p.Instances), State: stateDTO(p.State)}
		if withInstances {
			dtos[i].Instances = toInstanceDTOs(p.Instances)
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetGoal values the standard goal scenarios. goal_date overrides the
// GOAL_DATE control key.
// GET /api/goal?goal_date=2030-01-01
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := time.Now()

	control, defs, err := cashflow.LoadInputs(ctx, h.Store)
	if err != nil {
		h.writeDomainError(w, "Failed to load inputs", err)
		return
	}

	goalDate := control.Goal.Date
	if s := r.URL.Query().Get("goal_date"); s != "" {
		if goalDate, err = cashflow.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid goal_date", err)
			return
		}
	}
	if goalDate.IsZero() {
		writeError(w, http.StatusBadRequest, "No goal date", &cashflow.ControlError{Key: cashflow.KeyGoalDate})
		return
	}

	results, err := h.Projector.ProjectGoal(control, defs, goalDate, nil)
	h.Metrics.ObserveProjection("goal", started, err)
	if err != nil {
		h.writeDomainError(w, "Goal projection failed", err)
		return
	}

	dto := GoalDTO{GoalDate: goalDate.String(), GoalValue: control.Goal.Value.StringFixed(2)}
	for _, res := range results {
		dto.Results = append(dto.Results, GoalResultDTO{
			Scenario:        res.Scenario.Name,
			ProductionYield: res.Scenario.ProductionYield,
			Value:           res.Value.StringFixed(2),
			Progress:        res.Progress.StringFixed(1),
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// project loads inputs and runs the pipeline over the requested period.
func (h *Handler) project(r *http.Request, endpoint string) (*cashflow.Projection, error) {
	ctx := r.Context()
	started := time.Now()

	projection, err := h.runProjection(ctx, r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	h.Metrics.ObserveProjection(endpoint, started, err)
	if err != nil {
		h.Log.Warn().Err(err).Str("endpoint", endpoint).Msg("projection failed")
		return nil, err
	}

	h.Metrics.TimelineInstances.Set(float64(len(projection.Instances)))
	if spare, ok := projection.SpareCapital(); ok {
		h.Metrics.SpareCapital.Set(spare.InexactFloat64())
	}
	h.Log.Debug().
		Str("endpoint", endpoint).
		Int("instances", len(projection.Instances)).
		Dur("took", time.Since(started)).
		Msg("projection complete")
	return projection, nil
}

func (h *Handler) runProjection(ctx context.Context, start, end string) (*cashflow.Projection, error) {
	control, defs, err := cashflow.LoadInputs(ctx, h.Store)
	if err != nil {
		return nil, err
	}

	period := control.Horizon()
	if start != "" {
		if period.Start, err = parseQueryDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if period.End, err = parseQueryDate(end); err != nil {
			return nil, err
		}
	}
	return h.Projector.Project(control, defs, period)
}

func parseQueryDate(s string) (cashflow.Date, error) {
	d, err := cashflow.ParseDate(s)
	if err != nil {
		return cashflow.Date{}, &cashflow.ParseError{Input: s, Err: err}
	}
	return d, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps cashflow errors to 400/404/500.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case cashflow.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case cashflow.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
