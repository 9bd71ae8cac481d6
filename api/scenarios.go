/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built household budgets that populate the store with
	realistic control parameters and definitions. Each scenario exercises a
	different part of the pipeline.

AVAILABLE SCENARIOS:

	household:   Biweekly pay, rent, groceries, insurance, a holiday; every kind
	tight-month: A large one-time bill that pulls the floor down for weeks
	freelancer:  Monthly invoices, quarterly-style taxes, a short contract

HOW SCENARIOS WORK:
 1. Build the control map and definition documents relative to today
 2. Validate every document via the factory
 3. Replace the store contents atomically

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "household"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a builder to 'scenarioBuilders'

NOTE:

	Scenarios replace all data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - factory/definition.go: Definition documents
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "household",
		Name:        "Household Budget",
		Description: "Biweekly salary with rent, groceries, insurance and a holiday budget",
	},
	{
		ID:          "tight-month",
		Name:        "Tight Month",
		Description: "A large one-time bill six weeks out constrains spare capital today",
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Monthly invoices, yearly tax bill and a contract that ends mid-horizon",
	},
}

type scenarioData struct {
	control     map[string]string
	definitions []factory.DefinitionJSON
}

var scenarioBuilders = map[string]func(now cashflow.Date) scenarioData{
	"household":   householdScenario,
	"tight-month": tightMonthScenario,
	"freelancer":  freelancerScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario replaces the store contents with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, ok := scenarioBuilders[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	now := cashflow.Today()
	if h.Today != nil {
		now = h.Today()
	}
	data := scenarioBuilders[id](now)

	defs := make([]cashflow.Definition, 0, len(data.definitions))
	for _, dj := range data.definitions {
		def, err := h.Factory.FromJSON(dj)
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}

	if err := h.Store.ReplaceAll(ctx, data.control, defs); err != nil {
		return err
	}
	h.setScenario(id)
	h.Log.Info().Str("scenario", id).Int("definitions", len(defs)).Msg("scenario loaded")
	return nil
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func intPtr(n int) *int { return &n }

func baseControl(now cashflow.Date, current, reserve string, months int) map[string]string {
	return map[string]string{
		cashflow.KeyCurrent:        current,
		cashflow.KeySetAside:       reserve,
		cashflow.KeyNow:            now.String(),
		cashflow.KeyGenerateMonths: strconv.Itoa(months),
		// first Friday on or after now
		cashflow.KeyBiweeklyStart: now.AddDays((int(5-now.Weekday()) + 7) % 7).String(),
	}
}

func householdScenario(now cashflow.Date) scenarioData {
	control := baseControl(now, "4200.00", "1000", 12)
	control[cashflow.KeyGoalValue] = "250000"
	control[cashflow.KeyGoalDate] = now.AddYears(5).String()
	control[cashflow.KeyRetirementBalance] = "42000"
	control[cashflow.KeyBiweeklyGrossPay] = "3100"
	control[cashflow.KeyRetirementContribute] = "0.06"

	return scenarioData{
		control: control,
		definitions: []factory.DefinitionJSON{
			{Kind: "biweekly", Name: "Paycheck", Amount: "2450.00", Class: "salary", To: "checking", Auto: true, DayOffset: intPtr(0)},
			{Kind: "monthly", Name: "Rent", Amount: "-1850.00", Class: "housing", To: "landlord", DayOfMonth: intPtr(1)},
			{Kind: "monthly", Name: "Utilities", Amount: "-210.00", Class: "housing", To: "city", Auto: true, DayOfMonth: intPtr(18)},
			{Kind: "monthly", Name: "Phone", Amount: "-65.00", Class: "bills", To: "carrier", Auto: true, DayOfMonth: intPtr(31)},
			{Kind: "weekly", Name: "Groceries", Amount: "-180.00", Class: "food", DayOffset: intPtr(6)},
			{Kind: "yearly", Name: "Car insurance", Amount: "-1340.00", Class: "car", To: "insurer", Date: now.AddMonths(4).String()},
			{Kind: "hebrew-yearly", Name: "Holiday budget", Amount: "-600.00", Class: "gifts", CalendarDay: "7, 1"},
			{Kind: "one-time", Name: "Tax refund", Amount: "900.00", Class: "salary", Date: now.AddMonths(3).String()},
		},
	}
}

func tightMonthScenario(now cashflow.Date) scenarioData {
	return scenarioData{
		control: baseControl(now, "2500.00", "500", 6),
		definitions: []factory.DefinitionJSON{
			{Kind: "biweekly", Name: "Paycheck", Amount: "1900.00", Class: "salary", DayOffset: intPtr(0)},
			{Kind: "monthly", Name: "Rent", Amount: "-1500.00", Class: "housing", DayOfMonth: intPtr(1)},
			{Kind: "weekly", Name: "Groceries", Amount: "-150.00", Class: "food", DayOffset: intPtr(2)},
			{Kind: "one-time", Name: "Roof repair", Amount: "-4200.00", Class: "housing", Notes: "quote #2", Date: now.AddDays(42).String()},
		},
	}
}

func freelancerScenario(now cashflow.Date) scenarioData {
	control := baseControl(now, "12000.00", "3000", 18)
	control[cashflow.KeyLatentWindowDays] = "30"

	contractEnd := now.AddMonths(7).String()
	return scenarioData{
		control: control,
		definitions: []factory.DefinitionJSON{
			{Kind: "monthly", Name: "Retainer invoice", Amount: "6500.00", Class: "clients", DayOfMonth: intPtr(5)},
			{Kind: "monthly", Name: "Contract invoice", Amount: "2800.00", Class: "clients", DayOfMonth: intPtr(20), EndDay: contractEnd},
			{Kind: "monthly", Name: "Rent", Amount: "-2100.00", Class: "housing", DayOfMonth: intPtr(1)},
			{Kind: "monthly", Name: "Health insurance", Amount: "-640.00", Class: "insurance", Auto: true, DayOfMonth: intPtr(15)},
			{Kind: "weekly", Name: "Groceries", Amount: "-200.00", Class: "food", DayOffset: intPtr(5)},
			{Kind: "yearly", Name: "Income tax", Amount: "-14500.00", Class: "tax", Date: now.AddMonths(5).String()},
			{Kind: "yearly", Name: "Software licenses", Amount: "-1200.00", Class: "business", Date: now.AddMonths(2).String()},
		},
	}
}
