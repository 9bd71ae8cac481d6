/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money is always sent
  as a decimal string so clients never see float rounding.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Projection:
    InstanceDTO, ProjectionDTO, ProductionPointDTO, PoolDTO

  Goal:
    GoalDTO, GoalResultDTO

  Definitions:
    factory.DefinitionJSON is used directly for both directions

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/definition.go: DefinitionJSON type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// PROJECTION
// =============================================================================

// InstanceDTO is one stamped timeline entry.
type InstanceDTO struct {
	Date         string            `json:"date"`
	Kind         string            `json:"kind"`
	DefinitionID string            `json:"definition_id,omitempty"`
	Name         string            `json:"name"`
	Amount       string            `json:"amount"`
	Class        string            `json:"class,omitempty"`
	To           string            `json:"to,omitempty"`
	Auto         bool              `json:"auto,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Metrics      map[string]string `json:"metrics"`
	// LeadDays is null when the balance never declines below this
	// instance's latent floor.
	LeadDays *int   `json:"lead_days"`
	Lead     string `json:"lead"`
}

// ProjectionDTO is the response of GET /api/projection.
type ProjectionDTO struct {
	Start        string            `json:"start"`
	End          string            `json:"end"`
	SpareCapital *string           `json:"spare_capital"`
	State        map[string]string `json:"state"`
	Instances    []InstanceDTO     `json:"instances"`
}

// ProductionPointDTO is one point of the production curve.
type ProductionPointDTO struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Wiggle    string `json:"wiggle"`
	DaysLater int    `json:"days_later"`
	Line      string `json:"line"`
}

// PoolDTO is one class pool.
type PoolDTO struct {
	Name      string            `json:"name"`
	Count     int               `json:"count"`
	State     map[string]string `json:"state"`
	Instances []InstanceDTO     `json:"instances,omitempty"`
}

// =============================================================================
// GOAL
// =============================================================================

// GoalResultDTO is one scenario's projected value.
type GoalResultDTO struct {
	Scenario        string  `json:"scenario"`
	ProductionYield float64 `json:"production_yield"`
	Value           string  `json:"value"`
	Progress        string  `json:"progress_percent"`
}

// GoalDTO is the response of GET /api/goal.
type GoalDTO struct {
	GoalDate  string          `json:"goal_date"`
	GoalValue string          `json:"goal_value"`
	Results   []GoalResultDTO `json:"results"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toInstanceDTO(in cashflow.Instance) InstanceDTO {
	dto := InstanceDTO{
		Date:         in.Date.String(),
		Kind:         in.Kind.String(),
		DefinitionID: in.DefinitionID,
		Name:         in.Name,
		Amount:       in.Amount.StringFixed(2),
		Class:        in.Class,
		To:           in.Account,
		Auto:         in.Auto,
		Notes:        in.Notes,
		Metrics:      stateDTO(in.Metrics),
		Lead:         in.Lead.String(),
	}
	if days, ok := in.Lead.Days(); ok {
		dto.LeadDays = &days
	}
	return dto
}

func toInstanceDTOs(instances []cashflow.Instance) []InstanceDTO {
	dtos := make([]InstanceDTO, len(instances))
	for i, in := range instances {
		dtos[i] = toInstanceDTO(in)
	}
	return dtos
}

func stateDTO(state map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(state))
	for k, v := range state {
		out[k] = v.StringFixed(2)
	}
	return out
}
