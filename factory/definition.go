/*
Package factory converts JSON/YAML event definitions into cashflow types.

PURPOSE:
  Definitions arrive as loosely typed documents: from the HTTP API as
  JSON, from input files as YAML, from the SQLite store as columns. The
  factory is the single place that turns those documents into validated
  cashflow.Definition values and back.

JSON SCHEMA:
  {
    "id": "8d1f...",               // optional, generated when empty
    "kind": "monthly",             // yearly|monthly|biweekly|weekly|one-time|hebrew-yearly
    "name": "Rent",
    "amount": "-1850.00",          // string or number, negative = expense
    "class": "housing",
    "to": "checking",
    "auto": true,
    "notes": "",
    "start_day": "2025-01-01",     // optional validity window
    "end_day": "2026-06-30",
    "day_of_month": 1,             // monthly
    "day_offset": 0,               // biweekly / weekly
    "date": "2025-04-15",          // yearly (month/day) / one-time
    "hebrew": "7, 1"               // hebrew-yearly: "month, day"
  }

VALIDATION:
  Parsing fails on unknown kinds, unparseable amounts or dates, and on a
  missing kind-specific field (the same MissingFieldError expansion would
  raise later, surfaced at write time instead).

USAGE:
  f := factory.NewDefinitionFactory()
  def, err := f.Parse(jsonString)

SEE ALSO:
  - cashflow/types.go: Definition
  - config/input.go: YAML input files use DefinitionJSON
  - api/handlers.go: POST /api/definitions
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DefinitionJSON is the document form of a definition.
type DefinitionJSON struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	Kind        string     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name        string     `json:"name" yaml:"name"`
	Amount      FlexNumber `json:"amount" yaml:"amount"`
	Class       string     `json:"class,omitempty" yaml:"class,omitempty"`
	To          string     `json:"to,omitempty" yaml:"to,omitempty"`
	Auto        bool       `json:"auto,omitempty" yaml:"auto,omitempty"`
	Notes       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	StartDay    string     `json:"start_day,omitempty" yaml:"start_day,omitempty"`
	EndDay      string     `json:"end_day,omitempty" yaml:"end_day,omitempty"`
	DayOfMonth  *int       `json:"day_of_month,omitempty" yaml:"day_of_month,omitempty"`
	DayOffset   *int       `json:"day_offset,omitempty" yaml:"day_offset,omitempty"`
	Date        string     `json:"date,omitempty" yaml:"date,omitempty"`
	CalendarDay string     `json:"hebrew,omitempty" yaml:"hebrew,omitempty"`
}

// FlexNumber accepts a JSON number or a JSON string holding a number.
type FlexNumber string

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = FlexNumber(s)
		return nil
	}
	*n = FlexNumber(b)
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

// =============================================================================
// DEFINITION FACTORY
// =============================================================================

// DefinitionFactory converts documents to definitions.
type DefinitionFactory struct {
	// NewID generates IDs for documents that don't carry one.
	NewID func() string
}

// NewDefinitionFactory creates a factory that assigns random UUIDs.
func NewDefinitionFactory() *DefinitionFactory {
	return &DefinitionFactory{NewID: uuid.NewString}
}

// Parse parses a JSON document into a Definition.
func (f *DefinitionFactory) Parse(jsonStr string) (cashflow.Definition, error) {
	var dj DefinitionJSON
	if err := json.Unmarshal([]byte(jsonStr), &dj); err != nil {
		return cashflow.Definition{}, fmt.Errorf("failed to parse definition JSON: %w", err)
	}
	return f.FromJSON(dj)
}

// FromJSON validates dj and builds a Definition.
func (f *DefinitionFactory) FromJSON(dj DefinitionJSON) (cashflow.Definition, error) {
	name := strings.TrimSpace(dj.Name)
	kind, err := cashflow.ParseKind(dj.Kind)
	if err != nil {
		return cashflow.Definition{}, fmt.Errorf("definition %q: %w", name, err)
	}
	if name == "" {
		return cashflow.Definition{}, &cashflow.MissingFieldError{Definition: dj.ID, Kind: kind, Field: "name"}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(string(dj.Amount)))
	if err != nil {
		return cashflow.Definition{}, &cashflow.FieldError{Definition: name, Field: "amount", Value: string(dj.Amount), Reason: "not a number"}
	}

	def := cashflow.Definition{
		ID:          dj.ID,
		Kind:        kind,
		Name:        name,
		Amount:      amount,
		Class:       dj.Class,
		Account:     dj.To,
		Auto:        dj.Auto,
		Notes:       dj.Notes,
		DayOfMonth:  dj.DayOfMonth,
		DayOffset:   dj.DayOffset,
		CalendarDay: strings.TrimSpace(dj.CalendarDay),
	}
	if def.ID == "" && f.NewID != nil {
		def.ID = f.NewID()
	}

	if def.EarliestValid, err = optionalDate(name, "start_day", dj.StartDay); err != nil {
		return cashflow.Definition{}, err
	}
	if def.LatestValid, err = optionalDate(name, "end_day", dj.EndDay); err != nil {
		return cashflow.Definition{}, err
	}
	if def.Date, err = optionalDate(name, cashflow.FieldDate, dj.Date); err != nil {
		return cashflow.Definition{}, err
	}

	if err := CheckRequiredFields(def); err != nil {
		return cashflow.Definition{}, err
	}
	return def, nil
}

// ToJSON is the inverse of FromJSON.
func ToJSON(def cashflow.Definition) DefinitionJSON {
	dj := DefinitionJSON{
		ID:          def.ID,
		Kind:        def.Kind.String(),
		Name:        def.Name,
		Amount:      FlexNumber(def.Amount.String()),
		Class:       def.Class,
		To:          def.Account,
		Auto:        def.Auto,
		Notes:       def.Notes,
		DayOfMonth:  def.DayOfMonth,
		DayOffset:   def.DayOffset,
		CalendarDay: def.CalendarDay,
	}
	if def.EarliestValid != nil {
		dj.StartDay = def.EarliestValid.String()
	}
	if def.LatestValid != nil {
		dj.EndDay = def.LatestValid.String()
	}
	if def.Date != nil {
		dj.Date = def.Date.String()
	}
	return dj
}

// CheckRequiredFields reports the first field def's kind needs but lacks.
func CheckRequiredFields(def cashflow.Definition) error {
	missing := func(field string) error {
		return &cashflow.MissingFieldError{Definition: def.Name, Kind: def.Kind, Field: field}
	}
	switch def.Kind {
	case cashflow.KindYearly, cashflow.KindOneTime:
		if def.Date == nil {
			return missing(cashflow.FieldDate)
		}
	case cashflow.KindMonthly:
		if def.DayOfMonth == nil {
			return missing(cashflow.FieldDayOfMonth)
		}
	case cashflow.KindBiweekly, cashflow.KindWeekly:
		if def.DayOffset == nil {
			return missing(cashflow.FieldDayOffset)
		}
	case cashflow.KindHebrewYearly:
		if def.CalendarDay == "" {
			return missing(cashflow.FieldCalendarDay)
		}
		if _, _, err := cashflow.ParseCalendarDay(def.CalendarDay); err != nil {
			return &cashflow.ParseError{Definition: def.Name, Input: def.CalendarDay, Err: err}
		}
	}
	return nil
}

func optionalDate(name, field, s string) (*cashflow.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > len(cashflow.DateLayout) {
		s = s[:len(cashflow.DateLayout)]
	}
	d, err := cashflow.ParseDate(s)
	if err != nil {
		return nil, &cashflow.FieldError{Definition: name, Field: field, Value: s, Reason: err.Error()}
	}
	return &d, nil
}
