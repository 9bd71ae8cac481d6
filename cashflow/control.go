package cashflow

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTROL PARAMETERS - Immutable run configuration
// =============================================================================

// Control keys, as they appear in the flat key/value source.
const (
	KeyCurrent              = "CURRENT"
	KeySetAside             = "SET_ASIDE"
	KeyNow                  = "NOW"
	KeyGenerateMonths       = "GENERATE_MONTHS"
	KeyBiweeklyStart        = "BIWEEKLY_START"
	KeyLatentWindowDays     = "LATENT_WINDOW_DAYS"
	KeyGoalValue            = "GOAL_VALUE"
	KeyGoalDate             = "GOAL_DATE"
	KeyRetirementBalance    = "RETIREMENT_BALANCE"
	KeyProductionAssets     = "PRODUCTION_ASSETS"
	KeyStaticAssets         = "STATIC_ASSETS"
	KeyBiweeklyGrossPay     = "BIWEEKLY_GROSS_PAY"
	KeyRetirementContribute = "RETIREMENT_CONTRIBUTION_RATE"
)

var errNotPositive = errors.New("must be positive")

// DefaultLatentWindowDays is the forward window of the latent floor.
const DefaultLatentWindowDays = 14

// ControlParameters are loaded once and passed by value into the engine.
type ControlParameters struct {
	Current          decimal.Decimal // balance today
	Reserve          decimal.Decimal // set-aside subtracted from every floor
	Now              Date
	HorizonMonths    int
	BiweeklyAnchor   Date
	LatentWindowDays int

	Goal GoalParameters
}

// GoalParameters feed the goal projector. All optional.
type GoalParameters struct {
	Value                decimal.Decimal
	Date                 Date
	RetirementBalance    decimal.Decimal
	ProductionAssets     decimal.Decimal
	StaticAssets         decimal.Decimal
	BiweeklyGrossPay     decimal.Decimal
	RetirementContribute decimal.Decimal // fraction of gross pay
}

// Horizon returns [Now, Now + HorizonMonths].
func (c ControlParameters) Horizon() Period {
	return Period{Start: c.Now, End: c.Now.AddMonths(c.HorizonMonths)}
}

// Window returns the latent window in days, defaulting to 14.
func (c ControlParameters) Window() int {
	if c.LatentWindowDays <= 0 {
		return DefaultLatentWindowDays
	}
	return c.LatentWindowDays
}

// ParseControl builds ControlParameters from a flat key/value map.
// CURRENT, SET_ASIDE, NOW, GENERATE_MONTHS and BIWEEKLY_START are required.
func ParseControl(kv map[string]string) (ControlParameters, error) {
	p := controlParser{kv: kv}
	c := ControlParameters{
		Current:          p.decimalValue(KeyCurrent, true),
		Reserve:          p.decimalValue(KeySetAside, true),
		Now:              p.dateValue(KeyNow, true),
		HorizonMonths:    p.intValue(KeyGenerateMonths, true),
		BiweeklyAnchor:   p.dateValue(KeyBiweeklyStart, true),
		LatentWindowDays: p.intValue(KeyLatentWindowDays, false),
		Goal: GoalParameters{
			Value:                p.decimalValue(KeyGoalValue, false),
			Date:                 p.dateValue(KeyGoalDate, false),
			RetirementBalance:    p.decimalValue(KeyRetirementBalance, false),
			ProductionAssets:     p.decimalValue(KeyProductionAssets, false),
			StaticAssets:         p.decimalValue(KeyStaticAssets, false),
			BiweeklyGrossPay:     p.decimalValue(KeyBiweeklyGrossPay, false),
			RetirementContribute: p.decimalValue(KeyRetirementContribute, false),
		},
	}
	if p.err != nil {
		return ControlParameters{}, p.err
	}
	if c.HorizonMonths <= 0 {
		return ControlParameters{}, &ControlError{Key: KeyGenerateMonths, Value: kv[KeyGenerateMonths], Err: errNotPositive}
	}
	return c, nil
}

// ToMap is the inverse of ParseControl; unset optional values are omitted.
func (c ControlParameters) ToMap() map[string]string {
	m := map[string]string{
		KeyCurrent:        c.Current.String(),
		KeySetAside:       c.Reserve.String(),
		KeyNow:            c.Now.String(),
		KeyGenerateMonths: strconv.Itoa(c.HorizonMonths),
		KeyBiweeklyStart:  c.BiweeklyAnchor.String(),
	}
	if c.LatentWindowDays > 0 {
		m[KeyLatentWindowDays] = strconv.Itoa(c.LatentWindowDays)
	}
	putDecimal := func(k string, v decimal.Decimal) {
		if !v.IsZero() {
			m[k] = v.String()
		}
	}
	putDecimal(KeyGoalValue, c.Goal.Value)
	putDecimal(KeyRetirementBalance, c.Goal.RetirementBalance)
	putDecimal(KeyProductionAssets, c.Goal.ProductionAssets)
	putDecimal(KeyStaticAssets, c.Goal.StaticAssets)
	putDecimal(KeyBiweeklyGrossPay, c.Goal.BiweeklyGrossPay)
	putDecimal(KeyRetirementContribute, c.Goal.RetirementContribute)
	if !c.Goal.Date.IsZero() {
		m[KeyGoalDate] = c.Goal.Date.String()
	}
	return m
}

type controlParser struct {
	kv  map[string]string
	err error
}

func (p *controlParser) raw(key string, required bool) (string, bool) {
	v, ok := p.kv[key]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		if required && p.err == nil {
			p.err = &ControlError{Key: key}
		}
		return "", false
	}
	return v, true
}

func (p *controlParser) decimalValue(key string, required bool) decimal.Decimal {
	v, ok := p.raw(key, required)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil && p.err == nil {
		p.err = &ControlError{Key: key, Value: v, Err: err}
	}
	return d
}

func (p *controlParser) intValue(key string, required bool) int {
	v, ok := p.raw(key, required)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = &ControlError{Key: key, Value: v, Err: err}
	}
	return n
}

func (p *controlParser) dateValue(key string, required bool) Date {
	v, ok := p.raw(key, required)
	if !ok {
		return Date{}
	}
	// Spreadsheet exports carry a time part ("2025-01-06 00:00:00").
	if len(v) > len(DateLayout) {
		v = v[:len(DateLayout)]
	}
	d, err := ParseDate(v)
	if err != nil && p.err == nil {
		p.err = &ControlError{Key: key, Value: v, Err: err}
	}
	return d
}
