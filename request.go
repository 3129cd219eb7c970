package stratbench

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/raykavin/stratbench/pkg/core"
	"github.com/raykavin/stratbench/pkg/portfolio"
)

var validate = validator.New()

// Request describes a backtest run submitted by a user
type Request struct {
	User         string          `json:"user" validate:"omitempty,max=64"`
	StrategyName string          `json:"strategy_name" validate:"required,max=128"`
	Strategy     json.RawMessage `json:"strategy" validate:"required"`
	Ticker       string          `json:"ticker" validate:"required,alphanum,max=16"`
	Timeframe    string          `json:"timeframe" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date" validate:"gtfield=StartDate"`
	Cash         float64         `json:"cash" validate:"gt=0"`
	Leverage     float64         `json:"leverage" validate:"gte=1,lte=10"`
}

// Validate checks the request fields, reporting the first problem as a ConfigError
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		if r.StartDate.IsZero() {
			return core.NewConfigError("start_date is required")
		}
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return core.NewConfigError("invalid request: %v", err)
	}
	return core.NewConfigError("%s", describe(fieldErrors[0]))
}

// WithDefaults fills the zero-valued cash and leverage
func (r Request) WithDefaults(cash, leverage float64) Request {
	if r.Cash == 0 {
		r.Cash = cash
	}
	if r.Leverage == 0 {
		r.Leverage = leverage
	}
	return r
}

func describe(field validator.FieldError) string {
	name := jsonName(field.Field())

	switch field.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, field.Param())
	case "gte", "lte":
		if name == "leverage" {
			return fmt.Sprintf("leverage must be between %.0f and %.0f", portfolio.MinLeverage, portfolio.MaxLeverage)
		}
		return fmt.Sprintf("%s is out of range", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(field.Param(), " ", ", "))
	case "gtfield":
		return fmt.Sprintf("%s must be after start_date", name)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, field.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

var jsonNames = map[string]string{
	"StrategyName": "strategy_name",
	"StartDate":    "start_date",
	"EndDate":      "end_date",
}

func jsonName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
