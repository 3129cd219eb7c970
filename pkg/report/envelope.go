package report

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/raykavin/stratbench/pkg/core"
)

// ErrNoData is returned when a run produced an empty equity curve
var ErrNoData = errors.New("backtest generated no data")

// Envelope is the uniform response of a run: either a Result or an error
// message with empty stats, plot data and trades.
type Envelope struct {
	Error string
	*Result
}

// Success wraps a result
func Success(result *Result) Envelope {
	return Envelope{Result: result}
}

// Failure converts an engine error into the error envelope
func Failure(err error) Envelope {
	return Envelope{Error: Message(err)}
}

// Failed reports whether the envelope carries an error
func (e Envelope) Failed() bool {
	return e.Error != "" || e.Result == nil
}

// Message renders err the way callers display it
func Message(err error) string {
	var (
		simulationErr *core.SimulationError
		formattingErr *core.FormattingError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoData):
		return "Backtest generated no data."
	case errors.As(err, &simulationErr):
		return "Simulation failed: " + simulationErr.Error()
	case errors.As(err, &formattingErr):
		return "Error formatting results: " + formattingErr.Error()
	default:
		return "Backtest failed: " + err.Error()
	}
}

type failureJSON struct {
	Error    string     `json:"error"`
	Stats    struct{}   `json:"stats"`
	PlotData PlotData   `json:"plot_data"`
	Trades   []TradeRow `json:"trades"`
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Failed() {
		message := e.Error
		if message == "" {
			message = Message(ErrNoData)
		}
		return encode(failureJSON{
			Error:    message,
			PlotData: PlotData{EquityCurve: []float64{}, Dates: []string{}},
			Trades:   []TradeRow{},
		})
	}

	result := *e.Result
	if result.Trades == nil {
		result.Trades = []TradeRow{}
	}
	return encode(result)
}

// JSON encodes the envelope without escaping HTML characters in keys such as "P&L"
func (e Envelope) JSON() ([]byte, error) {
	return e.MarshalJSON()
}

func encode(value any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
