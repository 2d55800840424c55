// internal/historical/summary.go
package historical

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
)

// Recognized columns.
const (
	ColumnDuration      = "duration"
	ColumnCost          = "cost"
	ColumnDelayed       = "delayed"
	ColumnActualCost    = "actualCost"
	ColumnEstimatedCost = "estimatedCost"
	ColumnProjectName   = "projectName"
)

// OverrunTolerance is the fraction above estimate a cost may reach before
// it counts as an overrun.
const OverrunTolerance = 1.1

var ErrNoRows = errors.New("no historical rows")

// Summary aggregates the historical rows. Averages are NaN when no value
// in the column parsed to a non-zero number.
type Summary struct {
	ProjectCount    int
	AverageDuration float64
	AverageCost     float64
	DelayFrequency  float64
}

type summaryJSON struct {
	ProjectCount    int      `json:"projectCount"`
	AverageDuration *float64 `json:"averageDuration"`
	AverageCost     *float64 `json:"averageCost"`
	DelayFrequency  *float64 `json:"delayFrequency"`
}

// MarshalJSON writes NaN averages as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		ProjectCount:    s.ProjectCount,
		AverageDuration: Nullable(s.AverageDuration),
		AverageCost:     Nullable(s.AverageCost),
		DelayFrequency:  Nullable(s.DelayFrequency),
	})
}

// Summarize computes count, averages and delay frequency over rows.
//
// Cells that parse to 0 are left out of the averages along with the
// unparseable ones, so a column of real zeros averages to NaN.
func Summarize(rows []Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}
	return Summary{
		ProjectCount:    len(rows),
		AverageDuration: average(rows, ColumnDuration),
		AverageCost:     average(rows, ColumnCost),
		DelayFrequency:  DelayFrequency(rows),
	}, nil
}

func average(rows []Row, column string) float64 {
	var sum float64
	var n int
	for _, row := range rows {
		v := ParseDecimal(cell(row, column))
		if math.IsNaN(v) || v == 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// IsDelayed reports whether the delayed cell is exactly "true" or "1".
func IsDelayed(row Row) bool {
	v, _ := row.Get(ColumnDelayed)
	return v == "true" || v == "1"
}

// IsOverrun reports actualCost > estimatedCost * 1.1. Unparseable costs
// are never an overrun.
func IsOverrun(row Row) bool {
	actual := ParseDecimal(cell(row, ColumnActualCost))
	estimated := ParseDecimal(cell(row, ColumnEstimatedCost))
	return actual > estimated*OverrunTolerance
}

// DelayFrequency is the share of rows marked delayed. Every row counts in
// the denominator.
func DelayFrequency(rows []Row) float64 {
	return frequency(rows, IsDelayed)
}

// CostOverrunFrequency is the share of rows whose actual cost overran.
func CostOverrunFrequency(rows []Row) float64 {
	return frequency(rows, IsOverrun)
}

func frequency(rows []Row, pred func(Row) bool) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	var hits int
	for _, row := range rows {
		if pred(row) {
			hits++
		}
	}
	return float64(hits) / float64(len(rows))
}

// cell returns the raw value; absent cells come back as a value that
// never parses.
func cell(row Row, column string) *string {
	v, ok := row.Get(column)
	if !ok {
		return nil
	}
	return &v
}

var decimalPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseDecimal reads the longest leading decimal number of s, ignoring
// leading whitespace and any trailing text ("12abc" is 12). A nil or
// non-numeric input yields NaN.
func ParseDecimal(s *string) float64 {
	if s == nil {
		return math.NaN()
	}
	return ParseDecimalString(*s)
}

// ParseDecimalString is ParseDecimal for a present value.
func ParseDecimalString(s string) float64 {
	prefix := decimalPrefix.FindString(trimLeft(s))
	if prefix == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// out of range literals saturate the way the parser reports them
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

var integerPrefix = regexp.MustCompile(`^[+-]?\d+`)

// ParseInteger reads the leading run of digits of s ("12.7" is 12,
// "1e3" is 1).
func ParseInteger(s string) (int, bool) {
	prefix := integerPrefix.FindString(trimLeft(s))
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return v, true
}

func trimLeft(s string) string {
	for i, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f', '\u00a0', '\ufeff':
			continue
		default:
			return s[i:]
		}
	}
	return ""
}

// Nullable converts NaN to nil for JSON encoding.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
