package telemetry

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

// column aliases per canonical field. Order matters, the first key present
// in a record wins.
var (
	speedKeys    = []string{"Speed", "speed", "Velocity", "velocity"}
	throttleKeys = []string{"Throttle", "throttle", "Gas", "gas"}
	brakeKeys    = []string{"Brake", "brake"}
	steeringKeys = []string{"Steering", "steering", "SteerAngle"}
	timeKeys     = []string{"Time", "time", "LapTime", "laptime"}
)

// lookup returns the value of the first alias present in rec
func lookup(rec model.RawRecord, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return toFloat(v), true
		}
	}
	return 0, false
}

// toFloat coerces a cell value to a number. Values that are not numeric or
// not finite become 0.
func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return finiteOrZero(val)
	case float32:
		return finiteOrZero(float64(val))
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return finiteOrZero(f)
		}
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return finiteOrZero(f)
		}
	}
	return 0
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// normalize maps a raw record onto a Sample. interval is used for the time
// value if the record carries none.
func normalize(rec model.RawRecord, idx int, interval float64) model.Sample {
	s := model.Sample{}
	s.Speed, _ = lookup(rec, speedKeys)
	s.Throttle, _ = lookup(rec, throttleKeys)
	s.Brake, _ = lookup(rec, brakeKeys)
	s.Steering, _ = lookup(rec, steeringKeys)
	var ok bool
	if s.Time, ok = lookup(rec, timeKeys); !ok {
		s.Time = float64(idx) * interval
		s.TimeInferred = true
	}
	return s
}
