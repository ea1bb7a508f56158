package model

// RawRecord is one decoded row of a telemetry source. Keys are the column
// names as they appear in the source, values are float64, bool or string.
type RawRecord map[string]any

// Sample is a normalized telemetry reading
type Sample struct {
	Time     float64 `json:"time"`     // unit: seconds
	Speed    float64 `json:"speed"`    // unit: km/h
	Throttle float64 `json:"throttle"` // range 0..1
	Brake    float64 `json:"brake"`    // range 0..1
	Steering float64 `json:"steering"` // signed
	// TimeInferred is set when the source had no time column and Time was
	// derived from the sample index and the assumed sample rate.
	TimeInferred bool `json:"timeInferred,omitempty"`
}

type BrakingEvent struct {
	Time  float64 `json:"time"`
	Speed float64 `json:"speed"`
	Brake float64 `json:"brake"`
	Index int     `json:"index"`
}

type AccelerationEvent struct {
	Time     float64 `json:"time"`
	Speed    float64 `json:"speed"`
	Throttle float64 `json:"throttle"`
	Index    int     `json:"index"`
}

type CornerEvent struct {
	Time     float64 `json:"time"`
	Speed    float64 `json:"speed"`
	Steering float64 `json:"steering"` // absolute value
	Index    int     `json:"index"`
}

// LapMetrics holds the aggregates and detected events of a single lap.
type LapMetrics struct {
	SimType      string  `json:"simType"`
	TrackName    string  `json:"trackName,omitempty"`
	CarName      string  `json:"carName,omitempty"`
	TotalRecords int     `json:"totalRecords"`
	LapTime      float64 `json:"lapTime"`
	// LapTimeInferred is set when LapTime is derived from the sample count
	LapTimeInferred bool                `json:"lapTimeInferred,omitempty"`
	MaxSpeed        float64             `json:"maxSpeed"`
	MinSpeed        float64             `json:"minSpeed"`
	AvgSpeed        float64             `json:"avgSpeed"`
	MaxThrottle     float64             `json:"maxThrottle"`
	MaxBrake        float64             `json:"maxBrake"`
	BrakingPoints   []BrakingEvent      `json:"brakingPoints"`
	AccelPoints     []AccelerationEvent `json:"accelerationPoints"`
	Corners         []CornerEvent       `json:"corners"`
	DataPoints      []Sample            `json:"dataPoints"`
}
