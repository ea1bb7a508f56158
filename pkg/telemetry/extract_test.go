//nolint:funlen,lll // ok for tests
package telemetry

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

type row struct {
	speed, throttle, brake, steering float64
}

func toRecords(rows []row, withTime bool) []model.RawRecord {
	ret := make([]model.RawRecord, len(rows))
	for i, r := range rows {
		rec := model.RawRecord{
			"Speed":    r.speed,
			"Throttle": r.throttle,
			"Brake":    r.brake,
			"Steering": r.steering,
		}
		if withTime {
			rec["Time"] = float64(i) * 0.5
		}
		ret[i] = rec
	}
	return ret
}

func TestExtractEmpty(t *testing.T) {
	_, err := NewExtractor().Extract(nil, "acc")
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = NewExtractor().Extract([]model.RawRecord{}, "acc")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestExtractEvents(t *testing.T) {
	records := toRecords([]row{
		{100, 0.8, 0, 0},
		{150, 0.9, 0, 0.1},
		{120, 0, 0.6, 0.5},
		{80, 0, 0.4, 0.5},
		{80, 0.6, 0.35, -0.4},
		{130, 1.0, 0, 0},
	}, true)

	m, err := NewExtractor().Extract(records, "iracing")
	require.NoError(t, err)

	assert.Equal(t, "iracing", m.SimType)
	assert.Equal(t, 6, m.TotalRecords)
	assert.InDelta(t, 2.5, m.LapTime, 1e-9)
	assert.False(t, m.LapTimeInferred)
	assert.Equal(t, 150.0, m.MaxSpeed)
	assert.Equal(t, 80.0, m.MinSpeed)
	assert.InDelta(t, 110.0, m.AvgSpeed, 1e-9)
	assert.Equal(t, 1.0, m.MaxThrottle)
	assert.Equal(t, 0.6, m.MaxBrake)

	if diff := cmp.Diff([]model.BrakingEvent{
		{Time: 1.0, Speed: 120, Brake: 0.6, Index: 2},
		{Time: 1.5, Speed: 80, Brake: 0.4, Index: 3},
	}, m.BrakingPoints); diff != "" {
		t.Errorf("braking points mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.AccelerationEvent{
		{Time: 0, Speed: 100, Throttle: 0.8, Index: 0},
		{Time: 0.5, Speed: 150, Throttle: 0.9, Index: 1},
		{Time: 2.5, Speed: 130, Throttle: 1.0, Index: 5},
	}, m.AccelPoints); diff != "" {
		t.Errorf("acceleration points mismatch (-want +got):\n%s", diff)
	}
	// sample 3 is a braking and a corner event at the same time
	if diff := cmp.Diff([]model.CornerEvent{
		{Time: 1.5, Speed: 80, Steering: 0.5, Index: 3},
		{Time: 2.0, Speed: 80, Steering: 0.4, Index: 4},
	}, m.Corners); diff != "" {
		t.Errorf("corners mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, m.DataPoints, 6)
}

func TestExtractCornerUsesRunningMax(t *testing.T) {
	// the first sample is slow and steered, but the peak comes later.
	// It must not be compared against a max it precedes.
	records := toRecords([]row{
		{50, 0, 0, 0.8},
		{200, 1, 0, 0},
		{100, 0, 0, 0.8},
	}, true)
	m, err := NewExtractor().Extract(records, "test")
	require.NoError(t, err)
	require.Len(t, m.Corners, 1)
	assert.Equal(t, 2, m.Corners[0].Index)
}

func TestExtractAliases(t *testing.T) {
	tests := []struct {
		name string
		rec  model.RawRecord
		want model.Sample
	}{
		{
			name: "lower case",
			rec:  model.RawRecord{"speed": 10.0, "throttle": 0.1, "brake": 0.2, "steering": 0.3, "time": 4.0},
			want: model.Sample{Time: 4, Speed: 10, Throttle: 0.1, Brake: 0.2, Steering: 0.3},
		},
		{
			name: "synonyms",
			rec:  model.RawRecord{"Velocity": 20.0, "Gas": 0.5, "SteerAngle": -0.2, "LapTime": 3.0},
			want: model.Sample{Time: 3, Speed: 20, Throttle: 0.5, Steering: -0.2},
		},
		{
			name: "lower case synonyms",
			rec:  model.RawRecord{"velocity": 30.0, "gas": 0.6, "laptime": 2.0},
			want: model.Sample{Time: 2, Speed: 30, Throttle: 0.6},
		},
		{
			name: "first alias wins",
			rec:  model.RawRecord{"Speed": 1.0, "speed": 2.0, "Velocity": 3.0, "Time": 1.0},
			want: model.Sample{Time: 1, Speed: 1},
		},
		{
			name: "string values",
			rec:  model.RawRecord{"Speed": " 12.5 ", "Brake": "abc", "Time": "7"},
			want: model.Sample{Time: 7, Speed: 12.5},
		},
		{
			name: "non finite values",
			rec:  model.RawRecord{"Speed": math.NaN(), "Throttle": math.Inf(1), "Brake": "-Inf", "Steering": "NaN", "Time": 2.0},
			want: model.Sample{Time: 2},
		},
		{
			name: "integer and json number values",
			rec:  model.RawRecord{"Speed": json.Number("88.5"), "Throttle": int32(1), "Brake": uint(0), "Steering": json.Number("x"), "Time": uint64(3)},
			want: model.Sample{Time: 3, Speed: 88.5, Throttle: 1},
		},
		{
			name: "no fields",
			rec:  model.RawRecord{"Gear": 3.0},
			want: model.Sample{Time: 0, TimeInferred: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.rec, 0, 1/AssumedSampleRateHz)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractInferredTime(t *testing.T) {
	records := toRecords([]row{{10, 0, 0, 0}, {20, 0, 0, 0}, {30, 0, 0, 0}, {40, 0, 0, 0}}, false)

	m, err := NewExtractor(WithAssumedSampleRate(10)).Extract(records, "test")
	require.NoError(t, err)
	for i, s := range m.DataPoints {
		assert.True(t, s.TimeInferred)
		assert.InDelta(t, float64(i)*0.1, s.Time, 1e-9)
	}
	assert.True(t, m.LapTimeInferred)
	assert.InDelta(t, 0.4, m.LapTime, 1e-9)

	// default rate
	m, err = NewExtractor().Extract(records, "test")
	require.NoError(t, err)
	assert.InDelta(t, 0.016, m.DataPoints[1].Time, 1e-9)
	assert.InDelta(t, 4*0.016, m.LapTime, 1e-9)
}

func TestExtractInvariants(t *testing.T) {
	rows := make([]row, 2500)
	for i := range rows {
		x := float64(i) / 50
		rows[i] = row{
			speed:    150 + 100*math.Sin(x),
			throttle: 0.5 + 0.5*math.Cos(x),
			brake:    0.5 - 0.5*math.Cos(x),
			steering: math.Sin(x * 3),
		}
	}
	records := toRecords(rows, true)
	m, err := NewExtractor().Extract(records, "test")
	require.NoError(t, err)

	sum := 0.0
	for _, r := range rows {
		sum += r.speed
		assert.LessOrEqual(t, m.MinSpeed, r.speed)
		assert.GreaterOrEqual(t, m.MaxSpeed, r.speed)
	}
	assert.InDelta(t, sum/float64(len(rows)), m.AvgSpeed, 1e-9)
	assert.Len(t, m.DataPoints, PreviewSize)

	for _, b := range m.BrakingPoints {
		assert.Greater(t, b.Brake, 0.3)
		require.Positive(t, b.Index)
		assert.Less(t, b.Speed, rows[b.Index-1].speed)
	}
	for _, a := range m.AccelPoints {
		assert.Greater(t, a.Throttle, 0.5)
		if a.Index > 0 {
			assert.Greater(t, a.Speed, rows[a.Index-1].speed)
		}
	}
	for _, c := range m.Corners {
		assert.Greater(t, c.Steering, 0.3)
		runningMax := 0.0
		for _, r := range rows[:c.Index+1] {
			runningMax = math.Max(runningMax, r.speed)
		}
		assert.Less(t, c.Speed, 0.6*runningMax)
	}
}
