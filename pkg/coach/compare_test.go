package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

func samples(speeds ...float64) []model.Sample {
	ret := make([]model.Sample, len(speeds))
	for i, s := range speeds {
		ret[i] = model.Sample{Time: float64(i), Speed: s}
	}
	return ret
}

func TestCompare(t *testing.T) {
	user := &model.LapMetrics{
		LapTime:  90,
		AvgSpeed: 140,
		// index 9 does not fill a sector and is ignored
		DataPoints: samples(90, 90, 90, 150, 150, 150, 200, 200, 200, 1000),
	}
	reference := &model.LapMetrics{
		LapTime:    87,
		AvgSpeed:   150,
		DataPoints: samples(100, 100, 100, 150, 150, 150, 160, 160, 160, 0),
	}

	res, err := Compare(user, reference)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, res.TimeDifference, 1e-9)
	assert.InDelta(t, -10.0, res.AvgSpeedDifference, 1e-9)
	require.Len(t, res.Sectors, 3)

	s := res.Sectors
	assert.Equal(t, 0, s[0].SectorIndex)
	assert.InDelta(t, 90.0, s[0].UserAvgSpeed, 1e-9)
	assert.InDelta(t, 100.0, s[0].ReferenceAvgSpeed, 1e-9)
	assert.InDelta(t, -10.0, s[0].SpeedDifference, 1e-9)
	assert.InDelta(t, 3.0, s[0].EstimatedTimeLost, 1e-9) // 0.1 * 30

	assert.Equal(t, 1, s[1].SectorIndex)
	assert.InDelta(t, 0.0, s[1].SpeedDifference, 1e-9)
	assert.InDelta(t, 0.0, s[1].EstimatedTimeLost, 1e-9)

	assert.Equal(t, 2, s[2].SectorIndex)
	assert.InDelta(t, 40.0, s[2].SpeedDifference, 1e-9)
	assert.InDelta(t, -7.5, s[2].EstimatedTimeLost, 1e-9) // faster than reference
}

func TestCompareShortReference(t *testing.T) {
	user := &model.LapMetrics{LapTime: 60, DataPoints: samples(100, 100, 100, 100, 100, 100)}
	// third sector of the reference is cut to a single sample
	reference := &model.LapMetrics{DataPoints: samples(100, 100, 100, 100, 50)}

	res, err := Compare(user, reference)
	require.NoError(t, err)
	require.Len(t, res.Sectors, 3)
	assert.InDelta(t, 50.0, res.Sectors[2].ReferenceAvgSpeed, 1e-9)
	assert.InDelta(t, -20.0, res.Sectors[2].EstimatedTimeLost, 1e-9)
}

func TestCompareDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		user      []model.Sample
		reference []model.Sample
	}{
		{"user too short", samples(100, 100), samples(100, 100, 100)},
		{"user empty", nil, samples(100, 100, 100)},
		{"reference missing sector", samples(100, 100, 100, 100, 100, 100), samples(100, 100, 100)},
		{"reference zero speed", samples(100, 100, 100), samples(100, 0, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compare(
				&model.LapMetrics{DataPoints: tt.user},
				&model.LapMetrics{DataPoints: tt.reference})
			require.ErrorIs(t, err, ErrDegenerateInput)
		})
	}
}
