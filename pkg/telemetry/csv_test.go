package telemetry

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

func TestDecodeCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []model.RawRecord
		wantErr error
	}{
		{
			name:  "standard",
			input: "Time,Speed,Throttle,Brake,Steering\n0.0,100,1,0,0.1\n0.1,101.5,0.9,0,-0.2\n",
			want: []model.RawRecord{
				{"Time": 0.0, "Speed": 100.0, "Throttle": 1.0, "Brake": 0.0, "Steering": 0.1},
				{"Time": 0.1, "Speed": 101.5, "Throttle": 0.9, "Brake": 0.0, "Steering": -0.2},
			},
		},
		{
			name:  "trimmed cells and blank lines",
			input: " speed , gas ,Driver\n\n 50 , 0.5 , Max \n\n",
			want: []model.RawRecord{
				{"speed": 50.0, "gas": 0.5, "Driver": "Max"},
			},
		},
		{
			name:  "empty cells are omitted",
			input: "Time,Speed,InPit\n,80,false\n",
			want: []model.RawRecord{
				{"Speed": 80.0, "InPit": false},
			},
		},
		{
			name:  "non finite cells stay strings",
			input: "Time,Speed,Brake\n0,NaN,Inf\n0.1,-inf,0.5\n",
			want: []model.RawRecord{
				{"Time": 0.0, "Speed": "NaN", "Brake": "Inf"},
				{"Time": 0.1, "Speed": "-inf", "Brake": 0.5},
			},
		},
		{
			name:    "header only",
			input:   "Time,Speed\n",
			wantErr: ErrEmptyInput,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrEmptyInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCSVMalformed(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("Time,Speed\n1,2\n3,4,5\n"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)

	_, err = DecodeCSV(strings.NewReader("Time,Speed\n1,\"2\n"))
	assert.ErrorAs(t, err, &pe)
}

func TestDecodeAndExtract(t *testing.T) {
	input := "Time,Speed,Throttle,Brake,Steering\n" +
		"0.0,100,1,0,0\n" +
		"0.5,150,1,0,0\n" +
		"1.0,120,0,0.8,0.5\n" +
		"1.5,80,0,0.5,0.6\n"
	records, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	m, err := NewExtractor().Extract(records, "acc")
	require.NoError(t, err)
	assert.Equal(t, 1.5, m.LapTime)
	assert.Len(t, m.BrakingPoints, 2)
	assert.Len(t, m.AccelPoints, 2)
	assert.Len(t, m.Corners, 1)
}

func TestDecodeAndExtractNonFinite(t *testing.T) {
	input := "Time,Speed,Throttle,Brake,Steering\n" +
		"0,100,1,0,0\n" +
		"0.016,NaN,Inf,0,0\n" +
		"0.032,120,1,-Inf,0\n"
	records, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	m, err := NewExtractor().Extract(records, "acc")
	require.NoError(t, err)

	for _, v := range []float64{m.MaxSpeed, m.MinSpeed, m.AvgSpeed, m.LapTime} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "metric must be finite: %v", v)
	}
	assert.Equal(t, 120.0, m.MaxSpeed)
	assert.Equal(t, 0.0, m.MinSpeed)
	for _, s := range m.DataPoints {
		assert.LessOrEqual(t, m.MinSpeed, s.Speed)
		assert.GreaterOrEqual(t, m.MaxSpeed, s.Speed)
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	var back model.LapMetrics
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.AvgSpeed, back.AvgSpeed)
}
