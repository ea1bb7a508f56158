package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/coach"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/telemetry"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

const lapCSV = "Time,Speed,Throttle,Brake,Steering\n" +
	"0,100,1,0,0\n1,150,1,0,0\n2,120,0,0.9,0\n3,90,0,0.5,0.4\n4,110,0.9,0,0.2\n5,160,1,0,0\n"

const refCSV = "Time,Speed\n0,110\n1,160\n2,130\n3,100\n4,120\n5,170\n"

func TestRunFile(t *testing.T) {
	opts := &options{
		file:      writeFile(t, "lap.csv", lapCSV),
		reference: writeFile(t, "ref.csv", refCSV),
		simType:   "acc",
		trackName: "Monza",
		sampleHz:  telemetry.AssumedSampleRateHz,
	}
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, opts, coach.NewRuleBased()))

	var got Output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "acc", got.Metrics.SimType)
	assert.Equal(t, "Monza", got.Metrics.TrackName)
	assert.InDelta(t, 5.0, got.Metrics.LapTime, 1e-9)
	assert.Equal(t, model.AnalysisTypeRuleBased, got.Analysis.AnalysisType)
	require.NotNil(t, got.Comparison)
	assert.Len(t, got.Comparison.Sectors, 3)
	assert.InDelta(t, 0, got.Comparison.TimeDifference, 1e-9)
	for _, s := range got.Comparison.Sectors {
		assert.Less(t, s.SpeedDifference, 0.0)
	}
}

func TestRunDemo(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out,
		&options{demo: true, sampleHz: telemetry.AssumedSampleRateHz}, coach.NewRuleBased()))

	var got Output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, telemetry.DefaultDemoTrack, got.Metrics.TrackName)
	assert.Nil(t, got.Comparison)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    *options
		wantErr error
	}{
		{"missing file", &options{file: filepath.Join(t.TempDir(), "nope.csv")}, os.ErrNotExist},
		{"empty file", &options{file: writeFile(t, "empty.csv", "")}, telemetry.ErrEmptyInput},
		{
			"degenerate reference",
			&options{file: writeFile(t, "lap.csv", "Time,Speed\n0,0\n1,0\n2,0\n3,0\n"),
				reference: writeFile(t, "ref.csv", "Time,Speed\n0,0\n1,0\n2,0\n3,0\n")},
			coach.ErrDegenerateInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), &bytes.Buffer{}, tt.opts, coach.NewRuleBased())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
