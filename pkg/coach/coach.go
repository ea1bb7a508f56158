// Package coach turns lap metrics into coaching recommendations and compares
// laps sector by sector.
package coach

import (
	"context"
	"errors"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

var ErrDegenerateInput = errors.New("degenerate input")

// Analyzer produces an AnalysisResult for a lap.
type Analyzer interface {
	Analyze(ctx context.Context, metrics *model.LapMetrics) (*model.AnalysisResult, error)
}
