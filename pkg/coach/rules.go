package coach

import (
	"context"

	"github.com/samber/lo"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

const (
	lowAvgSpeed          = 150.0 // km/h
	fullBrakePressure    = 0.95
	minAccelerationZones = 5
	cornerSpeedRatio     = 0.5
)

// improvement per recommendation category in seconds
var categorySavings = map[model.Category]float64{
	model.CategoryCornering:    1.0,
	model.CategoryBraking:      0.5,
	model.CategoryAcceleration: 0.7,
	model.CategorySpeed:        1.2,
}

const defaultSavings = 0.2

var (
	recSpeed = model.Recommendation{
		Priority: model.PriorityHigh,
		Category: model.CategorySpeed,
		Title:    "Increase Average Speed",
		Description: "Your average speed is relatively low. Focus on carrying more speed " +
			"through corners and getting on throttle earlier.",
	}
	recBraking = model.Recommendation{
		Priority: model.PriorityMedium,
		Category: model.CategoryBraking,
		Title:    "Brake Harder Initially",
		Description: "You're not using maximum brake pressure. Try braking harder initially, " +
			"then trail off as you approach the apex.",
	}
	recAcceleration = model.Recommendation{
		Priority: model.PriorityHigh,
		Category: model.CategoryAcceleration,
		Title:    "Improve Acceleration Zones",
		Description: "Work on identifying optimal acceleration points. Get back to full " +
			"throttle as early as possible while maintaining control.",
	}
	recCornering = model.Recommendation{
		Priority: model.PriorityHigh,
		Category: model.CategoryCornering,
		Title:    "Increase Corner Speed",
		Description: "Your corner speeds are significantly lower than your average speed. " +
			"Focus on the racing line, proper braking points, and smooth inputs to carry " +
			"more speed through corners.",
	}
	recConsistency = model.Recommendation{
		Priority: model.PriorityMedium,
		Category: model.CategoryConsistency,
		Title:    "Focus on Consistency",
		Description: "Upload more laps to track your consistency. The best drivers focus on " +
			"repeatable, consistent laps rather than one-off fast laps.",
	}
	recSetup = model.Recommendation{
		Priority: model.PriorityLow,
		Category: model.CategorySetup,
		Title:    "Setup Optimization",
		Description: "Once you're consistent, start experimenting with setup changes. Small " +
			"adjustments to tire pressure, suspension, and aero can yield significant " +
			"improvements.",
	}
)

// RuleBased analyzes laps with a fixed set of threshold rules.
type RuleBased struct {
	l *log.Logger
}

var _ Analyzer = (*RuleBased)(nil)

func NewRuleBased() *RuleBased {
	return &RuleBased{l: log.Default().Named("coach.rules")}
}

// Analyze never returns an error. The context is not used.
func (r *RuleBased) Analyze(
	_ context.Context,
	metrics *model.LapMetrics,
) (*model.AnalysisResult, error) {
	recs := Recommendations(metrics)
	improvement := EstimateImprovement(recs)
	r.l.Debug("rule based analysis",
		log.Int("recommendations", len(recs)),
		log.Float64("improvement", improvement))
	return &model.AnalysisResult{
		Insights:             Narrative(metrics, improvement),
		Recommendations:      recs,
		AnalysisType:         model.AnalysisTypeRuleBased,
		EstimatedImprovement: &improvement,
	}, nil
}

// Recommendations evaluates all rules. Every matching rule contributes, the
// consistency and setup recommendations are always added.
func Recommendations(m *model.LapMetrics) []model.Recommendation {
	ret := []model.Recommendation{}
	if m.AvgSpeed < lowAvgSpeed {
		ret = append(ret, recSpeed)
	}
	if len(m.BrakingPoints) > 0 && m.MaxBrake < fullBrakePressure {
		ret = append(ret, recBraking)
	}
	if len(m.AccelPoints) < minAccelerationZones {
		ret = append(ret, recAcceleration)
	}
	if len(m.Corners) > 0 && avgCornerSpeed(m) < cornerSpeedRatio*m.AvgSpeed {
		ret = append(ret, recCornering)
	}
	return append(ret, recConsistency, recSetup)
}

// EstimateImprovement sums the fixed savings of each recommendation.
// Categories are not deduplicated.
func EstimateImprovement(recs []model.Recommendation) float64 {
	return lo.SumBy(recs, func(r model.Recommendation) float64 {
		if v, ok := categorySavings[r.Category]; ok {
			return v
		}
		return defaultSavings
	})
}

func avgCornerSpeed(m *model.LapMetrics) float64 {
	if len(m.Corners) == 0 {
		return 0
	}
	return lo.SumBy(m.Corners, func(c model.CornerEvent) float64 {
		return c.Speed
	}) / float64(len(m.Corners))
}
