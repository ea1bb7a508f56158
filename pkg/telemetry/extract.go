package telemetry

import (
	"errors"
	"math"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

// AssumedSampleRateHz is used to derive timestamps for sources without a time
// column. It is a guess, not a measured value.
const AssumedSampleRateHz = 62.5

// PreviewSize is the number of samples kept in LapMetrics.DataPoints
const PreviewSize = 1000

const (
	brakeThreshold    = 0.3
	throttleThreshold = 0.5
	steeringThreshold = 0.3
	cornerSpeedFactor = 0.6
)

var ErrEmptyInput = errors.New("no telemetry records")

type (
	Extractor struct {
		sampleRate float64
		l          *log.Logger
	}
	Option func(*Extractor)
)

func NewExtractor(opts ...Option) *Extractor {
	ret := &Extractor{
		sampleRate: AssumedSampleRateHz,
		l:          log.Default().Named("telemetry"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// WithAssumedSampleRate overrides the rate used for records without time.
func WithAssumedSampleRate(hz float64) Option {
	return func(e *Extractor) {
		if hz > 0 {
			e.sampleRate = hz
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) {
		e.l = l
	}
}

func (e *Extractor) interval() float64 {
	return 1 / e.sampleRate
}

// Extract computes the lap metrics from records in a single pass.
//
//nolint:funlen // single pass over all samples
func (e *Extractor) Extract(records []model.RawRecord, sourceTag string) (
	*model.LapMetrics, error,
) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	interval := e.interval()
	m := &model.LapMetrics{
		SimType:       sourceTag,
		TotalRecords:  len(records),
		MinSpeed:      math.Inf(1),
		BrakingPoints: []model.BrakingEvent{},
		AccelPoints:   []model.AccelerationEvent{},
		Corners:       []model.CornerEvent{},
		DataPoints:    make([]model.Sample, 0, min(len(records), PreviewSize)),
	}

	totalSpeed := 0.0
	prevSpeed := 0.0
	for i, rec := range records {
		s := normalize(rec, i, interval)

		// running max includes the current sample before corner detection
		m.MaxSpeed = math.Max(m.MaxSpeed, s.Speed)
		m.MinSpeed = math.Min(m.MinSpeed, s.Speed)
		totalSpeed += s.Speed
		m.MaxThrottle = math.Max(m.MaxThrottle, s.Throttle)
		m.MaxBrake = math.Max(m.MaxBrake, s.Brake)

		if s.Brake > brakeThreshold && s.Speed < prevSpeed {
			m.BrakingPoints = append(m.BrakingPoints, model.BrakingEvent{
				Time: s.Time, Speed: s.Speed, Brake: s.Brake, Index: i,
			})
		}
		if s.Throttle > throttleThreshold && s.Speed > prevSpeed {
			m.AccelPoints = append(m.AccelPoints, model.AccelerationEvent{
				Time: s.Time, Speed: s.Speed, Throttle: s.Throttle, Index: i,
			})
		}
		steering := math.Abs(s.Steering)
		if s.Speed < m.MaxSpeed*cornerSpeedFactor && steering > steeringThreshold {
			m.Corners = append(m.Corners, model.CornerEvent{
				Time: s.Time, Speed: s.Speed, Steering: steering, Index: i,
			})
		}

		if i < PreviewSize {
			m.DataPoints = append(m.DataPoints, s)
		}
		prevSpeed = s.Speed
	}

	m.AvgSpeed = totalSpeed / float64(len(records))
	if t, ok := lookup(records[len(records)-1], timeKeys); ok {
		m.LapTime = t
	} else {
		m.LapTime = float64(len(records)) * interval
		m.LapTimeInferred = true
	}

	e.l.Debug("extracted lap metrics",
		log.String("source", sourceTag),
		log.Int("records", m.TotalRecords),
		log.Float64("lapTime", m.LapTime),
		log.Int("braking", len(m.BrakingPoints)),
		log.Int("acceleration", len(m.AccelPoints)),
		log.Int("corners", len(m.Corners)))
	return m, nil
}
