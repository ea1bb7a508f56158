package telemetry

import (
	"math"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

const (
	DefaultDemoTrack = "Spa-Francorchamps"
	DefaultDemoCar   = "GT3"

	demoDuration   = 140 // seconds
	demoSampleRate = 60  // Hz
)

// GenerateDemo creates a synthetic lap. The summary values are fixed and
// not computed from the generated samples, only the preview is generated.
func GenerateDemo(trackName, carName string) *model.LapMetrics {
	if trackName == "" {
		trackName = DefaultDemoTrack
	}
	if carName == "" {
		carName = DefaultDemoCar
	}
	total := demoDuration * demoSampleRate
	points := make([]model.Sample, 0, PreviewSize)
	for i := 0; i < total && i < PreviewSize; i++ {
		points = append(points, demoSample(float64(i)/demoSampleRate))
	}
	return &model.LapMetrics{
		SimType:       "demo",
		TrackName:     trackName,
		CarName:       carName,
		TotalRecords:  total,
		LapTime:       demoDuration,
		MaxSpeed:      280,
		MinSpeed:      80,
		AvgSpeed:      180,
		MaxThrottle:   0.9,
		MaxBrake:      0.8,
		BrakingPoints: []model.BrakingEvent{},
		AccelPoints:   []model.AccelerationEvent{},
		Corners:       []model.CornerEvent{},
		DataPoints:    points,
	}
}

func demoSample(t float64) model.Sample {
	progress := (t / demoDuration) * math.Pi * 2
	speed := math.Max(80, math.Min(280, 180+math.Sin(progress*3)*100))

	var throttle, brake, steering float64
	switch {
	case speed > 200:
		throttle = 0.9
	case speed > 150:
		throttle = 0.7
	default:
		throttle = 0.3
	}
	switch {
	case speed < 120:
		brake = 0.8
	case speed < 160:
		brake = 0.3
	}
	if speed < 150 {
		steering = math.Sin(progress*4) * 0.6
	} else {
		steering = math.Sin(progress*2) * 0.2
	}
	return model.Sample{
		Time:     t,
		Speed:    speed,
		Throttle: throttle,
		Brake:    brake,
		Steering: steering,
	}
}
