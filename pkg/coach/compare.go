package coach

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

const numSectors = 3

// Compare splits both laps' preview samples into 3 sectors of equal sample
// count and compares the mean speeds. The sector size is derived from the
// user lap, trailing samples that do not fill a sector are ignored.
//
// Sectors are index based, not time or distance based.
func Compare(user, reference *model.LapMetrics) (*model.SectorComparison, error) {
	size := len(user.DataPoints) / numSectors
	if size == 0 {
		return nil, fmt.Errorf("%w: user lap has %d samples, need at least %d",
			ErrDegenerateInput, len(user.DataPoints), numSectors)
	}
	ret := &model.SectorComparison{
		TimeDifference:     user.LapTime - reference.LapTime,
		AvgSpeedDifference: user.AvgSpeed - reference.AvgSpeed,
		Sectors:            make([]model.SectorResult, 0, numSectors),
	}
	for i := range numSectors {
		start, end := i*size, (i+1)*size
		userAvg := meanSpeed(user.DataPoints, start, end)
		refAvg := meanSpeed(reference.DataPoints, start, end)
		if refAvg == nil {
			return nil, fmt.Errorf("%w: reference lap has no samples in sector %d",
				ErrDegenerateInput, i)
		}
		if *refAvg == 0 {
			return nil, fmt.Errorf("%w: reference average speed is 0 in sector %d",
				ErrDegenerateInput, i)
		}
		ret.Sectors = append(ret.Sectors, model.SectorResult{
			SectorIndex:       i,
			UserAvgSpeed:      *userAvg,
			ReferenceAvgSpeed: *refAvg,
			SpeedDifference:   *userAvg - *refAvg,
			EstimatedTimeLost: ((*refAvg - *userAvg) / *refAvg) * (user.LapTime / numSectors),
		})
	}
	return ret, nil
}

// meanSpeed returns nil if the window [start,end) contains no samples.
// A window reaching past the end is cut at the end.
func meanSpeed(samples []model.Sample, start, end int) *float64 {
	end = min(end, len(samples))
	if start >= end {
		return nil
	}
	window := samples[start:end]
	ret := lo.SumBy(window, func(s model.Sample) float64 { return s.Speed }) /
		float64(len(window))
	return &ret
}
