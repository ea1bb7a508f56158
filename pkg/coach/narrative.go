package coach

import (
	"fmt"
	"math"
	"strings"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

// FormatLapTime renders seconds as M:SS.mmm
func FormatLapTime(seconds float64) string {
	minutes := math.Floor(seconds / 60)
	rest := math.Mod(seconds, 60)
	return fmt.Sprintf("%d:%06.3f", int(minutes), rest)
}

// Narrative composes the human readable report. Braking and cornering
// sections are left out when there are no such events.
func Narrative(m *model.LapMetrics, improvement float64) string {
	lines := []string{
		fmt.Sprintf("Lap Time: %s", FormatLapTime(m.LapTime)),
		"",
		"**Speed Analysis:**",
		fmt.Sprintf("- Maximum Speed: %.1f km/h", m.MaxSpeed),
		fmt.Sprintf("- Average Speed: %.1f km/h", m.AvgSpeed),
		fmt.Sprintf("- Minimum Speed: %.1f km/h", m.MinSpeed),
	}
	if len(m.BrakingPoints) > 0 {
		lines = append(lines,
			"",
			"**Braking Analysis:**",
			fmt.Sprintf("- Braking Zones: %d", len(m.BrakingPoints)),
			fmt.Sprintf("- Max Brake Pressure: %.1f%%", m.MaxBrake*100),
		)
	}
	lines = append(lines,
		"",
		"**Throttle Control:**",
		fmt.Sprintf("- Max Throttle: %.1f%%", m.MaxThrottle*100),
	)
	if len(m.Corners) > 0 {
		lines = append(lines,
			"",
			"**Corner Analysis:**",
			fmt.Sprintf("- Corner Count: %d", len(m.Corners)),
			fmt.Sprintf("- Avg Corner Speed: %.1f km/h", avgCornerSpeed(m)),
		)
	}
	lines = append(lines,
		"",
		"**Potential Improvement:**",
		fmt.Sprintf("By addressing the recommendations above, you could potentially "+
			"improve your lap time by %.2f seconds.", improvement),
	)
	return strings.Join(lines, "\n")
}
