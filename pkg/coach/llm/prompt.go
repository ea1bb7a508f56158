package llm

import (
	"fmt"
	"strings"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

func BuildPrompt(m *model.LapMetrics) string {
	var b strings.Builder
	b.WriteString("Analyze this sim racing lap telemetry and provide specific coaching advice:\n\n")
	fmt.Fprintf(&b, "Lap Time: %.2fs\n", m.LapTime)
	fmt.Fprintf(&b, "Max Speed: %.1f km/h\n", m.MaxSpeed)
	fmt.Fprintf(&b, "Avg Speed: %.1f km/h\n", m.AvgSpeed)
	fmt.Fprintf(&b, "Min Speed: %.1f km/h\n", m.MinSpeed)
	fmt.Fprintf(&b, "Braking Zones: %d\n", len(m.BrakingPoints))
	fmt.Fprintf(&b, "Corners: %d\n", len(m.Corners))
	fmt.Fprintf(&b, "Max Throttle: %.1f%%\n", m.MaxThrottle*100)
	fmt.Fprintf(&b, "Max Brake: %.1f%%\n", m.MaxBrake*100)
	b.WriteString(`
Provide:
1. Key strengths in the lap
2. Top 3 areas for improvement
3. Specific techniques to implement
4. Estimated time savings possible`)
	return b.String()
}
