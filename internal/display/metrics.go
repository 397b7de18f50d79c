package display

import (
	"fmt"
	"strings"

	"killer/internal/metrics"
)

func FormatGenerationMetrics(gm *metrics.GenerationMetrics) string {
	if gm == nil {
		return "No metrics available."
	}
	var sb strings.Builder
	sb.WriteString("Generation metrics:\n")
	sb.WriteString(fmt.Sprintf("- Total: %d ms  (mode=%s, assigner=%s, success=%v)\n",
		gm.DurationMs, gm.Mode, gm.Assigner, gm.Succeeded))
	for _, m := range gm.Missions {
		status := "ok"
		if !m.Success {
			status = "err"
		}
		sb.WriteString(fmt.Sprintf("    - mission %-3d %5d ms  [%s]\n", m.Index+1, m.DurationMs, status))
	}
	return sb.String()
}
