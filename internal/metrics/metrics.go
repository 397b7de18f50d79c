package metrics

import "time"

type MissionMetrics struct {
	Index      int       `json:"index"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Err        string    `json:"err,omitempty"`
}

// GenerationMetrics times one generation pass. Player names and mission texts
// are deliberately absent: metrics end up in the log file.
type GenerationMetrics struct {
	TaskID     string           `json:"task_id,omitempty"`
	Mode       string           `json:"mode"`
	Assigner   string           `json:"assigner"`
	Players    int              `json:"players"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	DurationMs int64            `json:"duration_ms"`
	Succeeded  bool             `json:"succeeded"`
	Missions   []MissionMetrics `json:"missions"`
}

// Compute derived fields for a mission.
func (m *MissionMetrics) Finalize() {
	m.DurationMs = m.End.Sub(m.Start).Milliseconds()
}

func (g *GenerationMetrics) Finalize() {
	g.DurationMs = g.End.Sub(g.Start).Milliseconds()
}

// Completed counts the missions that were produced successfully.
func (g *GenerationMetrics) Completed() int {
	n := 0
	for _, m := range g.Missions {
		if m.Success {
			n++
		}
	}
	return n
}
