package meeting

import (
	"math"
	"strings"
	"time"
)

// Status of an agenda activity.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// resumeSuffix marks activities synthesized by restarting a completed one.
const resumeSuffix = "(ripresa)"

// Activity is one agenda item. Actual, Start and End are nil until the
// item has been timed (or filled in by hand).
type Activity struct {
	ID      int64
	Name    string
	Planned time.Duration
	Actual  *time.Duration
	Start   *time.Time
	End     *time.Time
	Status  Status
}

func (a Activity) isResume() bool {
	return strings.HasSuffix(a.Name, resumeSuffix)
}

// PlannedMinutes is the planned duration rounded to whole minutes.
func (a Activity) PlannedMinutes() int {
	return roundMinutes(a.Planned)
}

// ActualMinutes is the recorded duration rounded to whole minutes, or 0
// when nothing has been recorded.
func (a Activity) ActualMinutes() int {
	if a.Actual == nil {
		return 0
	}
	return roundMinutes(*a.Actual)
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// ChartPoint is the per-activity pair a charting collaborator needs:
// planned vs recorded minutes under a label trimmed for axis space.
type ChartPoint struct {
	Label          string
	PlannedMinutes int
	ActualMinutes  int
}

const maxChartLabel = 30

func chartLabel(name string) string {
	r := []rune(name)
	if len(r) > maxChartLabel {
		return string(r[:27]) + "..."
	}
	return name
}

// ChartSeries returns one ChartPoint per activity in agenda order.
func (m *Meeting) ChartSeries() []ChartPoint {
	points := make([]ChartPoint, len(m.Activities))
	for i, a := range m.Activities {
		points[i] = ChartPoint{
			Label:          chartLabel(a.Name),
			PlannedMinutes: a.PlannedMinutes(),
			ActualMinutes:  a.ActualMinutes(),
		}
	}
	return points
}
