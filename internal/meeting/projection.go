package meeting

import "time"

// Projection is the set of derived schedule numbers, recomputed on every
// tick and on every state transition.
type Projection struct {
	PlannedEnd   time.Time
	ProjectedEnd time.Time
	Partial      time.Duration
	Total        time.Duration
	Accumulated  time.Duration
}

// TotalPlanned sums the planned durations of every activity.
func (m *Meeting) TotalPlanned() time.Duration {
	var total time.Duration
	for _, a := range m.Activities {
		total += a.Planned
	}
	return total
}

// Project computes the live schedule picture at wall-clock now.
//
// The two branches are intentionally different and must stay so: while an
// activity runs, the end is projected from now plus the remaining budget;
// while idle, it is the planned end shifted by the deviation completed
// activities have accumulated. They give different numbers for a live
// overrun versus one inherited from history.
func (m *Meeting) Project(now time.Time) Projection {
	p := Projection{PlannedEnd: m.StartTime.Add(m.TotalPlanned())}

	for _, a := range m.Activities {
		if a.Status == StatusCompleted && a.Actual != nil {
			p.Accumulated += *a.Actual - a.Planned
		}
	}

	idx := m.find(m.activeID)
	if m.activeID != 0 && idx >= 0 && m.Activities[idx].Start != nil {
		a := m.Activities[idx]
		elapsed := now.Sub(*a.Start)

		remaining := a.Planned - elapsed
		if remaining < 0 {
			remaining = 0
		}
		for _, later := range m.Activities[idx+1:] {
			remaining += later.Planned
		}

		p.ProjectedEnd = now.Add(remaining)
		p.Partial = elapsed - a.Planned
		p.Total = p.ProjectedEnd.Sub(p.PlannedEnd)
		return p
	}

	p.ProjectedEnd = p.PlannedEnd.Add(p.Accumulated)
	p.Total = p.Accumulated
	p.Partial = 0
	return p
}
