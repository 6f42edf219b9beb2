package meeting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Meeting owns the whole in-memory session: the ordered agenda, the
// identity of the running activity and the anchors the projector and the
// countdown need. All mutations go through its methods; callers run them
// from a single event loop, so there is no locking here.
type Meeting struct {
	StartTime       time.Time
	IgnoreThreshold time.Duration
	Activities      []Activity

	activeID     int64
	sessionStart time.Time
	countdown    int
	nextID       int64
}

// New creates an empty meeting anchored at start.
func New(start time.Time) *Meeting {
	return &Meeting{
		StartTime:       start,
		IgnoreThreshold: 5 * time.Second,
		nextID:          1,
	}
}

// NoticeKind classifies user-facing outcomes that leave the store in its
// previous state (or, for short sessions, in a deliberately reverted one).
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeShortSession
	NoticeDeleteActive
	NoticeEditNotPending
	NoticeUpdateActive
	NoticeEndBeforeStart
)

// Notice is the non-fatal result of an operation. The zero value means
// the operation was applied without remark.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Some reports whether the notice carries anything to show the user.
func (n Notice) Some() bool { return n.Kind != NoticeNone }

func (m *Meeting) newID() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *Meeting) find(id int64) int {
	for i := range m.Activities {
		if m.Activities[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveID returns the id of the running activity, or 0.
func (m *Meeting) ActiveID() int64 { return m.activeID }

// Active returns the running activity, or nil.
func (m *Meeting) Active() *Activity {
	if idx := m.find(m.activeID); m.activeID != 0 && idx >= 0 {
		return &m.Activities[idx]
	}
	return nil
}

// Countdown is the seconds remaining on the running activity. It goes
// negative once the planned budget is exceeded.
func (m *Meeting) Countdown() int { return m.countdown }

// Tick advances the countdown by one second. It is a no-op while nothing
// is active, so a stale timer cannot drift the display.
func (m *Meeting) Tick() {
	if m.activeID != 0 {
		m.countdown--
	}
}

// Toggle is the single start/stop entry point. Calling it with the id of
// the running activity stops it; any other id starts that activity,
// closing out the running one first. Completed activities are never
// restarted in place: a zero-budget resume clone is inserted right after
// the original and started instead.
func (m *Meeting) Toggle(id int64, now time.Time) Notice {
	if m.activeID != 0 && id == m.activeID {
		return m.stopActive(now)
	}

	idx := m.find(id)
	if idx < 0 {
		return Notice{}
	}

	target := idx
	if m.Activities[idx].Status == StatusCompleted {
		clone := Activity{
			ID:     m.newID(),
			Name:   m.Activities[idx].Name + " " + resumeSuffix,
			Status: StatusPending,
		}
		m.insert(idx+1, clone)
		target = idx + 1
	}

	logicalStart := m.logicalStart(now)

	// Close out the running activity. No short-session suppression on
	// this path; that applies only to an explicit stop.
	if prev := m.find(m.activeID); m.activeID != 0 && prev >= 0 {
		if act := &m.Activities[prev]; act.Start != nil {
			actual := now.Sub(*act.Start)
			end := now
			act.Status = StatusCompleted
			act.End = &end
			act.Actual = &actual
		}
	}

	act := &m.Activities[target]
	start := logicalStart
	act.Status = StatusActive
	act.Start = &start
	act.End = nil
	act.Actual = nil

	m.activeID = act.ID
	m.sessionStart = now
	m.countdown = int(math.Round(act.Planned.Seconds()))
	return Notice{}
}

func (m *Meeting) stopActive(now time.Time) Notice {
	var n Notice
	if idx := m.find(m.activeID); idx >= 0 && !m.sessionStart.IsZero() {
		act := &m.Activities[idx]
		session := now.Sub(m.sessionStart)

		switch {
		case session < m.IgnoreThreshold:
			n = Notice{
				Kind:    NoticeShortSession,
				Message: fmt.Sprintf("Attività ignorata perché durata meno di %d secondi.", int(m.IgnoreThreshold.Seconds())),
			}
			if act.isResume() {
				m.remove(idx)
			} else {
				act.Status = StatusPending
				act.Start, act.End, act.Actual = nil, nil, nil
			}
		case act.Start != nil:
			// Duration is anchored to the activity's own start time,
			// not the session anchor.
			actual := now.Sub(*act.Start)
			end := now
			act.Status = StatusCompleted
			act.End = &end
			act.Actual = &actual
		}
	}

	m.activeID = 0
	m.countdown = 0
	m.sessionStart = time.Time{}
	return n
}

// logicalStart decides the start timestamp for an activity being started
// at wall-clock now. While another activity runs the handover is
// immediate; otherwise a delayed start is backfilled to the end of the
// most recently completed activity, or to the meeting anchor.
func (m *Meeting) logicalStart(now time.Time) time.Time {
	if m.activeID != 0 {
		return now
	}
	var last *time.Time
	for i := range m.Activities {
		a := &m.Activities[i]
		if a.Status == StatusCompleted && a.End != nil {
			if last == nil || a.End.After(*last) {
				last = a.End
			}
		}
	}
	if last != nil {
		return *last
	}
	return m.StartTime
}

// Add appends a Pending activity. Empty names and non-positive durations
// are ignored without remark.
func (m *Meeting) Add(name string, minutes int) {
	name = strings.TrimSpace(name)
	if name == "" || minutes <= 0 {
		return
	}
	m.Activities = append(m.Activities, Activity{
		ID:      m.newID(),
		Name:    name,
		Planned: time.Duration(minutes) * time.Minute,
		Status:  StatusPending,
	})
}

// Append bulk-loads imported records, assigning fresh ids. Records keep
// whatever status and timing fields the codec resolved.
func (m *Meeting) Append(acts []Activity) {
	for _, a := range acts {
		a.ID = m.newID()
		m.Activities = append(m.Activities, a)
	}
}

// Duplicate inserts a Pending copy right after the source.
func (m *Meeting) Duplicate(id int64) {
	idx := m.find(id)
	if idx < 0 {
		return
	}
	c := m.Activities[idx]
	c.ID = m.newID()
	c.Status = StatusPending
	c.Actual, c.Start, c.End = nil, nil, nil
	m.insert(idx+1, c)
}

// Delete removes an activity. The running one cannot be deleted.
func (m *Meeting) Delete(id int64) Notice {
	if m.activeID != 0 && id == m.activeID {
		return Notice{Kind: NoticeDeleteActive, Message: "Non puoi eliminare un'attività in corso."}
	}
	if idx := m.find(id); idx >= 0 {
		m.remove(idx)
	}
	return Notice{}
}

// Edit renames an activity and replaces its planned duration. Only
// Pending activities can be edited.
func (m *Meeting) Edit(id int64, name string, minutes int) Notice {
	idx := m.find(id)
	if idx < 0 {
		return Notice{}
	}
	if m.Activities[idx].Status != StatusPending {
		return Notice{Kind: NoticeEditNotPending, Message: "Puoi modificare solo attività in attesa."}
	}
	m.Activities[idx].Name = name
	m.Activities[idx].Planned = time.Duration(minutes) * time.Minute
	return Notice{}
}

// SetActual manually records the measured duration. With both timestamps
// present the pair stays authoritative and Actual is recomputed from it.
func (m *Meeting) SetActual(id int64, d *time.Duration) Notice {
	return m.manualUpdate(id, func(act *Activity) Notice {
		act.Actual = d
		if act.Start != nil && act.End != nil {
			actual := act.End.Sub(*act.Start)
			act.Actual = &actual
		}
		m.promote(act, d != nil)
		return Notice{}
	})
}

// SetStart manually edits the start timestamp.
func (m *Meeting) SetStart(id int64, t *time.Time) Notice {
	return m.manualUpdate(id, func(act *Activity) Notice {
		prev := act.Start
		act.Start = t
		if n := reconcileSpan(act); n.Some() {
			act.Start = prev
			return n
		}
		m.promote(act, t != nil)
		return Notice{}
	})
}

// SetEnd manually edits the end timestamp.
func (m *Meeting) SetEnd(id int64, t *time.Time) Notice {
	return m.manualUpdate(id, func(act *Activity) Notice {
		prev := act.End
		act.End = t
		if n := reconcileSpan(act); n.Some() {
			act.End = prev
			return n
		}
		m.promote(act, t != nil)
		return Notice{}
	})
}

func (m *Meeting) manualUpdate(id int64, apply func(*Activity) Notice) Notice {
	idx := m.find(id)
	if idx < 0 {
		return Notice{}
	}
	if m.activeID != 0 && id == m.activeID {
		return Notice{Kind: NoticeUpdateActive, Message: "Non puoi modificare manualmente un'attività in corso."}
	}
	return apply(&m.Activities[idx])
}

// reconcileSpan validates a timestamp edit and recomputes Actual from the
// pair once both ends are set.
func reconcileSpan(act *Activity) Notice {
	if act.Start == nil || act.End == nil {
		return Notice{}
	}
	if act.End.Before(*act.Start) {
		return Notice{Kind: NoticeEndBeforeStart, Message: "L'orario di fine non può essere precedente a quello di inizio."}
	}
	actual := act.End.Sub(*act.Start)
	act.Actual = &actual
	return Notice{}
}

func (m *Meeting) promote(act *Activity, set bool) {
	if set && act.Status == StatusPending {
		act.Status = StatusCompleted
	}
}

// Reorder moves the element at from before the current element at to,
// preserving all other relative order.
func (m *Meeting) Reorder(from, to int) {
	n := len(m.Activities)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	a := m.Activities[from]
	m.Activities = append(m.Activities[:from], m.Activities[from+1:]...)
	m.insert(to, a)
}

// Clear discards every activity and re-anchors the meeting at now.
func (m *Meeting) Clear(now time.Time) {
	m.Activities = nil
	m.activeID = 0
	m.countdown = 0
	m.sessionStart = time.Time{}
	m.StartTime = now
}

func (m *Meeting) insert(at int, a Activity) {
	m.Activities = append(m.Activities, Activity{})
	copy(m.Activities[at+1:], m.Activities[at:])
	m.Activities[at] = a
}

func (m *Meeting) remove(at int) {
	m.Activities = append(m.Activities[:at], m.Activities[at+1:]...)
}
