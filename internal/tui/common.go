package tui

import (
	"fmt"
	"math"
	"time"

	"puntuale/internal/meeting"
)

// viewState represents the currently active view.
type viewState int

const (
	viewAgenda viewState = iota
	viewTimer
	viewData
	viewChart
)

var viewNames = []string{"Agenda", "Timer", "Dati", "Grafico"}

// --- Messages ---

// tickMsg carries the generation of the timer that produced it; ticks
// from a cancelled generation are dropped.
type tickMsg struct {
	gen int
}

type statusMsg struct {
	text    string
	isError bool
}

// importParsedMsg carries the activities parsed from an imported file.
// data reports whether the file was a full data export rather than a
// template.
type importParsedMsg struct {
	acts []meeting.Activity
	data bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders non-negative seconds as mm:ss. Minutes keep
// growing past the hour, matching the countdown display.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// formatCountdown renders the live countdown; overrun shows as +mm:ss.
func formatCountdown(seconds int) string {
	if seconds < 0 {
		return "+" + formatClock(-seconds)
	}
	return formatClock(seconds)
}

// formatDeviation renders a signed deviation rounded to whole seconds.
func formatDeviation(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return sign + formatClock(secs)
}

// formatWallClock renders a projection timestamp as HH:MM.
func formatWallClock(t time.Time) string {
	return t.Format("15:04")
}

// formatOptMinutes renders a duration in whole minutes, "-" when absent.
func formatOptMinutes(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%d min", int(math.Round(d.Minutes())))
}

// formatOptTime renders a timestamp for the data table, "-" when absent.
func formatOptTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01 15:04")
}
