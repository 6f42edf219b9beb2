package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"puntuale/internal/meeting"
)

// timerModel shows the running countdown plus the projected end of the
// meeting. Also hosts the settings form (start time, ignore threshold).
type timerModel struct {
	meeting *meeting.Meeting
	width   int
	height  int

	formActive bool
	form       *huh.Form

	formStart     *string
	formThreshold *string
}

func newTimerModel(m *meeting.Meeting) timerModel {
	start, threshold := "", ""
	return timerModel{
		meeting:       m,
		formStart:     &start,
		formThreshold: &threshold,
	}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Settings):
		return t.showSettingsForm()
	case key.Matches(keyMsg, keys.Toggle):
		if id := t.meeting.ActiveID(); id != 0 {
			if n := t.meeting.Toggle(id, time.Now()); n.Some() {
				return t, noticeCmd(n)
			}
		}
	}
	return t, nil
}

func (t timerModel) showSettingsForm() (timerModel, tea.Cmd) {
	*t.formStart = t.meeting.StartTime.Format("15:04")
	*t.formThreshold = strconv.Itoa(int(t.meeting.IgnoreThreshold.Seconds()))

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Orario di inizio riunione (HH:MM)").Value(t.formStart).
				Validate(func(s string) error {
					if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("usa il formato HH:MM")
					}
					return nil
				}),
			huh.NewInput().Title("Soglia di scarto (secondi)").Value(t.formThreshold).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 0 {
						return fmt.Errorf("inserisci un numero di secondi non negativo")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t timerModel) updateForm(msg tea.Msg) (timerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false

		if parsed, err := time.Parse("15:04", strings.TrimSpace(*t.formStart)); err == nil {
			now := time.Now()
			t.meeting.StartTime = time.Date(now.Year(), now.Month(), now.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
		}
		if n, err := strconv.Atoi(strings.TrimSpace(*t.formThreshold)); err == nil && n >= 0 {
			t.meeting.IgnoreThreshold = time.Duration(n) * time.Second
		}
	}

	return t, cmd
}

func (t timerModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Impostazioni"), "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Timer"))
	rows = append(rows, "")

	active := t.meeting.Active()
	if active == nil {
		rows = append(rows, mutedStyle.Render("Nessuna attività in corso."))
		rows = append(rows, mutedStyle.Render("Seleziona un'attività nell'agenda e premi spazio."))
	} else {
		rows = append(rows, normalTextStyle.Render(active.Name))
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("previsto %d min", active.PlannedMinutes())))
		rows = append(rows, "")
		rows = append(rows, t.renderCountdown())
	}

	rows = append(rows, "")
	rows = append(rows, t.renderProjection())
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  o: impostazioni  space: ferma l'attività in corso"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timerModel) renderCountdown() string {
	c := t.meeting.Countdown()
	text := formatCountdown(c)

	style := countdownStyle
	switch {
	case c < 0:
		style = countdownOverStyle
	case c < 10:
		style = countdownLowStyle
	}
	return style.Render(text)
}

func (t timerModel) renderProjection() string {
	p := t.meeting.Project(time.Now())

	boxes := []string{
		statBox("Fine Prevista (Pianificata)", formatWallClock(p.PlannedEnd)),
		statBox("Fine Prevista (Reale)", formatWallClock(p.ProjectedEnd)),
		statBox("Differenza Parziale (Attività)", formatDeviation(p.Partial)),
		statBox("Differenza Totale (Riunione)", formatDeviation(p.Total)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func statBox(label, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		statLabelStyle.Render(label),
		statValueStyle.Render(value),
	)
	return statBoxStyle.Render(content)
}
