package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"puntuale/internal/csvio"
	"puntuale/internal/meeting"
)

// dataColumn indexes the editable columns of the data table.
type dataColumn int

const (
	colActual dataColumn = iota
	colStart
	colEnd
)

var dataColumnNames = [...]string{"Tempo Effettivo", "Inizio", "Fine"}

// dataModel is the raw data view: one row per activity, with manual
// correction of actual time and timestamps.
type dataModel struct {
	meeting *meeting.Meeting
	width   int
	height  int

	cursor int
	column dataColumn

	formActive bool
	form       *huh.Form
	editingID  int64
	formValue  *string
}

func newDataModel(m *meeting.Meeting) dataModel {
	value := ""
	return dataModel{meeting: m, formValue: &value}
}

func (d *dataModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dataModel) clampCursor() {
	if d.cursor >= len(d.meeting.Activities) {
		d.cursor = len(d.meeting.Activities) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (d dataModel) update(msg tea.Msg) (dataModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if d.cursor < len(d.meeting.Activities)-1 {
			d.cursor++
		}
	case keyMsg.String() == "left", keyMsg.String() == "h":
		if d.column > colActual {
			d.column--
		}
	case keyMsg.String() == "right", keyMsg.String() == "l":
		if d.column < colEnd {
			d.column++
		}
	case key.Matches(keyMsg, keys.Enter), key.Matches(keyMsg, keys.Edit):
		return d.showEditForm()
	}
	return d, nil
}

func (d dataModel) showEditForm() (dataModel, tea.Cmd) {
	d.clampCursor()
	if len(d.meeting.Activities) == 0 {
		return d, nil
	}
	act := d.meeting.Activities[d.cursor]
	if act.Status == meeting.StatusActive {
		return d, noticeCmd(meeting.Notice{
			Kind:    meeting.NoticeUpdateActive,
			Message: "Non puoi modificare manualmente un'attività in corso.",
		})
	}

	switch d.column {
	case colActual:
		if act.Actual != nil {
			*d.formValue = fmt.Sprintf("%d", act.ActualMinutes())
		} else {
			*d.formValue = ""
		}
	case colStart:
		*d.formValue = csvio.FormatTime(act.Start)
	case colEnd:
		*d.formValue = csvio.FormatTime(act.End)
	}

	title := dataColumnNames[d.column]
	placeholder := "gg/mm/aaaa hh:mm:ss (vuoto per cancellare)"
	if d.column == colActual {
		placeholder = "minuti (vuoto per cancellare)"
	}

	d.editingID = act.ID
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title(title).Placeholder(placeholder).Value(d.formValue),
		),
	).WithShowHelp(true)
	d.formActive = true
	return d, d.form.Init()
}

func (d dataModel) updateForm(msg tea.Msg) (dataModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		if n := d.applyEdit(strings.TrimSpace(*d.formValue)); n.Some() {
			return d, noticeCmd(n)
		}
	}

	return d, cmd
}

func (d dataModel) applyEdit(raw string) meeting.Notice {
	switch d.column {
	case colActual:
		var dur *time.Duration
		if mins, ok := leadingMinutes(raw); ok {
			v := time.Duration(mins) * time.Minute
			dur = &v
		}
		return d.meeting.SetActual(d.editingID, dur)
	case colStart:
		return d.meeting.SetStart(d.editingID, csvio.ParseTime(raw))
	case colEnd:
		return d.meeting.SetEnd(d.editingID, csvio.ParseTime(raw))
	}
	return meeting.Notice{}
}

// leadingMinutes parses a non-negative leading integer, tolerating
// trailing text like "12 min".
func leadingMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, i := 0, 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, false
	}
	return n, true
}

func (d dataModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Correzione Manuale"), "", d.form.View())
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Dati della Riunione"))
	rows = append(rows, "")

	if len(d.meeting.Activities) == 0 {
		rows = append(rows, mutedStyle.Render("Nessuna attività."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	header := fmt.Sprintf("   %-30s %10s %-18s %-14s %-14s",
		"Attività", "Previsto", d.headerCell(colActual), d.headerCell(colStart), d.headerCell(colEnd))
	rows = append(rows, mutedStyle.Render(header))

	for i, act := range d.meeting.Activities {
		rows = append(rows, d.renderRow(i, act))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  frecce: sposta  invio: modifica il campo selezionato"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dataModel) headerCell(c dataColumn) string {
	name := dataColumnNames[c]
	if c == d.column {
		return "[" + name + "]"
	}
	return " " + name + " "
}

func (d dataModel) renderRow(i int, act meeting.Activity) string {
	cursor := "  "
	style := normalItemStyle
	if i == d.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	line := fmt.Sprintf("%s %-30s %7d min %-18s %-14s %-14s",
		cursor,
		truncate(act.Name, 30),
		act.PlannedMinutes(),
		formatOptMinutes(act.Actual),
		formatOptTime(act.Start),
		formatOptTime(act.End),
	)

	if act.Status == meeting.StatusActive {
		return successStyle.Render(line + "  (in corso)")
	}
	return style.Render(line)
}
