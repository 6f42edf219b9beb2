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

// agendaModel is the ordered agenda list: start/stop, add, edit,
// duplicate, delete and keyboard reordering.
type agendaModel struct {
	meeting *meeting.Meeting
	width   int
	height  int

	cursor         int
	defaultMinutes int

	formActive bool
	form       *huh.Form
	formType   string // "add" or "edit"
	editingID  int64

	// Form field pointers (survive value copies)
	formName    *string
	formMinutes *string
}

func newAgendaModel(m *meeting.Meeting, defaultMinutes int) agendaModel {
	name, minutes := "", ""
	return agendaModel{
		meeting:        m,
		defaultMinutes: defaultMinutes,
		formName:       &name,
		formMinutes:    &minutes,
	}
}

func (a *agendaModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a *agendaModel) clampCursor() {
	if a.cursor >= len(a.meeting.Activities) {
		a.cursor = len(a.meeting.Activities) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a agendaModel) selected() (meeting.Activity, bool) {
	if len(a.meeting.Activities) == 0 || a.cursor >= len(a.meeting.Activities) {
		return meeting.Activity{}, false
	}
	return a.meeting.Activities[a.cursor], true
}

func (a agendaModel) update(msg tea.Msg) (agendaModel, tea.Cmd) {
	if a.formActive && a.form != nil {
		return a.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if a.cursor < len(a.meeting.Activities)-1 {
			a.cursor++
		}

	case key.Matches(keyMsg, keys.MoveUp):
		if a.cursor > 0 {
			a.meeting.Reorder(a.cursor, a.cursor-1)
			a.cursor--
		}
	case key.Matches(keyMsg, keys.MoveDown):
		if a.cursor < len(a.meeting.Activities)-1 {
			a.meeting.Reorder(a.cursor, a.cursor+1)
			a.cursor++
		}

	case key.Matches(keyMsg, keys.Toggle), key.Matches(keyMsg, keys.Enter):
		act, ok := a.selected()
		if !ok {
			return a, nil
		}
		if n := a.meeting.Toggle(act.ID, time.Now()); n.Some() {
			a.clampCursor()
			return a, noticeCmd(n)
		}
		a.clampCursor()

	case key.Matches(keyMsg, keys.New):
		return a.showAddForm()

	case key.Matches(keyMsg, keys.Edit):
		act, ok := a.selected()
		if !ok {
			return a, nil
		}
		if act.Status != meeting.StatusPending {
			return a, noticeCmd(meeting.Notice{Kind: meeting.NoticeEditNotPending, Message: "Puoi modificare solo attività in attesa."})
		}
		return a.showEditForm(act)

	case key.Matches(keyMsg, keys.Duplicate):
		if act, ok := a.selected(); ok {
			a.meeting.Duplicate(act.ID)
		}

	case key.Matches(keyMsg, keys.Delete):
		act, ok := a.selected()
		if !ok {
			return a, nil
		}
		if n := a.meeting.Delete(act.ID); n.Some() {
			return a, noticeCmd(n)
		}
		a.clampCursor()
	}
	return a, nil
}

func noticeCmd(n meeting.Notice) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: n.Message, isError: n.Kind != meeting.NoticeShortSession}
	}
}

func (a agendaModel) showAddForm() (agendaModel, tea.Cmd) {
	*a.formName = ""
	*a.formMinutes = strconv.Itoa(a.defaultMinutes)
	a.formType = "add"
	a.form = a.newActivityForm()
	a.formActive = true
	return a, a.form.Init()
}

func (a agendaModel) showEditForm(act meeting.Activity) (agendaModel, tea.Cmd) {
	*a.formName = act.Name
	*a.formMinutes = strconv.Itoa(act.PlannedMinutes())
	a.formType = "edit"
	a.editingID = act.ID
	a.form = a.newActivityForm()
	a.formActive = true
	return a, a.form.Init()
}

func (a agendaModel) newActivityForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Nome attività").Value(a.formName),
			huh.NewInput().Title("Durata (min)").Value(a.formMinutes).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("inserisci un numero di minuti positivo")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (a agendaModel) updateForm(msg tea.Msg) (agendaModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.form = nil
			return a, nil
		}
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.formActive = false
		minutes, _ := strconv.Atoi(strings.TrimSpace(*a.formMinutes))
		name := strings.TrimSpace(*a.formName)

		switch a.formType {
		case "add":
			a.meeting.Add(name, minutes)
		case "edit":
			if n := a.meeting.Edit(a.editingID, name, minutes); n.Some() {
				return a, noticeCmd(n)
			}
		}
	}

	return a, cmd
}

func (a agendaModel) view() string {
	w := a.width - 4

	if a.formActive && a.form != nil {
		title := titleStyle.Render("Nuova Attività")
		if a.formType == "edit" {
			title = titleStyle.Render("Modifica Attività")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", a.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Agenda della Riunione")

	if len(a.meeting.Activities) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nessuna attività."),
			mutedStyle.Render("Premi n per aggiungerne una o i per importare un CSV."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, act := range a.meeting.Activities {
		rows = append(rows, a.renderRow(i, act))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: avvia/ferma  n: nuova  e: modifica  c: duplica  d: elimina  K/J: riordina"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (a agendaModel) renderRow(i int, act meeting.Activity) string {
	cursor := "  "
	style := normalItemStyle
	if i == a.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	marker := mutedStyle.Render("·")
	extra := ""
	switch act.Status {
	case meeting.StatusActive:
		marker = successStyle.Render("●")
		extra = successStyle.Render("  in corso")
	case meeting.StatusCompleted:
		marker = successStyle.Render("✓")
		if act.Actual != nil {
			extra = mutedStyle.Render("  effettivo " + formatOptMinutes(act.Actual))
		}
	}

	return style.Render(fmt.Sprintf("%s%s %-40s %4d min", cursor, marker, truncate(act.Name, 40), act.PlannedMinutes())) + extra
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
