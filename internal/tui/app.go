package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"puntuale/internal/config"
	"puntuale/internal/csvio"
	"puntuale/internal/meeting"
)

// App is the root Bubble Tea model.
type App struct {
	meeting *meeting.Meeting
	cfg     config.Config
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	importForm *huh.Form
	importPath *string

	clearForm    *huh.Form
	clearConfirm *bool

	agenda agendaModel
	timer  timerModel
	data   dataModel
	chart  chartModel

	help          help.Model
	status        string
	statusIsError bool

	// One outstanding tick per active activity. The generation bumps
	// whenever the active identity changes so stale ticks are dropped.
	tickGen   int
	tickOwner int64
}

func NewApp(m *meeting.Meeting, cfg config.Config) App {
	h := help.New()
	h.ShowAll = false

	return App{
		meeting:    m,
		cfg:        cfg,
		activeView: viewAgenda,
		agenda:     newAgendaModel(m, cfg.DefaultMinutes),
		timer:      newTimerModel(m),
		data:       newDataModel(m),
		chart:      newChartModel(m),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return nil
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// armTick starts a tick loop when the active activity changed since the
// last call. The old loop, if any, is invalidated by the generation
// bump so at most one loop runs at a time.
func (a *App) armTick() tea.Cmd {
	owner := a.meeting.ActiveID()
	if owner == a.tickOwner {
		return nil
	}
	a.tickOwner = owner
	a.tickGen++
	if owner == 0 {
		return nil
	}
	return tickCmd(a.tickGen)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.agenda.setSize(a.width, contentHeight)
		a.timer.setSize(a.width, contentHeight)
		a.data.setSize(a.width, contentHeight)
		a.chart.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.importForm != nil {
			return a.updateImportForm(msg)
		}
		if a.clearForm != nil {
			return a.updateClearForm(msg)
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Import):
			return a.showImportForm()
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Clear):
			return a.showClearForm()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewAgenda
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewData
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewChart
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, nil
		}
		return a.updateActiveView(msg)

	case tickMsg:
		if msg.gen != a.tickGen {
			return a, nil
		}
		a.meeting.Tick()
		if a.meeting.ActiveID() == 0 {
			return a, nil
		}
		return a, tickCmd(a.tickGen)

	case statusMsg:
		a.status = msg.text
		a.statusIsError = msg.isError
		return a, nil

	case importParsedMsg:
		if len(msg.acts) == 0 {
			a.status = csvio.DataFormatHint
			a.statusIsError = true
			return a, nil
		}
		a.meeting.Append(msg.acts)
		kind := "modello"
		if msg.data {
			kind = "dati"
		}
		a.status = fmt.Sprintf("Importate %d attività (%s).", len(msg.acts), kind)
		a.statusIsError = false
		return a, nil

	case exportDoneMsg:
		a.status = "Esportato in " + msg.path
		a.statusIsError = false
		return a, nil
	}

	// Non-key messages (form init, cursor blink) still reach an open
	// overlay form.
	if a.importForm != nil {
		return a.updateImportForm(msg)
	}
	if a.clearForm != nil {
		return a.updateClearForm(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewAgenda:
		a.agenda, cmd = a.agenda.update(msg)
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewData:
		a.data, cmd = a.data.update(msg)
	case viewChart:
		a.chart, cmd = a.chart.update(msg)
	}
	return a, tea.Batch(cmd, a.armTick())
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewAgenda:
		return a.agenda.formActive
	case viewTimer:
		return a.timer.formActive
	case viewData:
		return a.data.formActive
	}
	return false
}

// ============================================================
// Import
// ============================================================

func (a App) showImportForm() (tea.Model, tea.Cmd) {
	path := ""
	a.importPath = &path
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("File CSV da importare").
				Placeholder("percorso del file (dati o modello)").
				Value(a.importPath),
		),
	).WithShowHelp(true)
	return a, a.importForm.Init()
}

func (a App) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.importForm = nil
		return a, nil
	}

	form, cmd := a.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.importForm = f
	}

	if a.importForm.State == huh.StateCompleted {
		path := strings.TrimSpace(*a.importPath)
		a.importForm = nil
		if path == "" {
			return a, nil
		}
		return a, tea.Batch(cmd, importCmd(path))
	}
	return a, cmd
}

// importCmd reads a CSV file and parses it with whichever dialect its
// header announces.
func importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Errore di lettura: %v", err), isError: true}
		}
		text := string(raw)
		if csvio.Detect(text) {
			return importParsedMsg{acts: csvio.ParseData(text), data: true}
		}
		return importParsedMsg{acts: csvio.ParseTemplate(text)}
	}
}

// ============================================================
// Export
// ============================================================

var exportTargets = []string{"Dati (CSV)", "Modello (CSV)"}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportTargets)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(target int) tea.Cmd {
	acts := make([]meeting.Activity, len(a.meeting.Activities))
	copy(acts, a.meeting.Activities)
	dir := a.cfg.ResolveExportDir()

	return func() tea.Msg {
		now := time.Now()

		var path string
		var err error
		if target == 0 {
			path = filepath.Join(dir, csvio.DataFilename(now))
			err = csvio.WriteData(acts, path)
		} else {
			path = filepath.Join(dir, csvio.TemplateFilename(now))
			err = csvio.WriteTemplate(acts, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Errore di esportazione: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Esporta"))
	rows = append(rows, "")
	for i, t := range exportTargets {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+t))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  invio: esporta  esc: annulla"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// ============================================================
// Clear
// ============================================================

func (a App) showClearForm() (tea.Model, tea.Cmd) {
	confirm := false
	a.clearConfirm = &confirm
	a.clearForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Eliminare tutti i dati della riunione?").
				Affirmative("Sì").
				Negative("No").
				Value(a.clearConfirm),
		),
	).WithShowHelp(true)
	return a, a.clearForm.Init()
}

func (a App) updateClearForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.clearForm = nil
		return a, nil
	}

	form, cmd := a.clearForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.clearForm = f
	}

	if a.clearForm.State == huh.StateCompleted {
		a.clearForm = nil
		if *a.clearConfirm {
			a.meeting.Clear(time.Now())
			a.status = "Dati della riunione eliminati."
			a.statusIsError = false
			return a, a.armTick()
		}
	}
	return a, cmd
}

// ============================================================
// View
// ============================================================

func (a App) View() string {
	if a.width == 0 {
		return "Caricamento..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewAgenda:
		content = a.agenda.view()
	case viewTimer:
		content = a.timer.view()
	case viewData:
		content = a.data.view()
	case viewChart:
		content = a.chart.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.importForm != nil:
		content = activePanelStyle.Width(a.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Importa"), "", a.importForm.View()))
	case a.clearForm != nil:
		content = activePanelStyle.Width(a.width - 4).Render(a.clearForm.View())
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("puntuale")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusIsError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Countdown indicator while an activity runs
	timerInfo := ""
	if active := a.meeting.Active(); active != nil {
		c := a.meeting.Countdown()
		if c < 0 {
			timerInfo = errorStyle.Render(" ● " + formatCountdown(c))
		} else {
			timerInfo = successStyle.Render(" ● " + formatCountdown(c))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
