package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"puntuale/internal/meeting"
)

// chartModel renders planned vs actual minutes per activity as a bar
// chart, rebuilt on every view refresh.
type chartModel struct {
	meeting *meeting.Meeting
	width   int
	height  int

	chart barchart.Model
}

func newChartModel(m *meeting.Meeting) chartModel {
	return chartModel{
		meeting: m,
		chart:   barchart.New(60, 12),
	}
}

func (c *chartModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c chartModel) update(msg tea.Msg) (chartModel, tea.Cmd) {
	return c, nil
}

func (c *chartModel) rebuild() {
	chartWidth := c.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if c.height > 30 {
		chartHeight = 16
	}

	c.chart = barchart.New(chartWidth, chartHeight)

	plannedStyle := lipgloss.NewStyle().Foreground(colorPlanned)
	actualStyle := lipgloss.NewStyle().Foreground(colorActual)

	var bars []barchart.BarData
	for _, p := range c.meeting.ChartSeries() {
		bars = append(bars, barchart.BarData{
			Label: p.Label,
			Values: []barchart.BarValue{
				{Name: "Tempo Previsto (min)", Value: float64(p.PlannedMinutes), Style: plannedStyle},
				{Name: "Tempo Effettivo (min)", Value: float64(p.ActualMinutes), Style: actualStyle},
			},
		})
	}

	c.chart.PushAll(bars)
	c.chart.Draw()
}

func (c chartModel) view() string {
	w := c.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render("Previsto vs Effettivo"))
	rows = append(rows, "")

	if len(c.meeting.Activities) == 0 {
		rows = append(rows, mutedStyle.Render("Nessuna attività da visualizzare."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	c.rebuild()
	rows = append(rows, c.chart.View())
	rows = append(rows, "")

	legend := fmt.Sprintf("%s %s   %s %s",
		lipgloss.NewStyle().Foreground(colorPlanned).Render("■"),
		mutedStyle.Render("Tempo Previsto (min)"),
		lipgloss.NewStyle().Foreground(colorActual).Render("■"),
		mutedStyle.Render("Tempo Effettivo (min)"),
	)
	rows = append(rows, legend)

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
