// Package tui renders the dashboard in a terminal using BubbleTea. Each tick
// re-projects the engine's current frame; the model never mutates it.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"workshop_monitor/internal/engine"
	"workshop_monitor/internal/models"
	"workshop_monitor/internal/stream"
	"workshop_monitor/internal/threshold"
	"workshop_monitor/internal/view"
)

const (
	renderInterval = 500 * time.Millisecond
	tableRows      = 10
	minWidth       = 60
)

// Source supplies frames to render.
type Source interface {
	Frame() engine.Frame
}

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model of the terminal dashboard.
type Model struct {
	src       Source
	projector *view.Projector
	onQuit    func()

	dash   view.Dashboard
	width  int
	height int
	scroll int
}

// New builds a model reading from src. onQuit runs once when the user quits
// and is where the caller stops the engine.
func New(src Source, projector *view.Projector, onQuit func()) Model {
	m := Model{src: src, projector: projector, onQuit: onQuit}
	m.dash = projector.Project(src.Frame())
	return m
}

func tickCmd() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.onQuit != nil {
				m.onQuit()
			}
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			if m.scroll < len(m.dash.TableRows)-tableRows {
				m.scroll++
			}
		case "home":
			m.scroll = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.dash = m.projector.Project(m.src.Frame())
		return m, tickCmd()
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg = lipgloss.Color("17")
	colorTitleFg = lipgloss.Color("51")
	colorBorder  = lipgloss.Color("62")
	colorLabel   = lipgloss.Color("252")
	colorDim     = lipgloss.Color("240")
	colorOk      = lipgloss.Color("78")
	colorWarn    = lipgloss.Color("220")
	colorHigh    = lipgloss.Color("208")
	colorCrit    = lipgloss.Color("196")
	colorLow     = lipgloss.Color("39")
)

func tierColor(t threshold.Tier) lipgloss.Color {
	switch t {
	case threshold.TierLow:
		return colorLow
	case threshold.TierHigh:
		return colorHigh
	case threshold.TierWarning:
		return colorWarn
	case threshold.TierCritical:
		return colorCrit
	case threshold.TierNormal:
		return colorOk
	default:
		return colorLabel
	}
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	width := m.width - 2
	if width < minWidth {
		width = minWidth
	}

	sections := []string{
		m.renderTitleBar(width),
		m.renderStatusPanel(width),
		m.renderHistoryPanel(width),
		lipgloss.NewStyle().Foreground(colorDim).Render(" q quit  ↑/↓ scroll table"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().Bold(true).Foreground(colorTitleFg).Render("WORKSHOP MONITOR")

	sys := m.dash.SystemStatus
	conn := lipgloss.NewStyle().Foreground(connectionColor(sys.Connection)).Render(strings.ToUpper(sys.Connection))
	right := conn + lipgloss.NewStyle().Foreground(colorDim).Render(
		fmt.Sprintf(" │ every %s │ %d records", sys.UpdateEvery, sys.RecordCount))

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func connectionColor(c string) lipgloss.Color {
	switch c {
	case view.ConnectionOK:
		return colorOk
	case view.ConnectionDegraded:
		return colorWarn
	case view.ConnectionDown:
		return colorCrit
	default:
		return colorDim
	}
}

func panel(width int, title string, body ...string) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(colorLabel).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{head}, body...)...))
}

// stateBody renders the loading or error placeholder, or returns ok=false
// when the panel should show content.
func stateBody(p view.StreamPanel, what string) (string, bool) {
	switch p.Display {
	case stream.DisplayLoading:
		return lipgloss.NewStyle().Foreground(colorDim).Render("Loading " + what + "..."), true
	case stream.DisplayError:
		return lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("ERROR: " + p.Error), true
	}
	return "", false
}

func banner(p view.StreamPanel) []string {
	if p.Banner == "" {
		return nil
	}
	return []string{lipgloss.NewStyle().Foreground(colorWarn).Render("⚠ " + p.Banner + " (showing last known data)")}
}

func (m Model) renderStatusPanel(width int) string {
	if s, ok := stateBody(m.dash.Status, "status"); ok && m.dash.LatestCard == nil {
		return panel(width, "Current readings", s)
	}
	card := m.dash.LatestCard
	if card == nil {
		return panel(width, "Current readings", lipgloss.NewStyle().Foreground(colorDim).Render("No data"))
	}

	var cells []string
	for _, r := range card.Readings {
		label := lipgloss.NewStyle().Foreground(colorDim).Render(r.Metric.Label() + " ")
		val := lipgloss.NewStyle().Foreground(tierColor(r.Tier)).Bold(true).Render(r.Formatted + r.Unit)
		tier := lipgloss.NewStyle().Foreground(tierColor(r.Tier)).Render(" " + string(r.Tier))
		cells = append(cells, label+val+tier)
	}
	fan := lipgloss.NewStyle().Foreground(colorDim).Render("Fan ") +
		lipgloss.NewStyle().Foreground(colorLabel).Render(card.FanLabel+" "+card.FanSpeedPct+"%")
	cells = append(cells, fan)
	if card.WarningOn {
		cells = append(cells, lipgloss.NewStyle().Foreground(colorCrit).Bold(true).Render("WARNING"))
	}

	body := append(banner(m.dash.Status), strings.Join(cells, "   "))
	return panel(width, "Current readings", body...)
}

func (m Model) renderHistoryPanel(width int) string {
	title := "History"
	if s, ok := stateBody(m.dash.History, "history"); ok {
		return panel(width, title, s)
	}

	cs := m.dash.ChartSeries
	title = fmt.Sprintf("History (showing %d of %d points)", cs.DisplayedPoints, cs.TotalRecords)
	body := banner(m.dash.History)

	temps := make([]float64, len(cs.Points))
	for i, p := range cs.Points {
		temps[i] = p.Temperature
	}
	body = append(body, lipgloss.NewStyle().Foreground(colorDim).Render("Temp ")+Sparkline(temps))
	body = append(body, m.renderTable()...)
	return panel(width, title, body...)
}

func (m Model) renderTable() []string {
	rows := m.dash.TableRows
	if len(rows) == 0 {
		return []string{lipgloss.NewStyle().Foreground(colorDim).Render("No records")}
	}
	start := m.scroll
	if start > len(rows) {
		start = len(rows)
	}
	end := start + tableRows
	if end > len(rows) {
		end = len(rows)
	}

	head := lipgloss.NewStyle().Foreground(colorDim).Render(
		fmt.Sprintf("%-19s  %8s  %8s  %8s  %-4s %4s", "Time", "Temp", "Hum", "Smoke", "Fan", "Spd"))
	out := []string{head}
	for _, r := range rows[start:end] {
		cell := func(v string, metric models.Metric) string {
			return lipgloss.NewStyle().Foreground(tierColor(r.Tiers[metric])).Render(fmt.Sprintf("%8s", v))
		}
		out = append(out, fmt.Sprintf("%-19s  %s  %s  %s  %-4s %3s%%",
			r.Timestamp,
			cell(r.Temperature, models.MetricTemperature),
			cell(r.Humidity, models.MetricHumidity),
			cell(r.SmokeLevel, models.MetricSmokeLevel),
			r.Fan, r.FanSpeedPct))
	}
	return out
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline scales values between their own min and max onto block runes.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
