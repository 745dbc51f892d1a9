package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	panelBorder   = lipgloss.Color("#2D6A80")
	accentPrimary = lipgloss.Color("#50E3C2")
	mutedText     = lipgloss.Color("#8CA1AE")
	warningText   = lipgloss.Color("#FF6B6B")
)

var (
	borderStyle = lipgloss.NewStyle().
			Foreground(panelBorder)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentPrimary).
			Bold(true)

	chartLineStyle = lipgloss.NewStyle().
			Foreground(accentPrimary)

	errorStyle = lipgloss.NewStyle().
			Foreground(warningText).
			Bold(true)

	buyStyle = lipgloss.NewStyle().
			Foreground(accentPrimary)

	sellStyle = lipgloss.NewStyle().
			Foreground(warningText)

	waitingStyle = lipgloss.NewStyle().
			Foreground(mutedText)
)

// Pane titles.
const (
	graphTitle = "Backtest Performance"
	logsTitle  = "Algorithm Logs"
)

// renderPanel draws a w x h bordered box with the title embedded in the top
// border. Body lines fill the interior top-down; missing lines render blank
// and extra lines are clipped. Panels narrower or shorter than the border
// itself render as nothing.
func renderPanel(title string, body []string, w, h int) string {
	if w < 2 || h < 2 {
		return ""
	}
	border := lipgloss.RoundedBorder()
	innerW := w - 2
	innerH := h - 2

	rows := make([]string, 0, h)
	rows = append(rows, panelTop(title, innerW, border))
	for i := 0; i < innerH; i++ {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		rows = append(rows,
			borderStyle.Render(border.Left)+padLine(line, innerW)+borderStyle.Render(border.Right))
	}
	rows = append(rows,
		borderStyle.Render(border.BottomLeft+strings.Repeat(border.Bottom, innerW)+border.BottomRight))
	return strings.Join(rows, "\n")
}

// panelTop builds the top border row, splicing the title in when it fits.
func panelTop(title string, innerW int, border lipgloss.Border) string {
	title = strings.TrimSpace(title)
	if title != "" {
		label := " " + title + " "
		labelW := runewidth.StringWidth(label)
		if labelW+1 <= innerW {
			fill := innerW - labelW - 1
			return borderStyle.Render(border.TopLeft+border.Top) +
				panelTitleStyle.Render(label) +
				borderStyle.Render(strings.Repeat(border.Top, fill)+border.TopRight)
		}
	}
	return borderStyle.Render(border.TopLeft + strings.Repeat(border.Top, innerW) + border.TopRight)
}

// padLine pads a possibly styled line to exactly width cells, clipping it
// first if it overflows.
func padLine(line string, width int) string {
	if lipgloss.Width(line) > width {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line + strings.Repeat(" ", maxInt(0, width-lipgloss.Width(line)))
}

// tailWindow returns the last lines that fit a pane of the given outer
// height, oldest first. Both the log pane and every blotter column window
// their series this way.
func tailWindow[T any](items []T, paneHeight int) []T {
	visible := paneHeight - 2
	if visible <= 0 || len(items) == 0 {
		return nil
	}
	visible = minInt(visible, len(items))
	return items[len(items)-visible:]
}

// renderGraphPane plots the equity series inside its frame. With no samples
// yet the frame stays empty.
func renderGraphPane(equity []EquityPoint, rect Rect) string {
	chart := renderEquityChart(equity, rect.W-2, rect.H-2)
	body := make([]string, 0, len(chart))
	for _, row := range chart {
		body = append(body, chartLineStyle.Render(row))
	}
	return renderPanel(graphTitle, body, rect.W, rect.H)
}

// renderLogPane shows the newest log lines that fit, oldest first, with error
// lines highlighted. The viewport stays pinned to the end of the backlog so
// the newest line is never scrolled out.
func renderLogPane(logs []logEntry, rect Rect) string {
	if rect.W < 2 || rect.H < 2 {
		return ""
	}
	visible := tailWindow(logs, rect.H)
	lines := make([]string, 0, len(visible))
	for _, entry := range visible {
		text := runewidth.Truncate(entry.text, maxInt(rect.W-2, 0), "")
		if entry.isError {
			text = errorStyle.Render(text)
		}
		lines = append(lines, text)
	}

	vp := viewport.New(rect.W-2, rect.H-2)
	vp.SetContent(strings.Join(lines, "\n"))
	vp.GotoBottom()
	return renderPanel(logsTitle, strings.Split(vp.View(), "\n"), rect.W, rect.H)
}

// renderColumn renders one blotter column, windowed like the log pane.
// decorate, when non-nil, styles each cell after clipping.
func renderColumn(title string, entries []string, rect Rect, decorate func(string) string) string {
	visible := tailWindow(entries, rect.H)
	body := make([]string, 0, len(visible))
	for _, raw := range visible {
		text := runewidth.Truncate(raw, maxInt(rect.W-2, 0), "")
		if decorate != nil {
			text = decorate(text)
		}
		body = append(body, text)
	}
	return renderPanel(title, body, rect.W, rect.H)
}

// decorateSide colors order directions: buys in the accent color, sells in
// the warning color, anything else untouched.
func decorateSide(side string) string {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "buy":
		return buyStyle.Render(side)
	case "sell":
		return sellStyle.Render(side)
	}
	return side
}

// renderOrdersRow lays the five blotter columns side by side. Columns clipped
// to nothing by a narrow frame drop out entirely.
func renderOrdersRow(orders orderColumns, row ordersRow) string {
	panels := dropEmpty(
		renderColumn("Time", orders.times, row.Time, nil),
		renderColumn("Type", orders.types, row.Type, nil),
		renderColumn("Direction", orders.sides, row.Direction, decorateSide),
		renderColumn("Symbol", orders.symbols, row.Symbol, nil),
		renderColumn("Quantity", orders.quantities, row.Quantity, nil),
	)
	if len(panels) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func dropEmpty(blocks ...string) []string {
	kept := blocks[:0]
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return kept
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
