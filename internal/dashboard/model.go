package dashboard

import (
	"os"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// model folds queue events into frames. Exactly one event is consumed per
// Update pass; the chained command re-arms the receive so the loop blocks in
// the command goroutine, never in Update itself.
type model struct {
	queue  *eventQueue
	data   *viewData
	ready  bool
	width  int
	height int
	done   bool
}

func newModel(queue *eventQueue) model {
	return model{queue: queue, data: &viewData{}}
}

// waitForEventCmd blocks until the next queue event and delivers it as a
// message. A closed queue delivers nothing.
func waitForEventCmd(queue *eventQueue) tea.Cmd {
	return func() tea.Msg {
		msg, ok := queue.Next()
		if !ok {
			return nil
		}
		return msg
	}
}

func (m model) Init() tea.Cmd {
	return waitForEventCmd(m.queue)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		// Teardown belongs to whoever drives the session; quit keys only
		// nudge the process signal path.
		switch msg.String() {
		case "q", "ctrl+c":
			_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
		}
		return m, nil

	case snapshotMsg:
		m.data.applySnapshot(msg.snap)
		return m, waitForEventCmd(m.queue)

	case logMsg:
		m.data.applyLog(msg.line)
		return m, waitForEventCmd(m.queue)

	case stopMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	if !m.ready {
		return waitingStyle.Render("Waiting for backtest data...")
	}

	reg := layoutRegions(m.width, m.height)

	left := joinVertical(
		renderGraphPane(m.data.equity, reg.Graph),
		renderLogPane(m.data.logs, reg.Logs),
	)
	right := joinVertical(
		renderPanel("Performance", nil, reg.Performance.W, reg.Performance.H),
		renderPanel("Metrics", nil, reg.Metrics.W, reg.Metrics.H),
		renderOrdersRow(m.data.orders, reg.Orders),
	)

	blocks := dropEmpty(left, right)
	if len(blocks) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func joinVertical(blocks ...string) string {
	kept := dropEmpty(blocks...)
	if len(kept) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, kept...)
}
