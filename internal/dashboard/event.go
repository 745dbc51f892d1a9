package dashboard

// EquityPoint is one sample of the strategy equity series. Time is the
// engine's epoch-seconds X value.
type EquityPoint struct {
	Time  float64
	Value float64
}

// OrderView is the display projection of a single order. Every field is a
// short label; the blotter shows them verbatim.
type OrderView struct {
	Time     string
	Type     string
	Side     string
	Symbol   string
	Quantity string
}

// Snapshot is one inbound result update. Equity carries zero or more new
// samples to merge; Orders, when non-nil, replaces the whole order set and is
// keyed by the engine's numeric order id rendered as a string.
type Snapshot struct {
	Equity []EquityPoint
	Orders map[string]OrderView
}

// LogLine is one log payload. Text may span multiple lines.
type LogLine struct {
	Text    string
	IsError bool
}

// Queue messages. The session wraps caller payloads into these; the render
// loop folds them one per pass.
type snapshotMsg struct {
	snap Snapshot
}

type logMsg struct {
	line LogLine
}

type stopMsg struct{}
