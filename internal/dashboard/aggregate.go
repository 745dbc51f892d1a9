package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gsalaz98/lean-tui/internal/logging"
)

// logEntry is one display line of the log pane.
type logEntry struct {
	text    string
	isError bool
}

// orderColumns holds the five index-aligned blotter columns. Index i across
// all slices describes the same order.
type orderColumns struct {
	times      []string
	types      []string
	sides      []string
	symbols    []string
	quantities []string
}

func (c orderColumns) length() int { return len(c.times) }

// viewData is the fold target. Only the render loop mutates it, one event at
// a time.
type viewData struct {
	logs   []logEntry
	equity []EquityPoint
	orders orderColumns
}

// applyLog appends one pane line per line of text.
func (d *viewData) applyLog(line LogLine) {
	for _, part := range splitLogLines(line.Text) {
		d.logs = append(d.logs, logEntry{text: part, isError: line.IsError})
	}
}

// splitLogLines breaks text on newlines, tolerating CRLF. A trailing newline
// does not produce an empty final line, and empty text produces no lines.
func splitLogLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// applySnapshot merges the equity part and, when an orders payload is
// present, replaces the blotter columns wholesale. A snapshot without orders
// leaves the previous columns untouched.
func (d *viewData) applySnapshot(snap Snapshot) {
	if len(snap.Equity) > 0 {
		d.mergeEquity(snap.Equity)
	}
	if snap.Orders != nil {
		d.rebuildOrders(snap.Orders)
	}
}

// mergeEquity unions new samples into the series. Non-positive values are
// dropped, the series stays stable-sorted by time, and exact (time, value)
// duplicates collapse to their first occurrence. The merged series never
// shrinks below what was already accumulated.
func (d *viewData) mergeEquity(points []EquityPoint) {
	for _, p := range points {
		if p.Value <= 0 {
			continue
		}
		d.equity = append(d.equity, p)
	}
	sort.SliceStable(d.equity, func(i, j int) bool {
		return d.equity[i].Time < d.equity[j].Time
	})

	seen := make(map[EquityPoint]struct{}, len(d.equity))
	kept := d.equity[:0]
	for _, p := range d.equity {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		kept = append(kept, p)
	}
	d.equity = kept
}

// rebuildOrders replaces all five columns with the incoming set, ascending by
// numeric order id. An entry whose key does not parse as an unsigned integer
// is dropped rather than aborting the rebuild.
func (d *viewData) rebuildOrders(orders map[string]OrderView) {
	type orderEntry struct {
		id   uint64
		view OrderView
	}
	entries := make([]orderEntry, 0, len(orders))
	for key, view := range orders {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			logging.Warnf("dropping order with non-numeric id %q", key)
			continue
		}
		entries = append(entries, orderEntry{id: id, view: view})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	next := orderColumns{
		times:      make([]string, 0, len(entries)),
		types:      make([]string, 0, len(entries)),
		sides:      make([]string, 0, len(entries)),
		symbols:    make([]string, 0, len(entries)),
		quantities: make([]string, 0, len(entries)),
	}
	for _, entry := range entries {
		next.times = append(next.times, entry.view.Time)
		next.types = append(next.types, entry.view.Type)
		next.sides = append(next.sides, entry.view.Side)
		next.symbols = append(next.symbols, entry.view.Symbol)
		next.quantities = append(next.quantities, entry.view.Quantity)
	}
	d.orders = next
}
