// Package packet models the slice of LEAN's backtest result packet that the
// dashboard consumes and projects it onto display events.
package packet

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gsalaz98/lean-tui/internal/dashboard"
)

// ResultPacket is one BacktestResult frame.
type ResultPacket struct {
	Results BacktestResult `json:"Results"`
}

// BacktestResult carries the charts and the full order map. Both are partial
// on intermediate frames; either may be absent.
type BacktestResult struct {
	Charts map[string]Chart `json:"Charts,omitempty"`
	Orders map[string]Order `json:"Orders,omitempty"`
}

type Chart struct {
	Name   string            `json:"Name"`
	Series map[string]Series `json:"Series"`
}

type Series struct {
	Name   string       `json:"Name"`
	Unit   string       `json:"Unit"`
	Values []ChartPoint `json:"Values"`
}

// ChartPoint matches LEAN's lowercase sample encoding: x is epoch seconds.
type ChartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Order carries the order fields the blotter displays.
type Order struct {
	ID        int64           `json:"Id"`
	Time      string          `json:"Time"`
	Type      OrderType       `json:"Type"`
	Direction OrderDirection  `json:"Direction"`
	Quantity  decimal.Decimal `json:"Quantity"`
	Price     decimal.Decimal `json:"Price"`
	Status    int             `json:"Status"`
	Symbol    Symbol          `json:"Symbol"`
}

type Symbol struct {
	Value    string `json:"Value"`
	ID       string `json:"ID"`
	Permtick string `json:"Permtick"`
}

// OrderType mirrors LEAN's order type enum.
type OrderType int

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStopMarket
	OrderTypeStopLimit
	OrderTypeMarketOnOpen
	OrderTypeMarketOnClose
	OrderTypeOptionExercise
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "Market"
	case OrderTypeLimit:
		return "Limit"
	case OrderTypeStopMarket:
		return "StopMkt"
	case OrderTypeStopLimit:
		return "StopLmt"
	case OrderTypeMarketOnOpen:
		return "MktOpen"
	case OrderTypeMarketOnClose:
		return "MktClose"
	case OrderTypeOptionExercise:
		return "Exercise"
	}
	return fmt.Sprintf("Type %d", int(t))
}

// OrderDirection mirrors LEAN's order direction enum.
type OrderDirection int

const (
	DirectionBuy OrderDirection = iota
	DirectionSell
	DirectionHold
)

func (d OrderDirection) String() string {
	switch d {
	case DirectionBuy:
		return "Buy"
	case DirectionSell:
		return "Sell"
	case DirectionHold:
		return "Hold"
	}
	return fmt.Sprintf("Dir %d", int(d))
}

// The equity curve lives in a well-known chart and series.
const (
	equityChartName  = "Strategy Equity"
	equitySeriesName = "Equity"
)

// Decode parses one result packet.
func Decode(data []byte) (*ResultPacket, error) {
	var pkt ResultPacket
	if err := json.Unmarshal(data, &pkt); err != nil {
		return nil, fmt.Errorf("decode result packet: %w", err)
	}
	return &pkt, nil
}

// Snapshot projects the packet onto the dashboard event shape: raw samples
// from the strategy equity series plus display labels per order. Filtering,
// ordering, and dedup belong to the dashboard fold, not the projection.
func (p *ResultPacket) Snapshot() dashboard.Snapshot {
	var snap dashboard.Snapshot

	if chart, ok := p.Results.Charts[equityChartName]; ok {
		if series, ok := chart.Series[equitySeriesName]; ok {
			points := make([]dashboard.EquityPoint, 0, len(series.Values))
			for _, v := range series.Values {
				points = append(points, dashboard.EquityPoint{Time: v.X, Value: v.Y})
			}
			snap.Equity = points
		}
	}

	if p.Results.Orders != nil {
		views := make(map[string]dashboard.OrderView, len(p.Results.Orders))
		for id, order := range p.Results.Orders {
			views[id] = order.View()
		}
		snap.Orders = views
	}

	return snap
}

// View renders the order as blotter labels.
func (o Order) View() dashboard.OrderView {
	return dashboard.OrderView{
		Time:     displayTime(o.Time),
		Type:     o.Type.String(),
		Side:     o.Direction.String(),
		Symbol:   o.displaySymbol(),
		Quantity: o.Quantity.String(),
	}
}

func (o Order) displaySymbol() string {
	if v := strings.TrimSpace(o.Symbol.Value); v != "" {
		return v
	}
	return strings.TrimSpace(o.Symbol.Permtick)
}

// displayTime reshapes LEAN's RFC 3339 stamps for the blotter. Anything
// unparseable passes through untouched.
func displayTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Format("2006-01-02 15:04:05")
	}
	return raw
}
