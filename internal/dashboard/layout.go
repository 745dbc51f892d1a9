package dashboard

import "math"

// Rect is a screen region in cells. X grows right, Y grows down.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// ordersRow holds the five blotter column regions, left to right.
type ordersRow struct {
	Time      Rect
	Type      Rect
	Direction Rect
	Symbol    Rect
	Quantity  Rect
}

// regions is the full partition of one frame.
type regions struct {
	Graph       Rect
	Logs        Rect
	Performance Rect
	Metrics     Rect
	Orders      ordersRow
}

// Fixed blotter column widths, left to right.
const (
	orderTimeWidth      = 27
	orderTypeWidth      = 8
	orderDirectionWidth = 11
	orderSymbolWidth    = 8
	orderQuantityWidth  = 11
)

// layoutRegions partitions a width x height frame. The left column takes 75%
// of the width and splits 70/30 into graph and logs; the right column splits
// 35/35/30 into the two reserved panels and the orders row, whose fixed-width
// columns clip left to right when the column is narrow.
func layoutRegions(width, height int) regions {
	width = maxInt(width, 0)
	height = maxInt(height, 0)

	leftW := clampInt(int(math.Round(float64(width)*0.75)), 0, width)
	rightW := width - leftW

	graphH := clampInt(int(math.Round(float64(height)*0.70)), 0, height)
	logsH := height - graphH

	perfH := clampInt(int(math.Round(float64(height)*0.35)), 0, height)
	metricsH := clampInt(int(math.Round(float64(height)*0.35)), 0, height-perfH)
	ordersH := height - perfH - metricsH

	r := regions{
		Graph:       Rect{X: 0, Y: 0, W: leftW, H: graphH},
		Logs:        Rect{X: 0, Y: graphH, W: leftW, H: logsH},
		Performance: Rect{X: leftW, Y: 0, W: rightW, H: perfH},
		Metrics:     Rect{X: leftW, Y: perfH, W: rightW, H: metricsH},
	}

	x := leftW
	rowY := perfH + metricsH
	remaining := rightW
	place := func(w int) Rect {
		w = clampInt(w, 0, remaining)
		rect := Rect{X: x, Y: rowY, W: w, H: ordersH}
		x += w
		remaining -= w
		return rect
	}
	r.Orders = ordersRow{
		Time:      place(orderTimeWidth),
		Type:      place(orderTypeWidth),
		Direction: place(orderDirectionWidth),
		Symbol:    place(orderSymbolWidth),
		Quantity:  place(orderQuantityWidth),
	}
	return r
}
