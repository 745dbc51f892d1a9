package dashboard

import (
	"math"
	"strings"
)

// equityBounds returns the plot bounds for a non-empty series sorted by time.
// X spans the first to the last sample; Y spans the true minimum up to the
// maximum clamped to at least zero, so the zero line stays in frame even when
// every sample is negative.
func equityBounds(points []EquityPoint) (xMin, xMax, yMin, yMax float64) {
	xMin = points[0].Time
	xMax = points[len(points)-1].Time
	yMin = math.Inf(1)
	yMax = 0
	for _, p := range points {
		yMin = math.Min(yMin, p.Value)
		yMax = math.Max(yMax, p.Value)
	}
	return xMin, xMax, yMin, yMax
}

// Braille cells pack a 2x4 dot grid. brailleMasks[row][col] is the bit for
// that dot within a cell.
var brailleMasks = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBase rune = 0x2800

// brailleCanvas rasterizes dots into a width x height cell grid at 2x4 dot
// resolution per cell.
type brailleCanvas struct {
	width  int
	height int
	cells  []rune
}

func newBrailleCanvas(width, height int) *brailleCanvas {
	return &brailleCanvas{
		width:  width,
		height: height,
		cells:  make([]rune, width*height),
	}
}

// set lights the dot at pixel (px, py). Out-of-range dots are ignored.
func (c *brailleCanvas) set(px, py int) {
	if px < 0 || py < 0 {
		return
	}
	cx, cy := px/2, py/4
	if cx >= c.width || cy >= c.height {
		return
	}
	c.cells[cy*c.width+cx] |= brailleMasks[py%4][px%2]
}

// line draws a straight segment between two dot coordinates.
func (c *brailleCanvas) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// rows renders the canvas as one string per cell row. Cells with no dots stay
// plain spaces.
func (c *brailleCanvas) rows() []string {
	rows := make([]string, c.height)
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		b.Reset()
		for x := 0; x < c.width; x++ {
			mask := c.cells[y*c.width+x]
			if mask == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(brailleBase + mask)
		}
		rows[y] = b.String()
	}
	return rows
}

// renderEquityChart plots the series as a connected line inside a width x
// height cell area. The series must already be sorted by time; an empty
// series yields no rows and the caller draws a bare frame.
func renderEquityChart(points []EquityPoint, width, height int) []string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	xMin, xMax, yMin, yMax := equityBounds(points)
	xSpan := xMax - xMin
	if xSpan <= 0 {
		xSpan = 1
	}
	ySpan := yMax - yMin
	if ySpan <= 0 {
		ySpan = 1
	}

	pw := width * 2
	ph := height * 4
	canvas := newBrailleCanvas(width, height)

	toPixel := func(p EquityPoint) (int, int) {
		px := int(math.Round((p.Time - xMin) / xSpan * float64(pw-1)))
		py := (ph - 1) - int(math.Round((p.Value-yMin)/ySpan*float64(ph-1)))
		return px, py
	}

	prevX, prevY := toPixel(points[0])
	canvas.set(prevX, prevY)
	for _, p := range points[1:] {
		x, y := toPixel(p)
		canvas.line(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	return canvas.rows()
}
