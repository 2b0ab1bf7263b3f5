package analysis

import (
	"strings"

	"github.com/san-kum/coupled/internal/dynamo"
)

// Component picks one coordinate out of a state.
type Component func(dynamo.State) float64

var (
	X1 Component = func(s dynamo.State) float64 { return s.X1 }
	X2 Component = func(s dynamo.State) float64 { return s.X2 }
	V1 Component = func(s dynamo.State) float64 { return s.V1 }
	V2 Component = func(s dynamo.State) float64 { return s.V2 }
)

type Point struct{ X, Y float64 }

// PhasePortrait holds a 2D projection of a recorded trajectory. Plotting x1
// against x2 shows a line for a pure mode and a filled box for beating.
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(states []dynamo.State, x, y Component) *PhasePortrait {
	portrait := &PhasePortrait{Points: make([]Point, 0, len(states))}
	for _, s := range states {
		if !s.IsValid() {
			continue
		}
		portrait.Points = append(portrait.Points, Point{X: x(s), Y: y(s)})
	}
	return portrait
}

// ASCII renders the portrait on a width x height character grid with axes
// drawn where they cross the visible area.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	toCol := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	toRow := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, pt := range p.Points {
		row, col := toRow(pt.Y), toCol(pt.X)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := toCol(0)
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := toRow(0)
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// NewPoincareSection samples (x, y) each time cross passes upward through
// threshold, interpolating linearly between the two bracketing states.
func NewPoincareSection(states []dynamo.State, cross Component, threshold float64, x, y Component) *PhasePortrait {
	section := &PhasePortrait{}
	for i := 1; i < len(states); i++ {
		prev, curr := states[i-1], states[i]
		if !prev.IsValid() || !curr.IsValid() {
			continue
		}
		a, b := cross(prev), cross(curr)
		if !(a < threshold && b >= threshold) {
			continue
		}
		frac := (threshold - a) / (b - a)
		section.Points = append(section.Points, Point{
			X: x(prev) + frac*(x(curr)-x(prev)),
			Y: y(prev) + frac*(y(curr)-y(prev)),
		})
	}
	return section
}
