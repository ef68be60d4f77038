package ui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Sparkline draws the last maxPoints samples as a polyline scaled to
// [0, ceiling], where ceiling follows the largest value seen in the window.
type Sparkline struct {
	widget.BaseWidget
	data      []float64
	maxPoints int
	mu        sync.RWMutex
}

var _ fyne.Widget = (*Sparkline)(nil)

func NewSparkline(maxPoints int) *Sparkline {
	if maxPoints < 2 {
		maxPoints = 2
	}
	s := &Sparkline{
		maxPoints: maxPoints,
		data:      make([]float64, 0, maxPoints),
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *Sparkline) Add(value float64) {
	s.push(value)
	s.Refresh()
}

func (s *Sparkline) push(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, value)
	if len(s.data) > s.maxPoints {
		s.data = s.data[len(s.data)-s.maxPoints:]
	}
}

func (s *Sparkline) samples() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.data...)
}

func (s *Sparkline) CreateRenderer() fyne.WidgetRenderer {
	return &sparklineRenderer{s: s}
}

// points maps samples onto a width x height box with y growing downwards.
func points(data []float64, maxPoints int, width, height float32) []fyne.Position {
	if len(data) == 0 {
		return nil
	}
	ceiling := 1.0
	for _, v := range data {
		if v > ceiling {
			ceiling = v
		}
	}
	stepX := width / float32(maxPoints-1)
	out := make([]fyne.Position, len(data))
	for i, v := range data {
		if v < 0 {
			v = 0
		}
		out[i] = fyne.NewPos(float32(i)*stepX, height-float32(v/ceiling)*height)
	}
	return out
}

type sparklineRenderer struct {
	s     *Sparkline
	lines []fyne.CanvasObject
}

func (r *sparklineRenderer) Destroy() {}

func (r *sparklineRenderer) Layout(fyne.Size) {
	r.rebuild()
}

func (r *sparklineRenderer) MinSize() fyne.Size {
	return fyne.NewSize(240, 80)
}

func (r *sparklineRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.s)
}

func (r *sparklineRenderer) Objects() []fyne.CanvasObject {
	return r.lines
}

func (r *sparklineRenderer) rebuild() {
	size := r.s.Size()
	pts := points(r.s.samples(), r.s.maxPoints, size.Width, size.Height)
	lineColor := theme.Color(theme.ColorNamePrimary)

	lines := make([]fyne.CanvasObject, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		line := canvas.NewLine(lineColor)
		line.StrokeWidth = 2
		line.Position1 = pts[i]
		line.Position2 = pts[i+1]
		lines = append(lines, line)
	}
	r.lines = lines
}
