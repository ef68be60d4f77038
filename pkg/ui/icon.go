package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const iconSize = 256

// appIcon draws the window icon: a circular reload arrow on a green-to-teal
// gradient. It falls back to the theme's refresh icon if encoding fails.
func appIcon() fyne.Resource {
	data, err := iconPNG(iconSize)
	if err != nil {
		slog.Warn("icon encoding failed", "error", err)
		return theme.ViewRefreshIcon()
	}
	return fyne.NewStaticResource("reloadpanel.png", data)
}

func iconPNG(size int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	top := color.RGBA{22, 163, 74, 255}     // #16A34A
	bottom := color.RGBA{13, 148, 136, 255} // #0D9488
	for y := 0; y < size; y++ {
		ratio := float64(y) / float64(size)
		c := color.RGBA{
			R: uint8(float64(top.R)*(1-ratio) + float64(bottom.R)*ratio),
			G: uint8(float64(top.G)*(1-ratio) + float64(bottom.G)*ratio),
			B: uint8(float64(top.B)*(1-ratio) + float64(bottom.B)*ratio),
			A: 255,
		}
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}

	white := color.RGBA{255, 255, 255, 255}
	center := size / 2
	radius := size * 3 / 10
	thickness := max(size/16, 2)

	// A 300 degree arc leaves a gap at the top right for the arrow head.
	drawArc(img, center, center, radius, 30, 330, white, thickness)

	tipAngle := 330.0 * math.Pi / 180
	tipX := center + int(float64(radius)*math.Cos(tipAngle))
	tipY := center - int(float64(radius)*math.Sin(tipAngle))
	head := radius / 2
	drawLine(img, tipX, tipY, tipX+head, tipY, white, thickness)
	drawLine(img, tipX, tipY, tipX, tipY-head, white, thickness)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawArc draws a thick arc from startDeg to endDeg, counter-clockwise with
// 0 degrees pointing right.
func drawArc(img *image.RGBA, cx, cy, r int, startDeg, endDeg float64, c color.RGBA, thickness int) {
	for angle := startDeg; angle <= endDeg; angle += 0.5 {
		rad := angle * math.Pi / 180
		for t := -thickness / 2; t < thickness/2; t++ {
			x := cx + int(float64(r+t)*math.Cos(rad))
			y := cy - int(float64(r+t)*math.Sin(rad))
			if image.Pt(x, y).In(img.Bounds()) {
				img.Set(x, y, c)
			}
		}
	}
}

// drawLine draws a thick line
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, thickness int) {
	dx := x2 - x1
	dy := y2 - y1
	steps := max(abs(dx), abs(dy), 1)

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x1 + int(float64(dx)*t)
		y := y1 + int(float64(dy)*t)

		for tx := -thickness / 2; tx < thickness/2; tx++ {
			for ty := -thickness / 2; ty < thickness/2; ty++ {
				if p := image.Pt(x+tx, y+ty); p.In(img.Bounds()) {
					img.Set(p.X, p.Y, c)
				}
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// WriteIconPNG writes the application icon to path, for packaging.
func WriteIconPNG(path string, size int) error {
	data, err := iconPNG(size)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
