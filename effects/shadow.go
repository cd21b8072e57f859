package effects

import (
	"image"
	"math"
)

// shadowAlpha 对应 #0008 的不透明度。
const shadowAlpha = float64(0x88) / 255

// Shadow 是 linear-gradient(Angle, #0008, #0000) 的正片叠底光照阴影。
// Angle 采用 CSS 约定：0 度指向上方，顺时针增加。
type Shadow struct {
	Angle float64
}

// Composite 实现 renderer.Overlay。
func (s Shadow) Composite(img *image.RGBA) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	rad := s.Angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	// CSS 渐变线长度，保证四个角分别落在 0 与 1 处
	length := math.Abs(w*dx) + math.Abs(h*dy)
	cx, cy := w/2, h/2
	for y := b.Min.Y; y < b.Max.Y; y++ {
		py := float64(y-b.Min.Y) + 0.5 - cy
		for x := b.Min.X; x < b.Max.X; x++ {
			px := float64(x-b.Min.X) + 0.5 - cx
			t := (px*dx+py*dy)/length + 0.5
			t = math.Min(math.Max(t, 0), 1)
			multiplyBlack(img, x, y, shadowAlpha*(1-t))
		}
	}
}
