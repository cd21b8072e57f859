package gallery

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Artifact 是一张已经完成效果处理的页面位图。
type Artifact struct {
	ID     int // 创建序号，与当前位置无关
	Run    int // 所属的生成批次
	Page   int // 在所属批次中的页码（从 0 起）
	Image  *image.RGBA
	Effect string
}

// Encode 按格式写出位图，format 为 jpeg 或 png。
func (a *Artifact) Encode(w io.Writer, format string, quality int) error {
	switch strings.ToLower(format) {
	case "png":
		return a.EncodePNG(w)
	case "jpeg", "jpg", "":
		return a.EncodeJPEG(w, quality)
	}
	return fmt.Errorf("不支持的图片格式：%s", format)
}

// EncodeJPEG 以 JPEG 写出；透明区域先铺白底。
func (a *Artifact) EncodeJPEG(w io.Writer, quality int) error {
	if a.Image == nil {
		return fmt.Errorf("页面 %d 没有位图", a.ID)
	}
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	flat := image.NewRGBA(a.Image.Bounds())
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), a.Image, a.Image.Bounds().Min, draw.Over)
	if err := jpeg.Encode(w, flat, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("编码 JPEG 失败: %w", err)
	}
	return nil
}

// EncodePNG 以 PNG 写出，保留透明度。
func (a *Artifact) EncodePNG(w io.Writer) error {
	if a.Image == nil {
		return fmt.Errorf("页面 %d 没有位图", a.ID)
	}
	if err := png.Encode(w, a.Image); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}
