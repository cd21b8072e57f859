package canvasrenderer

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/inkpage/fonts"
	"github.com/ByLCY/inkpage/layout"
)

type faceKey struct {
	bold   bool
	italic bool
}

func (k faceKey) variant() fonts.Style {
	switch {
	case k.bold && k.italic:
		return fonts.BoldItalic
	case k.bold:
		return fonts.Bold
	case k.italic:
		return fonts.Italic
	default:
		return fonts.Regular
	}
}

// face 返回某种样式下的墨水字体面，按样式缓存。
func (s *Surface) face(style runStyle) (*canvas.FontFace, error) {
	key := faceKey{bold: style.bold, italic: style.italic}
	s.fontMu.Lock()
	defer s.fontMu.Unlock()

	if face, ok := s.faces[key]; ok {
		return face, nil
	}
	family, err := s.family(key.variant())
	if err != nil {
		return nil, err
	}
	// 字号以 mm 保存，创建字体面需要 pt
	face := family.Face(s.sheet.Ink.FontSize*layout.MmToPt, colorFromLayout(s.sheet.Ink.Color), canvas.FontRegular, canvas.FontNormal)
	s.faces[key] = face
	return face, nil
}

// family 为每个变体单独建立字体族；用户字体加载失败时退回内置 Go 字体。
func (s *Surface) family(variant fonts.Style) (*canvas.FontFamily, error) {
	font := s.sheet.Ink.Font
	family := canvas.NewFontFamily(fmt.Sprintf("%s-%d", font.Name, variant))
	data, err := s.loadFontBytes(font, variant)
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err == nil {
		return family, nil
	}

	fallback := canvas.NewFontFamily(fmt.Sprintf("inkpage-fallback-%d", variant))
	if fbErr := fallback.LoadFont(fonts.Variant(variant), 0, canvas.FontRegular); fbErr != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w; 内置字体同样不可用: %w", font.Src, err, fbErr)
	}
	s.logger.Warn("字体加载失败，改用内置 Go 字体", "font", font.Src, "variant", int(variant), "err", err)
	return fallback, nil
}

func (s *Surface) loadFontBytes(font layout.FontResource, variant fonts.Style) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if fonts.IsBuiltin(font.Src) {
		// 内置 Go 字体族自带粗体与斜体
		if font.Src == "builtin:go-regular" || font.Src == "builtin:go" {
			return fonts.Variant(variant), nil
		}
		return fonts.Load(font.Src)
	}
	path := font.Src
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	return os.ReadFile(path)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
