package canvasrenderer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/inkpage/layout"
)

type imageEntry struct {
	img image.Image
	err error
}

// loadImage 读取并缓存图片，src 可为 data: URI 或相对 baseDir 的路径。
func (s *Surface) loadImage(src string) (image.Image, error) {
	s.imgMu.Lock()
	defer s.imgMu.Unlock()
	if entry, ok := s.images[src]; ok {
		return entry.img, entry.err
	}
	img, err := decodeImage(src, s.baseDir)
	s.images[src] = imageEntry{img: img, err: err}
	return img, err
}

func decodeImage(src, baseDir string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("图片缺少 src")
	}
	var data []byte
	if strings.HasPrefix(src, "data:") {
		blob, err := decodeDataURI(src)
		if err != nil {
			return nil, err
		}
		data = blob
	} else {
		path := src
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
		}
		data = blob
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", abbreviate(src), err)
	}
	return img, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("data URI 格式错误")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI base64 解码失败: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI 解码失败: %w", err)
	}
	return []byte(text), nil
}

func abbreviate(src string) string {
	if len(src) > 48 {
		return src[:48] + "…"
	}
	return src
}

// imageSize 把图片属性（CSS 像素）换算为毫米，并等比缩放到不超过内容宽度。
func imageSize(img image.Image, p piece, limit float64) (float64, float64) {
	natW, natH := 0.0, 0.0
	if img != nil {
		natW, natH = float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	}
	w, h := p.width, p.height
	switch {
	case w > 0 && h == 0 && natW > 0:
		h = w * natH / natW
	case h > 0 && w == 0 && natH > 0:
		w = h * natW / natH
	case w == 0 && h == 0:
		w, h = natW, natH
	}
	w *= layout.PxToMm
	h *= layout.PxToMm
	if limit > 0 && w > limit {
		h *= limit / w
		w = limit
	}
	return w, h
}
