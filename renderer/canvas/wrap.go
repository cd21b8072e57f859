package canvasrenderer

import (
	"image"
	"strings"
)

// placed 是已经确定位置的一个绘制单元，x 相对内容区左侧（mm）。
type placed struct {
	x     float64
	width float64
	text  string
	style runStyle
	img   image.Image
	imgH  float64
}

// line 是一行排版结果，height 至少为墨水行高。
type line struct {
	items  []placed
	width  float64
	height float64
}

// measurer 返回某种样式下文本的宽度（mm）。
type measurer func(text string, style runStyle) float64

// imageSizer 返回图片及其在页面上的尺寸（mm）。
type imageSizer func(p piece) (image.Image, float64, float64, error)

// wrapper 是贪心换行器：空白处优先断行，其次在软连字符处断词，最后按字符拆分。
type wrapper struct {
	limit      float64
	lineHeight float64
	wordGap    float64
	measure    measurer

	lines        []line
	cur          line
	pendingSpace bool
}

func newWrapper(limit, lineHeight, wordSpacing float64, measure measurer) *wrapper {
	return &wrapper{
		limit:      limit,
		lineHeight: lineHeight,
		wordGap:    measure(" ", runStyle{}) + wordSpacing,
		measure:    measure,
	}
}

// wrapPieces 把排版单元折成若干行。
func wrapPieces(pieces []piece, w *wrapper, size imageSizer) ([]line, error) {
	for _, p := range pieces {
		switch p.kind {
		case pieceSpace:
			if len(w.cur.items) > 0 {
				w.pendingSpace = true
			}
		case pieceBreak:
			w.emit(true)
		case pieceBlock:
			w.emit(false)
		case pieceWord:
			w.pushWord(p.text, p.style)
		case pieceImage:
			img, width, height, err := size(p)
			if err != nil {
				return nil, err
			}
			w.pushImage(img, width, height)
		}
	}
	w.emit(false)
	return w.lines, nil
}

// emit 结束当前行；force 为真时即便是空行也保留（显式换行）。
func (w *wrapper) emit(force bool) {
	w.pendingSpace = false
	if len(w.cur.items) == 0 && !force {
		return
	}
	if w.cur.height < w.lineHeight {
		w.cur.height = w.lineHeight
	}
	w.lines = append(w.lines, w.cur)
	w.cur = line{}
}

func (w *wrapper) cursor() float64 {
	if w.pendingSpace && len(w.cur.items) > 0 {
		return w.cur.width + w.wordGap
	}
	return w.cur.width
}

func (w *wrapper) place(text string, width float64, style runStyle) {
	x := w.cursor()
	w.cur.items = append(w.cur.items, placed{x: x, width: width, text: text, style: style})
	w.cur.width = x + width
	w.pendingSpace = false
}

func (w *wrapper) pushWord(word string, style runStyle) {
	for word != "" {
		clean := strings.ReplaceAll(word, softHyphen, "")
		width := w.measure(clean, style)
		if w.cursor()+width <= w.limit {
			w.place(clean, width, style)
			return
		}
		if head, rest, ok := w.hyphenSplit(word, style); ok {
			w.place(head, w.measure(head, style), style)
			w.emit(false)
			word = rest
			continue
		}
		if len(w.cur.items) > 0 {
			w.emit(false)
			continue
		}
		// 空行也放不下：按宽度在词内拆分
		chunks := splitTokenByWidth(clean, w.limit, func(s string) float64 { return w.measure(s, style) })
		for i, chunk := range chunks {
			w.place(chunk, w.measure(chunk, style), style)
			if i < len(chunks)-1 {
				w.emit(false)
			}
		}
		return
	}
}

// hyphenSplit 在软连字符处寻找能放进当前行的最长前缀，前缀末尾补上可见的连字符。
func (w *wrapper) hyphenSplit(word string, style runStyle) (string, string, bool) {
	parts := strings.Split(word, softHyphen)
	if len(parts) < 2 {
		return "", "", false
	}
	x := w.cursor()
	for k := len(parts) - 1; k >= 1; k-- {
		head := strings.Join(parts[:k], "") + "-"
		if x+w.measure(head, style) <= w.limit {
			return head, strings.Join(parts[k:], softHyphen), true
		}
	}
	return "", "", false
}

func (w *wrapper) pushImage(img image.Image, width, height float64) {
	if len(w.cur.items) > 0 && w.cursor()+width > w.limit {
		w.emit(false)
	}
	x := w.cursor()
	w.cur.items = append(w.cur.items, placed{x: x, width: width, img: img, imgH: height})
	w.cur.width = x + width
	w.pendingSpace = false
	if height > w.cur.height {
		w.cur.height = height
	}
}

func splitTokenByWidth(token string, limit float64, width func(string) float64) []string {
	if limit <= 0 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && width(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = append(current[:0], r)
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}

func totalHeight(lines []line) float64 {
	h := 0.0
	for _, ln := range lines {
		h += ln.height
	}
	return h
}
