package canvasrenderer

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const softHyphen = "\u00ad"

type runStyle struct {
	bold      bool
	italic    bool
	underline bool
	strike    bool
}

type pieceKind int

const (
	pieceWord pieceKind = iota
	pieceSpace
	pieceBreak // <br>
	pieceBlock // 块级元素边界
	pieceImage
)

// piece 是排版的最小单元：一个单词片段、一段空白、换行或图片。
type piece struct {
	kind  pieceKind
	text  string
	style runStyle
	// 图片属性，宽高为 CSS 像素，0 表示使用原始尺寸
	src    string
	width  float64
	height float64
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Table: true, atom.Hr: true,
}

// parseRuns 把标记拆成带样式的排版单元，空白按 HTML 规则折叠。
func parseRuns(markup string) []piece {
	var (
		pieces []piece
		depth  struct{ bold, italic, underline, strike int }
	)
	style := func() runStyle {
		return runStyle{
			bold:      depth.bold > 0,
			italic:    depth.italic > 0,
			underline: depth.underline > 0,
			strike:    depth.strike > 0,
		}
	}
	adjust := func(a atom.Atom, delta int) {
		switch a {
		case atom.B, atom.Strong:
			depth.bold = max(depth.bold+delta, 0)
		case atom.I, atom.Em:
			depth.italic = max(depth.italic+delta, 0)
		case atom.U, atom.Ins:
			depth.underline = max(depth.underline+delta, 0)
		case atom.S, atom.Del, atom.Strike:
			depth.strike = max(depth.strike+delta, 0)
		}
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// strings.Reader 只会以 io.EOF 结束
			return pieces
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			pieces = appendText(pieces, tok.Data, style())
		case html.StartTagToken, html.SelfClosingTagToken:
			switch {
			case tok.DataAtom == atom.Br:
				pieces = append(pieces, piece{kind: pieceBreak})
			case tok.DataAtom == atom.Img:
				pieces = append(pieces, imagePiece(tok))
			case blockElements[tok.DataAtom]:
				pieces = append(pieces, piece{kind: pieceBlock})
			default:
				if tt == html.StartTagToken {
					adjust(tok.DataAtom, 1)
				}
			}
		case html.EndTagToken:
			if blockElements[tok.DataAtom] {
				pieces = append(pieces, piece{kind: pieceBlock})
				continue
			}
			adjust(tok.DataAtom, -1)
		}
	}
}

func appendText(pieces []piece, text string, style runStyle) []piece {
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			pieces = append(pieces, piece{kind: pieceWord, text: word.String(), style: style})
			word.Reset()
		}
	}
	for _, r := range text {
		if isCollapsibleSpace(r) {
			flush()
			if n := len(pieces); n == 0 || pieces[n-1].kind != pieceSpace {
				pieces = append(pieces, piece{kind: pieceSpace})
			}
			continue
		}
		word.WriteRune(r)
	}
	flush()
	return pieces
}

// isCollapsibleSpace 与 HTML 空白定义一致，不包含不换行空格。
func isCollapsibleSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func imagePiece(tok html.Token) piece {
	p := piece{kind: pieceImage}
	for _, attr := range tok.Attr {
		switch attr.Key {
		case "src":
			p.src = strings.TrimSpace(attr.Val)
		case "width":
			p.width = parsePixels(attr.Val)
		case "height":
			p.height = parsePixels(attr.Val)
		}
	}
	return p
}

func parsePixels(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "px"), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
