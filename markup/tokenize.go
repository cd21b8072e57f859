// Package markup 负责文档标记的无损切分、元素配对跟踪以及 Markdown/纯文本转换。
package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token 是分页的最小单位：一段空白或一段内容（文本与/或行内标签）。
type Token struct {
	Text  string `json:"text"`
	Space bool   `json:"space"`
}

// Document 为只读的 token 序列，按顺序拼接即得到原始标记。
type Document struct {
	Tokens []Token `json:"tokens"`
}

// Tokenize 按空白边界切分标记，保留每个分隔符。
// 标签 <...> 内部的空白归属于内容 token，因此标签本身不会被切开。
func Tokenize(src string) Document {
	var (
		tokens  []Token
		start   int
		inTag   bool
		quote   rune
		hasRun  bool
		isSpace bool
	)
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, Token{Text: src[start:end], Space: isSpace})
		}
		start = end
	}

	for i, r := range src {
		if inTag {
			switch {
			case quote != 0:
				if r == quote {
					quote = 0
				}
			case r == '"' || r == '\'':
				quote = r
			case r == '>':
				inTag = false
			}
			continue
		}

		space := unicode.IsSpace(r)
		if r == '<' && startsTag(src[i+1:]) {
			space = false
			inTag = true
		}
		if !hasRun {
			hasRun = true
			isSpace = space
			continue
		}
		if space != isSpace {
			flush(i)
			isSpace = space
		}
	}
	flush(len(src))
	return Document{Tokens: tokens}
}

// startsTag 判断 '<' 之后是否为标签（含结束标签与注释），避免把 "a < b" 当作标签。
func startsTag(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	switch {
	case r == '/' || r == '!':
		return true
	case r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
		return true
	default:
		return false
	}
}

// Len 返回 token 数量。
func (d Document) Len() int { return len(d.Tokens) }

// String 还原原始标记。
func (d Document) String() string { return Join(d.Tokens) }

// Join 直接拼接 token，不插入任何分隔符。
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}
