// Package hyphen 基于 TeX 断词模式为标记中的文本插入软连字符（U+00AD）。
// 标签与属性保持原样，只处理文本节点；任何失败都由调用方降级为不断词。
package hyphen

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/speedata/hyphenation"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/language"
)

// SoftHyphen 是插入的断词点。
const SoftHyphen = "\u00ad"

// ErrUnavailable 表示断词模式无法加载。
var ErrUnavailable = errors.New("hyphenation unavailable")

// DefaultMinWord 为参与断词的最短单词长度（字符数）。
const DefaultMinWord = 4

// Patterns 是加载好的某种语言的断词器。
type Patterns struct {
	lang    *hyphenation.Lang
	tag     language.Tag
	minWord int
}

// Load 从 TeX 模式文本读取断词模式。
func Load(r io.Reader, tag language.Tag) (*Patterns, error) {
	l, err := hyphenation.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取断词模式失败: %w", ErrUnavailable, err)
	}
	return &Patterns{lang: l, tag: tag, minWord: DefaultMinWord}, nil
}

// LoadFile 按路径与 BCP 47 语言标签（例如 pt-BR）加载断词模式。
func LoadFile(path, lang string) (*Patterns, error) {
	tag := language.Und
	if lang != "" {
		t, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: 语言标签 %q 无效: %w", ErrUnavailable, lang, err)
		}
		tag = t
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()
	return Load(f, tag)
}

// Language 返回断词器对应的语言。
func (p *Patterns) Language() language.Tag { return p.tag }

// Hyphenate 在 markup 的文本节点中插入软连字符，已有软连字符的单词保持不变。
func (p *Patterns) Hyphenate(markup string) (string, error) {
	if p == nil || p.lang == nil {
		return "", ErrUnavailable
	}
	var out strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", fmt.Errorf("解析标记失败: %w", err)
			}
			return out.String(), nil
		case xhtml.TextToken:
			text := string(z.Text())
			out.WriteString(html.EscapeString(p.hyphenateText(text)))
		default:
			out.Write(z.Raw())
		}
	}
}

func (p *Patterns) hyphenateText(text string) string {
	var (
		out  strings.Builder
		word []rune
	)
	flush := func() {
		if len(word) > 0 {
			out.WriteString(p.hyphenateWord(word))
			word = word[:0]
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || r == '\u00ad' {
			word = append(word, r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()
	return out.String()
}

func (p *Patterns) hyphenateWord(word []rune) string {
	s := string(word)
	if len(word) < p.minWord || strings.Contains(s, SoftHyphen) {
		return s
	}
	breaks := p.lang.Hyphenate(strings.ToLower(s))
	if len(breaks) == 0 {
		return s
	}
	var b strings.Builder
	next := 0
	for i, r := range word {
		for next < len(breaks) && breaks[next] < i {
			next++
		}
		if next < len(breaks) && breaks[next] == i && i > 0 {
			b.WriteString(SoftHyphen)
			next++
		}
		b.WriteRune(r)
	}
	return b.String()
}
