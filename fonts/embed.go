package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Style 对应墨水字体的四种变体。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
}

// IsBuiltin 判断字体来源是否为内置字体（"builtin:" 前缀）。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:")
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "builtin:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在", name)
	}
	return data, nil
}

// Variant 返回内置字体族中指定样式的字节数据。
func Variant(style Style) []byte {
	switch style {
	case Bold:
		return gobold.TTF
	case Italic:
		return goitalic.TTF
	case BoldItalic:
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}
