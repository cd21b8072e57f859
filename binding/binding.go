// Package binding 把文档中的 ${path} 占位符替换为 JSON 数据中的值。
package binding

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Data 是已解析的绑定数据。
type Data struct {
	root any
}

// Parse 解析 JSON 绑定数据。
func Parse(raw []byte) (Data, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return Data{}, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return Data{root: root}, nil
}

// Empty 报告是否没有任何数据。
func (d Data) Empty() bool { return d.root == nil }

// Lookup 按 a.b[0].c 形式的路径取值。
func (d Data) Lookup(path string) (any, bool) {
	if d.root == nil {
		return nil, false
	}
	current := d.root
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = obj[name]; !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// Interpolate 替换纯文本中的占位符；路径不存在时保留原占位符。
func (d Data) Interpolate(text string) string {
	if d.root == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		if val, ok := d.Lookup(path); ok {
			return format(val)
		}
		return match
	})
}

// Bind 只替换标记中文本节点里的占位符，替换值会被转义，标签与属性保持原样。
func Bind(markup string, d Data) (string, error) {
	if d.root == nil || !strings.Contains(markup, "${") {
		return markup, nil
	}
	var out strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", fmt.Errorf("解析标记失败: %w", err)
			}
			return out.String(), nil
		case xhtml.TextToken:
			raw := string(z.Raw())
			if !strings.Contains(raw, "${") {
				out.WriteString(raw)
				continue
			}
			out.WriteString(html.EscapeString(d.Interpolate(string(z.Text()))))
		default:
			out.Write(z.Raw())
		}
	}
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}
