package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Element 记录一个尚未闭合的开始标签及其原文（含属性），用于跨页重新打开。
type Element struct {
	Name string `json:"name"`
	Raw  string `json:"raw"`
}

// voidElements 不需要结束标签。
var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// OpenElements 在 carry（上一页遗留的开放元素）基础上扫描 src，返回扫描结束时仍开放的元素栈。
// 结束标签弹出最近的同名元素；找不到同名元素的结束标签被忽略。
func OpenElements(carry []Element, src string) []Element {
	stack := append([]Element(nil), carry...)
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF 或残缺标记都在此结束
			return stack
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			stack = append(stack, Element{Name: tag, Raw: string(z.Raw())})
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Name == tag {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// Reopen 生成重新打开 elements 的前缀。
func Reopen(elements []Element) string {
	var b strings.Builder
	for _, e := range elements {
		b.WriteString(e.Raw)
	}
	return b.String()
}

// Close 生成按逆序闭合 elements 的后缀。
func Close(elements []Element) string {
	var b strings.Builder
	for i := len(elements) - 1; i >= 0; i-- {
		b.WriteString("</")
		b.WriteString(elements[i].Name)
		b.WriteString(">")
	}
	return b.String()
}

// Wrap 将 body 包装为结构完整的片段：先重新打开 carry，再在末尾闭合仍开放的元素。
// 返回包装后的标记以及 body 结束处的开放元素栈。
func Wrap(carry []Element, body string) (string, []Element) {
	open := OpenElements(carry, body)
	return Reopen(carry) + body + Close(open), open
}

// Names 返回元素名列表，便于日志输出。
func Names(elements []Element) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.Name
	}
	return out
}
