package markup

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
)

// FromMarkdown 使用 goldmark 将 Markdown 渲染为页面可用的行内标记。
func FromMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(src, &buf); err != nil {
		return "", fmt.Errorf("转换 Markdown 失败: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// FromPlainText 将纯文本转义后按换行插入 <br>，与粘贴纯文本时的处理一致。
func FromPlainText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return strings.Join(lines, "<br>\n")
}
