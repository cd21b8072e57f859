package layout

import "log/slog"

// PaginateOptions 配置分页阶段的可选依赖。
type PaginateOptions struct {
	Hyphenator Hyphenator
	Logger     *slog.Logger
	// StrictMarkup 为 true 时，页面边界落在元素内部直接报错，而不是跨页补齐标签。
	StrictMarkup bool
}

// Hyphenator 为文本插入软连字符断词点；失败不阻塞分页。
type Hyphenator interface {
	Hyphenate(text string) (string, error)
}

func (o PaginateOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
