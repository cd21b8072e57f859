package layout

import "github.com/ByLCY/inkpage/markup"

// 该文件定义纸张/墨水/输出配置与分页结果，供分页、渲染与调试 JSON 共用。

// Sheet 汇总一次生成所需的全部样式配置。
type Sheet struct {
	Name   string `json:"name"`
	Paper  Paper  `json:"paper"`
	Ink    Ink    `json:"ink"`
	Output Output `json:"output"`
}

// Paper 描述纸张尺寸与外观，长度统一以毫米保存。
type Paper struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Margin      Margin  `json:"margin"`
	TopBand     float64 `json:"topBand"` // 内容区上方的留白带（横线纸的抬头区域）
	Color       Color   `json:"color"`
	Background  string  `json:"background,omitempty"` // 纸张背景图路径，可选
	Lines       bool    `json:"lines"`
	LineColor   Color   `json:"lineColor"`
	Margined    bool    `json:"margined"`
	MarginColor Color   `json:"marginColor"`
}

// ContentWidth 返回可排版宽度。
func (p Paper) ContentWidth() float64 { return p.Width - p.Margin.Left - p.Margin.Right }

// ContentHeight 返回空白页去掉边距与留白带后的可用高度，即分页容量。
func (p Paper) ContentHeight() float64 {
	return p.Height - p.Margin.Top - p.Margin.Bottom - p.TopBand
}

// ContentTop 返回内容区顶部的页面坐标。
func (p Paper) ContentTop() float64 { return p.Margin.Top + p.TopBand }

// Ink 描述书写字体与颜色。
type Ink struct {
	Font        FontResource `json:"font"`
	FontSize    float64      `json:"fontSize"`   // mm
	LineHeight  float64      `json:"lineHeight"` // mm
	Color       Color        `json:"color"`
	WordSpacing float64      `json:"wordSpacing,omitempty"` // 额外词间距（mm）
}

// Output 描述栅格化、特效与导出选项。
type Output struct {
	Effect      string       `json:"effect"`
	Scale       float64      `json:"scale"`
	Format      string       `json:"format"`
	Quality     int          `json:"quality"`
	Transparent bool         `json:"transparent"`
	Hyphenation string       `json:"hyphenation,omitempty"` // TeX 断词模式文件
	Language    string       `json:"language,omitempty"`
	Meta        DocumentMeta `json:"meta"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// PageContent 是分配给一页的连续 token 子序列。
type PageContent struct {
	Index  int            `json:"index"`
	Start  int            `json:"start"` // 第一个 token 在文档中的下标
	Tokens []markup.Token `json:"tokens"`
	// Carry 为上一页遗留、需在本页开头重新打开的元素。
	Carry []markup.Element `json:"carry,omitempty"`
	// Open 为本页结束时仍未闭合的元素，渲染时已在末尾补齐结束标签。
	Open       []markup.Element `json:"open,omitempty"`
	Markup     string           `json:"markup"` // 实际渲染的标记
	Height     float64          `json:"height"`
	Overflow   bool             `json:"overflow,omitempty"` // 单个 token 超出容量时强制成页
	Hyphenated bool             `json:"hyphenated,omitempty"`
}

// Source 返回本页覆盖的原始标记片段。
func (p PageContent) Source() string { return markup.Join(p.Tokens) }

// SplitsElement 报告本页是否在某个元素内部断开。
func (p PageContent) SplitsElement() bool { return len(p.Open) > 0 }
