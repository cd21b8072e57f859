package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/inkpage/dsl"
)

// 默认值参考常见横线作业纸：A4、14pt 墨水、1.5 倍行高。
const (
	defaultFontSizePt = 14
	defaultLineFactor = 1.5
	defaultMarginMM   = 10
	defaultTopBandMM  = 12
	defaultScale      = 2
	defaultQuality    = 92
)

// DefaultSheet 返回未提供配置文件时使用的纸张与墨水。
func DefaultSheet() Sheet {
	fontSize := defaultFontSizePt * PtToMm
	return Sheet{
		Name: "default",
		Paper: Paper{
			Width:       210,
			Height:      297,
			Margin:      Margin{Top: defaultMarginMM, Right: defaultMarginMM, Bottom: defaultMarginMM, Left: defaultMarginMM},
			TopBand:     defaultTopBandMM,
			Color:       Color{R: 255, G: 255, B: 255},
			Lines:       true,
			LineColor:   Color{R: 166, G: 200, B: 230},
			MarginColor: Color{R: 230, G: 110, B: 110},
		},
		Ink: Ink{
			Font:       FontResource{Name: "ink", Src: "builtin:go-regular"},
			FontSize:   fontSize,
			LineHeight: fontSize * defaultLineFactor,
			Color:      Color{R: 0, G: 15, B: 85},
		},
		Output: Output{
			Effect:  "none",
			Scale:   defaultScale,
			Format:  "jpeg",
			Quality: defaultQuality,
			Meta:    DocumentMeta{Creator: "inkpage"},
		},
	}
}

// Build 在默认值基础上应用 sheet 文件中的 paper/ink/output 段落。
func Build(doc *dsl.Document) (Sheet, error) {
	sheet := DefaultSheet()
	if doc == nil {
		return sheet, fmt.Errorf("sheet 文档为空")
	}
	sheet.Name = doc.Name
	for _, section := range doc.Sections {
		var err error
		switch {
		case section.Paper != nil:
			err = applyPaper(&sheet.Paper, section.Paper)
		case section.Ink != nil:
			err = applyInk(&sheet.Ink, section.Ink.Block)
		case section.Output != nil:
			err = applyOutput(&sheet.Output, section.Output.Block)
		}
		if err != nil {
			return sheet, fmt.Errorf("%s 段落: %w", section.Kind(), err)
		}
	}
	if sheet.Paper.ContentHeight() <= 0 || sheet.Paper.ContentWidth() <= 0 {
		return sheet, fmt.Errorf("边距过大，纸张没有可用内容区域")
	}
	return sheet, nil
}

func applyPaper(p *Paper, section *dsl.PaperSection) error {
	width, height, err := resolvePageSize(section.Spec)
	if err != nil {
		return err
	}
	p.Width, p.Height = width, height
	if m, ok := resolveMargin(section.Spec.Params); ok {
		p.Margin = m
	}

	block := section.Block
	if v, ok := block.Lookup("color"); ok {
		c, err := parseColor(v.Text())
		if err != nil {
			return err
		}
		p.Color = c
	}
	if v, ok := block.Lookup("background"); ok {
		p.Background = v.Text()
	}
	if v, ok := block.Lookup("lines"); ok {
		p.Lines = parseBool(v.Text())
	}
	if v, ok := block.Lookup("line-color"); ok {
		c, err := parseColor(v.Text())
		if err != nil {
			return err
		}
		p.LineColor = c
	}
	if v, ok := block.Lookup("margined"); ok {
		p.Margined = parseBool(v.Text())
	}
	if v, ok := block.Lookup("margin-color"); ok {
		c, err := parseColor(v.Text())
		if err != nil {
			return err
		}
		p.MarginColor = c
	}
	if v, ok := block.Lookup("top"); ok {
		l, ok := ParseLength(v.Text())
		if !ok || l.Value < 0 {
			return fmt.Errorf("top 值 %q 无法解析", v.Text())
		}
		p.TopBand = l.ToMM()
	}
	return nil
}

func applyInk(ink *Ink, block *dsl.Block) error {
	if v, ok := block.Lookup("font"); ok {
		ink.Font = FontResource{Name: "ink", Src: v.Text()}
	}
	// 行高可能以倍数表示，需在字号确定后计算
	lineHeight := LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineFactor}
	if v, ok := block.Lookup("size"); ok {
		l, ok := ParseLength(v.Text())
		if !ok || l.Value <= 0 {
			return fmt.Errorf("size 值 %q 无法解析", v.Text())
		}
		if l.Unit == UnitNone {
			l.Unit = UnitPT
		}
		ink.FontSize = l.ToMM()
	}
	if v, ok := block.Lookup("line-height"); ok {
		spec, ok := ParseLineHeight(v.Text())
		if !ok {
			return fmt.Errorf("line-height 值 %q 无法解析", v.Text())
		}
		lineHeight = spec
	}
	ink.LineHeight = lineHeight.Resolve(ink.FontSize)
	if v, ok := block.Lookup("color"); ok {
		c, err := parseColor(v.Text())
		if err != nil {
			return err
		}
		ink.Color = c
	}
	if v, ok := block.Lookup("word-spacing"); ok {
		l, ok := ParseLength(v.Text())
		if !ok {
			return fmt.Errorf("word-spacing 值 %q 无法解析", v.Text())
		}
		ink.WordSpacing = l.ToMM()
	}
	return nil
}

func applyOutput(out *Output, block *dsl.Block) error {
	if v, ok := block.Lookup("effect"); ok {
		out.Effect = strings.ToLower(v.Text())
	}
	if v, ok := block.Lookup("resolution"); ok {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v.Text(), "x"), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("resolution 值 %q 无法解析", v.Text())
		}
		out.Scale = f
	}
	if v, ok := block.Lookup("format"); ok {
		format := strings.ToLower(v.Text())
		if format == "jpg" {
			format = "jpeg"
		}
		if format != "jpeg" && format != "png" {
			return fmt.Errorf("不支持的图片格式：%s", v.Text())
		}
		out.Format = format
	}
	if v, ok := block.Lookup("quality"); ok {
		q, err := strconv.Atoi(v.Text())
		if err != nil || q < 1 || q > 100 {
			return fmt.Errorf("quality 值 %q 应在 1-100 之间", v.Text())
		}
		out.Quality = q
	}
	if v, ok := block.Lookup("transparent"); ok {
		out.Transparent = parseBool(v.Text())
	}
	if v, ok := block.Lookup("hyphenation"); ok {
		out.Hyphenation = v.Text()
	}
	if v, ok := block.Lookup("language"); ok {
		out.Language = v.Text()
	}
	if v, ok := block.Lookup("title"); ok {
		out.Meta.Title = v.Text()
	}
	if v, ok := block.Lookup("author"); ok {
		out.Meta.Author = v.Text()
	}
	if v, ok := block.Lookup("subject"); ok {
		out.Meta.Subject = v.Text()
	}
	if v, ok := block.Lookup("keywords"); ok {
		out.Meta.Keywords = v.Strings()
	}
	return nil
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}

	width := base[0]
	height := base[1]
	for _, param := range spec.Params {
		if param == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"B5":     {176, 250},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// resolveMargin 读取 margin 之后最多 4 个长度，语义与 CSS margin 简写一致。
func resolveMargin(params []string) (Margin, bool) {
	for i := 0; i < len(params); i++ {
		if params[i] != "margin" {
			continue
		}
		vals := []float64{}
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			l, ok := ParseLength(params[j])
			if !ok {
				break
			}
			vals = append(vals, l.ToMM())
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			return Margin{Top: v, Right: v, Bottom: v, Left: v}, true
		case 2:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, true
		case 3:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, true
		case 4:
			return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, true
		}
	}
	return Margin{}, false
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}
