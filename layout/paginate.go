package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/ByLCY/inkpage/markup"
	"github.com/ByLCY/inkpage/renderer"
)

// ErrSplitMarkup 在严格模式下表示页面边界落在元素内部。
var ErrSplitMarkup = errors.New("page boundary splits an element")

// Paginate 将文档切分为若干页，每页通过对剩余 token 数量做二分查找得到能放下的最大片段。
// 二分依赖“token 越多高度越高”的单调性；跨页的未闭合元素会在页尾补齐、下页开头重新打开，
// 保证每次测量的片段结构完整。测量失败时整体中止且不返回部分结果。
func Paginate(ctx context.Context, doc markup.Document, capacity float64, oracle renderer.HeightOracle, opts PaginateOptions) ([]PageContent, error) {
	if oracle == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 HeightOracle")
	}
	p := &paginator{
		ctx:      ctx,
		tokens:   doc.Tokens,
		capacity: capacity,
		oracle:   oracle,
		opts:     opts,
	}

	// 整篇放得下时跳过查找，直接输出单页
	whole, open := markup.Wrap(nil, doc.String())
	height, err := p.measure(whole)
	if err != nil {
		return nil, err
	}
	if height <= capacity {
		page := PageContent{Start: 0, Tokens: doc.Tokens, Open: open, Height: height}
		p.finish(&page, whole)
		return []PageContent{page}, nil
	}

	var (
		pages []PageContent
		carry []markup.Element
	)
	for cursor := 0; cursor < len(p.tokens); {
		page, err := p.fit(len(pages), cursor, carry)
		if err != nil {
			return nil, err
		}
		cursor += len(page.Tokens)
		carry = page.Open
		pages = append(pages, page)
	}
	return pages, nil
}

type paginator struct {
	ctx      context.Context
	tokens   []markup.Token
	capacity float64
	oracle   renderer.HeightOracle
	opts     PaginateOptions
}

type candidate struct {
	markup string
	open   []markup.Element
	height float64
}

// fit 在 [1, remaining] 上二分，找出从 start 开始能放进一页的最多 token 数。
func (p *paginator) fit(index, start int, carry []markup.Element) (PageContent, error) {
	low, high := 1, len(p.tokens)-start
	best := 0
	var fitted candidate
	for low <= high {
		mid := (low + high) / 2
		c, err := p.try(carry, start, mid)
		if err != nil {
			return PageContent{}, err
		}
		if c.height <= p.capacity {
			best, fitted = mid, c
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	overflow := false
	if best == 0 {
		// 单个 token 已超出容量：强制一页一个 token，保证推进
		c, err := p.try(carry, start, 1)
		if err != nil {
			return PageContent{}, err
		}
		best, fitted, overflow = 1, c, true
		p.opts.logger().Warn("单个 token 超出页面容量", "page", index, "height", c.height, "capacity", p.capacity)
	}

	page := PageContent{
		Index:    index,
		Start:    start,
		Tokens:   p.tokens[start : start+best],
		Carry:    carry,
		Open:     fitted.open,
		Height:   fitted.height,
		Overflow: overflow,
	}
	// 最后一页没有页面边界，文档末尾未闭合的元素不算跨页
	last := start+best == len(p.tokens)
	if page.SplitsElement() && !last {
		if p.opts.StrictMarkup {
			return PageContent{}, fmt.Errorf("%w: 第 %d 页结束于 %v 内部", ErrSplitMarkup, index, markup.Names(page.Open))
		}
		p.opts.logger().Warn("页面边界位于元素内部，已跨页补齐标签", "page", index, "open", markup.Names(page.Open))
	}
	p.finish(&page, fitted.markup)
	return page, nil
}

func (p *paginator) try(carry []markup.Element, start, count int) (candidate, error) {
	body := markup.Join(p.tokens[start : start+count])
	text, open := markup.Wrap(carry, body)
	height, err := p.measure(text)
	if err != nil {
		return candidate{}, err
	}
	return candidate{markup: text, open: open, height: height}, nil
}

func (p *paginator) measure(text string) (float64, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	h, err := p.oracle.Measure(p.ctx, text)
	if err != nil {
		if errors.Is(err, renderer.ErrMeasurement) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", renderer.ErrMeasurement, err)
	}
	return h, nil
}

// finish 确定最终渲染标记；断词失败时退回未断词文本。
func (p *paginator) finish(page *PageContent, text string) {
	page.Markup = text
	if p.opts.Hyphenator == nil {
		return
	}
	hyphenated, err := p.opts.Hyphenator.Hyphenate(text)
	if err != nil {
		p.opts.logger().Warn("断词失败，使用原文", "page", page.Index, "error", err)
		return
	}
	page.Markup = hyphenated
	page.Hyphenated = hyphenated != text
}
