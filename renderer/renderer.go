package renderer

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrMeasurement 表示测量面无法给出内容高度，整次生成需要中止。
	ErrMeasurement = errors.New("measurement failure")
	// ErrCapture 表示页面栅格化失败，当前页不会进入输出画廊。
	ErrCapture = errors.New("capture failure")
)

// HeightOracle 回答“这段标记排版后有多高”，单位与 Surface.Capacity 一致。
type HeightOracle interface {
	Measure(ctx context.Context, markup string) (float64, error)
}

// HeightFunc 让普通函数满足 HeightOracle，便于测试注入确定性的测量。
type HeightFunc func(markup string) (float64, error)

// Measure implements HeightOracle.
func (f HeightFunc) Measure(_ context.Context, markup string) (float64, error) { return f(markup) }

// Overlay 在页面栅格化后、交给调用方之前合成到位图上（例如光照阴影）。
type Overlay interface {
	Composite(img *image.RGBA)
}

// CaptureOptions 控制单页栅格化。
type CaptureOptions struct {
	Scale       float64 // 相对基础分辨率的倍数，<=0 视为 1
	Transparent bool    // 不绘制纸张底色与背景图
	Overlay     Overlay // 可选，捕获前合成
}

// Surface 是分页与栅格化共享的渲染面：一次运行内读取一次容量，再反复测量与捕获。
type Surface interface {
	HeightOracle
	Capacity() float64
	Capture(ctx context.Context, markup string, opts CaptureOptions) (*image.RGBA, error)
}
