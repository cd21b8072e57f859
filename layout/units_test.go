package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
	for _, px := range samples {
		back := px * PxToMm * MmToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%gpx back=%g", px, back)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		unit Unit
	}{
		{"1in", 25.4, UnitIN},
		{"2.54cm", 25.4, UnitCM},
		{"96px", 25.4, UnitPX},
		{"10mm", 10, UnitMM},
		{" 12 ", 12, UnitNone},
		{"72pt", 72 * PtToMm, UnitPT},
	}
	for _, c := range cases {
		l, ok := ParseLength(c.in)
		if !ok {
			t.Fatalf("%q: 解析失败", c.in)
		}
		if l.Unit != c.unit {
			t.Fatalf("%q: unit got=%s want=%s", c.in, l.Unit, c.unit)
		}
		if diff := math.Abs(l.ToMM() - c.mm); diff > 1e-6 {
			t.Fatalf("%q: mm got=%g want=%g", c.in, l.ToMM(), c.mm)
		}
	}
	if _, ok := ParseLength("portrait"); ok {
		t.Fatalf("非数字不应解析为长度")
	}
}

func TestLineHeightResolve(t *testing.T) {
	spec, ok := ParseLineHeight("1.5x")
	if !ok || spec.Kind != LineHeightFactor {
		t.Fatalf("1.5x 应为倍数行高: %+v", spec)
	}
	if got := spec.Resolve(4); math.Abs(got-6) > 1e-9 {
		t.Fatalf("倍数行高换算错误: %g", got)
	}
	spec, ok = ParseLineHeight("7mm")
	if !ok || spec.Kind != LineHeightAbsolute {
		t.Fatalf("7mm 应为绝对行高: %+v", spec)
	}
	if got := spec.Resolve(4); got != 7 {
		t.Fatalf("绝对行高换算错误: %g", got)
	}
	if _, ok := ParseLineHeight("-1x"); ok {
		t.Fatalf("负数行高应被拒绝")
	}
}

func TestLineHeightPixels(t *testing.T) {
	spec, ok := ParseLineHeight("24px")
	if !ok || spec.Kind != LineHeightAbsolute {
		t.Fatalf("24px 应为绝对行高: %+v", spec)
	}
	if got := spec.Resolve(4); math.Abs(got-24*PxToMm) > 1e-9 {
		t.Fatalf("像素行高换算错误: %g", got)
	}
}
