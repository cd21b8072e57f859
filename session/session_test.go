package session

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/inkpage/effects"
	"github.com/ByLCY/inkpage/layout"
	"github.com/ByLCY/inkpage/renderer"
)

// fakeSurface 每个 token 计 1 个高度单位，捕获时返回 4x4 位图。
type fakeSurface struct {
	capacity float64
	failAt   int // 第几次捕获失败（从 1 起），0 表示不失败

	mu       sync.Mutex
	captures []string
	overlays []renderer.Overlay
	block    chan struct{}
}

func (f *fakeSurface) Capacity() float64 { return f.capacity }

func (f *fakeSurface) Measure(_ context.Context, markup string) (float64, error) {
	return float64(len(strings.Fields(markup))), nil
}

func (f *fakeSurface) Capture(_ context.Context, markup string, opts renderer.CaptureOptions) (*image.RGBA, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captures = append(f.captures, markup)
	f.overlays = append(f.overlays, opts.Overlay)
	if f.failAt > 0 && len(f.captures) == f.failAt {
		return nil, errors.New("image decode failed")
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func newGenerator(t *testing.T, surface renderer.Surface, yield func(context.Context) error) *Generator {
	t.Helper()
	g, err := New(Options{Surface: surface, Yield: yield, Rand: rand.New(rand.NewPCG(1, 2))})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return g
}

func TestGenerateAppendsEveryPage(t *testing.T) {
	surface := &fakeSurface{capacity: 3}
	yields := 0
	g := newGenerator(t, surface, func(ctx context.Context) error {
		yields++
		return ctx.Err()
	})

	report, err := g.Generate(context.Background(), "one two three four five six seven", RunOptions{Effect: effects.KindScanner, Scale: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report.Appended != 3 || len(report.Pages) != 3 || yields != 3 {
		t.Fatalf("report=%+v yields=%d", report, yields)
	}
	want := []string{"one two three ", "four five six ", "seven"}
	if diff := cmp.Diff(want, surface.captures); diff != "" {
		t.Fatalf("captured markup (-want +got):\n%s", diff)
	}
	items := g.Gallery().Snapshot()
	for i, a := range items {
		if a.Page != i || a.Run != report.Run || a.Effect != "scanner" {
			t.Fatalf("artifact %d: %+v", i, a)
		}
	}
}

func TestGenerateShadowOverlaySharedAcrossPages(t *testing.T) {
	surface := &fakeSurface{capacity: 1}
	g := newGenerator(t, surface, nil)
	if _, err := g.Generate(context.Background(), "a b c", RunOptions{Effect: effects.KindShadow}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	first, ok := surface.overlays[0].(effects.Shadow)
	if !ok {
		t.Fatalf("shadow run must pass an overlay to capture")
	}
	for i, o := range surface.overlays {
		if o.(effects.Shadow).Angle != first.Angle {
			t.Fatalf("page %d used a different shadow angle", i)
		}
	}
}

func TestGenerateCaptureFailureKeepsEarlierPages(t *testing.T) {
	surface := &fakeSurface{capacity: 2, failAt: 2}
	g := newGenerator(t, surface, nil)
	report, err := g.Generate(context.Background(), "a b c d e f", RunOptions{})
	if !errors.Is(err, renderer.ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}
	if report.Appended != 1 || g.Gallery().Len() != 1 {
		t.Fatalf("expected only the first page kept, appended=%d len=%d", report.Appended, g.Gallery().Len())
	}
	if len(surface.captures) != 2 {
		t.Fatalf("generation should stop after the failure, captures=%d", len(surface.captures))
	}
}

func TestGenerateMeasurementFailureLeavesGallery(t *testing.T) {
	g := newGenerator(t, failingSurface{&fakeSurface{capacity: 2}}, nil)
	_, err := g.Generate(context.Background(), "a b c d", RunOptions{})
	if !errors.Is(err, renderer.ErrMeasurement) {
		t.Fatalf("expected ErrMeasurement, got %v", err)
	}
	if g.Gallery().Len() != 0 {
		t.Fatalf("gallery must stay untouched")
	}
}

type failingSurface struct{ *fakeSurface }

func (failingSurface) Measure(context.Context, string) (float64, error) {
	return 0, errors.New("layout engine crashed")
}

func TestGenerateStrictMarkup(t *testing.T) {
	g := newGenerator(t, &fakeSurface{capacity: 2}, nil)
	_, err := g.Generate(context.Background(), "<b>a b c d</b>", RunOptions{StrictMarkup: true})
	if !errors.Is(err, layout.ErrSplitMarkup) {
		t.Fatalf("expected ErrSplitMarkup, got %v", err)
	}
}

func TestGenerateRejectsReentry(t *testing.T) {
	surface := &fakeSurface{capacity: 10, block: make(chan struct{})}
	g := newGenerator(t, surface, nil)

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), "slow page", RunOptions{})
		done <- err
	}()
	for !g.Busy() {
		runtime.Gosched()
	}
	if _, err := g.Generate(context.Background(), "second", RunOptions{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(surface.block)
	if err := <-done; err != nil {
		t.Fatalf("first generation: %v", err)
	}
	if g.Busy() {
		t.Fatalf("lock should be released")
	}
	if _, err := g.Generate(context.Background(), "third", RunOptions{}); err != nil {
		t.Fatalf("generation after release: %v", err)
	}
}

func TestGenerateCancelledBeforeCapture(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	surface := &fakeSurface{capacity: 1}
	calls := 0
	g := newGenerator(t, surface, func(context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return ctx.Err()
	})
	_, err := g.Generate(ctx, "a b c", RunOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if g.Gallery().Len() != 1 {
		t.Fatalf("pages before cancellation stay, len=%d", g.Gallery().Len())
	}
}
