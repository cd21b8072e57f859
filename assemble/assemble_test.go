package assemble

import (
	"bytes"
	"errors"
	"image"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/inkpage/gallery"
)

func artifacts(sizes ...image.Point) []*gallery.Artifact {
	g := gallery.New()
	for _, s := range sizes {
		g.Append(&gallery.Artifact{Image: image.NewRGBA(image.Rect(0, 0, s.X, s.Y))})
	}
	return g.Snapshot()
}

func TestPlanOnePagePerArtifactInOrder(t *testing.T) {
	items := artifacts(image.Pt(794, 1123), image.Pt(400, 200), image.Pt(100, 1000))
	// 交换顺序，导出应跟随画廊顺序
	items[0], items[2] = items[2], items[0]

	opts := DefaultOptions()
	plan, err := Plan(items, opts)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	got := make([]int, len(plan))
	for i, p := range plan {
		got[i] = p.Artifact
		if p.Page != i {
			t.Fatalf("placement %d on page %d", i, p.Page)
		}
	}
	if diff := cmp.Diff([]int{2, 1, 0}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	boxW := opts.Width - opts.Inset.Left - opts.Inset.Right
	boxH := opts.Height - opts.Inset.Top - opts.Inset.Bottom
	for i, p := range plan {
		b := items[i].Image.Bounds()
		if p.Width > boxW+1e-9 || p.Height > boxH+1e-9 {
			t.Fatalf("page %d exceeds inset: %gx%g", i, p.Width, p.Height)
		}
		if math.Abs(p.Width/p.Height-float64(b.Dx())/float64(b.Dy())) > 1e-9 {
			t.Fatalf("page %d not uniformly scaled", i)
		}
		if math.Abs(p.Y-opts.Inset.Top) > 1e-9 {
			t.Fatalf("page %d should be top aligned, y=%g", i, p.Y)
		}
		if math.Abs((p.X-opts.Inset.Left)-(opts.Inset.Left+boxW-p.X-p.Width)) > 1e-9 {
			t.Fatalf("page %d should be horizontally centred", i)
		}
	}
	// 宽图贴满宽度，窄高图贴满高度
	if math.Abs(plan[1].Width-boxW) > 1e-9 || math.Abs(plan[0].Height-boxH) > 1e-9 {
		t.Fatalf("contain fit mismatch: %+v", plan)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := Assemble(&buf, nil, DefaultOptions()); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written for empty input")
	}
	if _, err := WriteImages(t.TempDir(), nil, "jpeg", 90); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("WriteImages: expected ErrEmptyInput, got %v", err)
	}
}

var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

func TestAssembleWritesPDF(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Meta.Title = "Notes"
	if err := Assemble(&buf, artifacts(image.Pt(60, 80), image.Pt(60, 80), image.Pt(80, 60)), opts); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	// 每个产物恰好占一页
	if n := len(pageObject.FindAll(buf.Bytes(), -1)); n != 3 {
		t.Fatalf("expected 3 page objects, got %d", n)
	}
}

func TestWriteImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteImages(dir, artifacts(image.Pt(4, 4), image.Pt(4, 4)), "jpeg", 80)
	if err != nil {
		t.Fatalf("write images: %v", err)
	}
	want := []string{filepath.Join(dir, "page-001.jpg"), filepath.Join(dir, "page-002.jpg")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", p, err)
		}
	}
}
