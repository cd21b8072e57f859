package dsl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/inkpage/dsl"
)

const sampleSheet = `
sheet Notebook v1 {
  // 横线纸
  paper A4 portrait margin 12mm 10mm {
    color: #fffef6
    background: "paper/ruled.jpg"
    lines: true
    margined: true
    top: 15mm
  }

  ink {
    font: "fonts/homemade-apple.ttf"
    size: 14pt; color: #000f55
    line-height: 1.5x
  }

  output {
    effect: scanner
    resolution: 2
    language: pt-BR
    keywords: [
      "notes"
      "handwriting"
    ]
  }
}
`

func TestParseSheet(t *testing.T) {
	doc, err := dsl.ParseString(sampleSheet)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Notebook" || doc.Version != "v1" {
		t.Fatalf("unexpected header: %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{doc.Sections[0].Kind(), doc.Sections[1].Kind(), doc.Sections[2].Kind()}
	if diff := cmp.Diff([]string{"paper", "ink", "output"}, kinds); diff != "" {
		t.Fatalf("section kinds (-want +got):\n%s", diff)
	}

	paper := doc.Sections[0].Paper
	if paper.Spec.Size != "A4" {
		t.Fatalf("expected paper size A4, got %s", paper.Spec.Size)
	}
	if diff := cmp.Diff([]string{"portrait", "margin", "12mm", "10mm"}, paper.Spec.Params); diff != "" {
		t.Fatalf("paper params (-want +got):\n%s", diff)
	}
	if v, ok := paper.Block.Lookup("color"); !ok || v.Color == nil || *v.Color != "#fffef6" {
		t.Fatalf("paper color missing: %+v", v)
	}
	if v, _ := paper.Block.Lookup("background"); v.Text() != "paper/ruled.jpg" {
		t.Fatalf("background lost: %q", v.Text())
	}
	if v, _ := paper.Block.Lookup("lines"); v.Word == nil || *v.Word != "true" {
		t.Fatalf("lines flag lost: %+v", v)
	}

	ink := doc.Sections[1].Ink
	if v, _ := ink.Block.Lookup("size"); v.Text() != "14pt" {
		t.Fatalf("ink size lost: %q", v.Text())
	}
	if v, _ := ink.Block.Lookup("color"); v.Text() != "#000f55" {
		t.Fatalf("ink color lost: %q", v.Text())
	}
	if v, _ := ink.Block.Lookup("line-height"); v.Text() != "1.5x" {
		t.Fatalf("line-height lost: %q", v.Text())
	}

	out := doc.Sections[2].Output
	if v, _ := out.Block.Lookup("language"); v.Text() != "pt-BR" {
		t.Fatalf("language lost: %q", v.Text())
	}
	kw, _ := out.Block.Lookup("keywords")
	if diff := cmp.Diff([]string{"notes", "handwriting"}, kw.Strings()); diff != "" {
		t.Fatalf("keywords (-want +got):\n%s", diff)
	}
}

func TestParsePaperWithoutBlock(t *testing.T) {
	doc, err := dsl.ParseString("sheet Plain v1 {\n paper A5 landscape\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	paper := doc.Sections[0].Paper
	if paper == nil || paper.Block != nil {
		t.Fatalf("expected paper section without block, got %+v", paper)
	}
	if _, ok := paper.Block.Lookup("color"); ok {
		t.Fatalf("nil block lookup should miss")
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	if _, err := dsl.ParseString("sheet X v1 { table { } }"); err == nil {
		t.Fatalf("expected parse error for unknown section")
	}
}
