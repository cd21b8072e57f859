package markup

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeLossless(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"hello",
		"hello world",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\n\r\nhere",
		`<b>bold text</b> <img src="a b.png" alt="x y"> tail`,
		"a < b and c > d",
		"<p>unterminated <i class='x y",
		"中文　全角空格 mixed nbsp",
	}
	for _, in := range inputs {
		doc := Tokenize(in)
		if got := doc.String(); got != in {
			t.Fatalf("拼接结果与原文不一致: got=%q want=%q", got, in)
		}
		for i := 1; i < len(doc.Tokens); i++ {
			if doc.Tokens[i].Space == doc.Tokens[i-1].Space {
				t.Fatalf("相邻 token 类型相同 %q: %+v", in, doc.Tokens)
			}
		}
	}
}

func TestTokenizeKeepsTagsWhole(t *testing.T) {
	doc := Tokenize(`see <img src="a b.png" alt="x y"> now`)
	want := []Token{
		{Text: "see"},
		{Text: " ", Space: true},
		{Text: `<img src="a b.png" alt="x y">`},
		{Text: " ", Space: true},
		{Text: "now"},
	}
	if diff := cmp.Diff(want, doc.Tokens); diff != "" {
		t.Fatalf("token 不符 (-want +got):\n%s", diff)
	}
}

func TestTokenizeLessThanIsText(t *testing.T) {
	doc := Tokenize("a < b")
	if doc.Len() != 5 {
		t.Fatalf("expected 5 tokens, got %d: %+v", doc.Len(), doc.Tokens)
	}
}

func TestOpenElementsCarry(t *testing.T) {
	open := OpenElements(nil, `<b class="x">one <i>two</i> three`)
	if diff := cmp.Diff([]string{"b"}, Names(open)); diff != "" {
		t.Fatalf("open elements (-want +got):\n%s", diff)
	}
	if open[0].Raw != `<b class="x">` {
		t.Fatalf("raw tag lost: %q", open[0].Raw)
	}

	wrapped, rest := Wrap(open, "four</b> five")
	if wrapped != `<b class="x">four</b> five` {
		t.Fatalf("unexpected wrap: %q", wrapped)
	}
	if len(rest) != 0 {
		t.Fatalf("expected balanced tail, got %v", Names(rest))
	}
}

func TestOpenElementsIgnoresVoidAndStrayEnd(t *testing.T) {
	open := OpenElements(nil, `a<br><img src="x.png"></u>b`)
	if len(open) != 0 {
		t.Fatalf("expected no open elements, got %v", Names(open))
	}
	wrapped, _ := Wrap(nil, "<u>x <b>y")
	if !strings.HasSuffix(wrapped, "</b></u>") {
		t.Fatalf("close order wrong: %q", wrapped)
	}
}

func TestFromPlainText(t *testing.T) {
	got := FromPlainText("a & b\r\nc")
	if got != "a &amp; b<br>\nc" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFromMarkdown(t *testing.T) {
	got, err := FromMarkdown([]byte("Hello **world**"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got != "<p>Hello <strong>world</strong></p>" {
		t.Fatalf("unexpected markdown output: %q", got)
	}
}
