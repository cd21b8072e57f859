package hyphen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

// 极简模式：允许在 "ab" 之间断开
const patterns = "a1b\n"

func loadPatterns(t *testing.T) *Patterns {
	t.Helper()
	p, err := Load(strings.NewReader(patterns), language.English)
	if err != nil {
		t.Fatalf("加载断词模式失败: %v", err)
	}
	return p
}

func TestHyphenateKeepsTextAndTags(t *testing.T) {
	p := loadPatterns(t)
	src := `<p class="abab">abababab &amp; cab</p><img src="abab.png">`
	got, err := p.Hyphenate(src)
	if err != nil {
		t.Fatalf("hyphenate: %v", err)
	}
	if strip := strings.ReplaceAll(got, SoftHyphen, ""); strip != src {
		t.Fatalf("去掉软连字符后应与原文一致:\n got %q\nwant %q", strip, src)
	}
	for _, tag := range []string{`<p class="abab">`, `<img src="abab.png">`, "&amp;"} {
		if !strings.Contains(got, tag) {
			t.Fatalf("标签或实体被修改: %q", got)
		}
	}
}

func TestHyphenateShortWordsUntouched(t *testing.T) {
	p := loadPatterns(t)
	got, err := p.Hyphenate("ab cab")
	if err != nil {
		t.Fatalf("hyphenate: %v", err)
	}
	if got != "ab cab" {
		t.Fatalf("短单词不应断词，得到 %q", got)
	}
}

func TestHyphenateNilPatterns(t *testing.T) {
	var p *Patterns
	if _, err := p.Hyphenate("text"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.pat"), "en"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing file: expected ErrUnavailable, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "en.pat")
	if err := os.WriteFile(path, []byte(patterns), 0o644); err != nil {
		t.Fatalf("write patterns: %v", err)
	}
	if _, err := LoadFile(path, "not a tag!"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("bad tag: expected ErrUnavailable, got %v", err)
	}
	p, err := LoadFile(path, "pt-BR")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Language() != language.MustParse("pt-BR") {
		t.Fatalf("language: %v", p.Language())
	}
}
