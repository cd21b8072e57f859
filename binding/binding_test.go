package binding

import "testing"

func mustData(t *testing.T, raw string) Data {
	t.Helper()
	d, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func TestInterpolatePaths(t *testing.T) {
	d := mustData(t, `{"student":{"name":"Ana","scores":[9.5,7]},"done":true}`)
	cases := map[string]string{
		"${student.name}":        "Ana",
		"${ student.scores[1] }": "7",
		"${student.scores[0]}":   "9.5",
		"${done}":                "true",
		"${student.missing}":     "${student.missing}",
		"${student.scores[9]}":   "${student.scores[9]}",
	}
	for in, want := range cases {
		if got := d.Interpolate(in); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBindEscapesTextOnly(t *testing.T) {
	d := mustData(t, `{"name":"<Tom & Jerry>","url":"x"}`)
	got, err := Bind(`<p title="${url}">Hi ${name}</p>`, d)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	want := `<p title="${url}">Hi &lt;Tom &amp; Jerry&gt;</p>`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBindWithoutData(t *testing.T) {
	src := "Dear ${name}"
	got, err := Bind(src, Data{})
	if err != nil || got != src {
		t.Fatalf("got %q err %v", got, err)
	}
}
