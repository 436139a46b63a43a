// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyName(t *testing.T) {
	tests := []struct {
		name string
		want Dialect
	}{
		{"basic.t", Legacy},
		{"basic.md", Markdown},
		{"basic.txt", NotATestFile},
		{"noext", NotATestFile},
		{".hidden.t", NotATestFile},
		{"", NotATestFile},
		{"nested/dir/case.md", Markdown},
	}
	for _, tc := range tests {
		if got := ClassifyName(tc.name); got != tc.want {
			t.Errorf("ClassifyName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDialectIndent(t *testing.T) {
	if got := Legacy.Indent(); got != 2 {
		t.Errorf("Legacy.Indent() = %d, want 2", got)
	}
	if got := Markdown.Indent(); got != 4 {
		t.Errorf("Markdown.Indent() = %d, want 4", got)
	}
}

func TestCouldBeTestFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.t", "b.md", "c.txt", ".d.t"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.t"), 0o755); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]Dialect{}
	for _, e := range entries {
		if d, ok := CouldBeTestFile(e); ok {
			got[e.Name()] = d
		}
	}
	want := map[string]Dialect{
		"a.t": Legacy,
		"b.md": Markdown,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for name, d := range want {
		if got[name] != d {
			t.Errorf("CouldBeTestFile(%q) dialect = %v, want %v", name, got[name], d)
		}
	}
}
