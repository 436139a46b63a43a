// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package match

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMatchLiteral(t *testing.T) {
	c := qt.New(t)
	l := Line{Text: "hello", Original: "hello", Dialect: Literal}
	c.Assert(Match(l, "hello"), qt.IsTrue)
	c.Assert(Match(l, "hellox"), qt.IsFalse)
}

func TestMatchOriginalFallbackWinsOverDialect(t *testing.T) {
	c := qt.New(t)
	// The expected line happened to literally contain the (re) suffix in
	// its source form; the annotation stripping produced Text="foo" with
	// Dialect=Regex, but Original still carries the full "foo (re)" text.
	l := Line{Text: "foo", Original: "foo (re)", Dialect: Regex}
	c.Assert(Match(l, "foo (re)"), qt.IsTrue)
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pat, actual string
		want        bool
	}{
		{"*.txt", "hello.txt", true},
		{"*.txt", "hello.txtx", false},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"a*b*c", "axxbyyc", true},
		{"a*b*c", "axxbyy", false},
		{`\*literal`, "*literal", true},
		{`\*literal`, "xliteral", false},
		{"*", "anything at all", true},
		{"*", "", true},
		{"", "", true},
		{"", "x", false},
		{`trailing\`, `trailing\`, true},
	}
	for _, tc := range tests {
		if got := matchGlob(tc.pat, tc.actual); got != tc.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tc.pat, tc.actual, got, tc.want)
		}
	}
}

func TestMatchGlobAnchored(t *testing.T) {
	c := qt.New(t)
	l := Line{Text: "foo*", Original: "foo* (glob)", Dialect: Glob}
	c.Assert(Match(l, "foobar"), qt.IsTrue)
	c.Assert(Match(l, "xfoobar"), qt.IsFalse, qt.Commentf("glob must be anchored at the start"))
}

func TestMatchRegex(t *testing.T) {
	c := qt.New(t)
	l := Line{Text: `\d{4}-\d{2}-\d{2}`, Original: `\d{4}-\d{2}-\d{2} (re)`, Dialect: Regex}
	c.Assert(Match(l, "2024-01-15"), qt.IsTrue)
	c.Assert(Match(l, "2024-01-15 extra"), qt.IsFalse)
	c.Assert(Match(l, "x2024-01-15"), qt.IsFalse)
}

func TestMatchRegexDotMatchesNewline(t *testing.T) {
	c := qt.New(t)
	l := Line{Text: `a.b`, Original: `a.b (re)`, Dialect: Regex}
	c.Assert(Match(l, "a\nb"), qt.IsTrue)
}

func TestMatchRegexBadPatternNeverMatches(t *testing.T) {
	c := qt.New(t)
	l := Line{Text: `(unterminated`, Original: `(unterminated (re)`, Dialect: Regex}
	c.Assert(Match(l, "(unterminated"), qt.IsTrue, qt.Commentf("literal fallback still applies"))
	c.Assert(Match(l, "anything"), qt.IsFalse)
}

func TestMatchEscape(t *testing.T) {
	c := qt.New(t)
	l := Line{Text: `\x00\x01`, Original: `\x00\x01 (esc)`, Dialect: Escape}
	c.Assert(Match(l, "\x00\x01"), qt.IsTrue)
	c.Assert(Match(l, "\x00\x02"), qt.IsFalse)
}

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	c := qt.New(t)
	for i := 0; i < 256; i++ {
		s := []byte{byte(i), 'a', byte(i)}
		got := Unescape(Escape(s))
		c.Assert(got, qt.DeepEquals, s)
	}
}

func TestUnescapeMalformedHex(t *testing.T) {
	c := qt.New(t)
	c.Assert(Unescape(`\xZZ`), qt.DeepEquals, []byte(`\xZZ`))
	c.Assert(Unescape(`\x1`), qt.DeepEquals, []byte(`\x1`))
	c.Assert(Unescape(`\q`), qt.DeepEquals, []byte(`\q`))
	c.Assert(Unescape(`\n`), qt.DeepEquals, []byte("\n"))
}

func TestNeedsEscaping(t *testing.T) {
	c := qt.New(t)
	c.Assert(NeedsEscaping([]byte("hello\tworld")), qt.IsFalse)
	c.Assert(NeedsEscaping([]byte("hello\x00world")), qt.IsTrue)
	c.Assert(NeedsEscaping([]byte("hello\x7fworld")), qt.IsTrue)
	c.Assert(NeedsEscaping([]byte("héllo")), qt.IsFalse, qt.Commentf("valid UTF-8 doesn't need escaping"))
	c.Assert(NeedsEscaping([]byte{0xff, 0xfe}), qt.IsTrue, qt.Commentf("invalid UTF-8 lead bytes need escaping"))
}
