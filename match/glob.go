// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package match

// The glob dialect is a closed three-symbol grammar: "*" (zero or more
// arbitrary bytes), "?" (exactly one arbitrary byte), and a backslash escape
// of the next byte. Unlike shell globbing (see mvdan.cc/sh/v3/pattern, which
// this is grounded on) there are no bracket classes, no "**", and no brace
// expansion — and the match is always anchored, consuming the entirety of
// the actual line.

type globTok struct {
	star bool // '*'
	any  bool // '?'
	lit  byte // literal byte, including an escaped one
}

// parseGlob desugars a glob pattern into a flat token list once, so the
// matching loop below never has to special-case backslash escapes itself.
func parseGlob(pat string) []globTok {
	toks := make([]globTok, 0, len(pat))
	for i := 0; i < len(pat); {
		switch c := pat[i]; c {
		case '*':
			toks = append(toks, globTok{star: true})
			i++
		case '?':
			toks = append(toks, globTok{any: true})
			i++
		case '\\':
			if i+1 < len(pat) {
				toks = append(toks, globTok{lit: pat[i+1]})
				i += 2
			} else {
				// Trailing lone backslash: nothing to escape, so it
				// stands for itself.
				toks = append(toks, globTok{lit: '\\'})
				i++
			}
		default:
			toks = append(toks, globTok{lit: c})
			i++
		}
	}
	return toks
}

// matchGlob reports whether actual is matched in full by pat. The algorithm
// is the classic greedy scan with backtracking to the most recent "*":
// advance both pattern and string together, and whenever a literal or "?"
// mismatches, rewind to the last seen star and retry one byte further into
// the string.
func matchGlob(pat, actual string) bool {
	toks := parseGlob(pat)

	var ti, si int
	starTi, starSi := -1, -1

	for si < len(actual) {
		if ti < len(toks) {
			t := toks[ti]
			switch {
			case t.star:
				starTi, starSi = ti, si
				ti++
				continue
			case t.any:
				ti++
				si++
				continue
			default:
				if actual[si] == t.lit {
					ti++
					si++
					continue
				}
			}
		}
		// Mismatch (or pattern exhausted with string remaining): backtrack
		// to the last star, if any, and let it eat one more byte.
		if starTi < 0 {
			return false
		}
		starSi++
		si = starSi
		ti = starTi + 1
	}

	// The string is exhausted; only trailing stars may remain in the pattern.
	for ti < len(toks) && toks[ti].star {
		ti++
	}
	return ti == len(toks)
}
