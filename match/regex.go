// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package match

import "regexp"

// matchRegex compiles text as an anchored, dot-matches-newline regex and
// reports whether it matches actual in full.
//
// The spec calls for a Perl-compatible regex; no PCRE or regexp2 binding
// appears as an actual application dependency anywhere in the example pack
// (dlclark/regexp2 only shows up as an indirect lint-tool dependency), so
// this uses the standard library's RE2 engine, same as every other regex
// need in the pack (fileutil's shebang/extension matchers, for instance).
// A compile failure is not an error the caller sees: per the error-handling
// policy, an invalid pattern simply never matches.
func matchRegex(text, actual string) bool {
	re, err := regexp.Compile(`(?s)^(?:` + text + `)$`)
	if err != nil {
		return false
	}
	return re.MatchString(actual)
}
