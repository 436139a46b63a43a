// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package internal

import "os"

// NormalizeTestEnv scrubs the handful of host-environment variables that
// could make tests exercising -E/--inherit-env flaky across machines (cram's
// buildEnv always sets LANG/LC_ALL/CDPATH/etc. explicitly for the child shell per the
// fixed environment block, but inherit-env tests read the host's values as
// their base before that happens).
func NormalizeTestEnv() {
	os.Setenv("LANG", "C")
	os.Setenv("LC_ALL", "C")
	os.Setenv("LANGUAGE", "C")
	os.Unsetenv("CDPATH")
	for _, s := range []string{"a", "b", "c", "d", "foo", "bar"} {
		os.Unsetenv(s)
	}
}
