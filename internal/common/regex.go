package common

import (
	"regexp"
	"strings"
)

// CompileFold compiles pattern as a case-insensitive regular expression.
func CompileFold(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
