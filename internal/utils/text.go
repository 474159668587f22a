package utils

import "regexp"

var newlineRuns = regexp.MustCompile(`\n+`)

// CollapseNewlines replaces every run of consecutive newline characters with a single one.
func CollapseNewlines(s string) string {
	return newlineRuns.ReplaceAllString(s, "\n")
}
