// Package control separates out-of-band control markers from streamed model text.
//
// A control marker is a brace-delimited fragment such as "{interview ended}".
// The interviewer appends it to its closing message; it must never reach the
// candidate, including while the marker is still arriving token by token.
package control

import (
	"regexp"
	"strings"
)

// InterviewEnded is emitted by the interviewer once the scripted interview is over.
const InterviewEnded = "interview ended"

var (
	markerPattern = regexp.MustCompile(`\{.*?\}`)
	braceStripper = strings.NewReplacer("{", "", "}", "")
)

// Extract splits the accumulated text of a streaming reply into the part shown
// to the user and the control token. It is a pure function of text, so it can
// be called again after every increment.
func Extract(text string) (visible, token string) {
	if loc := markerPattern.FindStringIndex(text); loc != nil {
		return text[:loc[0]] + text[loc[1]:], braceStripper.Replace(text[loc[0]:loc[1]])
	}

	// The marker is still streaming in: hide everything from the opening brace.
	if start := strings.IndexByte(text, '{'); start != -1 {
		return text[:start], text[start+1:]
	}

	return text, ""
}

// Ended reports whether token signals the end of the interview.
func Ended(token string) bool {
	return token == InterviewEnded
}
