package utils

import "testing"

func TestCollapseNewlines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "no newlines", input: "Go developer", expect: "Go developer"},
		{name: "single newline kept", input: "a\nb", expect: "a\nb"},
		{name: "runs collapsed", input: "a\n\n\nb\n\nc", expect: "a\nb\nc"},
		{name: "carriage returns untouched", input: "a\r\n\r\nb", expect: "a\r\n\r\nb"},
		{name: "leading and trailing runs", input: "\n\na\n\n", expect: "\na\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CollapseNewlines(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
