package interview

import "testing"

func TestTranscriptSerialize(t *testing.T) {
	tests := []struct {
		name       string
		transcript Transcript
		want       string
	}{
		{
			name: "empty",
			want: "[]",
		},
		{
			name:       "plain",
			transcript: Transcript{{Candidate: "Hi", Interviewer: "Welcome"}},
			want:       "[{'role': 'candidate', 'content': 'Hi'}, {'role': 'interviewer', 'content': 'Welcome'}]",
		},
		{
			name:       "apostrophe switches quoting",
			transcript: Transcript{{Candidate: "I'm here", Interviewer: "ok"}},
			want:       "[{'role': 'candidate', 'content': I'm here}, {'role': 'interviewer', 'content': 'ok'}]",
		},
		{
			name:       "both quote kinds",
			transcript: Transcript{{Candidate: `I'm "ready"`, Interviewer: "ok"}},
			want:       `[{'role': 'candidate', 'content': 'I\'m ready'}, {'role': 'interviewer', 'content': 'ok'}]`,
		},
		{
			name:       "double quotes stripped",
			transcript: Transcript{{Candidate: `say "hi"`, Interviewer: "ok"}},
			want:       "[{'role': 'candidate', 'content': 'say hi'}, {'role': 'interviewer', 'content': 'ok'}]",
		},
		{
			name:       "escapes",
			transcript: Transcript{{Candidate: "a\nb\tc\\d", Interviewer: "ok"}},
			want:       `[{'role': 'candidate', 'content': 'a\nb\tc\\d'}, {'role': 'interviewer', 'content': 'ok'}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.transcript.Serialize(); got != tt.want {
				t.Fatalf("expected\n%s\ngot\n%s", tt.want, got)
			}
		})
	}
}
