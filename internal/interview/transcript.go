package interview

import (
	"fmt"
	"strings"

	"github.com/spigell/interview-coach/internal/ai"
)

// Documents is the job description and resume a turn is grounded on.
type Documents struct {
	JobDescription string
	Resume         string
}

// Exchange is one completed turn: what the candidate said and what the
// interviewer showed in reply.
type Exchange struct {
	Candidate   string
	Interviewer string
}

// Transcript is the ordered history of an interview.
type Transcript []Exchange

// messages replays the transcript in chat order.
func (t Transcript) messages() []ai.Message {
	messages := make([]ai.Message, 0, 2*len(t))
	for _, exchange := range t {
		messages = append(messages,
			ai.UserMessage(exchange.Candidate),
			ai.AssistantMessage(exchange.Interviewer),
		)
	}
	return messages
}

// Serialize renders the transcript for the reviewer as a list of role/content
// records. Roles are "candidate" and "interviewer" so the reviewer does not
// carry the interview on. Double quotes are removed from the result.
func (t Transcript) Serialize() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, exchange := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRecord(&b, "candidate", exchange.Candidate)
		b.WriteString(", ")
		writeRecord(&b, "interviewer", exchange.Interviewer)
	}
	b.WriteByte(']')

	return strings.ReplaceAll(b.String(), `"`, "")
}

func writeRecord(b *strings.Builder, role, content string) {
	b.WriteString("{'role': ")
	writeQuoted(b, role)
	b.WriteString(", 'content': ")
	writeQuoted(b, content)
	b.WriteByte('}')
}

// writeQuoted quotes s with single quotes, or with double quotes when s holds
// a single quote and no double quote.
func writeQuoted(b *strings.Builder, s string) {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
}
