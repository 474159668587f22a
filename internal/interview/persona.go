package interview

import (
	_ "embed"

	"github.com/spigell/interview-coach/internal/ai"
)

const (
	InterviewerName = "interviewer"
	ReviewerName    = "reviewer"

	DefaultModel = "gpt-4-0613"
)

var (
	//go:embed interviewer.md
	interviewerPrompt string

	//go:embed reviewer.md
	reviewerPrompt string
)

// Persona is one member of the interview panel: a system prompt plus the
// decoding parameters its model calls use.
type Persona struct {
	Name   string
	Prompt string
	ai.Params
}

// DefaultInterviewer conducts the scripted interview.
func DefaultInterviewer() Persona {
	return Persona{
		Name:   InterviewerName,
		Prompt: interviewerPrompt,
		Params: ai.Params{Model: DefaultModel, Temperature: 0.4, MaxTokens: 300},
	}
}

// DefaultReviewer grades the finished interview. It runs colder and with a
// larger output budget than the interviewer.
func DefaultReviewer() Persona {
	return Persona{
		Name:   ReviewerName,
		Prompt: reviewerPrompt,
		Params: ai.Params{Model: DefaultModel, Temperature: 0.2, MaxTokens: 2000},
	}
}

// withDefaults fills the zero fields of p from def.
func (p Persona) withDefaults(def Persona) Persona {
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.Prompt == "" {
		p.Prompt = def.Prompt
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.Temperature == 0 {
		p.Temperature = def.Temperature
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = def.MaxTokens
	}
	return p
}
