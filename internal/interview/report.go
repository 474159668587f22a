package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var ErrNoReport = errors.New("no JSON object in reviewer output")

// Report is the reviewer's structured verdict.
type Report struct {
	Questions     []QuestionScore `mapstructure:"questions" json:"questions"`
	OverallRating string          `mapstructure:"overall_rating" json:"overall_rating"`
}

type QuestionScore struct {
	Number            int     `mapstructure:"question_number" json:"question_number"`
	Question          string  `mapstructure:"question_text" json:"question_text"`
	CandidateAnswer   string  `mapstructure:"candidate_answer" json:"candidate_answer"`
	RecommendedAnswer string  `mapstructure:"recommended_answer" json:"recommended_answer"`
	Rating            float64 `mapstructure:"answer_correctness_rating" json:"answer_correctness_rating"`
}

// ParseReport decodes the reviewer output. Code fences and prose around the
// JSON object are ignored, and loosely typed values such as "9" for a rating
// or 90 for the overall rating are accepted.
func ParseReport(raw string) (*Report, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, ErrNoReport
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse reviewer response: %w", err)
	}

	report := &Report{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           report,
	})
	if err != nil {
		return nil, fmt.Errorf("create report decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode reviewer response: %w", err)
	}

	return report, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end < start {
		return ""
	}

	return strings.TrimSpace(raw[start : end+1])
}
