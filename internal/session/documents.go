// Package session keeps the per-candidate state of an interview: the ingested
// documents and the running conversation.
package session

import (
	"sync"

	"github.com/spigell/interview-coach/internal/ingestion"
	"github.com/spigell/interview-coach/internal/interview"
)

// Documents holds the most recent job description and resume of one session.
// Writes replace the previous value; readers take a Snapshot once per turn.
type Documents struct {
	mu             sync.RWMutex
	jobDescription string
	resume         string
}

func NewDocuments() *Documents {
	return &Documents{jobDescription: ingestion.NoJobDescription}
}

func (d *Documents) SetJobDescription(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobDescription = text
}

func (d *Documents) SetResume(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resume = text
}

// Snapshot returns a copy of the current documents.
func (d *Documents) Snapshot() interview.Documents {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return interview.Documents{JobDescription: d.jobDescription, Resume: d.resume}
}
