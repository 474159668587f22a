package ingestion

import "sync"

type recordingSink struct {
	mu             sync.Mutex
	jobDescription string
	resume         string
	jdWrites       int
	resumeWrites   int
}

func (s *recordingSink) SetJobDescription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobDescription = text
	s.jdWrites++
}

func (s *recordingSink) SetResume(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = text
	s.resumeWrites++
}
