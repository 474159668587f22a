package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ingestion"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/session"
)

const review = `{"questions": [{"question_number": 1, "question_text": "Why Go?", "candidate_answer": "Speed", "recommended_answer": "Speed and tooling", "answer_correctness_rating": 6}], "overall_rating": "60%"}`

// replayStreamer answers each call with the next scripted reply.
type replayStreamer struct {
	mu       sync.Mutex
	replies  [][]string
	failures map[int]error
	requests []ai.Request
}

func (s *replayStreamer) Provider() string {
	return "replay"
}

func (s *replayStreamer) Stream(_ context.Context, req ai.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		call := len(s.requests)
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		if err := s.failures[call]; err != nil {
			yield("", err)
			return
		}
		if call >= len(s.replies) {
			return
		}
		for _, chunk := range s.replies[call] {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

type sseEvent struct {
	name string
	data string
}

func parseEvents(t *testing.T, body string) []sseEvent {
	t.Helper()

	var (
		events  []sseEvent
		current sseEvent
	)
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func newTestServer(streamer ai.Streamer) (*Server, *session.Store) {
	store := session.NewStore(interview.NewOrchestrator(streamer, nil, interview.Config{}), nil)
	return New(Config{}, store, ingestion.New(nil, nil, nil), zap.NewNop()), store
}

func do(t *testing.T, handler http.Handler, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&replayStreamer{})

	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSessionLifecycle(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	handler := srv.Handler()

	rec := do(t, handler, http.MethodPost, "/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 1, store.Len())

	rec = do(t, handler, http.MethodDelete, "/sessions/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())

	rec = do(t, handler, http.MethodDelete, "/sessions/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(&replayStreamer{})
	handler := srv.Handler()

	for _, target := range []string{"/sessions/missing/resume", "/sessions/missing/job-description", "/sessions/missing/chat"} {
		rec := do(t, handler, http.MethodPost, target, []byte(`{}`), "application/json")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestJobDescriptionPasted(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/job-description",
		[]byte(`{"text":"Senior Go Engineer"}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Senior Go Engineer"}`, rec.Body.String())
	assert.Equal(t, "Senior Go Engineer", sess.Documents.Snapshot().JobDescription)
}

func TestJobDescriptionEmpty(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/job-description", []byte(`{}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"no JD provided"}`, rec.Body.String())
}

func TestJobDescriptionKeptWhenClientGoesAway(t *testing.T) {
	listing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1 class="topcard__title">Go Engineer</h1>` +
			`<a class="topcard__org-name-link">Acme</a><div class="description__text">Build.</div></body></html>`))
	}))
	defer listing.Close()

	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body, err := json.Marshal(jobDescriptionRequest{URL: listing.URL})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/job-description", bytes.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "Go EngineerAcmeBuild.", sess.Documents.Snapshot().JobDescription)
}

func TestJobDescriptionInvalidJSON(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/job-description", []byte(`{`), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeRejectsInvalidDocument(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "cv.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a pdf"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/resume", body.Bytes(), writer.FormDataContentType())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, sess.Documents.Snapshot().Resume)
}

func TestResumeRequiresBody(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/resume", nil, "application/pdf")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeTooLarge(t *testing.T) {
	store := session.NewStore(interview.NewOrchestrator(&replayStreamer{}, nil, interview.Config{}), nil)
	srv := New(Config{MaxUploadSize: 8}, store, ingestion.New(nil, nil, nil), nil)
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/resume", []byte("%PDF-1.4 and much more"), "application/pdf")

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChatStreamsInterview(t *testing.T) {
	streamer := &replayStreamer{replies: [][]string{{"Welcome! ", "Please share your CV."}}}
	srv, store := newTestServer(streamer)
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/chat", []byte(`{"message":"Hi"}`), "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseEvents(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "message", events[0].name)
	assert.JSONEq(t, `{"phase":"interviewing","text":"Welcome! Please share your CV."}`, events[1].data)
	assert.Equal(t, "complete", events[2].name)
	assert.JSONEq(t, `{"status":"ok"}`, events[2].data)

	assert.Len(t, sess.Conversation.Transcript(), 1)
}

func TestChatEvaluatesAfterClosingMessage(t *testing.T) {
	streamer := &replayStreamer{replies: [][]string{
		{"Thank you, goodbye.", "{interview ended}"},
		{review},
	}}
	srv, store := newTestServer(streamer)
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/chat", []byte(`{"message":"That's all"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	events := parseEvents(t, rec.Body.String())
	require.Len(t, events, 5)

	for _, event := range events[:3] {
		assert.Equal(t, "message", event.name)
		assert.NotContains(t, event.data, "interview ended")
	}

	var last messageEvent
	require.NoError(t, json.Unmarshal([]byte(events[2].data), &last))
	assert.Equal(t, interview.PhaseEvaluating, last.Phase)
	assert.Equal(t, "Thank you, goodbye.\n\n"+review, last.Text)

	assert.Equal(t, "report", events[3].name)
	var report interview.Report
	require.NoError(t, json.Unmarshal([]byte(events[3].data), &report))
	assert.Equal(t, "60%", report.OverallRating)
	require.Len(t, report.Questions, 1)
	assert.Equal(t, float64(6), report.Questions[0].Rating)

	assert.Equal(t, "complete", events[4].name)
	assert.Len(t, streamer.requests, 2)
}

func TestChatModelFailure(t *testing.T) {
	streamer := &replayStreamer{failures: map[int]error{0: errors.New("quota exceeded")}}
	srv, store := newTestServer(streamer)
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/chat", []byte(`{"message":"Hi"}`), "application/json")

	events := parseEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[0].name)
	assert.Contains(t, events[0].data, "interviewer model call failed: quota exceeded")
	assert.JSONEq(t, `{"status":"failed"}`, events[1].data)
	assert.Empty(t, sess.Conversation.Transcript())
}

func TestChatRequiresMessage(t *testing.T) {
	srv, store := newTestServer(&replayStreamer{})
	sess := store.Create()

	rec := do(t, srv.Handler(), http.MethodPost, "/sessions/"+sess.ID+"/chat", []byte(`{"message":"  "}`), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: session.ErrNotFound, want: http.StatusNotFound},
		{name: "validation", err: &ValidationError{Field: "message", Message: "required"}, want: http.StatusBadRequest},
		{name: "parse", err: &ingestion.ParseError{Page: 2, Err: ingestion.ErrNoText}, want: http.StatusUnprocessableEntity},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
