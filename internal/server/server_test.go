package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/store"
)

const strategyText = `Focus on depth over breadth.
1. Distributed systems experience and trade-offs
2. Production incident response and debugging
3. Team leadership and mentoring history
4. Approach to testing and code quality`

type scriptedGenerator struct {
	responses []string
	err       error
}

func (g *scriptedGenerator) GenerateContent(_ context.Context, _, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", fmt.Errorf("no scripted response left")
	}

	next := g.responses[0]
	g.responses = g.responses[1:]

	return next, nil
}

type fixedTranscriber struct {
	text string
	err  error
}

func (f *fixedTranscriber) Transcribe(_ context.Context, _ string, _ io.Reader) (string, error) {
	return f.text, f.err
}

type testEnv struct {
	store     *store.Store
	generator *scriptedGenerator
	server    *httptest.Server
}

func newTestEnv(t *testing.T, transcriber Transcriber, responses ...string) *testEnv {
	t.Helper()

	gen := &scriptedGenerator{responses: responses}
	st := store.New()
	engine := interview.NewEngine(gen, zap.NewNop())

	srv := New(engine, st, transcriber, nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{store: st, generator: gen, server: ts}
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/", "/healthz"} {
		resp, err := http.Get(env.server.URL + path)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}

		var body map[string]string
		decodeBody(t, resp, &body)

		if body["status"] != "ok" {
			t.Errorf("%s: expected status ok, got %q", path, body["status"])
		}
	}
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, content := range fields {
		part, err := writer.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentsCreatesSession(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartUpload(t, map[string]string{
		"resume":          "Go developer, ten years.",
		"job_description": "Senior backend engineer.",
	})

	resp, err := http.Post(env.server.URL+"/upload-documents", contentType, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var result uploadResponse
	decodeBody(t, resp, &result)

	if result.SessionID == "" {
		t.Error("expected a session id")
	}

	if result.ResumeLength != len("Go developer, ten years.") {
		t.Errorf("unexpected resume length %d", result.ResumeLength)
	}

	if _, err := env.store.Get(result.SessionID); err != nil {
		t.Errorf("session not stored: %v", err)
	}
}

func TestUploadDocumentsMissingField(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartUpload(t, map[string]string{
		"resume": "Go developer, ten years.",
	})

	resp, err := http.Post(env.server.URL+"/upload-documents", contentType, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStartInterviewReturnsFirstQuestion(t *testing.T) {
	env := newTestEnv(t, nil,
		strategyText,
		"Tell me about your background.",
	)

	session, err := env.store.Create("Go developer, ten years.", "Senior backend engineer.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	resp := env.postJSON(t, "/start-interview", startRequest{SessionID: session.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result startResponse
	decodeBody(t, resp, &result)

	if result.FirstQuestion != "Tell me about your background." {
		t.Errorf("unexpected first question %q", result.FirstQuestion)
	}
}

func TestStartInterviewTwiceRejected(t *testing.T) {
	env := newTestEnv(t, nil,
		strategyText,
		"Tell me about your background.",
	)

	session, err := env.store.Create("Go developer, ten years.", "Senior backend engineer.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	resp := env.postJSON(t, "/start-interview", startRequest{SessionID: session.ID})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first start: expected 200, got %d", resp.StatusCode)
	}

	resp = env.postJSON(t, "/start-interview", startRequest{SessionID: session.ID})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("second start: expected 400, got %d", resp.StatusCode)
	}
}

func TestStartInterviewUnknownSession(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.postJSON(t, "/start-interview", startRequest{SessionID: "nope"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSubmitAnswerReturnsNextQuestion(t *testing.T) {
	env := newTestEnv(t, nil,
		strategyText,
		"Tell me about your background.",
		"no",
		"What distributed systems have you built?",
	)

	session, err := env.store.Create("Go developer, ten years.", "Senior backend engineer.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	resp := env.postJSON(t, "/start-interview", startRequest{SessionID: session.ID})
	resp.Body.Close()

	resp = env.postJSON(t, "/submit-answer", submitRequest{
		SessionID: session.ID,
		Answer:    "I built services in Go for a decade.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result submitResponse
	decodeBody(t, resp, &result)

	if result.IsConcluded {
		t.Error("interview should not be concluded")
	}

	if result.NextQuestion != "What distributed systems have you built?" {
		t.Errorf("unexpected next question %q", result.NextQuestion)
	}

	if result.ConclusionMessage != "" {
		t.Errorf("unexpected conclusion message %q", result.ConclusionMessage)
	}

	if result.TimeRemainingSeconds <= 0 {
		t.Errorf("expected remaining time, got %d", result.TimeRemainingSeconds)
	}
}

func TestSubmitAnswerBeforeStartRejected(t *testing.T) {
	env := newTestEnv(t, nil)

	session, err := env.store.Create("Go developer, ten years.", "Senior backend engineer.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	resp := env.postJSON(t, "/submit-answer", submitRequest{SessionID: session.ID, Answer: "hello"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitAnswerEngineFailure(t *testing.T) {
	env := newTestEnv(t, nil,
		strategyText,
		"Tell me about your background.",
	)

	session, err := env.store.Create("Go developer, ten years.", "Senior backend engineer.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	resp := env.postJSON(t, "/start-interview", startRequest{SessionID: session.ID})
	resp.Body.Close()

	env.generator.err = fmt.Errorf("model unavailable")

	resp = env.postJSON(t, "/submit-answer", submitRequest{SessionID: session.ID, Answer: "hello"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

func TestInterviewStatus(t *testing.T) {
	env := newTestEnv(t, nil,
		strategyText,
		"Tell me about your background.",
	)

	session, err := env.store.Create("Go developer, ten years.", "Senior backend engineer.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	resp := env.postJSON(t, "/start-interview", startRequest{SessionID: session.ID})
	resp.Body.Close()

	statusResp, err := http.Get(env.server.URL + "/interview-status/" + session.ID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if statusResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", statusResp.StatusCode)
	}

	var result statusResponse
	decodeBody(t, statusResp, &result)

	if !result.Started {
		t.Error("expected started")
	}

	if result.IsConcluded {
		t.Error("expected not concluded")
	}

	if result.QuestionsAsked != 1 {
		t.Errorf("expected 1 question asked, got %d", result.QuestionsAsked)
	}
}

func TestInterviewStatusUnknownSession(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.server.URL + "/interview-status/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTranscribeAudio(t *testing.T) {
	env := newTestEnv(t, &fixedTranscriber{text: "I led a platform team."})

	body, contentType := multipartUpload(t, map[string]string{"audio": "fake-bytes"})

	resp, err := http.Post(env.server.URL+"/transcribe-audio", contentType, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result transcribeResponse
	decodeBody(t, resp, &result)

	if result.Text != "I led a platform team." {
		t.Errorf("unexpected transcription %q", result.Text)
	}
}

func TestTranscribeAudioNotConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	body, contentType := multipartUpload(t, map[string]string{"audio": "fake-bytes"})

	resp, err := http.Post(env.server.URL+"/transcribe-audio", contentType, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	gen := &scriptedGenerator{}
	st := store.New()
	engine := interview.NewEngine(gen, zap.NewNop())

	srv := New(engine, st, nil, []string{"https://app.example.com"}, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/submit-answer", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example.com")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("unexpected allow-origin %q", got)
	}

	req.Header.Set("Origin", "https://evil.example.com")

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Post(env.server.URL+"/start-interview", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
