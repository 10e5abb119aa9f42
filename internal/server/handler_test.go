package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/command"
	"github.com/kapu/wellness-companion-go/internal/prompt"
	"github.com/kapu/wellness-companion-go/internal/server"
	"github.com/kapu/wellness-companion-go/internal/service/ai"
	"github.com/kapu/wellness-companion-go/internal/session"
	"github.com/kapu/wellness-companion-go/internal/wizard"
)

type stubProvider struct {
	text      string
	block     bool
	calls     atomic.Int32
	started   chan struct{}
	cancelled chan struct{}
	once      sync.Once
	last      prompt.Prompt
	config    ai.ModelConfig
}

func newBlockingProvider() *stubProvider {
	return &stubProvider{
		block:     true,
		started:   make(chan struct{}),
		cancelled: make(chan struct{}),
	}
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub-1" }

func (p *stubProvider) Generate(ctx context.Context, pr prompt.Prompt, config ai.ModelConfig) (ai.ProviderResult, error) {
	p.calls.Add(1)
	if !p.block {
		p.last = pr
		p.config = config
	}
	if p.block {
		p.once.Do(func() { close(p.started) })
		<-ctx.Done()
		close(p.cancelled)
		return ai.ProviderResult{}, ctx.Err()
	}
	return ai.ProviderResult{Text: p.text, Model: "stub-1"}, nil
}

type sessionBody struct {
	ID     string          `json:"id"`
	Step   string          `json:"step"`
	Params json.RawMessage `json:"params"`
}

func newTestServer(t *testing.T, provider ai.Provider) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	responder := ai.NewResponder(provider, logger)
	store := session.NewStore(time.Hour, logger)
	t.Cleanup(store.Close)

	return server.NewServer(server.Dependencies{
		Responder: responder,
		Sessions:  store,
		Commands:  command.NewStepRegistry(&command.Dependencies{Generator: responder, Logger: logger}),
		Logger:    logger,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) sessionBody {
	t.Helper()
	var out sessionBody
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid session body %q: %v", w.Body.String(), err)
	}
	return out
}

// startAtResponseStep drives a new session up to the ai_response step
// without asking for a summary.
func startAtResponseStep(t *testing.T, h http.Handler) string {
	t.Helper()

	w := doJSON(t, h, http.MethodPost, "/api/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	id := decodeSession(t, w).ID

	steps := []string{
		`{"emotion":"Anxious","intensity":7}`,
		`{"content":"presentation tomorrow"}`,
		`{"advisor":"therapist","response_type":"advice","summarize":false}`,
	}
	for _, body := range steps {
		w = doJSON(t, h, http.MethodPost, "/api/sessions/"+id+"/advance", body)
		if w.Code != http.StatusOK {
			t.Fatalf("advance %s: expected 200, got %d, body=%s", body, w.Code, w.Body.String())
		}
	}
	if step := decodeSession(t, w).Step; step != string(wizard.StepAIResponse) {
		t.Fatalf("expected ai_response, got %s", step)
	}
	return id
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	w := doJSON(t, srv, http.MethodGet, "/healthz", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestModelsReportsOfflineMode(t *testing.T) {
	srv := newTestServer(t, nil)
	w := doJSON(t, srv, http.MethodGet, "/api/models", "")

	var out struct {
		Backend string `json:"backend"`
		Offline bool   `json:"offline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if !out.Offline || out.Backend != "mock" {
		t.Fatalf("expected offline mock backend, got %+v", out)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)
	w := doJSON(t, srv, http.MethodOptions, "/api/respond", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestRespondValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := map[string]string{
		"empty content":      `{"content":"  ","emotion":"Sad","intensity":4,"type":"advice"}`,
		"intensity too high": `{"content":"rough day","emotion":"Sad","intensity":11,"type":"advice"}`,
		"intensity missing":  `{"content":"rough day","emotion":"Sad","type":"advice"}`,
		"invalid json":       `{"content":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodPost, "/api/respond", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRespondUsesProvider(t *testing.T) {
	provider := &stubProvider{text: "  Breathe, then take the first small step.  "}
	srv := newTestServer(t, provider)

	w := doJSON(t, srv, http.MethodPost, "/api/respond",
		`{"content":"rough day","emotion":"Sad","intensity":4,"advisorPerspective":"mentor"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var out struct {
		Response string `json:"response"`
		Failure  string `json:"failure"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out.Response != "Breathe, then take the first small step." || out.Source != "stub" || out.Failure != "" {
		t.Fatalf("unexpected response %+v", out)
	}
	if provider.calls.Load() != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls.Load())
	}
}

func TestChatUsesProvider(t *testing.T) {
	provider := &stubProvider{text: "Start with one small task."}
	srv := newTestServer(t, provider)

	w := doJSON(t, srv, http.MethodPost, "/api/chat",
		`{"message":"I feel stuck","model":"deepseek-r1:1.5b","temperature":0.3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var out struct {
		Response string `json:"response"`
		Model    string `json:"model"`
		Failure  string `json:"failure"`
		Source   string `json:"source"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out.Response != "Start with one small task." || out.Model != "stub-1" || out.Source != "stub" || out.Failure != "" {
		t.Fatalf("unexpected response %+v", out)
	}
	if provider.last.System != prompt.CompanionSystemPrompt || provider.last.User != "I feel stuck" {
		t.Fatalf("unexpected prompt %+v", provider.last)
	}
	if provider.config.Temperature != float32(0.3) {
		t.Fatalf("expected temperature override, got %v", provider.config.Temperature)
	}
}

func TestChatValidationAndOffline(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, body := range []string{`{"message":"   "}`, `{"message":"hi","temperature":3}`, `not json`} {
		if w := doJSON(t, srv, http.MethodPost, "/api/chat", body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, w.Code)
		}
	}

	w := doJSON(t, srv, http.MethodPost, "/api/chat", `{"message":"hello","system_prompt":"Be brief."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out["response"] != ai.MockChatResponse() || out["failure"] != "no_credential" || out["source"] != ai.SourceMock {
		t.Fatalf("unexpected offline chat %+v", out)
	}
}

func TestUnprefixedAliases(t *testing.T) {
	srv := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/analyze", `{"content":"I passed the exam","emotion":"Happy"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"analysis"`) {
		t.Fatalf("analyze alias: got %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPost, "/respond",
		`{"content":"rough day","emotion":"Sad","intensity":4,"advisorPerspective":"parent"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "I care about you deeply") {
		t.Fatalf("respond alias: got %d, body=%s", w.Code, w.Body.String())
	}

	if w = doJSON(t, srv, http.MethodOptions, "/respond", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
}

func TestAnalyzeOffline(t *testing.T) {
	srv := newTestServer(t, nil)
	w := doJSON(t, srv, http.MethodPost, "/api/analyze", `{"content":"I passed the exam","emotion":"Happy"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Analysis string `json:"analysis"`
		Source   string `json:"source"`
		Failure  string `json:"failure"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if out.Analysis == "" || out.Source != "mock" || out.Failure != "no_credential" {
		t.Fatalf("unexpected analysis %+v", out)
	}
}

func TestSessionAdvanceThroughFlow(t *testing.T) {
	provider := &stubProvider{text: "You prepared well."}
	srv := newTestServer(t, provider)
	id := startAtResponseStep(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/advance", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	out := decodeSession(t, w)
	if out.Step != string(wizard.StepGratitude) {
		t.Fatalf("expected gratitude, got %s", out.Step)
	}
	if !strings.Contains(string(out.Params), "You prepared well.") {
		t.Fatalf("expected response in params, got %s", out.Params)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/advance", `{"action":"profile"}`)
	if decodeSession(t, w).Step != string(wizard.StepProfile) {
		t.Fatalf("expected profile, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"entry_count":1`) {
		t.Fatalf("expected profile overview with one entry, got %s", w.Body.String())
	}
}

func TestAdvanceErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodGet, "/api/sessions/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/sessions", "")
	id := decodeSession(t, w).ID

	w = doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/advance", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 without an emotion, got %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/advance", `{"emotion":"Happy","intensity":12}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for intensity out of range, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/sessions/"+id+"/advance", `[1,2]`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-object body, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/sessions/"+id, "")
	if decodeSession(t, w).Step != string(wizard.StepEmotionSelection) {
		t.Fatalf("failed advances must not move the flow, got %s", w.Body.String())
	}
}

func socketURL(base, id string) string {
	return "ws" + strings.TrimPrefix(base, "http") + "/api/sessions/" + id + "/response/ws"
}

type socketEvent struct {
	Type     string `json:"type"`
	Response *struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	} `json:"response"`
	Error string `json:"error"`
}

func TestResponseSocketPushesResult(t *testing.T) {
	provider := &stubProvider{text: "Name the worry, then set it down."}
	handler := newTestServer(t, provider)
	srv := httptest.NewServer(handler)
	defer srv.Close()
	id := startAtResponseStep(t, handler)

	conn, _, err := websocket.DefaultDialer.Dial(socketURL(srv.URL, id), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var event socketEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read: %v", err)
	}
	if event.Type != "result" || event.Response == nil || event.Response.Text != "Name the worry, then set it down." {
		t.Fatalf("unexpected event %+v", event)
	}

	if err := conn.WriteJSON(map[string]string{"action": "regenerate"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	event = socketEvent{}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read after regenerate: %v", err)
	}
	if event.Type != "result" {
		t.Fatalf("expected a second result, got %+v", event)
	}
	if provider.calls.Load() != 2 {
		t.Fatalf("expected two provider calls, got %d", provider.calls.Load())
	}

	w := doJSON(t, handler, http.MethodPost, "/api/sessions/"+id+"/advance", "")
	if decodeSession(t, w).Step != string(wizard.StepGratitude) {
		t.Fatalf("expected gratitude after the socket result, got %s", w.Body.String())
	}
	if provider.calls.Load() != 2 {
		t.Fatalf("advancing must reuse the socket's screen, got %d calls", provider.calls.Load())
	}
}

func TestResponseSocketCloseCancelsCall(t *testing.T) {
	provider := newBlockingProvider()
	handler := newTestServer(t, provider)
	srv := httptest.NewServer(handler)
	defer srv.Close()
	id := startAtResponseStep(t, handler)

	conn, _, err := websocket.DefaultDialer.Dial(socketURL(srv.URL, id), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	select {
	case <-provider.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("generation never started")
	}
	conn.Close()

	select {
	case <-provider.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatalf("closing the socket did not cancel the call")
	}

	w := doJSON(t, handler, http.MethodGet, "/api/sessions/"+id, "")
	out := decodeSession(t, w)
	if out.Step != string(wizard.StepGratitude) {
		t.Fatalf("expected the flow to leave the response screen, got %s", out.Step)
	}
	if strings.Contains(string(out.Params), `"response"`) {
		t.Fatalf("a cancelled call must not deliver a response, got %s", out.Params)
	}
}

func TestResponseSocketRejectsWrongStep(t *testing.T) {
	handler := newTestServer(t, nil)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	w := doJSON(t, handler, http.MethodPost, "/api/sessions", "")
	id := decodeSession(t, w).ID

	_, resp, err := websocket.DefaultDialer.Dial(socketURL(srv.URL, id), nil)
	if err == nil {
		t.Fatalf("expected the handshake to fail outside the response step")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %+v", resp)
	}
}
