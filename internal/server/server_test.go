package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/tutor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	selectArgs []any
	evalReq    tutor.EvaluateRequest
	err        error
}

func (f *fakeService) SelectQuestions(_ context.Context, userID, concept string, n int) (questions.Selection, error) {
	f.selectArgs = []any{userID, concept, n}
	if f.err != nil {
		return questions.Selection{}, f.err
	}
	return questions.Selection{
		Questions: []questions.Ref{{ID: "q1", Concept: concept, Difficulty: questions.Beginner, Type: questions.TypeMCQ, Prompt: "p"}},
		Mastery:   mastery.DefaultRecord(),
	}, nil
}

func (f *fakeService) EvaluateAnswer(_ context.Context, req tutor.EvaluateRequest) (*evaluator.Result, error) {
	f.evalReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &evaluator.Result{QuestionID: req.QuestionID, Type: questions.TypeMCQ, Score: 1, Quality: 5}, nil
}

func (f *fakeService) GetMastery(context.Context, string, string) (mastery.Record, error) {
	if f.err != nil {
		return mastery.Record{}, f.err
	}
	rec := mastery.DefaultRecord()
	rec.Reviews = 2
	return rec, nil
}

func (f *fakeService) Concepts(context.Context) ([]string, error) {
	return nil, f.err
}

func (f *fakeService) UpsertLearner(_ context.Context, id, name, email string) (*mastery.Learner, error) {
	l := mastery.NewLearner(id)
	l.Name, l.Email = name, email
	return l, f.err
}

func (f *fakeService) GetLearner(_ context.Context, id string) (*mastery.Learner, error) {
	if f.err != nil {
		return nil, f.err
	}
	return mastery.NewLearner(id), nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	s := New(Config{Version: "1.2.3"}, &fakeService{})
	w := do(t, s.Handler(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(Config{}, &fakeService{})
	do(t, s.Handler(), http.MethodGet, "/healthz", "")

	w := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "adaptutor_http_requests_total")
}

func TestPractice(t *testing.T) {
	svc := &fakeService{}
	s := New(Config{}, svc)

	w := do(t, s.Handler(), http.MethodPost, "/v1/practice", `{"user_id":"u1","concept":"stack","n":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []any{"u1", "stack", 2}, svc.selectArgs)

	body := decode(t, w)
	qs := body["questions"].([]any)
	require.Len(t, qs, 1)
	q := qs[0].(map[string]any)
	assert.Equal(t, "q1", q["id"])
	assert.NotContains(t, q, "correct_option")
	assert.Contains(t, body, "mastery")
}

func TestPractice_BindingErrors(t *testing.T) {
	s := New(Config{}, &fakeService{})
	tests := []struct {
		name string
		body string
	}{
		{"missing concept", `{"user_id":"u1"}`},
		{"missing user", `{"concept":"stack"}`},
		{"n too large", `{"user_id":"u1","concept":"stack","n":50}`},
		{"malformed", `{"user_id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s.Handler(), http.MethodPost, "/v1/practice", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], "invalid request")
		})
	}
}

func TestSubmitAnswer(t *testing.T) {
	svc := &fakeService{}
	s := New(Config{}, svc)

	w := do(t, s.Handler(), http.MethodPost, "/v1/submit_answer",
		`{"user_id":"u1","concept":"arrays","qid":"q9","source_code":"print(1)","language_id":71}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, tutor.EvaluateRequest{UserID: "u1", Concept: "arrays", QuestionID: "q9", SourceCode: "print(1)", LanguageID: 71}, svc.evalReq)

	body := decode(t, w)
	assert.Equal(t, "q9", body["qid"])
	assert.Equal(t, 1.0, body["score"])
	assert.Equal(t, 5.0, body["quality"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &tutor.ValidationError{Field: "source_code", Message: "source_code is required for code questions"}, http.StatusBadRequest},
		{"not found", &tutor.NotFoundError{Kind: "question", ID: "q9"}, http.StatusNotFound},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{}, &fakeService{err: tt.err})
			w := do(t, s.Handler(), http.MethodPost, "/v1/submit_answer", `{"user_id":"u1","qid":"q9"}`)
			assert.Equal(t, tt.code, w.Code)
			body := decode(t, w)
			if tt.code == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body["error"])
			} else {
				assert.Equal(t, tt.err.Error(), body["error"])
			}
		})
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	s := New(Config{}, &fakeService{err: &tutor.ValidationError{Field: "concept", Message: "is required"}})
	w := do(t, s.Handler(), http.MethodGet, "/v1/mastery/u1/stack", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "concept", decode(t, w)["field"])
}

func TestMastery(t *testing.T) {
	s := New(Config{}, &fakeService{})
	w := do(t, s.Handler(), http.MethodGet, "/v1/mastery/u1/stack", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 2.0, body["reviews"])
	assert.Equal(t, mastery.DefaultEasiness, body["easiness"])
}

func TestUsers(t *testing.T) {
	s := New(Config{}, &fakeService{})

	w := do(t, s.Handler(), http.MethodPost, "/v1/user", `{"user_id":"u1","name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada", decode(t, w)["name"])

	w = do(t, s.Handler(), http.MethodPost, "/v1/user", `{"user_id":"u1","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s.Handler(), http.MethodGet, "/v1/user/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", decode(t, w)["id"])

	s = New(Config{}, &fakeService{err: &tutor.NotFoundError{Kind: "user", ID: "ghost"}})
	w = do(t, s.Handler(), http.MethodGet, "/v1/user/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConceptsEmptyList(t *testing.T) {
	s := New(Config{}, &fakeService{})
	w := do(t, s.Handler(), http.MethodGet, "/v1/concepts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"concepts":[]}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := New(Config{CORSOrigins: []string{"https://app.example"}}, &fakeService{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/practice", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/practice", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, &fakeService{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
