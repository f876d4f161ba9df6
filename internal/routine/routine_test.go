package routine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"EarlyPulse_V0.1/internal/database"
	"EarlyPulse_V0.1/internal/geminiservice"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	replies []string
	err     error
	calls   [][]geminiservice.Part
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts []geminiservice.Part) (string, error) {
	f.calls = append(f.calls, parts)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// fakeStore mimics the upsert-by-key semantics of the routines table. Its
// clock advances on every write so updated_at is strictly increasing.
type fakeStore struct {
	docs map[string]database.RoutineDocument
	now  time.Time
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs: make(map[string]database.RoutineDocument),
		now:  time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) UpsertRoutine(ctx context.Context, userID string, routine []string) (database.RoutineDocument, error) {
	if s.err != nil {
		return database.RoutineDocument{}, s.err
	}
	s.now = s.now.Add(time.Second)
	doc, ok := s.docs[userID]
	if !ok {
		doc = database.RoutineDocument{UserID: userID, CreatedAt: s.now}
	}
	doc.Routine = routine
	doc.UpdatedAt = s.now
	s.docs[userID] = doc
	return doc, nil
}

func (s *fakeStore) GetRoutine(ctx context.Context, userID string) (database.RoutineDocument, error) {
	if s.err != nil {
		return database.RoutineDocument{}, s.err
	}
	doc, ok := s.docs[userID]
	if !ok {
		return database.RoutineDocument{}, database.ErrNotFound
	}
	return doc, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
	Data    struct {
		Questions []string  `json:"questions"`
		Routine   []string  `json:"routine"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	} `json:"data"`
}

func newJSONContext(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func tenAnswers() []string {
	answers := make([]string, len(geminiservice.RoutineQuestions))
	for i := range answers {
		answers[i] = "answer"
	}
	answers[0] = "7am"
	return answers
}

func answersJSON(t *testing.T, userID string, answers []string) string {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"userId": userID, "answers": answers})
	require.NoError(t, err)
	return string(body)
}

func TestQuestionsHandlerReturnsFixedSet(t *testing.T) {
	h := NewHandler(&fakeGenerator{}, newFakeStore())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/routine/questions", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.QuestionsHandler(e.NewContext(req, rec)))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Len(t, resp.Data.Questions, 10)
	require.Equal(t, geminiservice.RoutineQuestions, resp.Data.Questions)
}

func TestGenerateRequiresUserID(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewHandler(gen, newFakeStore())

	c, rec := newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "  ", tenAnswers()))
	require.NoError(t, h.GenerateHandler(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MissingUserId", decodeEnvelope(t, rec).Error)
	require.Empty(t, gen.calls)
}

func TestGenerateRejectsAnswerCountMismatch(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewHandler(gen, newFakeStore())

	for _, n := range []int{0, 9, 11} {
		answers := make([]string, n)
		c, rec := newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "user-1", answers))
		require.NoError(t, h.GenerateHandler(c))

		require.Equal(t, http.StatusBadRequest, rec.Code, "%d answers", n)
		require.Equal(t, "AnswerCountMismatch", decodeEnvelope(t, rec).Error, "%d answers", n)
	}
	// No generation call was ever attempted.
	require.Empty(t, gen.calls)
}

func TestGenerateStoresParsedRoutine(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"```json\n[\"Wake at 7am\",\"Drink water\"]\n```"}}
	store := newFakeStore()
	h := NewHandler(gen, store)

	c, rec := newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "user-1", tenAnswers()))
	require.NoError(t, h.GenerateHandler(c))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, []string{"Wake at 7am", "Drink water"}, resp.Data.Routine)
	require.False(t, resp.Data.CreatedAt.IsZero())
	require.False(t, resp.Data.UpdatedAt.IsZero())

	require.Len(t, store.docs, 1)
	require.Equal(t, []string{"Wake at 7am", "Drink water"}, store.docs["user-1"].Routine)

	// The prompt carries the questionnaire as positional Q/A pairs.
	require.Len(t, gen.calls, 1)
	prompt := gen.calls[0][0].Text
	require.Contains(t, prompt, "Dr. Early Pulse")
	require.Contains(t, prompt, "Q: "+geminiservice.RoutineQuestions[0])
	require.Contains(t, prompt, "A: 7am")
}

func TestGenerateUpsertReplacesExistingRoutine(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		`["Wake at 7am"]`,
		`["Wake at 6am","Morning run"]`,
	}}
	store := newFakeStore()
	h := NewHandler(gen, store)

	c, _ := newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "user-1", tenAnswers()))
	require.NoError(t, h.GenerateHandler(c))
	first := store.docs["user-1"]

	c, _ = newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "user-1", tenAnswers()))
	require.NoError(t, h.GenerateHandler(c))
	second := store.docs["user-1"]

	require.Len(t, store.docs, 1)
	require.Equal(t, []string{"Wake at 6am", "Morning run"}, second.Routine)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestGenerateRejectsMalformedModelOutput(t *testing.T) {
	cases := []string{
		"Sure! Here is your routine:\n1. Wake up\n2. Stretch",
		`{"routine":["Wake up"]}`,
		`["Wake up", 2]`,
	}

	for _, reply := range cases {
		gen := &fakeGenerator{replies: []string{reply}}
		store := newFakeStore()
		h := NewHandler(gen, store)

		c, rec := newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "user-1", tenAnswers()))
		require.NoError(t, h.GenerateHandler(c))

		require.Equal(t, http.StatusInternalServerError, rec.Code, "reply %q", reply)
		require.Equal(t, "MalformedRoutineOutput", decodeEnvelope(t, rec).Error, "reply %q", reply)
		require.Empty(t, store.docs, "reply %q must not be stored", reply)
	}
}

func TestGenerateReportsGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("gemini unreachable")}
	store := newFakeStore()
	h := NewHandler(gen, store)

	c, rec := newJSONContext(t, "/api/v1/routine/generate", answersJSON(t, "user-1", tenAnswers()))
	require.NoError(t, h.GenerateHandler(c))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "GenerationFailure", decodeEnvelope(t, rec).Error)
	require.Empty(t, store.docs)
}

func TestCurrentReturnsNotFoundForUnknownUser(t *testing.T) {
	h := NewHandler(&fakeGenerator{}, newFakeStore())

	c, rec := newJSONContext(t, "/api/v1/routine/current", `{"userId":"ghost"}`)
	require.NoError(t, h.CurrentHandler(c))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NotFound", decodeEnvelope(t, rec).Error)
}

func TestCurrentReturnsStoredRoutine(t *testing.T) {
	store := newFakeStore()
	_, err := store.UpsertRoutine(context.Background(), "user-1", []string{"Wake at 7am"})
	require.NoError(t, err)

	h := NewHandler(&fakeGenerator{}, store)

	c, rec := newJSONContext(t, "/api/v1/routine/current", `{"userId":"user-1"}`)
	require.NoError(t, h.CurrentHandler(c))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, []string{"Wake at 7am"}, resp.Data.Routine)
}

func TestCurrentRequiresUserID(t *testing.T) {
	h := NewHandler(&fakeGenerator{}, newFakeStore())

	c, rec := newJSONContext(t, "/api/v1/routine/current", `{}`)
	require.NoError(t, h.CurrentHandler(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "MissingUserId", decodeEnvelope(t, rec).Error)
}
