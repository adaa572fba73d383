package mockserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClient struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (tc *testClient) call(method, path string, body any) (int, map[string]any) {
	tc.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	rec := httptest.NewRecorder()
	tc.h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(tc.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// signUp registers a user and returns a client holding its token and id.
func signUp(t *testing.T, h http.Handler, email string) (*testClient, string) {
	t.Helper()
	tc := &testClient{t: t, h: h}
	code, body := tc.call(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "secret123", "full_name": "Test User",
	})
	require.Equal(t, http.StatusCreated, code)
	tc.token = body["access_token"].(string)
	_, me := tc.call(http.MethodGet, "/api/auth/me", nil)
	return tc, me["id"].(string)
}

func TestRegisterLoginAndMe(t *testing.T) {
	srv := New()
	h := srv.Handler()
	tc, id := signUp(t, h, "Ada@Example.com")

	code, me := tc.call(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "ada@example.com", me["email"])
	assert.EqualValues(t, 1, me["level"])
	assert.EqualValues(t, 0, me["xp"])

	code, _ = tc.call(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	anon := &testClient{t: t, h: h}
	code, body := anon.call(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Incorrect email or password", body["detail"])

	code, body = anon.call(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["access_token"])
}

func TestRegisterWithoutToken(t *testing.T) {
	h := New(WithoutRegisterToken()).Handler()
	tc := &testClient{t: t, h: h}

	code, body := tc.call(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "bob@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, body, "access_token")
}

func TestAuthRequired(t *testing.T) {
	h := New().Handler()
	tc := &testClient{t: t, h: h, token: "bogus"}

	code, body := tc.call(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", body["detail"])
}

func TestRevokeTokens(t *testing.T) {
	srv := New()
	tc, _ := signUp(t, srv.Handler(), "eve@example.com")

	srv.RevokeTokens("EVE@example.com")

	code, _ := tc.call(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestVersionHeader(t *testing.T) {
	h := New(WithVersion("9.9.9")).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9.9.9", rec.Header().Get("X-API-Version"))
}

func TestAdaptiveQuestionRotatesAndHidesAnswer(t *testing.T) {
	tc, id := signUp(t, New().Handler(), "q@example.com")
	path := "/api/questions/adaptive?user_id=" + id + "&topic_id=go-basics"

	code, first := tc.call(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mcq", first["question_type"])
	assert.Equal(t, "beginner", first["difficulty"])
	assert.NotContains(t, first["options"].([]any)[0], "correct")

	_, second := tc.call(http.MethodPost, path, nil)
	assert.Equal(t, "snippet", second["question_type"])
	assert.NotEqual(t, first["id"], second["id"])

	code, _ = tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=nope", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = tc.call(http.MethodPost, "/api/questions/adaptive?user_id=someone-else&topic_id=go-basics", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAdaptiveFallsBackToNearestDifficulty(t *testing.T) {
	// go-errors has no beginner questions.
	tc, id := signUp(t, New().Handler(), "f@example.com")

	code, q := tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=go-errors", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "intermediate", q["difficulty"])
}

func TestSubmitUpdatesProgressAndProfile(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tc, id := signUp(t, New(WithClock(func() time.Time { return now })).Handler(), "s@example.com")

	_, q := tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=go-basics", nil)

	code, res := tc.call(http.MethodPost, "/api/evaluation/submit", map[string]any{
		"question_id": q["id"], "user_id": id, "selected_option_id": "a",
	})
	require.Equal(t, http.StatusOK, code)

	eval := res["evaluation"].(map[string]any)
	assert.Equal(t, true, eval["is_correct"])
	assert.EqualValues(t, 50, eval["xp_earned"])
	assert.Nil(t, eval["correct_answer"])
	assert.Nil(t, res["level_up"])

	prog := res["progress"].(map[string]any)
	assert.EqualValues(t, 1, prog["questions_attempted"])
	assert.EqualValues(t, 1, prog["questions_correct"])
	assert.EqualValues(t, 100, prog["accuracy"])

	user := res["user_profile"].(map[string]any)
	assert.EqualValues(t, 50, user["xp"])
	assert.EqualValues(t, 1, user["streak"])

	_, tp := tc.call(http.MethodGet, "/api/progress/topic/"+id+"/go-basics", nil)
	assert.EqualValues(t, 50, tp["progress"].(map[string]any)["total_xp_earned"])

	_, none := tc.call(http.MethodGet, "/api/progress/topic/"+id+"/go-errors", nil)
	assert.Contains(t, none, "progress")
	assert.Nil(t, none["progress"])
}

func TestSubmitWrongAnswer(t *testing.T) {
	tc, id := signUp(t, New().Handler(), "w@example.com")
	_, q := tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=go-basics", nil)

	code, res := tc.call(http.MethodPost, "/api/evaluation/submit", map[string]any{
		"question_id": q["id"], "user_id": id, "selected_option_id": "c",
	})
	require.Equal(t, http.StatusOK, code)

	eval := res["evaluation"].(map[string]any)
	assert.Equal(t, false, eval["is_correct"])
	assert.EqualValues(t, 10, eval["xp_earned"])
	assert.Equal(t, "0", eval["correct_answer"])
	assert.Equal(t, actionRevision, eval["recommended_action"])
	assert.Len(t, eval["mistakes"], 1)

	_, stats := tc.call(http.MethodGet, "/api/progress/stats/"+id, nil)
	assert.EqualValues(t, 1, stats["total_attempts"])
	assert.EqualValues(t, 0, stats["correct_attempts"])
	assert.EqualValues(t, 1, stats["mistake_breakdown"].(map[string]any)["conceptual"])
}

func TestSubmitValidation(t *testing.T) {
	tc, id := signUp(t, New().Handler(), "v@example.com")
	_, q := tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=go-basics", nil)

	code, _ := tc.call(http.MethodPost, "/api/evaluation/submit", map[string]any{
		"question_id": q["id"], "user_id": id,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = tc.call(http.MethodPost, "/api/evaluation/submit", map[string]any{
		"question_id": "missing", "user_id": id, "selected_option_id": "a",
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSubmitLevelUp(t *testing.T) {
	srv := New()
	tc, id := signUp(t, srv.Handler(), "l@example.com")

	srv.mu.Lock()
	srv.users[id].XP = 380
	srv.mu.Unlock()

	_, q := tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=go-basics", nil)
	_, res := tc.call(http.MethodPost, "/api/evaluation/submit", map[string]any{
		"question_id": q["id"], "user_id": id, "selected_option_id": "a",
	})

	lu := res["level_up"].(map[string]any)
	assert.EqualValues(t, 2, lu["new_level"])
	assert.EqualValues(t, 900, lu["xp_required"])
	assert.EqualValues(t, 2, res["user_profile"].(map[string]any)["level"])
}

func TestHints(t *testing.T) {
	tc, id := signUp(t, New().Handler(), "h@example.com")
	_, q := tc.call(http.MethodPost, "/api/questions/adaptive?user_id="+id+"&topic_id=go-basics", nil)
	base := "/api/evaluation/hint/" + q["id"].(string)

	code, h := tc.call(http.MethodPost, base+"?hint_index=0", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Think about zero values.", h["hint"])
	assert.EqualValues(t, 1, h["hints_remaining"])

	code, h = tc.call(http.MethodPost, base+"?hint_index=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, h["hints_remaining"])

	code, h = tc.call(http.MethodPost, base+"?hint_index=2", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No more hints available", h["detail"])

	code, _ = tc.call(http.MethodPost, base+"?hint_index=-1", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLeaderboardOrdersByXP(t *testing.T) {
	srv := New()
	h := srv.Handler()
	tc, a := signUp(t, h, "a@example.com")
	_, b := signUp(t, h, "b@example.com")

	srv.mu.Lock()
	srv.users[a].XP = 100
	srv.users[b].XP = 300
	srv.mu.Unlock()

	code, res := tc.call(http.MethodGet, "/api/progress/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	rows := res["leaderboard"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, b, rows[0].(map[string]any)["id"])

	code, _ = tc.call(http.MethodGet, "/api/progress/leaderboard?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProgressOfAnotherUserIsForbidden(t *testing.T) {
	tc, _ := signUp(t, New().Handler(), "p@example.com")

	code, _ := tc.call(http.MethodGet, "/api/progress/user/other", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCatalog(t *testing.T) {
	tc := &testClient{t: t, h: New().Handler()}

	code, co := tc.call(http.MethodGet, "/api/courses/go", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Go Programming", co["name"])

	_, topics := tc.call(http.MethodGet, "/api/topics/course/go", nil)
	list := topics["topics"].([]any)
	require.Len(t, list, 3)
	assert.Equal(t, "go-basics", list[0].(map[string]any)["id"])

	code, _ = tc.call(http.MethodGet, "/api/courses/rust", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
