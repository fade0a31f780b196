package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsox/newsox/internal/cli/auth"
	"github.com/newsox/newsox/internal/cli/config"
	"github.com/newsox/newsox/internal/models"
	"github.com/newsox/newsox/internal/session"
)

const (
	testEmail    = "kim@example.com"
	testPassword = "pw-1234"
	testToken    = "jwt-token-abc"
	testCookie   = "sess-42"
)

// fakeBackend is a minimal newsox API. A request is authenticated by the
// SESSION cookie or by the bearer token it issued.
type fakeBackend struct {
	mu          sync.Mutex
	issueToken  bool
	loggedIn    bool
	level       int
	exp         int
	logoutCalls int
	infoCalls   int
	lastAuth    string
	submitted   string
	histories   []map[string]interface{}
}

func (b *fakeBackend) authorized(r *http.Request) bool {
	if !b.loggedIn {
		return false
	}
	if c, err := r.Cookie("SESSION"); err == nil && c.Value == testCookie {
		return true
	}
	return b.issueToken && r.Header.Get("Authorization") == "Bearer "+testToken
}

func (b *fakeBackend) member() map[string]interface{} {
	return map[string]interface{}{
		"id":    7,
		"name":  "Kim",
		"email": testEmail,
		"role":  "USER",
		"level": b.level,
		"exp":   b.exp,
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    200,
		"message": "OK",
		"data":    data,
	})
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
		"data":    nil,
	})
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAuth = r.Header.Get("Authorization")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/members/login":
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != testEmail || body.Password != testPassword {
			writeStatus(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		b.loggedIn = true
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: testCookie, Path: "/"})
		data := b.member()
		if b.issueToken {
			data["accessToken"] = testToken
		}
		writeData(w, data)

	case r.Method == http.MethodGet && r.URL.Path == "/api/members/info":
		b.infoCalls++
		if !b.authorized(r) {
			writeStatus(w, http.StatusUnauthorized, "login required")
			return
		}
		writeData(w, map[string]interface{}{"member": b.member()})

	case r.Method == http.MethodDelete && r.URL.Path == "/api/members/logout":
		b.logoutCalls++
		b.loggedIn = false
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "", Path: "/", MaxAge: -1})
		writeData(w, nil)

	case r.Method == http.MethodGet && r.URL.Path == "/api/news/today":
		writeData(w, map[string]interface{}{
			"id":        3,
			"title":     "Rates held steady",
			"content":   "The central bank kept rates unchanged.",
			"mediaName": "Daily Ledger",
		})

	case r.Method == http.MethodGet && r.URL.Path == "/api/quiz/daily/3":
		if !b.authorized(r) {
			writeStatus(w, http.StatusUnauthorized, "login required")
			return
		}
		writeData(w, []map[string]interface{}{
			{
				"dailyQuizDto": map[string]interface{}{
					"id": 12, "question": "What did the bank do?",
					"option1": "Raised", "option2": "Held", "option3": "Cut",
					"correctOption": "OPTION2",
				},
				"answer": nil,
			},
		})

	case r.Method == http.MethodPost && r.URL.Path == "/api/quiz/daily/submit/12":
		if !b.authorized(r) {
			writeStatus(w, http.StatusUnauthorized, "login required")
			return
		}
		b.submitted = r.URL.Query().Get("selectedOption")
		correct := b.submitted == "OPTION2"
		gain := 0
		if correct {
			gain = 10
			b.exp += gain
		}
		writeData(w, map[string]interface{}{
			"quizId": 12, "correctOption": "OPTION2", "selectedOption": b.submitted,
			"isCorrect": correct, "gainExp": gain,
		})

	case r.Method == http.MethodGet && r.URL.Path == "/api/quiz/fact/category":
		writeData(w, []map[string]interface{}{
			{"id": 1, "question": "Is this headline real?", "newsCategory": r.URL.Query().Get("category")},
		})

	case r.Method == http.MethodGet && r.URL.Path == "/api/quiz/detail/news/5":
		writeData(w, []map[string]interface{}{
			{"question": "Who held rates?", "option1": "The bank", "option2": "The mint", "option3": "Nobody", "correctOption": "OPTION1"},
			{"question": "For how long?", "option1": "A day", "option2": "A month", "option3": "A year", "correctOption": "OPTION3"},
		})

	case r.Method == http.MethodPost && r.URL.Path == "/api/histories":
		if !b.authorized(r) {
			writeStatus(w, http.StatusUnauthorized, "login required")
			return
		}
		var entry map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&entry)
		b.histories = append(b.histories, entry)
		if entry["answer"] == "OPTION1" && entry["quizId"] == float64(501) {
			b.exp += 100
		}
		writeData(w, nil)

	default:
		writeStatus(w, http.StatusNotFound, "not found")
	}
}

type testEnv struct {
	backend   *fakeBackend
	srv       *httptest.Server
	server    *config.Server
	store     *auth.MemoryStore
	snapshots *session.MemorySnapshotStore
	out       *bytes.Buffer
}

func newTestEnv(t *testing.T, issueToken bool) *testEnv {
	t.Helper()
	t.Chdir(t.TempDir())

	backend := &fakeBackend{issueToken: issueToken, level: 1, exp: 40}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	return &testEnv{
		backend:   backend,
		srv:       srv,
		server:    &config.Server{URL: srv.URL, Alias: "test-server"},
		store:     auth.NewMemoryStore(),
		snapshots: session.NewMemorySnapshotStore(),
		out:       &bytes.Buffer{},
	}
}

func (e *testEnv) opts() []Option {
	return []Option{
		WithServer(e.server),
		WithTokenStore(e.store),
		WithSnapshotStore(e.snapshots),
		WithOutput(e.out),
	}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	require.NoError(t, runLogin(context.Background(), testEmail, testPassword, "", e.opts()...))
	e.out.Reset()
}

func TestLogin_CookieSession(t *testing.T) {
	env := newTestEnv(t, false)

	err := runLogin(context.Background(), testEmail, testPassword, "", env.opts()...)
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "✓ Login successful!")
	assert.Contains(t, env.out.String(), "User: Kim (kim@example.com)")
	assert.Contains(t, env.out.String(), "Auth: session cookie")

	_, err = env.store.LoadToken(env.server.URL)
	assert.ErrorIs(t, err, auth.ErrNoToken)

	cookies, err := env.store.LoadCookies(env.server.URL)
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Value)

	snapshot, err := env.snapshots.LoadUser()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "Kim", snapshot.Name)
}

func TestLogin_BearerToken(t *testing.T) {
	env := newTestEnv(t, true)

	require.NoError(t, runLogin(context.Background(), testEmail, testPassword, "", env.opts()...))

	token, err := env.store.LoadToken(env.server.URL)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)
	assert.Contains(t, env.out.String(), "Auth: bearer token")
}

func TestLogin_CredentialsFromEnvironment(t *testing.T) {
	env := newTestEnv(t, false)
	t.Setenv("NEWSOX_EMAIL", testEmail)
	t.Setenv("NEWSOX_PASSWORD", testPassword)

	require.NoError(t, runLogin(context.Background(), "", "", "", env.opts()...))
	assert.Contains(t, env.out.String(), "✓ Login successful!")
}

func TestLogin_MissingEmail(t *testing.T) {
	env := newTestEnv(t, false)
	t.Setenv("NEWSOX_EMAIL", "")

	err := runLogin(context.Background(), "", testPassword, "", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t, true)

	err := runLogin(context.Background(), testEmail, "nope", "", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	_, err = env.store.LoadToken(env.server.URL)
	assert.ErrorIs(t, err, auth.ErrNoToken)
	snapshot, _ := env.snapshots.LoadUser()
	assert.Nil(t, snapshot)
}

func TestWhoami_RestoresCookieSession(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	require.NoError(t, runWhoami(context.Background(), "", env.opts()...))

	assert.Contains(t, env.out.String(), "Logged in to test-server")
	assert.Contains(t, env.out.String(), "Level: 1")
	assert.Empty(t, env.backend.lastAuth, "cookie sessions must not send a bearer header")
}

func TestWhoami_SendsBearerToken(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)
	require.NoError(t, env.store.DeleteCookies(env.server.URL))

	require.NoError(t, runWhoami(context.Background(), "", env.opts()...))

	assert.Contains(t, env.out.String(), "Logged in to test-server")
	assert.Equal(t, "Bearer "+testToken, env.backend.lastAuth)
}

func TestWhoami_ExpiredSessionClearsSnapshot(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)
	env.backend.loggedIn = false

	require.NoError(t, runWhoami(context.Background(), "", env.opts()...))

	assert.Contains(t, env.out.String(), "Not logged in")
	snapshot, _ := env.snapshots.LoadUser()
	assert.Nil(t, snapshot)
}

func TestWhoami_UnreachableBackendFailsClosed(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)
	env.srv.Close()

	require.NoError(t, runWhoami(context.Background(), "", env.opts()...))
	assert.Contains(t, env.out.String(), "Not logged in")
}

func TestRefresh_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t, false)

	err := runRefresh(context.Background(), "", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLogout_ClearsEverything(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	require.NoError(t, runLogout(context.Background(), false, "", env.opts()...))

	assert.Equal(t, 1, env.backend.logoutCalls)
	assert.Equal(t, "Bearer "+testToken, env.backend.lastAuth)
	assert.Contains(t, env.out.String(), session.LogoutMessage)

	_, err := env.store.LoadToken(env.server.URL)
	assert.ErrorIs(t, err, auth.ErrNoToken)
	cookies, _ := env.store.LoadCookies(env.server.URL)
	assert.Empty(t, cookies)
	snapshot, _ := env.snapshots.LoadUser()
	assert.Nil(t, snapshot)
}

func TestLogout_Quiet(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	require.NoError(t, runLogout(context.Background(), true, "", env.opts()...))
	assert.Empty(t, env.out.String())
}

func TestLogout_BackendDownStillClearsLocalState(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)
	env.srv.Close()

	require.NoError(t, runLogout(context.Background(), false, "", env.opts()...))

	_, err := env.store.LoadToken(env.server.URL)
	assert.ErrorIs(t, err, auth.ErrNoToken)
	cookies, _ := env.store.LoadCookies(env.server.URL)
	assert.Empty(t, cookies)
	assert.Contains(t, env.out.String(), session.LogoutMessage)
}

func TestQuizToday_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, false)

	err := runQuizToday(context.Background(), "", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newsox login")
}

func TestQuizToday_ListsOptions(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	require.NoError(t, runQuizToday(context.Background(), "", env.opts()...))

	out := env.out.String()
	assert.Contains(t, out, "Quizzes for [3] Rates held steady")
	assert.Contains(t, out, "#12 What did the bank do?")
	assert.Contains(t, out, "B) Held")
}

func TestQuizSubmit_RefreshesExperience(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)
	infoBefore := env.backend.infoCalls

	require.NoError(t, runQuizSubmit(context.Background(), 12, models.Option2, "", env.opts()...))

	assert.Equal(t, "OPTION2", env.backend.submitted)
	assert.Equal(t, infoBefore+2, env.backend.infoCalls)
	out := env.out.String()
	assert.Contains(t, out, "✓ Correct! +10 exp")
	assert.Contains(t, out, "Experience: 50 / 100")

	snapshot, err := env.snapshots.LoadUser()
	require.NoError(t, err)
	require.NotNil(t, snapshot.Experience)
	assert.Equal(t, 50, *snapshot.Experience)
}

func TestQuizSubmit_WrongAnswer(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	require.NoError(t, runQuizSubmit(context.Background(), 12, models.Option3, "", env.opts()...))
	assert.Contains(t, env.out.String(), "✗ Wrong. The answer was B")
}

func TestNewsToday(t *testing.T) {
	env := newTestEnv(t, false)

	require.NoError(t, runNewsToday(context.Background(), "", env.opts()...))

	assert.Contains(t, env.out.String(), "[3] Rates held steady")
	assert.Contains(t, env.out.String(), "Daily Ledger")
}

func TestNewsGet_NotFound(t *testing.T) {
	env := newTestEnv(t, false)

	err := runNewsGet(context.Background(), 99, "", env.opts()...)
	assert.Error(t, err)
}

func TestOXList_ByCategory(t *testing.T) {
	env := newTestEnv(t, false)

	require.NoError(t, runOXList(context.Background(), models.CategoryIT, "", env.opts()...))

	out := env.out.String()
	assert.Contains(t, out, "Is this headline real?")
	assert.Contains(t, out, "IT")
}

func TestOpen_SocialLogin(t *testing.T) {
	env := newTestEnv(t, false)

	var opened string
	browserOpener = func(url string) error {
		opened = url
		return nil
	}
	t.Cleanup(func() { browserOpener = openBrowser })

	err := runOpen(env.out, "kakao", "http://localhost:3000/", "", env.opts()...)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(opened, env.srv.URL+"/oauth2/authorization/kakao?"))
	assert.Contains(t, opened, "redirectUrl=http%3A%2F%2Flocalhost%3A3000%2F")
}

func TestOpen_UnknownProvider(t *testing.T) {
	env := newTestEnv(t, false)
	browserOpener = func(string) error { return nil }
	t.Cleanup(func() { browserOpener = openBrowser })

	err := runOpen(env.out, "myspace", "", "", env.opts()...)
	assert.Error(t, err)
}

func TestNewsQuiz_ListsWithoutLogin(t *testing.T) {
	env := newTestEnv(t, false)

	require.NoError(t, runNewsQuiz(context.Background(), 5, nil, "", env.opts()...))

	out := env.out.String()
	assert.Contains(t, out, "1. Who held rates?")
	assert.Contains(t, out, "C) A year")
	assert.Empty(t, env.backend.histories)
}

func TestNewsQuiz_SubmitsHistoryAndRefreshes(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)
	infoBefore := env.backend.infoCalls

	answers, err := parseAnswers([]string{"A", "b"})
	require.NoError(t, err)
	require.NoError(t, runNewsQuiz(context.Background(), 5, answers, "", env.opts()...))

	require.Len(t, env.backend.histories, 2)
	assert.Equal(t, float64(501), env.backend.histories[0]["quizId"])
	assert.Equal(t, "DETAIL", env.backend.histories[0]["quizType"])
	assert.Equal(t, "OPTION1", env.backend.histories[0]["answer"])
	assert.Equal(t, float64(502), env.backend.histories[1]["quizId"])
	assert.Equal(t, "OPTION2", env.backend.histories[1]["answer"])

	out := env.out.String()
	assert.Contains(t, out, "1. ✓ Correct")
	assert.Contains(t, out, "2. ✗ Wrong, answer was C")
	assert.Contains(t, out, "1 of 2 correct")
	assert.Equal(t, infoBefore+2, env.backend.infoCalls)
	assert.Contains(t, out, "Experience: 140 / 100")
}

func TestNewsQuiz_SkippedAnswerIsNotSubmitted(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	answers, err := parseAnswers([]string{"", "C"})
	require.NoError(t, err)
	require.NoError(t, runNewsQuiz(context.Background(), 5, answers, "", env.opts()...))

	require.Len(t, env.backend.histories, 1)
	assert.Equal(t, float64(502), env.backend.histories[0]["quizId"])
}

func TestNewsQuiz_SubmitRequiresLogin(t *testing.T) {
	env := newTestEnv(t, false)

	err := runNewsQuiz(context.Background(), 5, []models.QuizOption{models.Option1}, "", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newsox login")
	assert.Empty(t, env.backend.histories)
}

func TestNewsQuiz_TooManyAnswers(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	err := runNewsQuiz(context.Background(), 5, []models.QuizOption{models.Option1, models.Option1, models.Option1}, "", env.opts()...)
	require.Error(t, err)
	assert.Empty(t, env.backend.histories)
}

func TestParseAnswers_RejectsUnknownOption(t *testing.T) {
	_, err := parseAnswers([]string{"A", "D"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer 2")
}
