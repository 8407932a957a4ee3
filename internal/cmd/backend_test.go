package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const (
	quizListJSON = `{"quizzes":[{"id":"q1","user_id":"u1","document_id":"d1","title":"Chapter 1","difficulty":"easy","question_count":2,"questions":[],"created_at":"2024-03-01T10:00:00"}],"total":1}`

	quizJSON = `{"id":"q2","user_id":"u1","document_id":"d1","title":"Cells","difficulty":"hard","question_count":5,"questions":[],"created_at":"2024-03-02T10:00:00"}`

	resultJSON = `{"id":"r1","user_id":"u1","quiz_id":"q1","document_id":"d1","quiz_title":"Chapter 1","total_questions":4,"correct_answers":3,"wrong_answers":1,"score_percentage":75,"time_taken":83,"difficulty":"easy",` +
		`"answers":[{"question_id":"x1","question_text":"What is 2+2?","selected_answer":"b","correct_answer":"a","is_correct":false,"explanation":"Arithmetic."}],` +
		`"weak_topics":["arithmetic"],"completed_at":"2024-03-01T10:05:00"}`

	documentJSON = `{"id":"d1","user_id":"u1","title":"Biology notes","file_type":"pdf","file_size":20480,"summary":"Cells and things.","easy_explanation":null,` +
		`"key_concepts":["mitosis"],"page_count":4,"processing_status":"completed","created_at":"2024-03-01T09:00:00","updated_at":"2024-03-01T09:01:00"}`

	progressJSON = `{"total_documents":2,"total_quizzes_taken":3,"average_score":71.5,"study_streak":4,` +
		`"recent_activity":[{"date":"2024-03-01","documents_uploaded":1,"quizzes_taken":2,"questions_answered":10,"correct_answers":7,"study_time":30}]}`

	detailedProgressJSON = `{"user_id":"u1","daily_stats":[{"date":"2024-03-01","documents_uploaded":1,"quizzes_taken":2,"questions_answered":10,"correct_answers":7,"study_time":30}],` +
		`"topic_progress":[{"topic":"mitosis","total_questions":8,"correct_answers":6,"mastery_level":75}],` +
		`"achievements":[{"type":"streak","title":"Five day streak","description":"Studied five days in a row","earned_at":"2024-03-01T10:05:00"}],` +
		`"total_study_time":42,"average_score":71.5,"current_streak":4,"best_streak":5,"total_documents":2,"total_quizzes":3,"updated_at":"2024-03-02T08:00:00"}`
)

// fakeBackend serves the subset of the study API the commands use
type fakeBackend struct {
	token string
	url   string

	mu       sync.Mutex
	name     string
	revoked  bool
	logins   int
	profiles int
	created  map[string]any
	deleted  []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	f := &fakeBackend{token: token, name: "Ada"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", fixture(`{"status":"healthy","database":"connected","ai_service":"available"}`))
	mux.HandleFunc("POST /api/auth/login", f.login)
	mux.HandleFunc("GET /api/auth/me", f.authed(f.me))
	mux.HandleFunc("PUT /api/auth/me", f.authed(f.updateMe))
	mux.HandleFunc("GET /api/quiz/", f.authed(routes(map[string]string{
		"/api/quiz/":            quizListJSON,
		"/api/quiz/results/all": `{"results":[` + resultJSON + `],"total":1}`,
		"/api/quiz/results/r1":  resultJSON,
	})))
	mux.HandleFunc("POST /api/quiz/create", f.authed(f.createQuiz))
	mux.HandleFunc("GET /api/documents/", f.authed(routes(map[string]string{
		"/api/documents/":   `{"documents":[` + documentJSON + `],"total":1,"page":1,"limit":10}`,
		"/api/documents/d1": documentJSON,
	})))
	mux.HandleFunc("DELETE /api/documents/", f.authed(f.deleteDocument))
	mux.HandleFunc("GET /api/progress/overview", f.authed(fixture(progressJSON)))
	mux.HandleFunc("GET /api/progress/detailed", f.authed(fixture(detailedProgressJSON)))

	f.url = newTestServer(t, mux).URL
	return f
}

func fixture(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

// routes serves fixed bodies by exact path and 404s everything else
func routes(bodies map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Not found"}`)
			return
		}
		fixture(body)(w, r)
	}
}

func (f *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := !f.revoked && r.Header.Get("Authorization") == "Bearer "+f.token
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"Could not validate credentials"}`)
			return
		}
		next(w, r)
	}
}

func (f *fakeBackend) userJSON() string {
	return `{"id":"u1","email":"ada@example.com","name":"` + f.name + `","created_at":"2024-03-01T10:00:00","total_documents":2,"total_quizzes_taken":3,"study_streak":4}`
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++

	if body.Email != "ada@example.com" || body.Password != "s3cret" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Incorrect email or password"}`)
		return
	}
	io.WriteString(w, `{"access_token":"`+f.token+`","token_type":"bearer","user":`+f.userJSON()+`}`)
}

func (f *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles++
	io.WriteString(w, f.userJSON())
}

func (f *fakeBackend) updateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	if body.Name != nil {
		f.name = *body.Name
	}
	io.WriteString(w, f.userJSON())
}

func (f *fakeBackend) createQuiz(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.created = body
	f.mu.Unlock()
	io.WriteString(w, quizJSON)
}

func (f *fakeBackend) deleteDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/api/documents/"))
	f.mu.Unlock()
	io.WriteString(w, `{"message":"Document deleted successfully"}`)
}

func (f *fakeBackend) revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = true
}

func (f *fakeBackend) counts() (logins, profiles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.profiles
}

// testEnv isolates HOME and points the CLI at a fresh fake backend
func testEnv(t *testing.T) (*fakeBackend, string) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CI", "true")

	backend := newFakeBackend(t)
	t.Setenv("STUDYDASH_API_URL", backend.url)
	return backend, home
}

func sessionFile(home string) string {
	return filepath.Join(home, ".studydash", "session.json")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// resetFlags restores every flag in the tree to its default so runs do not
// leak state into each other
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--no-color"))

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func login(t *testing.T) {
	t.Helper()
	_, err := run(t, "", "auth", "login", "--email", "ada@example.com", "--password", "s3cret")
	require.NoError(t, err)
}
