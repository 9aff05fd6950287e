//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/candidate-assessment/internal/model"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

// maxSteps bounds the walk so a stuck cursor fails instead of hanging.
const maxSteps = 500

var (
	baseURL string
	client  = &http.Client{Timeout: 10 * time.Second}
)

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	os.Exit(m.Run())
}

func call[T any](t *testing.T, method, path string, body any) (int, envelope[T]) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope[T]
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp.StatusCode, env
}

// answerFor builds a plausible answer for any question shape.
func answerFor(q *model.QuestionPayload) map[string]any {
	body := map[string]any{"question_id": q.ID.String()}
	switch {
	case len(q.Blanks) > 0:
		blanks := make(map[string]string, len(q.Blanks))
		for _, b := range q.Blanks {
			blanks[b.ID] = "answer"
		}
		body["blank_answers"] = blanks
	case q.Type == model.QuestionTypeMAQ && len(q.Options) > 0:
		body["selected_options"] = q.Options[:1]
	case len(q.Options) > 0:
		body["selected_option"] = q.Options[0]
	default:
		body["answer_text"] = "An e2e answer"
	}
	return body
}

func TestCandidateJourney(t *testing.T) {
	status, cand := call[model.Candidate](t, http.MethodPost, "/candidates/register", map[string]string{
		"name": fmt.Sprintf("E2E Candidate %d", time.Now().Unix()),
	})
	require.Equal(t, http.StatusCreated, status)

	status, active := call[model.AssessmentInfo](t, http.MethodGet, "/assessments/active", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotZero(t, active.Data.TotalQuestions)

	status, sess := call[model.SessionInfo](t, http.MethodPost, "/assessments/start", map[string]string{
		"candidate_id":  cand.Data.ID.String(),
		"assessment_id": active.Data.ID.String(),
	})
	require.Equal(t, http.StatusCreated, status)
	sessionPath := "/sessions/" + sess.Data.ID.String()

	status, item := call[model.NextItem](t, http.MethodGet, sessionPath+"/next", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, model.ItemTypeGreeting, item.Data.ItemType)

	answered := 0
	current := item.Data
	for step := 0; !current.IsAssessmentComplete; step++ {
		require.Less(t, step, maxSteps, "progression did not finish")

		switch current.ItemType {
		case model.ItemTypeGreeting, model.ItemTypeContent:
			status, next := call[model.NextItem](t, http.MethodPost, sessionPath+"/proceed", nil)
			require.Equal(t, http.StatusOK, status)
			current = next.Data

		case model.ItemTypeQuestion:
			body := answerFor(current.Message.Question)
			body["session_id"] = sess.Data.ID.String()
			status, res := call[model.AnswerResult](t, http.MethodPost, "/responses/submit", body)
			require.Equal(t, http.StatusOK, status)
			require.True(t, res.Data.Success)
			answered++
			current = *res.Data.NextItem

		default:
			t.Fatalf("unexpected item %q", current.ItemType)
		}
	}
	require.Equal(t, active.Data.TotalQuestions, answered)

	status, done := call[map[string]any](t, http.MethodPost, sessionPath+"/complete", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Assessment completed successfully", done.Message)

	status, summary := call[model.SessionSummary](t, http.MethodGet, sessionPath+"/summary", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, model.SessionStatusCompleted, summary.Data.Status)
	require.Equal(t, answered, summary.Data.AnsweredCount)
}

func TestRegisterRejectsBlankName(t *testing.T) {
	status, env := call[any](t, http.MethodPost, "/candidates/register", map[string]string{"name": "   "})
	require.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	require.Equal(t, "NAME_REQUIRED", env.Error.Code)
}
