package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJudgeService_Judge(t *testing.T) {
	var got dto.JudgeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"PARTIAL","passed_tests":4,"total_tests":9}`))
	}))
	defer server.Close()

	svc := &JudgeService{url: server.URL, timeout: 5 * time.Second}
	verdict, err := svc.Judge(context.Background(), dto.JudgeRequest{ProblemID: "p-1", Language: "go", Code: "package main"})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPartial, verdict.Status)
	assert.Equal(t, 4, verdict.PassedTests)
	assert.Equal(t, 9, verdict.TotalTests)
	assert.Equal(t, dto.JudgeRequest{ProblemID: "p-1", Language: "go", Code: "package main"}, got)
}

func TestJudgeService_Errors(t *testing.T) {
	svc := &JudgeService{timeout: time.Second}
	_, err := svc.Judge(context.Background(), dto.JudgeRequest{})
	requireAppError(t, err, shared.ErrCodeServiceUnavailable)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sandbox crashed", http.StatusBadGateway)
	}))
	defer server.Close()

	svc.url = server.URL
	_, err = svc.Judge(context.Background(), dto.JudgeRequest{})
	requireAppError(t, err, shared.ErrCodeServiceUnavailable)

	server.Close()
	_, err = svc.Judge(context.Background(), dto.JudgeRequest{})
	requireAppError(t, err, shared.ErrCodeServiceUnavailable)
}

func TestValidateVerdict(t *testing.T) {
	assert.NoError(t, validateVerdict(&dto.JudgeVerdict{Status: model.SubmissionPassed, PassedTests: 3, TotalTests: 3}))
	assert.NoError(t, validateVerdict(&dto.JudgeVerdict{Status: model.SubmissionFailed}))

	assert.Error(t, validateVerdict(nil))
	assert.Error(t, validateVerdict(&dto.JudgeVerdict{Status: "TIMEOUT"}))
	assert.Error(t, validateVerdict(&dto.JudgeVerdict{Status: model.SubmissionFailed, PassedTests: -1, TotalTests: 2}))
	assert.Error(t, validateVerdict(&dto.JudgeVerdict{Status: model.SubmissionPartial, PassedTests: 5, TotalTests: 2}))
	assert.Error(t, validateVerdict(&dto.JudgeVerdict{Status: model.SubmissionPassed, PassedTests: 2, TotalTests: 3}))
}

func TestCodeObjectKey(t *testing.T) {
	assert.Equal(t, "submissions/u-1/p-1/s-1.txt", CodeObjectKey("u-1", "p-1", "s-1"))
}
