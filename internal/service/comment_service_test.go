package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/pkg/config"
)

func scoredGradeSet() []models.Grade {
	return []models.Grade{
		{StudentID: "s-1", Subject: "Matematika", TPScore: 80, FinalScore: 90, Notes: "Teliti dalam berhitung"},
		{StudentID: "s-1", Subject: "IPAS", KnowledgeScore: 85, SkillScore: 78},
		{StudentID: "s-1", Subject: "PJOK"},
	}
}

func newCommentTestService(baseURL string) *CommentService {
	return NewCommentService(config.CommentsConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, nil)
}

func TestDraftWithoutAPIKey(t *testing.T) {
	svc := NewCommentService(config.CommentsConfig{}, nil)

	result := svc.Draft(context.Background(), "Budi Santoso", scoredGradeSet())
	assert.False(t, result.Generated)
	assert.Equal(t, commentNoAPIKey, result.Comment)
}

func TestDraftWithoutGrades(t *testing.T) {
	svc := newCommentTestService("http://127.0.0.1:1")

	result := svc.Draft(context.Background(), "Budi Santoso", nil)
	assert.False(t, result.Generated)
	assert.Equal(t, commentNoGrades, result.Comment)
}

func TestDraftWithOnlyZeroScores(t *testing.T) {
	svc := newCommentTestService("http://127.0.0.1:1")

	grades := []models.Grade{
		{StudentID: "s-1", Subject: "Matematika"},
		{StudentID: "s-1", Subject: "IPAS", Notes: "Belum ada nilai"},
	}
	result := svc.Draft(context.Background(), "Budi Santoso", grades)
	assert.False(t, result.Generated)
	assert.Equal(t, commentTooFewGrades, result.Comment)
}

func TestDraftCallsGenerationAPI(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		assert.Contains(t, r.URL.RawQuery, "key=test-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Budi belajar dengan tekun semester ini."}]}}]}`))
	}))
	defer server.Close()

	svc := newCommentTestService(server.URL)
	result := svc.Draft(context.Background(), "Budi Santoso", scoredGradeSet())
	assert.True(t, result.Generated)
	assert.Equal(t, "Budi belajar dengan tekun semester ini.", result.Comment)

	require.NotNil(t, captured.SystemInstruction)
	require.NotEmpty(t, captured.SystemInstruction.Parts)
	assert.Contains(t, captured.SystemInstruction.Parts[0].Text, "Wali Kelas Sekolah Dasar")
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, 300, captured.GenerationConfig.MaxOutputTokens)

	require.NotEmpty(t, captured.Contents)
	prompt := captured.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Nama Siswa: Budi Santoso")
	assert.Contains(t, prompt, "Matematika: [Rata-rata Sumatif: 85")
	assert.Contains(t, prompt, `Catatan Mapel: "Teliti dalam berhitung"`)
	assert.Contains(t, prompt, "Pengetahuan: 85")
	assert.Contains(t, prompt, "Keterampilan: 78")
	assert.NotContains(t, prompt, "PJOK")
}

func TestDraftFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newCommentTestService(server.URL)
	result := svc.Draft(context.Background(), "Budi Santoso", scoredGradeSet())
	assert.False(t, result.Generated)
	assert.Equal(t, commentServiceError, result.Comment)
}

func TestDraftFallsBackOnEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	svc := newCommentTestService(server.URL)
	result := svc.Draft(context.Background(), "Budi Santoso", scoredGradeSet())
	assert.False(t, result.Generated)
	assert.Equal(t, commentEmptyAnswer, result.Comment)
}

func TestDraftFallsBackOnUnreachableAPI(t *testing.T) {
	svc := NewCommentService(config.CommentsConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}, nil)

	result := svc.Draft(context.Background(), "Budi Santoso", scoredGradeSet())
	require.False(t, result.Generated)
	assert.Equal(t, commentServiceError, result.Comment)
}
