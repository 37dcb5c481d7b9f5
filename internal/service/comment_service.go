package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/pkg/config"
)

// Fixed user-visible fallback strings. Drafting never fails: whatever
// goes wrong, the teacher gets one of these instead of an error.
const (
	commentNoAPIKey     = "Konfigurasi API Key Google Gemini belum ditemukan. Harap hubungi administrator."
	commentNoGrades     = "Data nilai tidak ditemukan. Silakan input nilai mata pelajaran terlebih dahulu di menu 'Input Nilai'."
	commentTooFewGrades = "Data nilai belum cukup untuk dianalisis. Mohon lengkapi nilai (Pengetahuan, Keterampilan, atau Sumatif) agar AI dapat memberikan komentar."
	commentServiceError = "Terjadi kesalahan saat menghubungi layanan AI. Silakan coba lagi beberapa saat lagi."
	commentEmptyAnswer  = "Gagal menghasilkan komentar dari AI."
)

// commentSystemInstruction is the homeroom-teacher persona and writing
// guideline sent with every generation request.
const commentSystemInstruction = `Anda adalah seorang Wali Kelas Sekolah Dasar (SD) yang bijaksana, perhatian, dan memotivasi.
Tugas Anda adalah membuat "Catatan Wali Kelas" untuk rapor siswa.

Pedoman Penulisan:
1. Gunakan Bahasa Indonesia yang baku namun hangat dan personal.
2. Awali dengan apresiasi positif terhadap pencapaian siswa.
3. Berikan saran perbaikan yang membangun untuk area yang nilainya kurang, tanpa menggunakan kata-kata kasar.
4. Akhiri dengan kalimat motivasi singkat.
5. Panjang paragraf sekitar 3-4 kalimat saja (singkat dan padat).
6. Jangan menyebutkan angka nilai secara eksplisit (misal: "Nilai kamu 80"), tapi gunakan deskripsi kualitatif (misal: "Sangat baik", "Perlu ditingkatkan").
7. Fokus pada perkembangan karakter dan akademik secara seimbang.`

// CommentService drafts the homeroom teacher note from a student's
// grades through the Gemini REST API.
type CommentService struct {
	cfg    config.CommentsConfig
	client *http.Client
	logger *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(cfg config.CommentsConfig, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CommentService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// CommentResult is the drafted note plus its provenance.
type CommentResult struct {
	Comment   string `json:"comment"`
	Generated bool   `json:"generated"`
}

// Draft produces a report comment from the student's grade list. Only
// grades carrying at least one positive score component count as data;
// without any, a fixed guidance message comes back instead of a call to
// the API.
func (s *CommentService) Draft(ctx context.Context, studentName string, grades []models.Grade) CommentResult {
	if s.cfg.APIKey == "" {
		return CommentResult{Comment: commentNoAPIKey}
	}
	if len(grades) == 0 {
		return CommentResult{Comment: commentNoGrades}
	}
	valid := scoredGrades(grades)
	if len(valid) == 0 {
		return CommentResult{Comment: commentTooFewGrades}
	}
	comment, err := s.generate(ctx, studentName, valid)
	if err != nil {
		s.logger.Warn("ai comment generation failed",
			zap.String("student", studentName),
			zap.Error(err))
		return CommentResult{Comment: commentServiceError}
	}
	if comment == "" {
		return CommentResult{Comment: commentEmptyAnswer}
	}
	return CommentResult{Comment: comment, Generated: true}
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (s *CommentService) generate(ctx context.Context, studentName string, grades []models.Grade) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: commentSystemInstruction}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(studentName, grades)}}}},
		GenerationConfig:  &geminiGenerationConfig{Temperature: 0.7, MaxOutputTokens: 300},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimSuffix(s.cfg.BaseURL, "/"), s.cfg.Model, s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generation api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation api returned %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text), nil
}

// scoredGrades keeps only grades with at least one positive component
// (sumatif, knowledge or skill).
func scoredGrades(grades []models.Grade) []models.Grade {
	valid := make([]models.Grade, 0, len(grades))
	for _, g := range grades {
		if g.TPScore > 0 || g.FinalScore > 0 || g.KnowledgeScore > 0 || g.SkillScore > 0 {
			valid = append(valid, g)
		}
	}
	return valid
}

func buildPrompt(studentName string, grades []models.Grade) string {
	lines := make([]string, 0, len(grades))
	for _, g := range grades {
		var details []string
		if g.TPScore > 0 || g.FinalScore > 0 {
			avg := math.Round((g.TPScore + g.FinalScore) / 2)
			details = append(details, fmt.Sprintf("Rata-rata Sumatif: %.0f", avg))
		}
		if g.KnowledgeScore > 0 {
			details = append(details, fmt.Sprintf("Pengetahuan: %.0f", g.KnowledgeScore))
		}
		if g.SkillScore > 0 {
			details = append(details, fmt.Sprintf("Keterampilan: %.0f", g.SkillScore))
		}
		if g.Notes != "" {
			details = append(details, fmt.Sprintf("Catatan Mapel: %q", g.Notes))
		}
		lines = append(lines, fmt.Sprintf("- %s: [%s]", g.Subject, strings.Join(details, ", ")))
	}

	return fmt.Sprintf(`
Nama Siswa: %s
Data Nilai Mata Pelajaran:
%s

Berdasarkan data di atas, buatlah narasi Catatan Wali Kelas untuk rapor.`, studentName, strings.Join(lines, "\n"))
}
