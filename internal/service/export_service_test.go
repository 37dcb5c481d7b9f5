package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/pkg/config"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/export"
	"github.com/noah-isme/erapor-sd-api/pkg/storage"
)

func newTestExportService(t *testing.T, students []models.Student, grades []models.Grade) *ExportService {
	t.Helper()
	reports := newTestReportService(students, grades, nil, testSettings())
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	cfg := config.ExportsConfig{SignedURLTTL: time.Hour, DefaultPaper: "A4"}
	return NewExportService(reports, export.NewPDFRenderer(), export.NewCSVExporter(), store, signer, nil, cfg, "/api/v1", nil)
}

func TestExportStudentReportRoundTrip(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi Santoso", ClassLevel: "Kelas 4"}}
	grades := []models.Grade{{StudentID: "s-1", Subject: "Matematika", TPScore: 80, FinalScore: 90}}
	svc := newTestExportService(t, students, grades)

	result, err := svc.ExportStudentReport(context.Background(), "s-1", models.PaperA4)
	require.NoError(t, err)
	assert.Equal(t, "rapor-budi-santoso.pdf", result.FileName)
	assert.Contains(t, result.DownloadURL, "/api/v1/exports/download/")
	assert.Greater(t, result.Size, 0)

	token := result.DownloadURL[len("/api/v1/exports/download/"):]
	file, _, err := svc.OpenDownload(token)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, result.Size, len(data))
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExportLedgerCSVContent(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", NISN: "0123", ClassLevel: "Kelas 4"}}
	grades := []models.Grade{{StudentID: "s-1", Subject: "Matematika", TPScore: 80, FinalScore: 90}}
	svc := newTestExportService(t, students, grades)

	result, err := svc.ExportLedgerCSV(context.Background(), "Kelas 4")
	require.NoError(t, err)
	assert.Equal(t, "leger-kelas-4.csv", result.FileName)

	token := result.DownloadURL[len("/api/v1/exports/download/"):]
	file, _, err := svc.OpenDownload(token)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Nama Siswa")
	assert.Contains(t, content, "Budi")
	assert.Contains(t, content, "8.5")
}

func TestExportBusyFlagBlocksConcurrentRun(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	svc := newTestExportService(t, students, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.run(ExportKindLedger, "Kelas 4", func() (string, []byte, error) {
			close(started)
			<-release
			return "leger.pdf", []byte("%PDF-fake"), nil
		})
	}()

	<-started
	_, err := svc.ExportLedgerPDF(context.Background(), "Kelas 4")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrExportBusy.Code, appErr.Code)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	// The flag is released once the first run finishes.
	_, err = svc.ExportLedgerPDF(context.Background(), "Kelas 4")
	require.NoError(t, err)
}

func TestExportBusyFlagScopedPerTarget(t *testing.T) {
	students := []models.Student{
		{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Siti", ClassLevel: "Kelas 5"},
	}
	svc := newTestExportService(t, students, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		svc.run(ExportKindLedger, "Kelas 4", func() (string, []byte, error) {
			close(started)
			<-release
			return "leger.pdf", []byte("x"), nil
		})
	}()
	<-started
	defer close(release)

	// A different class is an independent target.
	_, err := svc.ExportLedgerPDF(context.Background(), "Kelas 5")
	require.NoError(t, err)
}

func TestOpenDownloadRejectsTamperedToken(t *testing.T) {
	svc := newTestExportService(t, []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}, nil)

	result, err := svc.ExportLedgerPDF(context.Background(), "Kelas 4")
	require.NoError(t, err)
	token := result.DownloadURL[len("/api/v1/exports/download/"):]

	_, _, err = svc.OpenDownload(token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestExportDefaultPaperFallback(t *testing.T) {
	svc := newTestExportService(t, nil, nil)
	assert.Equal(t, models.PaperA4, svc.paperOrDefault(""))
	assert.Equal(t, models.PaperF4, svc.paperOrDefault(models.PaperF4))

	svc.cfg.DefaultPaper = "F4"
	assert.Equal(t, models.PaperF4, svc.paperOrDefault(""))
}
