package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/pkg/config"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/export"
)

// Export kinds, used as busy-flag keys and metric labels.
const (
	ExportKindReport = "report"
	ExportKindCover  = "cover"
	ExportKindClass  = "class_reports"
	ExportKindLedger = "ledger"
	ExportKindCSV    = "ledger_csv"
)

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type exportSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error)
}

// ExportResult describes a finished export job.
type ExportResult struct {
	ExportID    string    `json:"exportId"`
	FileName    string    `json:"fileName"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Size        int       `json:"size"`
}

// ExportService renders documents to files and hands out signed download
// tokens. One job per (kind, scope) runs at a time: a second request for
// the same target while the first is rendering gets an EXPORT_BUSY error
// instead of a duplicate render.
type ExportService struct {
	reports  *ReportService
	pdf      *export.PDFRenderer
	csv      *export.CSVExporter
	storage  exportStorage
	signer   exportSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      config.ExportsConfig
	busy     sync.Map
	basePath string
}

// NewExportService constructs an ExportService. basePath is the route
// prefix the download handler is mounted on.
func NewExportService(reports *ReportService, pdf *export.PDFRenderer, csvExporter *export.CSVExporter, storage exportStorage, signer exportSigner, metrics *MetricsService, cfg config.ExportsConfig, basePath string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports:  reports,
		pdf:      pdf,
		csv:      csvExporter,
		storage:  storage,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		basePath: strings.TrimSuffix(basePath, "/"),
	}
}

// ExportStudentReport renders one student's report sheet.
func (s *ExportService) ExportStudentReport(ctx context.Context, studentID string, paper models.PaperSize) (*ExportResult, error) {
	return s.run(ExportKindReport, studentID, func() (string, []byte, error) {
		doc, err := s.reports.BuildReport(ctx, studentID)
		if err != nil {
			return "", nil, err
		}
		data, err := s.pdf.RenderReports([]models.ReportDocument{doc}, s.paperOrDefault(paper))
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("rapor-%s.pdf", slug(doc.StudentName)), data, nil
	})
}

// ExportStudentCover renders one student's report cover.
func (s *ExportService) ExportStudentCover(ctx context.Context, studentID string, paper models.PaperSize) (*ExportResult, error) {
	return s.run(ExportKindCover, studentID, func() (string, []byte, error) {
		doc, err := s.reports.BuildCover(ctx, studentID)
		if err != nil {
			return "", nil, err
		}
		data, err := s.pdf.RenderCovers([]models.CoverDocument{doc}, s.paperOrDefault(paper))
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("sampul-%s.pdf", slug(doc.StudentName)), data, nil
	})
}

// ExportClassReports renders every report sheet of a class into one PDF.
func (s *ExportService) ExportClassReports(ctx context.Context, classLevel string, paper models.PaperSize) (*ExportResult, error) {
	return s.run(ExportKindClass, classLevel, func() (string, []byte, error) {
		docs, err := s.reports.BuildClassReports(ctx, classLevel)
		if err != nil {
			return "", nil, err
		}
		data, err := s.pdf.RenderReports(docs, s.paperOrDefault(paper))
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("rapor-%s.pdf", slug(classLevel)), data, nil
	})
}

// ExportLedgerPDF renders the class ledger.
func (s *ExportService) ExportLedgerPDF(ctx context.Context, classLevel string) (*ExportResult, error) {
	return s.run(ExportKindLedger, classLevel, func() (string, []byte, error) {
		doc, err := s.reports.BuildLedger(ctx, classLevel)
		if err != nil {
			return "", nil, err
		}
		data, err := s.pdf.RenderLedger(doc)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("leger-%s.pdf", slug(classLevel)), data, nil
	})
}

// ExportLedgerCSV renders the class ledger as a spreadsheet.
func (s *ExportService) ExportLedgerCSV(ctx context.Context, classLevel string) (*ExportResult, error) {
	return s.run(ExportKindCSV, classLevel, func() (string, []byte, error) {
		doc, err := s.reports.BuildLedger(ctx, classLevel)
		if err != nil {
			return "", nil, err
		}
		data, err := s.csv.Render(ledgerDataset(doc))
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("leger-%s.csv", slug(classLevel)), data, nil
	})
}

// OpenDownload validates a signed token and opens the stored file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, relPath, nil
}

// StartCleanup evicts expired export files on the configured interval
// until ctx is cancelled.
func (s *ExportService) StartCleanup(ctx context.Context) {
	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.storage.CleanupOlderThan(s.cfg.SignedURLTTL)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("cleaned up expired exports", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}

func (s *ExportService) run(kind, scope string, render func() (string, []byte, error)) (*ExportResult, error) {
	busyKey := kind + ":" + scope
	if _, loaded := s.busy.LoadOrStore(busyKey, struct{}{}); loaded {
		return nil, appErrors.Clone(appErrors.ErrExportBusy, fmt.Sprintf("export for %s is already in progress", scope))
	}
	defer s.busy.Delete(busyKey)

	start := time.Now()
	fileName, data, err := render()
	s.metrics.RecordExport(kind, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	exportID := uuid.NewString()
	storedName := fmt.Sprintf("%s-%s", exportID, fileName)
	relPath, err := s.storage.Save(storedName, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("export rendered",
		zap.String("kind", kind),
		zap.String("scope", scope),
		zap.Int("bytes", len(data)),
		zap.Duration("took", time.Since(start)))
	return &ExportResult{
		ExportID:    exportID,
		FileName:    fileName,
		DownloadURL: fmt.Sprintf("%s/exports/download/%s", s.basePath, token),
		ExpiresAt:   expiresAt,
		Size:        len(data),
	}, nil
}

func (s *ExportService) paperOrDefault(paper models.PaperSize) models.PaperSize {
	switch paper {
	case models.PaperA4, models.PaperF4:
		return paper
	}
	if strings.EqualFold(s.cfg.DefaultPaper, string(models.PaperF4)) {
		return models.PaperF4
	}
	return models.PaperA4
}

// ledgerDataset flattens the ledger document into spreadsheet rows using
// the same display formatting as the PDF.
func ledgerDataset(doc models.LedgerDocument) export.Dataset {
	headers := []string{"No", "Nama Siswa", "NISN"}
	for _, subject := range doc.Subjects {
		headers = append(headers, subject+" TP", subject+" Akhir")
	}
	headers = append(headers, "Total", "Rata-rata", "Peringkat")

	rows := make([]map[string]string, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		record := map[string]string{
			"No":         fmt.Sprintf("%d", row.Seq),
			"Nama Siswa": row.Name,
			"NISN":       row.NISN,
			"Total":      row.Total,
			"Rata-rata":  row.Average,
			"Peringkat":  fmt.Sprintf("%d", row.Rank),
		}
		for i, subject := range doc.Subjects {
			record[subject+" TP"] = row.Scores[i].TP
			record[subject+" Akhir"] = row.Scores[i].Final
		}
		rows = append(rows, record)
	}
	return export.Dataset{Headers: headers, Rows: rows, Delimiter: ';'}
}

func slug(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, value)
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return "export"
	}
	return cleaned
}
