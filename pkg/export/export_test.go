package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"No", "Nama", "Rata2"},
		Rows: []map[string]string{
			{"No": "1", "Nama": "Budi Santoso", "Rata2": "85.0"},
			{"No": "2", "Nama": "Siti Aminah", "Rata2": "-"},
		},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)
	assert.Equal(t, "No,Nama,Rata2\n1,Budi Santoso,85.0\n2,Siti Aminah,-\n", string(out))
}

func TestCSVExporterSemicolonDelimiter(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render(Dataset{
		Headers:   []string{"Nama", "NISN"},
		Rows:      []map[string]string{{"Nama": "Budi", "NISN": "0123"}},
		Delimiter: ';',
	})
	require.NoError(t, err)
	assert.Equal(t, "Nama;NISN\nBudi;0123\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestRenderReportsProducesPDF(t *testing.T) {
	renderer := NewPDFRenderer()
	doc := models.ReportDocument{
		StudentName:   "Budi Santoso",
		NISN:          "0123456789",
		SchoolName:    "SDN 22 Muara Padang",
		SchoolAddress: "Jl. Pendidikan No. 22",
		ClassLevel:    "Kelas 4",
		Fase:          "B",
		Semester:      "Semester I",
		AcademicYear:  "2025/2026",
		Subjects: []models.SubjectRow{
			{No: 1, Subject: "Matematika", Average: "85", Competency: "Menunjukkan penguasaan yang baik dalam operasi hitung."},
			{No: 2, Subject: "IPAS", Average: "", Competency: ""},
		},
		Extracurricular: []models.ExtracurricularRow{{No: 1, Name: "Pramuka", Note: "Baik"}},
		Attendance:      models.AttendanceBlock{Sick: "2", Permission: "-", Alpha: "-"},
		TeacherNote:     "Pertahankan semangat belajarmu.",
		DateLine:        "Muara Padang, 20 Desember 2025",
		Teacher:         models.SignatureBlock{Name: "Ibu Ani", NIP: "1987"},
		Principal:       models.SignatureBlock{Name: "Pak Kepala"},
	}

	out, err := renderer.RenderReports([]models.ReportDocument{doc}, models.PaperA4)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderReportsF4Paper(t *testing.T) {
	renderer := NewPDFRenderer()
	out, err := renderer.RenderReports([]models.ReportDocument{{
		StudentName: "Budi",
		Subjects:    []models.SubjectRow{{No: 1, Subject: "Matematika", Average: "80"}},
	}}, models.PaperF4)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderReportsEmptyInput(t *testing.T) {
	renderer := NewPDFRenderer()
	_, err := renderer.RenderReports(nil, models.PaperA4)
	assert.Error(t, err)
}

func TestRenderCoversProducesPDF(t *testing.T) {
	renderer := NewPDFRenderer()
	doc := models.CoverDocument{
		SchoolName:  "SDN 22 Muara Padang",
		StudentName: "Budi Santoso",
		NISN:        "0123456789",
		SchoolRows:  []models.LabelValue{{Label: "Nama Sekolah", Value: "SDN 22 Muara Padang"}},
		StudentRows: []models.LabelValue{{Label: "Nama Peserta Didik", Value: "Budi Santoso"}},
	}
	out, err := renderer.RenderCovers([]models.CoverDocument{doc}, models.PaperA4)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderLedgerProducesPDF(t *testing.T) {
	renderer := NewPDFRenderer()
	doc := models.LedgerDocument{
		SchoolName:   "SDN 22 Muara Padang",
		ClassLevel:   "Kelas 4",
		Semester:     "Semester I",
		AcademicYear: "2025/2026",
		Subjects:     models.Subjects,
		Rows: []models.LedgerRow{{
			Seq: 1, Name: "Budi Santoso", NISN: "0123456789",
			Scores:  ledgerScores(len(models.Subjects)),
			Total:   "850",
			Average: "85.0",
			Rank:    1,
		}},
		DateLine: "Muara Padang, 20 Desember 2025",
		Teacher:  models.SignatureBlock{Name: "Ibu Ani"},
	}
	out, err := renderer.RenderLedger(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderLedgerEmptyClassPlaceholder(t *testing.T) {
	renderer := NewPDFRenderer()
	out, err := renderer.RenderLedger(models.LedgerDocument{
		SchoolName:  "SDN 22 Muara Padang",
		ClassLevel:  "Kelas 6",
		Subjects:    models.Subjects,
		Placeholder: "Belum ada data siswa untuk kelas ini.",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestDecodeDataURL(t *testing.T) {
	raw, imgType, err := decodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "PNG", imgType)
	assert.Equal(t, []byte("hello"), raw)

	_, imgType, err = decodeDataURL("data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "JPG", imgType)

	_, _, err = decodeDataURL("https://example.com/logo.png")
	assert.Error(t, err)

	_, _, err = decodeDataURL("data:image/png;base64,%%%")
	assert.Error(t, err)
}

func ledgerScores(n int) []models.LedgerScore {
	scores := make([]models.LedgerScore, n)
	for i := range scores {
		scores[i] = models.LedgerScore{TP: "80", Final: "90"}
	}
	return scores
}
