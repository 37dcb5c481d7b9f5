package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// PDFRenderer draws composed report documents into printable PDFs.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// RenderReports draws one report sheet per document into a single PDF.
func (r *PDFRenderer) RenderReports(docs []models.ReportDocument, paper models.PaperSize) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no report documents to render")
	}
	pdf := newDocument("P", paper)
	images := newImageSet(pdf)
	for _, doc := range docs {
		drawReportSheet(pdf, images, doc)
	}
	return output(pdf)
}

// RenderCovers draws the three cover pages per document into a single PDF.
func (r *PDFRenderer) RenderCovers(docs []models.CoverDocument, paper models.PaperSize) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no cover documents to render")
	}
	pdf := newDocument("P", paper)
	images := newImageSet(pdf)
	for _, doc := range docs {
		drawCoverPages(pdf, images, doc)
	}
	return output(pdf)
}

// RenderLedger draws the class ledger in landscape orientation.
func (r *PDFRenderer) RenderLedger(doc models.LedgerDocument) ([]byte, error) {
	pdf := newDocument("L", models.PaperA4)
	images := newImageSet(pdf)
	drawLedger(pdf, images, doc)
	return output(pdf)
}

func newDocument(orientation string, paper models.PaperSize) *gofpdf.Fpdf {
	if paper == models.PaperF4 {
		// F4 (folio) is not a gofpdf built-in size.
		return gofpdf.NewCustom(&gofpdf.InitType{
			OrientationStr: orientation,
			UnitStr:        "mm",
			Size:           gofpdf.SizeType{Wd: 215, Ht: 330},
		})
	}
	return gofpdf.New(orientation, "mm", "A4", "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// imageSet registers embedded data-URL images once per document and keeps
// gofpdf resource names unique.
type imageSet struct {
	pdf   *gofpdf.Fpdf
	count int
	names map[string]string
}

func newImageSet(pdf *gofpdf.Fpdf) *imageSet {
	return &imageSet{pdf: pdf, names: make(map[string]string)}
}

// draw places a data-URL image at the given box. Blank or undecodable
// images leave the area empty.
func (s *imageSet) draw(dataURL string, x, y, w, h float64) {
	if dataURL == "" {
		return
	}
	name, imgType, ok := s.register(dataURL)
	if !ok {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	s.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func (s *imageSet) register(dataURL string) (name, imgType string, ok bool) {
	if cached, exists := s.names[dataURL]; exists {
		parts := strings.SplitN(cached, "|", 2)
		return parts[0], parts[1], true
	}
	raw, imgType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", "", false
	}
	s.count++
	name = fmt.Sprintf("img%d", s.count)
	s.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(raw))
	if s.pdf.Err() {
		s.pdf.ClearError()
		return "", "", false
	}
	s.names[dataURL] = name + "|" + imgType
	return name, imgType, true
}

func decodeDataURL(dataURL string) ([]byte, string, error) {
	const prefix = "data:image/"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, "", fmt.Errorf("not an image data url")
	}
	rest := dataURL[len(prefix):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return nil, "", fmt.Errorf("unsupported data url encoding")
	}
	imgType := strings.ToUpper(rest[:sep])
	if imgType == "JPEG" {
		imgType = "JPG"
	}
	raw, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return nil, "", fmt.Errorf("decode image payload: %w", err)
	}
	return raw, imgType, nil
}

func drawReportSheet(pdf *gofpdf.Fpdf, images *imageSet, doc models.ReportDocument) {
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	usable := pageW - 30

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 6, "LAPORAN HASIL BELAJAR", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, "(RAPOR)", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Identity block, two columns.
	left := [][2]string{
		{"Nama Peserta Didik", doc.StudentName},
		{"NISN", doc.NISN},
		{"Sekolah", doc.SchoolName},
		{"Alamat", doc.SchoolAddress},
	}
	right := [][2]string{
		{"Kelas", doc.ClassLevel},
		{"Fase", doc.Fase},
		{"Semester", doc.Semester},
		{"Tahun Pelajaran", doc.AcademicYear},
	}
	pdf.SetFont("Arial", "", 9)
	topY := pdf.GetY()
	for i := range left {
		y := topY + float64(i)*5
		pdf.SetXY(15, y)
		pdf.CellFormat(36, 5, left[i][0], "", 0, "L", false, 0, "")
		pdf.CellFormat(4, 5, ":", "", 0, "L", false, 0, "")
		if i == 0 {
			pdf.SetFont("Arial", "B", 9)
		}
		pdf.CellFormat(60, 5, left[i][1], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)

		pdf.SetXY(15+usable*0.6, y)
		pdf.CellFormat(30, 5, right[i][0], "", 0, "L", false, 0, "")
		pdf.CellFormat(4, 5, ":", "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 5, right[i][1], "", 0, "L", false, 0, "")
	}
	pdf.SetY(topY + 4*5 + 5)

	// Grade table.
	wNo, wSubject, wScore := 10.0, 48.0, 20.0
	wCompetency := usable - wNo - wSubject - wScore
	drawGreenHeader(pdf, []headerCell{
		{"No", wNo}, {"Mata Pelajaran", wSubject}, {"Nilai Akhir", wScore}, {"Capaian Kompetensi", wCompetency},
	})
	pdf.SetFont("Arial", "", 8)
	for _, row := range doc.Subjects {
		lines := pdf.SplitLines([]byte(row.Competency), wCompetency-2)
		rowH := float64(len(lines))*3.6 + 3
		if rowH < 9 {
			rowH = 9
		}
		x, y := 15.0, pdf.GetY()
		pdf.Rect(x, y, wNo, rowH, "D")
		pdf.Rect(x+wNo, y, wSubject, rowH, "D")
		pdf.Rect(x+wNo+wSubject, y, wScore, rowH, "D")
		pdf.Rect(x+wNo+wSubject+wScore, y, wCompetency, rowH, "D")

		pdf.SetXY(x, y)
		pdf.CellFormat(wNo, rowH, fmt.Sprintf("%d", row.No), "", 0, "C", false, 0, "")
		pdf.CellFormat(wSubject, rowH, row.Subject, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(wScore, rowH, row.Average, "", 0, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.SetXY(x+wNo+wSubject+wScore+1, y+1.2)
		pdf.MultiCell(wCompetency-2, 3.6, row.Competency, "", "L", false)
		pdf.SetXY(x, y+rowH)
	}
	pdf.Ln(4)

	// Extracurricular block.
	wName := 70.0
	wNote := usable - wNo - wName
	drawGreenHeader(pdf, []headerCell{{"No", wNo}, {"Ekstrakurikuler", wName}, {"Keterangan", wNote}})
	pdf.SetFont("Arial", "", 8)
	for _, row := range doc.Extracurricular {
		pdf.CellFormat(wNo, 6, fmt.Sprintf("%d", row.No), "1", 0, "C", false, 0, "")
		pdf.CellFormat(wName, 6, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(wNote, 6, row.Note, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Attendance next to the homeroom note.
	attW := usable / 3
	noteW := usable - attW - 4
	blockY := pdf.GetY()
	pdf.SetFillColor(217, 234, 211)
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(attW, 6, "Ketidakhadiran", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 8)
	attRows := [][2]string{{"Sakit", doc.Attendance.Sick}, {"Izin", doc.Attendance.Permission}, {"Tanpa Keterangan", doc.Attendance.Alpha}}
	for _, row := range attRows {
		pdf.CellFormat(attW*0.55, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(attW*0.25, 6, row[1], "1", 0, "C", false, 0, "")
		pdf.CellFormat(attW*0.2, 6, "hari", "1", 1, "C", false, 0, "")
	}
	noteH := pdf.GetY() - blockY
	pdf.SetXY(15+attW+4, blockY)
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(noteW, 6, "Catatan Wali Kelas", "1", 2, "C", true, 0, "")
	noteY := pdf.GetY()
	pdf.Rect(15+attW+4, noteY, noteW, noteH-6, "D")
	pdf.SetXY(15+attW+4+1, noteY+1)
	pdf.SetFont("Arial", "I", 8)
	pdf.MultiCell(noteW-2, 3.6, doc.TeacherNote, "", "L", false)
	pdf.SetXY(15, blockY+noteH+4)

	// Parent response block.
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(usable, 6, "Tanggapan Orang Tua/ Wali Murid", "1", 1, "C", true, 0, "")
	pdf.Rect(15, pdf.GetY(), usable, 18, "D")
	pdf.SetY(pdf.GetY() + 22)

	// Signatures: parent left, homeroom teacher right, principal centered.
	pdf.SetFont("Arial", "", 8)
	sigY := pdf.GetY()
	pdf.SetXY(20, sigY)
	pdf.CellFormat(60, 4, "Mengetahui,", "", 2, "C", false, 0, "")
	pdf.CellFormat(60, 4, "Orang Tua/Wali,", "", 2, "C", false, 0, "")

	pdf.SetXY(pageW-85, sigY)
	pdf.CellFormat(60, 4, doc.DateLine, "", 2, "C", false, 0, "")
	pdf.CellFormat(60, 4, "Wali Kelas,", "", 2, "C", false, 0, "")
	images.draw(doc.Teacher.SignatureURL, pageW-75, sigY+9, 40, 18)

	pdf.SetXY(20, sigY+28)
	pdf.Line(25, sigY+28, 75, sigY+28)

	pdf.SetXY(pageW-85, sigY+28)
	pdf.SetFont("Arial", "BU", 8)
	pdf.CellFormat(60, 4, strings.ToUpper(orDots(doc.Teacher.Name)), "", 2, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(60, 4, "NIP. "+orDash(doc.Teacher.NIP), "", 2, "C", false, 0, "")

	centerX := pageW / 2
	pdf.SetXY(centerX-30, sigY+40)
	pdf.CellFormat(60, 4, "Mengetahui,", "", 2, "C", false, 0, "")
	pdf.CellFormat(60, 4, "Kepala Sekolah", "", 2, "C", false, 0, "")
	images.draw(doc.Principal.StampURL, centerX-34, sigY+49, 24, 24)
	images.draw(doc.Principal.SignatureURL, centerX-20, sigY+49, 40, 18)
	pdf.SetXY(centerX-30, sigY+69)
	pdf.SetFont("Arial", "BU", 8)
	pdf.CellFormat(60, 4, strings.ToUpper(orDots(doc.Principal.Name)), "", 2, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(60, 4, "NIP. "+orDash(doc.Principal.NIP), "", 2, "C", false, 0, "")
}

func drawCoverPages(pdf *gofpdf.Fpdf, images *imageSet, doc models.CoverDocument) {
	pageW, pageH := 210.0, 297.0
	if pdf.PageCount() > 0 {
		pageW, pageH = pdf.GetPageSize()
	}

	// Page 1: title.
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pageW, pageH = pdf.GetPageSize()
	images.draw(doc.LogoURL, pageW/2-20, 30, 40, 40)
	pdf.SetY(80)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 9, "RAPOR", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 15)
	pdf.CellFormat(0, 8, "PESERTA DIDIK", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "SEKOLAH DASAR", "", 1, "C", false, 0, "")
	pdf.Ln(14)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, strings.ToUpper(doc.SchoolName), "", 1, "C", false, 0, "")
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Nama Peserta Didik :", "", 1, "C", false, 0, "")
	boxW := (pageW - 40) * 0.75
	boxX := (pageW - boxW) / 2
	pdf.SetLineWidth(0.5)
	pdf.Rect(boxX, pdf.GetY()+1, boxW, 13, "D")
	pdf.SetFont("Arial", "B", 13)
	pdf.SetXY(boxX, pdf.GetY()+1)
	pdf.CellFormat(boxW, 13, strings.ToUpper(doc.StudentName), "", 1, "C", false, 0, "")
	pdf.Ln(5)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "NISN", "", 1, "C", false, 0, "")
	pdf.Rect(boxX, pdf.GetY()+1, boxW, 13, "D")
	pdf.SetFont("Arial", "B", 13)
	pdf.SetXY(boxX, pdf.GetY()+1)
	pdf.CellFormat(boxW, 13, doc.NISN, "", 1, "C", false, 0, "")
	pdf.SetLineWidth(0.2)

	pdf.SetY(pageH - 40)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 5, "KEMENTERIAN PENDIDIKAN DASAR DAN MENENGAH", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "REPUBLIK INDONESIA", "", 1, "C", false, 0, "")

	// Page 2: school identity.
	pdf.AddPage()
	pdf.SetY(35)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 7, "RAPOR", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "PESERTA DIDIK", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "SEKOLAH DASAR ( SD )", "", 1, "C", false, 0, "")
	pdf.Ln(18)
	drawIdentityRows(pdf, doc.SchoolRows, 10, 8)

	// Page 3: student identity.
	pdf.AddPage()
	pdf.SetY(30)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "IDENTITAS PESERTA DIDIK", "", 1, "C", false, 0, "")
	pdf.Ln(10)
	drawIdentityRows(pdf, doc.StudentRows, 9, 6.5)
}

func drawIdentityRows(pdf *gofpdf.Fpdf, rows []models.LabelValue, fontSize, rowH float64) {
	pdf.SetFont("Arial", "", fontSize)
	for _, row := range rows {
		if row.Label == "" {
			// Section spacer.
			pdf.Ln(rowH / 2)
			if row.Value != "" {
				pdf.SetFont("Arial", "B", fontSize)
				pdf.CellFormat(0, rowH, row.Value, "", 1, "L", false, 0, "")
				pdf.SetFont("Arial", "", fontSize)
			}
			continue
		}
		pdf.CellFormat(60, rowH, row.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(5, rowH, ":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, rowH, row.Value, "", 1, "L", false, 0, "")
	}
}

func drawLedger(pdf *gofpdf.Fpdf, images *imageSet, doc models.LedgerDocument) {
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	usable := pageW - 20

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 6, "LEGER NILAI RAPOR", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, strings.ToUpper(doc.SchoolName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	meta := fmt.Sprintf("Kelas: %s     Semester: %s     Tahun Ajaran: %s", doc.ClassLevel, doc.Semester, doc.AcademicYear)
	pdf.CellFormat(0, 6, meta, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	wSeq, wName, wNISN := 8.0, 42.0, 18.0
	wTotal, wAvg, wRank := 11.0, 11.0, 9.0
	scoreArea := usable - wSeq - wName - wNISN - wTotal - wAvg - wRank
	wScore := scoreArea / float64(len(doc.Subjects)*2)

	// Two header rows: subject spans, then TP/Akh pairs.
	pdf.SetFillColor(226, 232, 240)
	pdf.SetFont("Arial", "B", 6.5)
	x, y := 10.0, pdf.GetY()
	headSpan := func(w float64, label string) {
		pdf.Rect(x, y, w, 10, "FD")
		pdf.SetXY(x, y)
		pdf.CellFormat(w, 10, label, "", 0, "C", false, 0, "")
		x += w
	}
	headSpan(wSeq, "No")
	headSpan(wName, "Nama Siswa")
	headSpan(wNISN, "NISN")
	for _, subject := range doc.Subjects {
		label := subject
		if len(label) > 10 {
			label = label[:10] + "."
		}
		pdf.Rect(x, y, wScore*2, 5, "FD")
		pdf.SetXY(x, y)
		pdf.CellFormat(wScore*2, 5, label, "", 0, "C", false, 0, "")
		pdf.Rect(x, y+5, wScore, 5, "FD")
		pdf.SetXY(x, y+5)
		pdf.CellFormat(wScore, 5, "TP", "", 0, "C", false, 0, "")
		pdf.Rect(x+wScore, y+5, wScore, 5, "FD")
		pdf.SetXY(x+wScore, y+5)
		pdf.CellFormat(wScore, 5, "Akh", "", 0, "C", false, 0, "")
		x += wScore * 2
	}
	headSpan(wTotal, "Total")
	headSpan(wAvg, "Rata2")
	headSpan(wRank, "Rank")
	pdf.SetXY(10, y+10)

	pdf.SetFont("Arial", "", 6.5)
	if doc.Placeholder != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(usable, 10, doc.Placeholder, "1", 1, "C", false, 0, "")
	}
	for _, row := range doc.Rows {
		pdf.CellFormat(wSeq, 5, fmt.Sprintf("%d", row.Seq), "1", 0, "C", false, 0, "")
		pdf.CellFormat(wName, 5, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(wNISN, 5, row.NISN, "1", 0, "C", false, 0, "")
		for _, score := range row.Scores {
			pdf.CellFormat(wScore, 5, score.TP, "1", 0, "C", false, 0, "")
			pdf.CellFormat(wScore, 5, score.Final, "1", 0, "C", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 6.5)
		pdf.CellFormat(wTotal, 5, row.Total, "1", 0, "C", false, 0, "")
		pdf.CellFormat(wAvg, 5, row.Average, "1", 0, "C", false, 0, "")
		pdf.CellFormat(wRank, 5, fmt.Sprintf("%d", row.Rank), "1", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 6.5)
	}

	// Homeroom teacher signature, bottom right.
	pdf.Ln(8)
	sigX := pageW - 80
	pdf.SetX(sigX)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(60, 4, doc.DateLine, "", 2, "C", false, 0, "")
	pdf.CellFormat(60, 4, "Wali Kelas,", "", 2, "C", false, 0, "")
	images.draw(doc.Teacher.SignatureURL, sigX+10, pdf.GetY()+1, 40, 16)
	pdf.SetY(pdf.GetY() + 19)
	pdf.SetX(sigX)
	pdf.SetFont("Arial", "BU", 8)
	pdf.CellFormat(60, 4, strings.ToUpper(orDots(doc.Teacher.Name)), "", 2, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(60, 4, "NIP. "+orDash(doc.Teacher.NIP), "", 2, "C", false, 0, "")
}

type headerCell struct {
	label string
	width float64
}

func drawGreenHeader(pdf *gofpdf.Fpdf, cells []headerCell) {
	pdf.SetFillColor(217, 234, 211)
	pdf.SetFont("Arial", "B", 8)
	for i, cell := range cells {
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		pdf.CellFormat(cell.width, 6, cell.label, "1", ln, "C", true, 0, "")
	}
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func orDots(v string) string {
	if strings.TrimSpace(v) == "" {
		return "........................."
	}
	return v
}
