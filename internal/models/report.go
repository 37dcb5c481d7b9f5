package models

// Document models produced by the composer. They are pure projections of
// persisted data: all display formatting (rounding, dash placeholders,
// localized dates) is resolved here so renderers stay dumb.

// PaperSize selects the physical page for rendered reports.
type PaperSize string

const (
	PaperA4 PaperSize = "A4"
	PaperF4 PaperSize = "F4"
)

// LabelValue is a "label : value" line on an identity page.
type LabelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SignatureBlock is a signer area at the bottom of a document.
type SignatureBlock struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	NIP          string `json:"nip"`
	SignatureURL string `json:"signatureUrl,omitempty"`
	StampURL     string `json:"stampUrl,omitempty"`
}

// SubjectRow is one line of the report's grade table. Average is the
// rounded display value; it is blank when no grade record exists.
type SubjectRow struct {
	No         int    `json:"no"`
	Subject    string `json:"subject"`
	Average    string `json:"average"`
	Competency string `json:"competency"`
}

// ExtracurricularRow is a fixed-entry activity line.
type ExtracurricularRow struct {
	No   int    `json:"no"`
	Name string `json:"name"`
	Note string `json:"note"`
}

// AttendanceBlock carries display-ready absence counters (zero shown as a
// dash, following the printed layout).
type AttendanceBlock struct {
	Sick       string `json:"sick"`
	Permission string `json:"permission"`
	Alpha      string `json:"alpha"`
}

// ReportDocument is the individual report sheet (Laporan Hasil Belajar).
type ReportDocument struct {
	StudentName   string `json:"studentName"`
	NISN          string `json:"nisn"`
	SchoolName    string `json:"schoolName"`
	SchoolAddress string `json:"schoolAddress"`
	ClassLevel    string `json:"classLevel"`
	Fase          string `json:"fase"`
	Semester      string `json:"semester"`
	AcademicYear  string `json:"academicYear"`

	Subjects        []SubjectRow         `json:"subjects"`
	Extracurricular []ExtracurricularRow `json:"extracurricular"`
	Attendance      AttendanceBlock      `json:"attendance"`
	TeacherNote     string               `json:"teacherNote"`

	DateLine  string         `json:"dateLine"`
	Teacher   SignatureBlock `json:"teacher"`
	Principal SignatureBlock `json:"principal"`
}

// CoverDocument is the three-page report cover: title page, school
// identity page and student identity page.
type CoverDocument struct {
	LogoURL     string       `json:"logoUrl,omitempty"`
	SchoolName  string       `json:"schoolName"`
	StudentName string       `json:"studentName"`
	NISN        string       `json:"nisn"`
	SchoolRows  []LabelValue `json:"schoolRows"`
	StudentRows []LabelValue `json:"studentRows"`
}

// LedgerScore is a tp/final score pair formatted for the ledger grid
// (zero rendered as a dash).
type LedgerScore struct {
	TP    string `json:"tp"`
	Final string `json:"final"`
}

// LedgerRow is one rank-ordered student line of the class ledger.
type LedgerRow struct {
	Seq     int           `json:"seq"`
	Name    string        `json:"name"`
	NISN    string        `json:"nisn"`
	Scores  []LedgerScore `json:"scores"`
	Total   string        `json:"total"`
	Average string        `json:"average"`
	Rank    int           `json:"rank"`
}

// LedgerDocument is the class-wide score recap (Leger Nilai Rapor).
// Placeholder is non-empty when the class has no students; renderers must
// show it as an explicit row instead of an empty table.
type LedgerDocument struct {
	SchoolName   string         `json:"schoolName"`
	ClassLevel   string         `json:"classLevel"`
	Semester     string         `json:"semester"`
	AcademicYear string         `json:"academicYear"`
	Subjects     []string       `json:"subjects"`
	Rows         []LedgerRow    `json:"rows"`
	Placeholder  string         `json:"placeholder,omitempty"`
	DateLine     string         `json:"dateLine"`
	Teacher      SignatureBlock `json:"teacher"`
}
