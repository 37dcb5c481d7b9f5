package models

import "time"

// TeacherInfo is the homeroom teacher identity attached to a class.
// Signature and photo are embedded data URLs.
type TeacherInfo struct {
	Name         string `json:"name"`
	NIP          string `json:"nip"`
	SignatureURL string `json:"signatureUrl"`
	PhotoURL     string `json:"photoUrl,omitempty"`
}

// SchoolSettings is the singleton school identity record. Saving replaces
// the whole snapshot.
type SchoolSettings struct {
	SchoolName            string                 `json:"schoolName"`
	SchoolAddress         string                 `json:"schoolAddress"`
	AcademicYear          string                 `json:"academicYear"`
	Semester              string                 `json:"semester"`
	PrincipalName         string                 `json:"principalName"`
	PrincipalNIP          string                 `json:"principalNip"`
	City                  string                 `json:"city"`
	ReportDate            string                 `json:"reportDate"`
	PrincipalSignatureURL string                 `json:"principalSignatureUrl,omitempty"`
	SchoolStampURL        string                 `json:"schoolStampUrl,omitempty"`
	Teachers              map[string]TeacherInfo `json:"teachers"`
}

// DefaultSettings returns the settings record created lazily on first read.
func DefaultSettings() SchoolSettings {
	s := SchoolSettings{
		SchoolName:    "SDN 22 Muara Padang",
		SchoolAddress: "Jl. Pendidikan No. 22",
		AcademicYear:  "2025/2026",
		Semester:      "I",
		PrincipalName: "Kepala Sekolah",
		PrincipalNIP:  "-",
		City:          "Muara Padang",
		ReportDate:    time.Now().Format("2006-01-02"),
	}
	s.EnsureTeachers()
	return s
}

// EnsureTeachers backfills an empty teacher entry for every enumerated
// class and reports whether anything changed. Older snapshots predate the
// teachers map.
func (s *SchoolSettings) EnsureTeachers() bool {
	changed := false
	if s.Teachers == nil {
		s.Teachers = make(map[string]TeacherInfo, len(Classes))
		changed = true
	}
	for _, c := range Classes {
		if _, ok := s.Teachers[c]; !ok {
			s.Teachers[c] = TeacherInfo{}
			changed = true
		}
	}
	return changed
}
