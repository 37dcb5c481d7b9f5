package models

// Subjects is the fixed curriculum list. It drives every table width and
// loop bound in the aggregator and composer; unrecorded subjects still
// count toward the overall average.
var Subjects = []string{
	"Pendidikan Agama",
	"Pendidikan Pancasila",
	"Bahasa Indonesia",
	"Matematika",
	"IPAS",
	"Seni Budaya",
	"PJOK",
	"Bahasa Inggris",
	"Potensi daerah",
	"BTA",
}

// Grade holds the score components for one (student, subject) pair.
// TPScore is the formative "Sumatif TP" component, FinalScore the
// summative "Sumatif Akhir" component. Knowledge/Skill scores are legacy
// and only surface in AI comment summaries.
type Grade struct {
	StudentID      string  `json:"studentId"`
	Subject        string  `json:"subject"`
	TPScore        float64 `json:"tpScore"`
	FinalScore     float64 `json:"finalScore"`
	KnowledgeScore float64 `json:"knowledgeScore,omitempty"`
	SkillScore     float64 `json:"skillScore,omitempty"`
	Notes          string  `json:"notes"`
}

// SubjectAverage computes (tp+final)/2 when at least one component is
// positive, otherwise 0.
func SubjectAverage(tp, final float64) float64 {
	if tp > 0 || final > 0 {
		return (tp + final) / 2
	}
	return 0
}

// IsValidSubject reports whether the subject belongs to the fixed list.
func IsValidSubject(subject string) bool {
	for _, s := range Subjects {
		if s == subject {
			return true
		}
	}
	return false
}
