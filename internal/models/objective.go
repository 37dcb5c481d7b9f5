package models

// LearningObjective is a curricular objective (Tujuan Pembelajaran) used as
// reference data for competency descriptions. (classLevel, subject, code)
// is the natural key; saves are last-write-wins on that key.
type LearningObjective struct {
	ID          string `json:"id"`
	ClassLevel  string `json:"classLevel"`
	Subject     string `json:"subject"`
	Code        string `json:"code"`
	Description string `json:"description"`
}
