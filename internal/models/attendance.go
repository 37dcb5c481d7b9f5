package models

// Attendance keeps per-student absence counters for the running semester,
// one record per student. TeacherNote is the free-text homeroom note shown
// on the printed report.
type Attendance struct {
	StudentID   string `json:"studentId"`
	Sick        int    `json:"sick"`
	Permission  int    `json:"permission"`
	Alpha       int    `json:"alpha"`
	TeacherNote string `json:"teacherNote,omitempty"`
}
