package models

// SubjectScore is one subject's score triple inside a class standing.
type SubjectScore struct {
	TP      float64 `json:"tp"`
	Final   float64 `json:"final"`
	Average float64 `json:"avg"`
}

// StudentStanding is the aggregator output for one student: every subject's
// score triple over the fixed subject list, the sum of subject averages,
// the overall average and the 1-based class rank. Averages retain
// fractional precision here; rounding only happens at document level.
type StudentStanding struct {
	Student Student                 `json:"student"`
	Scores  map[string]SubjectScore `json:"scores"`
	Total   float64                 `json:"total"`
	Average float64                 `json:"average"`
	Rank    int                     `json:"rank"`
}
