package domain

// Snapshot is the persisted mirror of session state. It is written after
// every mutation and read back once at startup.
type Snapshot struct {
	CandidateID    string       `json:"candidateId,omitempty"`
	SessionID      string       `json:"sessionId,omitempty"`
	Question       string       `json:"question,omitempty"`
	Difficulty     Difficulty   `json:"difficulty,omitempty"`
	QuestionCount  int          `json:"questionCount"`
	Scores         []float64    `json:"scores,omitempty"`
	TimeUsed       int          `json:"timeUsed"`
	JobDescription string       `json:"jobDescription,omitempty"`
	ResumeText     string       `json:"resumeText,omitempty"`
	Report         *FinalReport `json:"interviewData,omitempty"`
}

// HasSessionData reports whether the snapshot carries anything worth
// persisting. An all-empty placeholder must never reach storage.
func (s Snapshot) HasSessionData() bool {
	return s.CandidateID != "" || s.SessionID != "" || s.Report != nil
}

// SnapshotUpdate is a partial update merged over the last known snapshot.
// Nil fields leave the stored value untouched.
type SnapshotUpdate struct {
	CandidateID    *string
	SessionID      *string
	Question       *string
	Difficulty     *Difficulty
	QuestionCount  *int
	Scores         []float64
	TimeUsed       *int
	JobDescription *string
	ResumeText     *string
	Report         *FinalReport
}

// ApplyTo merges the update over base and returns the result.
func (u SnapshotUpdate) ApplyTo(base Snapshot) Snapshot {
	if u.CandidateID != nil {
		base.CandidateID = *u.CandidateID
	}
	if u.SessionID != nil {
		base.SessionID = *u.SessionID
	}
	if u.Question != nil {
		base.Question = *u.Question
	}
	if u.Difficulty != nil {
		base.Difficulty = *u.Difficulty
	}
	if u.QuestionCount != nil {
		base.QuestionCount = *u.QuestionCount
	}
	if u.Scores != nil {
		base.Scores = append([]float64(nil), u.Scores...)
	}
	if u.TimeUsed != nil {
		base.TimeUsed = *u.TimeUsed
	}
	if u.JobDescription != nil {
		base.JobDescription = *u.JobDescription
	}
	if u.ResumeText != nil {
		base.ResumeText = *u.ResumeText
	}
	if u.Report != nil {
		base.Report = u.Report
	}
	return base
}
