package usecase

import (
	"sync"

	"github.com/Shivamtawar/buildxhire/internal/domain"
	"github.com/Shivamtawar/buildxhire/internal/ports"
)

// SessionState owns every candidate-session field. It is mutated only
// through the controller's transition operations, and every mutation mirrors
// exactly one merged partial update into the snapshot store.
type SessionState struct {
	mu    sync.Mutex
	store ports.SnapshotStore

	candidateID    string
	sessionID      string
	question       domain.Question
	difficulty     domain.Difficulty
	questionCount  int
	scores         []float64
	timeUsed       int
	jobDescription string
	resumeText     string
	report         *domain.FinalReport
}

func NewSessionState(store ports.SnapshotStore) *SessionState {
	return &SessionState{store: store, difficulty: domain.DifficultyEasy}
}

// Restore fills the state from a persisted snapshot, if one survives.
func (s *SessionState) Restore() (bool, error) {
	snapshot, err := s.store.Load()
	if err != nil || snapshot == nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidateID = snapshot.CandidateID
	s.sessionID = snapshot.SessionID
	s.question = domain.Question{Text: snapshot.Question}
	s.difficulty = snapshot.Difficulty
	if !s.difficulty.Valid() {
		s.difficulty = domain.DifficultyEasy
	}
	s.questionCount = snapshot.QuestionCount
	s.scores = append([]float64(nil), snapshot.Scores...)
	s.timeUsed = snapshot.TimeUsed
	s.jobDescription = snapshot.JobDescription
	s.resumeText = snapshot.ResumeText
	s.report = snapshot.Report
	return true, nil
}

// Reset restores defaults and erases the persisted snapshot.
func (s *SessionState) Reset() error {
	s.mu.Lock()
	s.candidateID = ""
	s.sessionID = ""
	s.question = domain.Question{}
	s.difficulty = domain.DifficultyEasy
	s.questionCount = 0
	s.scores = nil
	s.timeUsed = 0
	s.jobDescription = ""
	s.resumeText = ""
	s.report = nil
	s.mu.Unlock()

	return s.store.Clear()
}

func (s *SessionState) SetCandidate(candidateID, resumeText string) error {
	s.mu.Lock()
	s.candidateID = candidateID
	s.resumeText = resumeText
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{
		CandidateID: &candidateID,
		ResumeText:  &resumeText,
	})
}

func (s *SessionState) SetSession(sessionID, jobDescription string) error {
	s.mu.Lock()
	s.sessionID = sessionID
	s.jobDescription = jobDescription
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{
		SessionID:      &sessionID,
		JobDescription: &jobDescription,
	})
}

func (s *SessionState) SetQuestion(question domain.Question) error {
	s.mu.Lock()
	s.question = question
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{Question: &question.Text})
}

func (s *SessionState) SetDifficulty(difficulty domain.Difficulty) error {
	s.mu.Lock()
	s.difficulty = difficulty
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{Difficulty: &difficulty})
}

// RecordScore appends the score and increments the question count together,
// keeping len(scores) == questionCount around the whole transition.
func (s *SessionState) RecordScore(score float64) error {
	s.mu.Lock()
	s.scores = append(s.scores, score)
	s.questionCount++
	scores := append([]float64(nil), s.scores...)
	count := s.questionCount
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{
		Scores:        scores,
		QuestionCount: &count,
	})
}

func (s *SessionState) SetTimeUsed(seconds int) error {
	s.mu.Lock()
	s.timeUsed = seconds
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{TimeUsed: &seconds})
}

func (s *SessionState) SetReport(report *domain.FinalReport) error {
	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	return s.store.Save(domain.SnapshotUpdate{Report: report})
}

func (s *SessionState) CandidateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidateID
}

func (s *SessionState) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *SessionState) Question() domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.question
}

func (s *SessionState) Difficulty() domain.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

func (s *SessionState) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionCount
}

func (s *SessionState) Scores() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.scores...)
}

func (s *SessionState) TimeUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeUsed
}

func (s *SessionState) ResumeText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeText
}

func (s *SessionState) JobDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobDescription
}

func (s *SessionState) Report() *domain.FinalReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}
