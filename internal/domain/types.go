package domain

import (
	"errors"
	"time"
)

// Difficulty governs the intended complexity of the next question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Phase models the interview session lifecycle. PhaseTerminated is absorbing.
type Phase string

const (
	PhaseInit           Phase = "init"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseScoring        Phase = "scoring"
	PhaseTerminating    Phase = "terminating"
	PhaseTerminated     Phase = "terminated"
)

// PhaseReason provides a structured reason for phase transitions.
type PhaseReason string

const (
	ReasonSessionStarted   PhaseReason = "session_started"
	ReasonSessionRestored  PhaseReason = "session_restored"
	ReasonAnswerSubmitted  PhaseReason = "answer_submitted"
	ReasonAnswerScored     PhaseReason = "answer_scored"
	ReasonQuestionIssued   PhaseReason = "question_issued"
	ReasonQuestionCap      PhaseReason = "question_cap_reached"
	ReasonRemoteTerminated PhaseReason = "remote_terminated"
	ReasonAdvanceFailed    PhaseReason = "advance_failed"
	ReasonEndRequested     PhaseReason = "end_requested"
	ReasonReportReady      PhaseReason = "report_ready"
	ReasonReportFailed     PhaseReason = "report_failed"
	ReasonSessionReset     PhaseReason = "session_reset"
)

// ErrorCode identifies non-fatal and fatal client-side errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeExtraction  ErrorCode = "extraction"
	ErrorCodeTransport   ErrorCode = "transport"
	ErrorCodeDictation   ErrorCode = "dictation"
	ErrorCodeSynthesis   ErrorCode = "synthesis"
	ErrorCodePersistence ErrorCode = "persistence"
)

// Error taxonomy. Validation and extraction errors are recoverable at the
// call site; ErrTransport forces fail-safe termination of the question loop.
var (
	ErrValidation           = errors.New("required input is empty")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrEmptyContent         = errors.New("file contains no text")
	ErrUnextractableContent = errors.New("could not extract text from file")
	ErrTransport            = errors.New("interview service unavailable")
	ErrCapabilityMissing    = errors.New("capability not available on this platform")
)

// TranscriptKind identifies whether a dictation event is interim or final text.
type TranscriptKind string

const (
	TranscriptKindPartial TranscriptKind = "partial"
	TranscriptKindFinal   TranscriptKind = "final"
)

// TranscriptEvent is incremental recognizer output. Text carries the full
// cumulative transcript so far; consumers replace their buffer, never append.
type TranscriptEvent struct {
	Kind TranscriptKind `json:"kind"`
	Text string         `json:"text"`
}

// Question is the currently outstanding question. Ephemeral: replaced on
// every transition and never kept beyond the score it produced.
type Question struct {
	Text     string    `json:"text"`
	IssuedAt time.Time `json:"issuedAt"`
}

// AnswerStatus is the remote verdict attached to a scored answer.
type AnswerStatus string

const (
	AnswerStatusCleared    AnswerStatus = "CLEARED"
	AnswerStatusWarning    AnswerStatus = "WARNING"
	AnswerStatusTerminated AnswerStatus = "TERMINATED"
)

// ScoreRecord is produced by the remote service for each submitted answer.
type ScoreRecord struct {
	Score              float64      `json:"score"`
	Feedback           string       `json:"feedback"`
	NextDifficulty     Difficulty   `json:"nextDifficulty"`
	Status             AnswerStatus `json:"status"`
	QuestionsRemaining int          `json:"questionsRemaining"`
}

// FinalReport is the terminal artifact of a session. Immutable once produced.
type FinalReport struct {
	FinalScore      float64                  `json:"finalScore"`
	Category        string                   `json:"category"`
	Strengths       []string                 `json:"strengths"`
	Weaknesses      []string                 `json:"weaknesses"`
	HiringReadiness string                   `json:"hiringReadiness"`
	TotalQuestions  int                      `json:"totalQuestions"`
	TotalTime       int                      `json:"totalTime"`
	ScoreBreakdown  map[Difficulty][]float64 `json:"scoreBreakdown"`
}

// CandidateProfile is the structured result of remote resume analysis.
type CandidateProfile struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experienceYears"`
	Projects        []string `json:"projects"`
	PrimaryDomain   string   `json:"primaryDomain"`
}

// MatchReport is the resume-to-job-description compatibility analysis.
type MatchReport struct {
	ATSScore             float64  `json:"atsScore"`
	OverallMatch         float64  `json:"overallMatch"`
	SkillMatchPercentage float64  `json:"skillMatchPercentage"`
	MatchedSkills        []string `json:"matchedSkills"`
	MissingSkills        []string `json:"missingSkills"`
	MatchedRequirements  []string `json:"matchedRequirements"`
	UnmetRequirements    []string `json:"unmetRequirements"`
	ExperienceMatch      string   `json:"experienceMatch"`
	Summary              string   `json:"summary"`
	Strengths            []string `json:"strengths"`
	Gaps                 []string `json:"gaps"`
	Recommendations      []string `json:"recommendations"`
}

// StartResult is what a freshly started session begins with.
type StartResult struct {
	SessionID     string     `json:"sessionId"`
	FirstQuestion string     `json:"firstQuestion"`
	Difficulty    Difficulty `json:"difficulty"`
}

// Status summarizes the current session for the front-end.
type Status struct {
	Phase           Phase      `json:"phase"`
	Active          bool       `json:"active"`
	SessionID       string     `json:"sessionId,omitempty"`
	Difficulty      Difficulty `json:"difficulty"`
	QuestionCount   int        `json:"questionCount"`
	ElapsedSeconds  int        `json:"elapsedSeconds"`
	QuestionSeconds int        `json:"questionSeconds"`
	Question        string     `json:"question,omitempty"`
}
