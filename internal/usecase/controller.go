package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shivamtawar/buildxhire/internal/domain"
	"github.com/Shivamtawar/buildxhire/internal/ports"
)

var (
	ErrNoActiveSession    = errors.New("no active interview session")
	ErrSessionStart       = errors.New("cannot start interview")
	ErrSessionOver        = errors.New("interview session is over")
	ErrSubmissionInFlight = errors.New("an answer is already being scored")
)

// Config controls client-side interview policy.
type Config struct {
	// QuestionCap ends the session after this many scored answers.
	QuestionCap int
	// AdvanceDelay is how long scored feedback stays up before the next
	// question is fetched.
	AdvanceDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.QuestionCap <= 0 {
		c.QuestionCap = 10
	}
	if c.AdvanceDelay < 0 {
		c.AdvanceDelay = 0
	}
	return c
}

// SessionController drives the question/answer/score loop: it owns the phase
// machine, both count-up clocks, the cancellable auto-advance timer, and the
// optional voice capabilities. Remote failures inside the loop collapse
// into termination so the candidate is never left on a frozen question.
type SessionController struct {
	api       ports.InterviewAPI
	state     *SessionState
	dictation ports.Dictation
	synthesis ports.Synthesis
	events    ports.EventSink
	cfg       Config

	now func() time.Time

	mu             sync.Mutex
	phase          domain.Phase
	submitting     bool
	dictating      bool
	sessionStart   time.Time
	questionStart  time.Time
	frozenSession  int
	frozenQuestion int
	clocksStopped  bool
	advanceTimer   *time.Timer
	answerDraft    string
}

func NewSessionController(
	api ports.InterviewAPI,
	state *SessionState,
	dictation ports.Dictation,
	synthesis ports.Synthesis,
	events ports.EventSink,
	cfg Config,
) *SessionController {
	return &SessionController{
		api:       api,
		state:     state,
		dictation: dictation,
		synthesis: synthesis,
		events:    events,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		phase:     domain.PhaseInit,
	}
}

// Restore rehydrates a persisted session. A snapshot with a final report
// lands directly in the terminated phase; one with an open question resumes
// awaiting an answer with a fresh question clock.
func (c *SessionController) Restore() (bool, error) {
	restored, err := c.state.Restore()
	if err != nil || !restored {
		return false, err
	}

	c.mu.Lock()
	switch {
	case c.state.Report() != nil:
		c.phase = domain.PhaseTerminated
	case c.state.SessionID() != "" && c.state.Question().Text != "":
		c.phase = domain.PhaseAwaitingAnswer
		c.sessionStart = c.now().Add(-time.Duration(c.state.TimeUsed()) * time.Second)
		c.questionStart = c.now()
	default:
		c.phase = domain.PhaseInit
	}
	phase := c.phase
	c.mu.Unlock()

	c.events.PhaseChanged(phase, domain.ReasonSessionRestored)
	return true, nil
}

// AnalyzeResume sends candidate text for remote analysis and records the
// resulting identity. Must succeed before Start.
func (c *SessionController) AnalyzeResume(ctx context.Context, resumeText string) (domain.CandidateProfile, error) {
	if strings.TrimSpace(resumeText) == "" {
		return domain.CandidateProfile{}, fmt.Errorf("%w: resume text", domain.ErrValidation)
	}

	candidateID, profile, err := c.api.AnalyzeResume(ctx, resumeText)
	if err != nil {
		return domain.CandidateProfile{}, err
	}
	c.persist(c.state.SetCandidate(candidateID, resumeText))
	return profile, nil
}

// MatchResume runs the resume/job-description compatibility analysis
// against the previously analyzed resume.
func (c *SessionController) MatchResume(ctx context.Context, jobDescription string) (domain.MatchReport, error) {
	resumeText := c.state.ResumeText()
	if strings.TrimSpace(resumeText) == "" {
		return domain.MatchReport{}, fmt.Errorf("%w: resume text", domain.ErrValidation)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return domain.MatchReport{}, fmt.Errorf("%w: job description", domain.ErrValidation)
	}
	return c.api.MatchResume(ctx, resumeText, jobDescription)
}

// RewriteResume returns a version of the analyzed resume rephrased toward
// the job description. The stored resume text is left as the candidate
// uploaded it; the rewrite is advisory output only.
func (c *SessionController) RewriteResume(ctx context.Context, jobDescription string, focusAreas []string) (string, error) {
	resumeText := c.state.ResumeText()
	if strings.TrimSpace(resumeText) == "" {
		return "", fmt.Errorf("%w: resume text", domain.ErrValidation)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return "", fmt.Errorf("%w: job description", domain.ErrValidation)
	}
	return c.api.RewriteResume(ctx, resumeText, jobDescription, focusAreas)
}

// Start begins a new interview session and issues its first question.
func (c *SessionController) Start(ctx context.Context, jobDescription string) (domain.StartResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return domain.StartResult{}, fmt.Errorf("%w: job description is required", ErrSessionStart)
	}
	candidateID := c.state.CandidateID()
	if candidateID == "" {
		return domain.StartResult{}, fmt.Errorf("%w: no candidate identity, analyze a resume first", ErrSessionStart)
	}

	c.mu.Lock()
	if c.phase != domain.PhaseInit {
		c.mu.Unlock()
		return domain.StartResult{}, fmt.Errorf("%w: session already in phase %s", ErrSessionStart, c.phase)
	}
	c.mu.Unlock()

	result, err := c.api.StartInterview(ctx, candidateID, jobDescription)
	if err != nil {
		return domain.StartResult{}, err
	}

	question := domain.Question{Text: result.FirstQuestion, IssuedAt: c.now()}
	c.persist(c.state.SetSession(result.SessionID, jobDescription))
	c.persist(c.state.SetDifficulty(result.Difficulty))
	c.persist(c.state.SetQuestion(question))

	c.mu.Lock()
	c.phase = domain.PhaseAwaitingAnswer
	c.sessionStart = c.now()
	c.questionStart = c.now()
	c.clocksStopped = false
	c.answerDraft = ""
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseAwaitingAnswer, domain.ReasonSessionStarted)
	c.events.QuestionIssued(question, result.Difficulty, 1)
	return result, nil
}

// SubmitAnswer scores the outstanding answer. The question clock is frozen
// at the instant of the call, before the remote round-trip begins, and a
// second submission is rejected while one is outstanding.
func (c *SessionController) SubmitAnswer(ctx context.Context, answerText string) (domain.ScoreRecord, error) {
	if strings.TrimSpace(answerText) == "" {
		return domain.ScoreRecord{}, fmt.Errorf("%w: answer text", domain.ErrValidation)
	}

	c.mu.Lock()
	switch {
	case c.phase == domain.PhaseTerminated || c.phase == domain.PhaseTerminating:
		c.mu.Unlock()
		return domain.ScoreRecord{}, ErrSessionOver
	case c.phase != domain.PhaseAwaitingAnswer || c.submitting:
		c.mu.Unlock()
		return domain.ScoreRecord{}, ErrSubmissionInFlight
	}
	elapsed := int(c.now().Sub(c.questionStart) / time.Second)
	c.submitting = true
	c.phase = domain.PhaseScoring
	c.mu.Unlock()

	c.stopVoice()
	c.events.PhaseChanged(domain.PhaseScoring, domain.ReasonAnswerSubmitted)

	question := c.state.Question()
	record, err := c.api.SubmitAnswer(ctx, c.state.SessionID(), question.Text, answerText, elapsed)

	// The round-trip ran unlocked; End or Reset may have won in the
	// meantime. A session that left the scoring phase discards the result,
	// so nothing mutates terminated or reset state.
	c.mu.Lock()
	if c.phase != domain.PhaseScoring {
		c.mu.Unlock()
		return domain.ScoreRecord{}, ErrSessionOver
	}
	if err != nil {
		c.mu.Unlock()
		// Fail-safe-to-completion: a dead scoring path must not leave the
		// candidate stuck, so force termination and still try for a report.
		c.events.SessionError(domain.ErrorCodeTransport, err.Error())
		_, _ = c.finish(ctx, domain.ReasonAdvanceFailed)
		return domain.ScoreRecord{}, err
	}
	recordErr := c.state.RecordScore(record.Score)
	var difficultyErr error
	if record.NextDifficulty.Valid() {
		difficultyErr = c.state.SetDifficulty(record.NextDifficulty)
	}
	c.mu.Unlock()

	c.persist(recordErr)
	c.persist(difficultyErr)
	c.events.AnswerScored(record)

	switch {
	case record.Status == domain.AnswerStatusTerminated:
		_, _ = c.finish(ctx, domain.ReasonRemoteTerminated)
	case c.state.QuestionCount() >= c.cfg.QuestionCap || record.QuestionsRemaining <= 0:
		_, _ = c.finish(ctx, domain.ReasonQuestionCap)
	default:
		c.scheduleAdvance()
	}
	return record, nil
}

// scheduleAdvance arms the cancellable feedback-display delay before the
// next question is fetched.
func (c *SessionController) scheduleAdvance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.PhaseScoring {
		return
	}
	c.advanceTimer = time.AfterFunc(c.cfg.AdvanceDelay, func() {
		c.advance(context.Background())
	})
}

// advance requests the next question. Any failure terminates the session
// rather than leaving it stuck.
func (c *SessionController) advance(ctx context.Context) {
	c.mu.Lock()
	if c.phase != domain.PhaseScoring {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	text, err := c.api.NextQuestion(ctx, c.state.SessionID())
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			c.events.SessionError(domain.ErrorCodeTransport, err.Error())
		}
		_, _ = c.finish(ctx, domain.ReasonAdvanceFailed)
		return
	}

	question := domain.Question{Text: text, IssuedAt: c.now()}
	c.persist(c.state.SetQuestion(question))

	c.mu.Lock()
	if c.phase != domain.PhaseScoring {
		c.mu.Unlock()
		return
	}
	c.phase = domain.PhaseAwaitingAnswer
	c.submitting = false
	c.questionStart = c.now()
	c.answerDraft = ""
	number := c.state.QuestionCount() + 1
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseAwaitingAnswer, domain.ReasonQuestionIssued)
	c.events.QuestionIssued(question, c.state.Difficulty(), number)
}

// End terminates the session on request and returns the final report.
// Calling End on an already-terminated session returns the stored report.
func (c *SessionController) End(ctx context.Context) (domain.FinalReport, error) {
	c.mu.Lock()
	if c.phase == domain.PhaseTerminated {
		c.mu.Unlock()
		if report := c.state.Report(); report != nil {
			return *report, nil
		}
		return domain.FinalReport{}, ErrSessionOver
	}
	if c.phase == domain.PhaseInit {
		c.mu.Unlock()
		return domain.FinalReport{}, ErrNoActiveSession
	}
	c.mu.Unlock()

	return c.finish(ctx, domain.ReasonEndRequested)
}

// finish is the single terminal transition: stop the clocks (without
// resetting them), cancel the pending advance, silence voice I/O, then
// attempt the closing report. A report failure still lands in the
// terminated phase so the caller always has an exit path.
func (c *SessionController) finish(ctx context.Context, reason domain.PhaseReason) (domain.FinalReport, error) {
	c.mu.Lock()
	if c.phase == domain.PhaseTerminated || c.phase == domain.PhaseTerminating {
		c.mu.Unlock()
		return domain.FinalReport{}, ErrSessionOver
	}
	c.stopClocksLocked()
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
		c.advanceTimer = nil
	}
	c.phase = domain.PhaseTerminating
	sessionSeconds := c.frozenSession
	c.mu.Unlock()

	c.stopVoice()
	c.events.PhaseChanged(domain.PhaseTerminating, reason)
	c.persist(c.state.SetTimeUsed(sessionSeconds))

	report, err := c.api.EndInterview(ctx, c.state.SessionID())

	c.mu.Lock()
	c.phase = domain.PhaseTerminated
	c.submitting = false
	c.mu.Unlock()

	if err != nil {
		c.events.SessionError(domain.ErrorCodeTransport, err.Error())
		c.events.PhaseChanged(domain.PhaseTerminated, domain.ReasonReportFailed)
		return domain.FinalReport{}, err
	}

	c.persist(c.state.SetReport(&report))
	c.events.ReportReady(report)
	c.events.PhaseChanged(domain.PhaseTerminated, domain.ReasonReportReady)
	return report, nil
}

// Reset clears all session state, in memory and persisted, and returns the
// controller to the initial phase.
func (c *SessionController) Reset() error {
	c.mu.Lock()
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
		c.advanceTimer = nil
	}
	c.phase = domain.PhaseInit
	c.submitting = false
	c.clocksStopped = false
	c.frozenSession = 0
	c.frozenQuestion = 0
	c.sessionStart = time.Time{}
	c.questionStart = time.Time{}
	c.answerDraft = ""
	c.mu.Unlock()

	c.stopVoice()
	err := c.state.Reset()
	c.events.PhaseChanged(domain.PhaseInit, domain.ReasonSessionReset)
	return err
}

// StartDictation begins voice input for the current answer. Each recognized
// transcript replaces the draft: the recognizer re-emits cumulative text,
// so the latest transcript wins.
func (c *SessionController) StartDictation(ctx context.Context) error {
	if !c.dictation.Supported() {
		return fmt.Errorf("%w: voice input", domain.ErrCapabilityMissing)
	}

	c.mu.Lock()
	if c.dictating {
		c.mu.Unlock()
		return nil
	}
	c.dictating = true
	c.mu.Unlock()

	err := c.dictation.Start(ctx,
		func(text string) {
			c.mu.Lock()
			c.answerDraft = text
			c.mu.Unlock()
			c.events.PartialTranscript(text)
		},
		func() {
			c.mu.Lock()
			c.dictating = false
			c.mu.Unlock()
		},
		func(err error) {
			c.mu.Lock()
			c.dictating = false
			c.mu.Unlock()
			c.events.SessionError(domain.ErrorCodeDictation, err.Error())
		},
	)
	if err != nil {
		c.mu.Lock()
		c.dictating = false
		c.mu.Unlock()
		return err
	}
	return nil
}

// StopDictation is safe to call when nothing is recording.
func (c *SessionController) StopDictation() {
	c.dictation.Stop()
}

// AnswerDraft returns the latest dictated answer text.
func (c *SessionController) AnswerDraft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answerDraft
}

// SpeakQuestion reads the outstanding question aloud.
func (c *SessionController) SpeakQuestion(ctx context.Context, onEnd func()) error {
	if !c.synthesis.Supported() {
		return fmt.Errorf("%w: speech synthesis", domain.ErrCapabilityMissing)
	}
	question := c.state.Question()
	if question.Text == "" {
		return ErrNoActiveSession
	}
	return c.synthesis.Speak(ctx, question.Text, onEnd)
}

// StopSpeaking is safe to call when nothing is playing.
func (c *SessionController) StopSpeaking() {
	c.synthesis.Stop()
}

// Status reports the live session summary for the front-end.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := domain.Status{
		Phase:         c.phase,
		Active:        c.phase == domain.PhaseAwaitingAnswer || c.phase == domain.PhaseScoring,
		SessionID:     c.state.SessionID(),
		Difficulty:    c.state.Difficulty(),
		QuestionCount: c.state.QuestionCount(),
		Question:      c.state.Question().Text,
	}
	if c.clocksStopped {
		status.ElapsedSeconds = c.frozenSession
		status.QuestionSeconds = c.frozenQuestion
	} else if !c.sessionStart.IsZero() {
		status.ElapsedSeconds = int(c.now().Sub(c.sessionStart) / time.Second)
		status.QuestionSeconds = int(c.now().Sub(c.questionStart) / time.Second)
	}
	return status
}

// stopClocksLocked freezes both count-up clocks at the current instant.
// They stop counting but are not reset, so the terminal transition sees the
// values from the moment it began.
func (c *SessionController) stopClocksLocked() {
	if c.clocksStopped {
		return
	}
	if !c.sessionStart.IsZero() {
		c.frozenSession = int(c.now().Sub(c.sessionStart) / time.Second)
		c.frozenQuestion = int(c.now().Sub(c.questionStart) / time.Second)
	}
	c.clocksStopped = true
}

func (c *SessionController) stopVoice() {
	c.dictation.Stop()
	c.synthesis.Stop()
}

// persist reports mirror failures without interrupting the session; memory
// stays authoritative.
func (c *SessionController) persist(err error) {
	if err != nil {
		c.events.SessionError(domain.ErrorCodePersistence, err.Error())
	}
}
