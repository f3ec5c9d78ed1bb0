package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shivamtawar/buildxhire/internal/bootstrap"
	"github.com/Shivamtawar/buildxhire/internal/config"
	"github.com/Shivamtawar/buildxhire/internal/domain"
	"github.com/Shivamtawar/buildxhire/internal/extract"
	"github.com/Shivamtawar/buildxhire/internal/report"
	"github.com/Shivamtawar/buildxhire/internal/usecase"
)

// App is the terminal front end. It implements ports.EventSink so session
// lifecycle events print as they happen.
type App struct {
	controller *usecase.SessionController
	extractor  *extract.Extractor
	exporter   *report.Exporter
	cfg        config.Config

	in  *bufio.Scanner
	out io.Writer
}

func NewApp(in io.Reader, out io.Writer) *App {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &App{in: scanner, out: out}
}

// Run drives the whole session: restore or set up, then the question loop,
// then the closing report.
func (a *App) Run(ctx context.Context) error {
	services, err := bootstrap.Build(a)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	a.controller = services.Controller
	a.extractor = services.Extractor
	a.exporter = services.Exporter
	a.cfg = services.Config

	restored, err := a.controller.Restore()
	if err != nil {
		a.printf("Could not restore the previous session: %v", err)
	}
	if restored {
		status := a.controller.Status()
		switch status.Phase {
		case domain.PhaseAwaitingAnswer:
			a.printf("Resuming interview %s at question %d.", status.SessionID, status.QuestionCount+1)
			a.printf("Question %d [%s]: %s", status.QuestionCount+1, status.Difficulty, status.Question)
			return a.interviewLoop(ctx)
		case domain.PhaseTerminated:
			a.printf("The previous interview already finished. Starting fresh.")
			if err := a.controller.Reset(); err != nil {
				a.printf("Could not clear the old session: %v", err)
			}
		}
	}

	if err := a.setup(ctx); err != nil {
		return err
	}
	return a.interviewLoop(ctx)
}

// setup walks resume extraction, analysis, the optional match report, and
// session start.
func (a *App) setup(ctx context.Context) error {
	resumeText, err := a.collectResume()
	if err != nil {
		return err
	}

	profile, err := a.controller.AnalyzeResume(ctx, resumeText)
	if err != nil {
		return fmt.Errorf("resume analysis failed: %w", err)
	}
	a.printf("Resume analyzed. Domain: %s, experience: %.0f years, skills: %s.",
		profile.PrimaryDomain, profile.ExperienceYears, strings.Join(profile.Skills, ", "))

	jobDescription := a.promptMultiline("Paste the job description. Finish with an empty line:")
	if strings.TrimSpace(jobDescription) == "" {
		return errors.New("a job description is required")
	}

	if a.confirm("Run a resume/job match analysis first? [y/N]: ") {
		match, err := a.controller.MatchResume(ctx, jobDescription)
		if err != nil {
			a.printf("Match analysis failed: %v", err)
		} else {
			a.printf("%s", formatMatch(match))
			if path, err := a.exporter.SaveMatch(match); err == nil {
				a.printf("Match report saved to %s", path)
			}
			a.offerRewrite(ctx, jobDescription, match.MissingSkills)
		}
	}

	if _, err := a.controller.Start(ctx, jobDescription); err != nil {
		return fmt.Errorf("could not start the interview: %w", err)
	}
	return nil
}

// offerRewrite lets the candidate request a version of their resume
// rephrased toward the job description. The gaps from the match analysis
// become the rewrite's focus areas.
func (a *App) offerRewrite(ctx context.Context, jobDescription string, focusAreas []string) {
	if !a.confirm("Rewrite the resume to better fit this job? [y/N]: ") {
		return
	}

	rewritten, err := a.controller.RewriteResume(ctx, jobDescription, focusAreas)
	if err != nil {
		a.printf("Resume rewrite failed: %v", err)
		return
	}

	a.printf("Rewritten resume:\n%s", rewritten)
	if path, err := a.exporter.SaveRewrite(rewritten); err == nil {
		a.printf("Rewritten resume saved to %s", path)
	} else {
		a.printf("Could not save the rewritten resume: %v", err)
	}
}

// collectResume keeps asking for a file until one yields usable text.
func (a *App) collectResume() (string, error) {
	for {
		path := strings.TrimSpace(a.prompt("Resume file (.pdf or .txt): "))
		if path == "" {
			return "", errors.New("a resume file is required")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			a.printf("Could not read %s: %v", path, err)
			continue
		}

		text, err := a.extractor.Extract(filepath.Base(path), data)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnsupportedFileType):
				a.printf("Only .pdf and .txt resumes are supported.")
			case errors.Is(err, domain.ErrEmptyContent), errors.Is(err, domain.ErrUnextractableContent):
				a.printf("No usable text found in %s. Try a different file.", path)
			default:
				a.printf("Extraction failed: %v", err)
			}
			continue
		}
		return text, nil
	}
}

// interviewLoop reads answers until the session terminates, then exports
// the final report.
func (a *App) interviewLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		status := a.controller.Status()
		switch status.Phase {
		case domain.PhaseTerminated:
			return a.finish(ctx)
		case domain.PhaseAwaitingAnswer:
			answer, quit := a.collectAnswer(ctx)
			if quit {
				if _, err := a.controller.End(ctx); err != nil && !errors.Is(err, usecase.ErrSessionOver) {
					a.printf("Could not end cleanly: %v", err)
				}
				return a.finish(ctx)
			}
			if _, err := a.controller.SubmitAnswer(ctx, answer); err != nil {
				switch {
				case errors.Is(err, domain.ErrValidation):
					a.printf("The answer cannot be empty.")
				case errors.Is(err, usecase.ErrSessionOver):
					return a.finish(ctx)
				}
				// Transport failures already forced termination; the next
				// pass of the loop sees the terminal phase.
				continue
			}
			a.waitWhileScoring(ctx)
		default:
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// collectAnswer reads a typed answer or runs one of the slash commands.
func (a *App) collectAnswer(ctx context.Context) (answer string, quit bool) {
	for {
		line := strings.TrimSpace(a.prompt("> "))
		switch line {
		case "/end":
			return "", true
		case "/say":
			if err := a.controller.SpeakQuestion(ctx, nil); err != nil {
				a.printf("Cannot read the question aloud: %v", err)
			}
		case "/voice":
			if draft, ok := a.dictateAnswer(ctx); ok {
				return draft, false
			}
		case "":
			a.printf("Type an answer, or /voice to dictate, /say to hear the question, /end to finish.")
		default:
			return line, false
		}
	}
}

// dictateAnswer records until Enter, then hands back the cleaned draft.
func (a *App) dictateAnswer(ctx context.Context) (string, bool) {
	if err := a.controller.StartDictation(ctx); err != nil {
		if errors.Is(err, domain.ErrCapabilityMissing) {
			a.printf("Voice input is not available on this machine.")
		} else {
			a.printf("Could not start dictation: %v", err)
		}
		return "", false
	}

	a.prompt("Recording. Press Enter to stop... ")
	a.controller.StopDictation()

	// Give the recognizer a moment to flush its final results.
	time.Sleep(500 * time.Millisecond)

	draft := strings.TrimSpace(a.controller.AnswerDraft())
	if draft == "" {
		a.printf("Nothing was recognized.")
		return "", false
	}

	a.printf("Dictated answer: %s", draft)
	if a.confirm("Submit this answer? [y/N]: ") {
		return draft, true
	}
	return "", false
}

// waitWhileScoring blocks until the feedback delay passes and the next
// question arrives, or the session terminates.
func (a *App) waitWhileScoring(ctx context.Context) {
	for ctx.Err() == nil {
		phase := a.controller.Status().Phase
		if phase != domain.PhaseScoring && phase != domain.PhaseTerminating {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (a *App) finish(ctx context.Context) error {
	status := a.controller.Status()

	report, err := a.controller.End(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrSessionOver) || errors.Is(err, usecase.ErrNoActiveSession) {
			a.printf("No final report is available.")
			return nil
		}
		return fmt.Errorf("could not produce the final report: %w", err)
	}

	a.printf("%s", formatReport(report))
	if path, err := a.exporter.SaveInterview(status.SessionID, "", report); err == nil {
		a.printf("Report saved to %s", path)
	} else {
		a.printf("Could not save the report: %v", err)
	}
	return nil
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	if !a.in.Scan() {
		return ""
	}
	return a.in.Text()
}

func (a *App) promptMultiline(label string) string {
	a.printf("%s", label)
	var lines []string
	for a.in.Scan() {
		line := a.in.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a *App) confirm(label string) bool {
	answer := strings.ToLower(strings.TrimSpace(a.prompt(label)))
	return answer == "y" || answer == "yes"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// PhaseChanged implements ports.EventSink.
func (a *App) PhaseChanged(phase domain.Phase, reason domain.PhaseReason) {
	if message := phaseMessage(reason); message != "" {
		a.printf("%s", message)
	}
}

// QuestionIssued implements ports.EventSink.
func (a *App) QuestionIssued(question domain.Question, difficulty domain.Difficulty, number int) {
	a.printf("Question %d [%s]: %s", number, difficulty, question.Text)
}

// AnswerScored implements ports.EventSink.
func (a *App) AnswerScored(record domain.ScoreRecord) {
	a.printf("Score: %.1f (%s). %s", record.Score, record.Status, record.Feedback)
	if record.Status == domain.AnswerStatusWarning {
		a.printf("Careful: another weak answer can end the interview.")
	}
}

// PartialTranscript implements ports.EventSink.
func (a *App) PartialTranscript(text string) {
	a.printf("[voice] %s", text)
}

// ReportReady implements ports.EventSink.
func (a *App) ReportReady(domain.FinalReport) {
	a.printf("Interview complete.")
}

// SessionError implements ports.EventSink.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.printf("%s: %s", errorMessage(code), detail)
}

func phaseMessage(reason domain.PhaseReason) string {
	switch reason {
	case domain.ReasonSessionStarted:
		return "Interview started."
	case domain.ReasonSessionRestored:
		return "Previous session restored."
	case domain.ReasonAnswerSubmitted:
		return "Scoring your answer..."
	case domain.ReasonQuestionCap:
		return "That was the last question."
	case domain.ReasonRemoteTerminated:
		return "The interview was ended early."
	case domain.ReasonAdvanceFailed:
		return "The interview service became unavailable. Wrapping up..."
	case domain.ReasonEndRequested:
		return "Ending the interview..."
	case domain.ReasonReportFailed:
		return "The final report could not be generated."
	case domain.ReasonSessionReset:
		return "Session cleared."
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeExtraction:
		return "Resume extraction failed"
	case domain.ErrorCodeTransport:
		return "Interview service error"
	case domain.ErrorCodeDictation:
		return "Voice input error"
	case domain.ErrorCodeSynthesis:
		return "Voice output error"
	case domain.ErrorCodePersistence:
		return "Could not save session state"
	default:
		return "Error"
	}
}

func formatMatch(match domain.MatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match analysis: overall %.0f%%, ATS %.0f%%, skills %.0f%%\n",
		match.OverallMatch, match.ATSScore, match.SkillMatchPercentage)
	if len(match.MatchedSkills) > 0 {
		fmt.Fprintf(&b, "  Matched skills: %s\n", strings.Join(match.MatchedSkills, ", "))
	}
	if len(match.MissingSkills) > 0 {
		fmt.Fprintf(&b, "  Missing skills: %s\n", strings.Join(match.MissingSkills, ", "))
	}
	if match.Summary != "" {
		fmt.Fprintf(&b, "  %s\n", match.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatReport(report domain.FinalReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Final score: %.1f (%s), hiring readiness: %s\n",
		report.FinalScore, report.Category, report.HiringReadiness)
	fmt.Fprintf(&b, "Questions answered: %d in %s\n",
		report.TotalQuestions, (time.Duration(report.TotalTime) * time.Second).String())
	if len(report.Strengths) > 0 {
		fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(report.Strengths, "; "))
	}
	if len(report.Weaknesses) > 0 {
		fmt.Fprintf(&b, "Weaknesses: %s\n", strings.Join(report.Weaknesses, "; "))
	}
	for _, difficulty := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		if scores := report.ScoreBreakdown[difficulty]; len(scores) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", difficulty, formatScores(scores))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatScores(scores []float64) string {
	parts := make([]string, len(scores))
	for i, score := range scores {
		parts[i] = fmt.Sprintf("%.0f", score)
	}
	return strings.Join(parts, ", ")
}
