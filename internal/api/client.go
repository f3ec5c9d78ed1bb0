// Package api is the HTTP adapter for the remote interview service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

// Client talks JSON over HTTP to the scoring/question-generation service.
// Every failed call wraps domain.ErrTransport so the controller can apply
// its fail-safe termination policy uniformly.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a client for the given service base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type analyzeResumeRequest struct {
	ResumeText string `json:"resume_text"`
}

type analyzeResumeResponse struct {
	CandidateID      string           `json:"candidate_id"`
	CandidateProfile candidateProfile `json:"candidate_profile"`
}

type candidateProfile struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Projects        []string `json:"projects"`
	PrimaryDomain   string   `json:"primary_domain"`
}

// AnalyzeResume sends candidate text for profile extraction and returns the
// assigned candidate id with the structured profile.
func (c *Client) AnalyzeResume(ctx context.Context, resumeText string) (string, domain.CandidateProfile, error) {
	var out analyzeResumeResponse
	err := c.post(ctx, "/resume/analyze", analyzeResumeRequest{ResumeText: resumeText}, &out)
	if err != nil {
		return "", domain.CandidateProfile{}, err
	}
	return out.CandidateID, domain.CandidateProfile{
		Skills:          out.CandidateProfile.Skills,
		ExperienceYears: out.CandidateProfile.ExperienceYears,
		Projects:        out.CandidateProfile.Projects,
		PrimaryDomain:   out.CandidateProfile.PrimaryDomain,
	}, nil
}

type matchResumeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

type matchResumeResponse struct {
	ATSScore             float64  `json:"ats_score"`
	OverallMatch         float64  `json:"overall_match"`
	SkillMatchPercentage float64  `json:"skill_match_percentage"`
	MatchedSkills        []string `json:"matched_skills"`
	MissingSkills        []string `json:"missing_skills"`
	MatchedRequirements  []string `json:"matched_requirements"`
	UnmetRequirements    []string `json:"unmet_requirements"`
	ExperienceMatch      string   `json:"experience_match"`
	Summary              string   `json:"summary"`
	Strengths            []string `json:"strengths"`
	Gaps                 []string `json:"gaps"`
	Recommendations      []string `json:"recommendations"`
}

// MatchResume scores resume/job-description compatibility.
func (c *Client) MatchResume(ctx context.Context, resumeText, jobDescription string) (domain.MatchReport, error) {
	var out matchResumeResponse
	err := c.post(ctx, "/resume/match-jd", matchResumeRequest{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
	}, &out)
	if err != nil {
		return domain.MatchReport{}, err
	}
	return domain.MatchReport{
		ATSScore:             out.ATSScore,
		OverallMatch:         out.OverallMatch,
		SkillMatchPercentage: out.SkillMatchPercentage,
		MatchedSkills:        out.MatchedSkills,
		MissingSkills:        out.MissingSkills,
		MatchedRequirements:  out.MatchedRequirements,
		UnmetRequirements:    out.UnmetRequirements,
		ExperienceMatch:      out.ExperienceMatch,
		Summary:              out.Summary,
		Strengths:            out.Strengths,
		Gaps:                 out.Gaps,
		Recommendations:      out.Recommendations,
	}, nil
}

type rewriteResumeRequest struct {
	ResumeText     string   `json:"resume_text"`
	JobDescription string   `json:"job_description"`
	FocusAreas     []string `json:"focus_areas,omitempty"`
}

type rewriteResumeResponse struct {
	RewrittenResume string `json:"rewritten_resume"`
}

// RewriteResume asks the service to rephrase the resume toward the job
// description. Only the rewritten text is returned; the original stays
// untouched on the caller's side.
func (c *Client) RewriteResume(ctx context.Context, resumeText, jobDescription string, focusAreas []string) (string, error) {
	var out rewriteResumeResponse
	err := c.post(ctx, "/resume/rewrite", rewriteResumeRequest{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
		FocusAreas:     focusAreas,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.RewrittenResume, nil
}

type startInterviewRequest struct {
	CandidateID    string `json:"candidate_id"`
	JobDescription string `json:"job_description"`
}

type startInterviewResponse struct {
	SessionID     string `json:"session_id"`
	FirstQuestion string `json:"first_question"`
	Difficulty    string `json:"difficulty"`
}

// StartInterview initializes a remote session and returns its first question.
func (c *Client) StartInterview(ctx context.Context, candidateID, jobDescription string) (domain.StartResult, error) {
	var out startInterviewResponse
	err := c.post(ctx, "/interview/start", startInterviewRequest{
		CandidateID:    candidateID,
		JobDescription: jobDescription,
	}, &out)
	if err != nil {
		return domain.StartResult{}, err
	}

	difficulty := domain.Difficulty(out.Difficulty)
	if !difficulty.Valid() {
		difficulty = domain.DifficultyEasy
	}
	return domain.StartResult{
		SessionID:     out.SessionID,
		FirstQuestion: out.FirstQuestion,
		Difficulty:    difficulty,
	}, nil
}

type submitAnswerRequest struct {
	SessionID  string `json:"session_id"`
	Question   string `json:"question"`
	AnswerText string `json:"answer_text"`
	TimeTaken  int    `json:"time_taken"`
}

type submitAnswerResponse struct {
	Score              float64 `json:"score"`
	Status             string  `json:"status"`
	Feedback           string  `json:"feedback"`
	NextDifficulty     string  `json:"next_difficulty"`
	QuestionsRemaining int     `json:"questions_remaining"`
}

// SubmitAnswer sends an answer for evaluation. A TERMINATED verdict carries
// no next_difficulty field; the controller keeps its current level in that
// case, so the empty value is passed through as-is.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID, question, answerText string, timeTakenSeconds int) (domain.ScoreRecord, error) {
	var out submitAnswerResponse
	err := c.post(ctx, "/interview/answer", submitAnswerRequest{
		SessionID:  sessionID,
		Question:   question,
		AnswerText: answerText,
		TimeTaken:  timeTakenSeconds,
	}, &out)
	if err != nil {
		return domain.ScoreRecord{}, err
	}

	record := domain.ScoreRecord{
		Score:              out.Score,
		Feedback:           out.Feedback,
		NextDifficulty:     domain.Difficulty(out.NextDifficulty),
		Status:             domain.AnswerStatus(out.Status),
		QuestionsRemaining: out.QuestionsRemaining,
	}
	return record, nil
}

type nextQuestionResponse struct {
	Question string `json:"question"`
}

// NextQuestion fetches the next question for the session.
func (c *Client) NextQuestion(ctx context.Context, sessionID string) (string, error) {
	var out nextQuestionResponse
	query := url.Values{"session_id": []string{sessionID}}
	if err := c.get(ctx, "/interview/next-question", query, &out); err != nil {
		return "", err
	}
	return out.Question, nil
}

type endInterviewRequest struct {
	SessionID string `json:"session_id"`
}

type endInterviewResponse struct {
	FinalScore      float64              `json:"final_score"`
	Category        string               `json:"category"`
	Strengths       []string             `json:"strengths"`
	Weaknesses      []string             `json:"weaknesses"`
	HiringReadiness string               `json:"hiring_readiness"`
	TotalQuestions  int                  `json:"total_questions"`
	TotalTime       int                  `json:"total_time"`
	ScoreBreakdown  map[string][]float64 `json:"score_breakdown"`
}

// EndInterview closes the session and returns the final report.
func (c *Client) EndInterview(ctx context.Context, sessionID string) (domain.FinalReport, error) {
	var out endInterviewResponse
	if err := c.post(ctx, "/interview/end", endInterviewRequest{SessionID: sessionID}, &out); err != nil {
		return domain.FinalReport{}, err
	}

	breakdown := make(map[domain.Difficulty][]float64, len(out.ScoreBreakdown))
	for level, scores := range out.ScoreBreakdown {
		breakdown[domain.Difficulty(level)] = scores
	}
	return domain.FinalReport{
		FinalScore:      out.FinalScore,
		Category:        out.Category,
		Strengths:       out.Strengths,
		Weaknesses:      out.Weaknesses,
		HiringReadiness: out.HiringReadiness,
		TotalQuestions:  out.TotalQuestions,
		TotalTime:       out.TotalTime,
		ScoreBreakdown:  breakdown,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransport, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: reading response: %v", domain.ErrTransport, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %s", domain.ErrTransport, req.URL.Path, serviceError(resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: decoding response: %v", domain.ErrTransport, req.URL.Path, err)
	}
	return nil
}

// serviceError prefers the service's {"error": "..."} message over raw bytes.
func serviceError(status int, body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return fmt.Sprintf("status %d: %s", status, parsed.Error)
	}
	return fmt.Sprintf("status %d", status)
}
