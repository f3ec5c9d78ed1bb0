package ports

import (
	"context"
	"io"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

// InterviewAPI is the remote scoring, question-generation, and
// resume-analysis service. Implementations are transport adapters; a failed
// call must wrap domain.ErrTransport.
type InterviewAPI interface {
	AnalyzeResume(ctx context.Context, resumeText string) (candidateID string, profile domain.CandidateProfile, err error)
	MatchResume(ctx context.Context, resumeText, jobDescription string) (domain.MatchReport, error)
	RewriteResume(ctx context.Context, resumeText, jobDescription string, focusAreas []string) (string, error)
	StartInterview(ctx context.Context, candidateID, jobDescription string) (domain.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, question, answerText string, timeTakenSeconds int) (domain.ScoreRecord, error)
	NextQuestion(ctx context.Context, sessionID string) (string, error)
	EndInterview(ctx context.Context, sessionID string) (domain.FinalReport, error)
}

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live microphone capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// RecognitionConfig describes provider-agnostic streaming recognition settings.
type RecognitionConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// RecognitionSession is an active streaming speech-to-text session.
type RecognitionSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// Recognizer starts streaming recognition sessions.
type Recognizer interface {
	StartRecognition(ctx context.Context, cfg RecognitionConfig) (RecognitionSession, error)
}

// Dictation is the voice-input capability consumed by the controller.
// Start emits the full transcript so far on every recognition; exactly one
// of onEnd/onErr fires when recognition stops. Stop is idempotent.
type Dictation interface {
	Supported() bool
	Start(ctx context.Context, onText func(string), onEnd func(), onErr func(error)) error
	Stop()
}

// Synthesis is the voice-output capability. Speak cancels any in-flight
// utterance first; onEnd fires exactly once on natural completion and never
// after Stop. Stop is idempotent.
type Synthesis interface {
	Supported() bool
	Speak(ctx context.Context, text string, onEnd func()) error
	Stop()
}

// TranscriptRules cleans recognizer output deterministically.
type TranscriptRules interface {
	Apply(text string) (string, error)
}

// SnapshotStore mirrors session state to durable storage. Save merges the
// partial update over the last known snapshot; Load returns (nil, nil) when
// no usable snapshot exists.
type SnapshotStore interface {
	Save(update domain.SnapshotUpdate) error
	Load() (*domain.Snapshot, error)
	Clear() error
}

// EventSink receives session lifecycle events for the front-end.
type EventSink interface {
	PhaseChanged(phase domain.Phase, reason domain.PhaseReason)
	QuestionIssued(question domain.Question, difficulty domain.Difficulty, number int)
	AnswerScored(record domain.ScoreRecord)
	PartialTranscript(text string)
	ReportReady(report domain.FinalReport)
	SessionError(code domain.ErrorCode, detail string)
}
