// Package deepgram implements streaming speech recognition over the
// Deepgram realtime websocket API.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Shivamtawar/buildxhire/internal/domain"
	"github.com/Shivamtawar/buildxhire/internal/ports"
)

// Config controls the Deepgram connection.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

// Recognizer implements ports.Recognizer against Deepgram.
type Recognizer struct {
	cfg Config
}

func NewRecognizer(cfg Config) *Recognizer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &Recognizer{cfg: cfg}
}

// Configured reports whether an API key is present. Without one the
// dictation capability is absent rather than broken.
func (r *Recognizer) Configured() bool {
	return strings.TrimSpace(r.cfg.APIKey) != ""
}

func (r *Recognizer) StartRecognition(ctx context.Context, cfg ports.RecognitionConfig) (ports.RecognitionSession, error) {
	if !r.Configured() {
		return nil, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	wsURL, err := listenURL(r.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	session := &recognitionSession{
		conn:   conn,
		events: make(chan domain.TranscriptEvent, 64),
		audio:  make(chan []byte, 32),
		done:   make(chan struct{}),
	}

	session.wg.Add(2)
	go session.readLoop()
	go session.writeLoop()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

type recognitionSession struct {
	conn *websocket.Conn

	events chan domain.TranscriptEvent
	audio  chan []byte
	done   chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

func (s *recognitionSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.sendMu.RLock()
	closed := s.sendClosed
	s.sendMu.RUnlock()
	if closed {
		return errors.New("audio stream is already closed")
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.done:
		if err := s.sessionErr(); err != nil {
			return err
		}
		return errors.New("recognition session closed")
	}
}

func (s *recognitionSession) CloseSend() error {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.audio)
		s.sendMu.Unlock()
	})
	return nil
}

func (s *recognitionSession) Events() <-chan domain.TranscriptEvent {
	return s.events
}

func (s *recognitionSession) Wait() error {
	<-s.done
	return s.sessionErr()
}

func (s *recognitionSession) Close() error {
	s.closeOnce.Do(func() {
		_ = s.CloseSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.sessionErr()
}

func (s *recognitionSession) sessionErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *recognitionSession) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *recognitionSession) writeLoop() {
	defer s.wg.Done()

	for chunk := range s.audio {
		if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			s.setErr(fmt.Errorf("failed to send audio: %w", err))
			return
		}
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		s.setErr(fmt.Errorf("failed to close stream: %w", err))
	}
}

func (s *recognitionSession) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read recognizer event: %w", err))
			return
		}

		var response listenResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			s.setErr(errors.New(message))
			return
		}

		transcript := response.transcript()
		if transcript == "" {
			continue
		}

		kind := domain.TranscriptKindPartial
		if response.IsFinal || response.SpeechFinal {
			kind = domain.TranscriptKindFinal
		}
		s.emit(domain.TranscriptEvent{Kind: kind, Text: transcript})
	}
}

func (s *recognitionSession) emit(event domain.TranscriptEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	default:
	}
}

type listenResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (r listenResponse) transcript() string {
	if len(r.Channel.Alternatives) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Channel.Alternatives[0].Transcript)
}

func listenURL(providerCfg Config, recCfg ports.RecognitionConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	u, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	if recCfg.Encoding == "" {
		recCfg.Encoding = "linear16"
	}
	if recCfg.SampleRate <= 0 {
		recCfg.SampleRate = 16000
	}
	if recCfg.Channels <= 0 {
		recCfg.Channels = 1
	}

	query := u.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", recCfg.Encoding)
	query.Set("sample_rate", strconv.Itoa(recCfg.SampleRate))
	query.Set("channels", strconv.Itoa(recCfg.Channels))
	query.Set("interim_results", strconv.FormatBool(recCfg.InterimResults))
	query.Set("smart_format", strconv.FormatBool(providerCfg.SmartFormat))
	if providerCfg.Language != "" {
		query.Set("language", providerCfg.Language)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}
