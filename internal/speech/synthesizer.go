package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// synthesizerCandidates are tried in order when no command is configured.
var synthesizerCandidates = []string{"say", "espeak-ng", "espeak"}

// Synthesizer implements ports.Synthesis by running a text-to-speech
// command per utterance. Speaking cancels whatever was playing; onEnd fires
// only on natural completion.
type Synthesizer struct {
	command string

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	cancel      context.CancelFunc
	interrupted bool
}

// NewSynthesizer uses the given command, or probes the platform candidates
// when it is empty. An empty result just means Supported() is false.
func NewSynthesizer(command string) *Synthesizer {
	if command == "" {
		for _, candidate := range synthesizerCandidates {
			if _, err := exec.LookPath(candidate); err == nil {
				command = candidate
				break
			}
		}
	}
	return &Synthesizer{command: command}
}

func (s *Synthesizer) Supported() bool {
	if s.command == "" {
		return false
	}
	_, err := exec.LookPath(s.command)
	return err == nil
}

func (s *Synthesizer) Speak(ctx context.Context, text string, onEnd func()) error {
	if !s.Supported() {
		return fmt.Errorf("no text-to-speech command available")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, s.command, text)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", s.command, err)
	}

	u := &utterance{cancel: cancel}
	s.mu.Lock()
	s.current = u
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()

		s.mu.Lock()
		if s.current == u {
			s.current = nil
		}
		interrupted := u.interrupted
		s.mu.Unlock()
		cancel()

		if err == nil && !interrupted && onEnd != nil {
			onEnd()
		}
	}()
	return nil
}

// Stop cancels the in-flight utterance, if any. Its onEnd will not fire.
func (s *Synthesizer) Stop() {
	s.mu.Lock()
	u := s.current
	if u != nil {
		u.interrupted = true
		s.current = nil
	}
	s.mu.Unlock()

	if u != nil {
		u.cancel()
	}
}
