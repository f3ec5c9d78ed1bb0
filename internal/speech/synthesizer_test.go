package speech

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

func partialEvent(text string) domain.TranscriptEvent {
	return domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: text}
}

func finalEvent(text string) domain.TranscriptEvent {
	return domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: text}
}

func writeSpeakScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speak.sh")
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestSynthesizerSpeaksAndFiresOnEnd(t *testing.T) {
	t.Parallel()

	outFile := filepath.Join(t.TempDir(), "spoken.txt")
	script := writeSpeakScript(t, "#!/usr/bin/env bash\nprintf '%s' \"$1\" > "+outFile+"\n")

	s := NewSynthesizer(script)
	if !s.Supported() {
		t.Fatalf("expected script synthesizer to be supported")
	}

	done := make(chan struct{})
	if err := s.Speak(context.Background(), "Explain Go interfaces.", func() { close(done) }); err != nil {
		t.Fatalf("speak failed: %v", err)
	}
	waitForSignal(t, done, "utterance end")

	spoken, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read spoken text: %v", err)
	}
	if !strings.Contains(string(spoken), "Explain Go interfaces.") {
		t.Fatalf("unexpected spoken text: %q", spoken)
	}
}

func TestSynthesizerStopSuppressesOnEnd(t *testing.T) {
	t.Parallel()

	script := writeSpeakScript(t, "#!/usr/bin/env bash\nsleep 5\n")
	s := NewSynthesizer(script)

	if err := s.Speak(context.Background(), "long question", func() {
		t.Errorf("onEnd fired after Stop")
	}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	s.Stop()
	time.Sleep(100 * time.Millisecond)

	// A second stop is harmless.
	s.Stop()
}

func TestSynthesizerSpeakCancelsPreviousUtterance(t *testing.T) {
	t.Parallel()

	script := writeSpeakScript(t, "#!/usr/bin/env bash\nif [ \"$1\" = \"slow\" ]; then sleep 5; fi\n")
	s := NewSynthesizer(script)

	if err := s.Speak(context.Background(), "slow", func() {
		t.Errorf("cancelled utterance fired onEnd")
	}); err != nil {
		t.Fatalf("first speak failed: %v", err)
	}

	done := make(chan struct{})
	if err := s.Speak(context.Background(), "fast", func() { close(done) }); err != nil {
		t.Fatalf("second speak failed: %v", err)
	}
	waitForSignal(t, done, "second utterance end")
}

func TestSynthesizerBlankTextIsNoOp(t *testing.T) {
	t.Parallel()

	script := writeSpeakScript(t, "#!/usr/bin/env bash\nexit 0\n")
	s := NewSynthesizer(script)

	if err := s.Speak(context.Background(), "   ", func() {
		t.Errorf("onEnd fired for blank text")
	}); err != nil {
		t.Fatalf("speak failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
}

func TestSynthesizerUnsupportedCommand(t *testing.T) {
	t.Parallel()

	s := &Synthesizer{command: "definitely-not-a-tts-binary"}
	if s.Supported() {
		t.Fatalf("expected unsupported")
	}
	if err := s.Speak(context.Background(), "hello", nil); err == nil {
		t.Fatalf("expected speak to fail without a command")
	}
}

func TestAggregatorFinalReplacesMatchingPartial(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	a.Add(partialEvent("my approach"))
	a.Add(finalEvent("my approach would be"))
	a.Add(partialEvent("to use"))
	a.Add(finalEvent("to use channels"))

	if got := a.Cumulative(); got != "my approach would be to use channels" {
		t.Fatalf("unexpected cumulative: %q", got)
	}
}

func TestAggregatorPartialSuffixNotDuplicated(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	a.Add(finalEvent("hello world"))
	a.Add(partialEvent("world"))

	if got := a.Cumulative(); got != "hello world" {
		t.Fatalf("unexpected cumulative: %q", got)
	}
}
