// Package speech wires microphone capture, streaming recognition, and
// answer cleanup into the voice capabilities the session controller consumes.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Shivamtawar/buildxhire/internal/ports"
)

// DictationConfig bundles the capture and recognition settings for one
// dictation pipeline.
type DictationConfig struct {
	Audio       ports.AudioConfig
	Recognition ports.RecognitionConfig
	ChunkSize   int
}

// Dictation implements ports.Dictation by pumping captured PCM into a
// streaming recognizer and emitting the cleaned cumulative transcript on
// every recognition event.
type Dictation struct {
	capture    ports.AudioCapture
	recognizer ports.Recognizer
	rules      ports.TranscriptRules
	cfg        DictationConfig

	mu     sync.Mutex
	active *dictationRun
}

func NewDictation(capture ports.AudioCapture, recognizer ports.Recognizer, rules ports.TranscriptRules, cfg DictationConfig) *Dictation {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	return &Dictation{capture: capture, recognizer: recognizer, rules: rules, cfg: cfg}
}

// Supported probes both ends of the pipeline. Either end missing makes the
// capability absent rather than broken.
func (d *Dictation) Supported() bool {
	if probe, ok := d.capture.(interface{ Available() bool }); ok && !probe.Available() {
		return false
	}
	if probe, ok := d.recognizer.(interface{ Configured() bool }); ok && !probe.Configured() {
		return false
	}
	return true
}

// Start begins a dictation run. onText receives the full cleaned transcript
// so far on every recognition; exactly one of onEnd/onErr fires when the
// run finishes.
func (d *Dictation) Start(ctx context.Context, onText func(string), onEnd func(), onErr func(error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return errors.New("dictation is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	audioSession, err := d.capture.Start(runCtx, d.cfg.Audio)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	stream, err := d.recognizer.StartRecognition(runCtx, d.cfg.Recognition)
	if err != nil {
		cancel()
		_ = audioSession.Stop()
		return fmt.Errorf("failed to start recognition: %w", err)
	}

	run := &dictationRun{audio: audioSession, stream: stream, cancel: cancel}
	d.active = run

	go d.pump(run)
	go d.consume(run, onText, onEnd, onErr)
	return nil
}

// Stop ends the current run, if any. The recognizer drains its buffered
// audio first, so trailing words still arrive before onEnd.
func (d *Dictation) Stop() {
	d.mu.Lock()
	run := d.active
	d.mu.Unlock()
	if run == nil {
		return
	}

	run.stopOnce.Do(func() {
		_ = run.audio.Stop()
	})
}

type dictationRun struct {
	audio  ports.AudioSession
	stream ports.RecognitionSession
	cancel context.CancelFunc

	stopOnce sync.Once
}

// pump moves captured PCM into the recognizer until the capture ends, then
// closes the send side so the recognizer can flush final results. A stopped
// capture surfaces as a read error; either way the stream gets drained.
func (d *Dictation) pump(run *dictationRun) {
	defer func() {
		_ = run.stream.CloseSend()
	}()

	buf := make([]byte, d.cfg.ChunkSize)
	for {
		n, err := run.audio.Read(buf)
		if n > 0 {
			if sendErr := run.stream.SendAudio(buf[:n]); sendErr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// consume turns recognition events into cumulative transcript callbacks and
// settles the run when the event stream closes.
func (d *Dictation) consume(run *dictationRun, onText func(string), onEnd func(), onErr func(error)) {
	agg := newAggregator()
	for event := range run.stream.Events() {
		if strings.TrimSpace(event.Text) == "" {
			continue
		}
		agg.Add(event)
		if text := d.clean(agg.Cumulative()); text != "" && onText != nil {
			onText(text)
		}
	}

	err := run.stream.Wait()

	d.mu.Lock()
	if d.active == run {
		d.active = nil
	}
	d.mu.Unlock()

	run.stopOnce.Do(func() {
		_ = run.audio.Stop()
	})
	run.cancel()

	if err != nil {
		if onErr != nil {
			onErr(err)
		}
		return
	}
	if onEnd != nil {
		onEnd()
	}
}

// clean applies the substitution rules. A rules failure falls back to the
// raw transcript; losing the answer is worse than missing a cleanup.
func (d *Dictation) clean(text string) string {
	if d.rules == nil {
		return text
	}
	cleaned, err := d.rules.Apply(text)
	if err != nil {
		return text
	}
	return cleaned
}
